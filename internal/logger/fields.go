package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these keys consistently
// across all log statements so downstream aggregation/querying tooling can
// rely on a stable schema.
const (
	// Distributed tracing
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"

	// Domain identity
	KeyPrincipal = "principal"  // owning identity, email-shaped
	KeyObjectID  = "object_id"  // Object UUID
	KeyEventID   = "event_id"   // Event UUID
	KeySessionID = "session_id" // opaque session token (never logged in full)

	// Object/ciphertext shape
	KeyOriginalName  = "original_name"
	KeyOriginalSize  = "original_size"
	KeyCiphertextLen = "ciphertext_length"
	KeyVerification  = "verification_status"

	// Client identification
	KeyClientIP = "client_ip"

	// Storage backend
	KeyStoreKey  = "store_key"
	KeyBucket    = "bucket"
	KeyAttempt   = "attempt"
	KeyMaxRetry  = "max_retries"
	KeyOperation = "operation"

	// EventBus
	KeyStream    = "stream"
	KeySubject   = "subject"
	KeyConsumer  = "consumer"
	KeyRedeliver = "redelivered"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorKind  = "error_kind"
	KeyStatus     = "status"
)

// TraceID returns a slog.Attr for the OpenTelemetry trace ID
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for the OpenTelemetry span ID
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// RequestID returns a slog.Attr for the request ID
func RequestID(id string) slog.Attr { return slog.String(KeyRequestID, id) }

// Principal returns a slog.Attr for the owning principal
func Principal(p string) slog.Attr { return slog.String(KeyPrincipal, p) }

// ObjectID returns a slog.Attr for an Object UUID
func ObjectID(id string) slog.Attr { return slog.String(KeyObjectID, id) }

// EventID returns a slog.Attr for an Event UUID
func EventID(id string) slog.Attr { return slog.String(KeyEventID, id) }

// OriginalName returns a slog.Attr for the uploaded file's original name
func OriginalName(name string) slog.Attr { return slog.String(KeyOriginalName, name) }

// OriginalSize returns a slog.Attr for the plaintext size in bytes
func OriginalSize(n int64) slog.Attr { return slog.Int64(KeyOriginalSize, n) }

// CiphertextLength returns a slog.Attr for the ciphertext length in bytes
func CiphertextLength(n int64) slog.Attr { return slog.Int64(KeyCiphertextLen, n) }

// VerificationStatus returns a slog.Attr for VERIFIED/NOT_VERIFIED
func VerificationStatus(status string) slog.Attr { return slog.String(KeyVerification, status) }

// ClientIP returns a slog.Attr for the client IP address
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

// StoreKey returns a slog.Attr for an ObjectStore key
func StoreKey(key string) slog.Attr { return slog.String(KeyStoreKey, key) }

// Bucket returns a slog.Attr for the object store bucket name
func Bucket(name string) slog.Attr { return slog.String(KeyBucket, name) }

// Attempt returns a slog.Attr for a retry attempt number
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// MaxRetries returns a slog.Attr for the maximum retry attempts
func MaxRetries(n int) slog.Attr { return slog.Int(KeyMaxRetry, n) }

// Operation returns a slog.Attr for a sub-operation name
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// Stream returns a slog.Attr for the EventBus stream name
func Stream(name string) slog.Attr { return slog.String(KeyStream, name) }

// Subject returns a slog.Attr for the EventBus subject
func Subject(name string) slog.Attr { return slog.String(KeySubject, name) }

// Consumer returns a slog.Attr for the durable consumer name
func Consumer(name string) slog.Attr { return slog.String(KeyConsumer, name) }

// Redelivered returns a slog.Attr indicating redelivery
func Redelivered(n int) slog.Attr { return slog.Int(KeyRedeliver, n) }

// DurationMs returns a slog.Attr for an operation duration in milliseconds
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorKind returns a slog.Attr for a taxonomy error kind (AuthFailure, FormatError, ...)
func ErrorKind(kind string) slog.Attr { return slog.String(KeyErrorKind, kind) }

// Status returns a slog.Attr for an HTTP status code
func Status(code int) slog.Attr { return slog.Int(KeyStatus, code) }
