// Package apperror defines the error taxonomy shared by every pipeline
// component: CryptoCore, ObjectStore, EventBus, CredentialStore, and the
// ingest/consumer pipelines built on top of them. Each error carries a Kind
// that callers switch on to decide an HTTP status (ingest) or an ack/nak/term
// decision (consumer), without coupling that decision to a specific package's
// sentinel errors.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for routing purposes. See spec §7 for the full
// propagation/recovery table each kind implies.
type Kind string

const (
	// AuthFailure covers a GCM tag mismatch, wrong passphrase, or wrong master key.
	AuthFailure Kind = "AuthFailure"
	// FormatError covers malformed outer/inner/wrapped bytes or malformed JSON.
	FormatError Kind = "FormatError"
	// NotFound covers a missing object or sidecar.
	NotFound Kind = "NotFound"
	// TransientIO covers a network or store glitch; bounded retry is the caller's responsibility.
	TransientIO Kind = "TransientIO"
	// Capacity covers a body too large or a store quota exceeded.
	Capacity Kind = "Capacity"
	// ConfigFatal covers a missing master key or unreachable stream at startup.
	ConfigFatal Kind = "ConfigFatal"
)

// Error wraps an underlying error with a routing Kind.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "decrypt_outer_stream"
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with kind and op. Returns nil if err is nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of err, or "" if err does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
