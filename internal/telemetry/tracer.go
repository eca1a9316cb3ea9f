package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for ingest/consumer spans.
const (
	AttrObjectID  = "ingestguard.object_id"
	AttrPrincipal = "ingestguard.principal"
	AttrBucket    = "storage.bucket"
	AttrKey       = "storage.key"
	AttrFilename  = "ingestguard.filename"
	AttrSize      = "ingestguard.size_bytes"
	AttrWorkerID  = "ingestguard.worker_id"
	AttrOutcome   = "ingestguard.outcome"
	AttrErrorKind = "ingestguard.error_kind"
	AttrEventID   = "ingestguard.event_id"
)

// Span names for the two pipeline stages.
const (
	SpanIngestUpload  = "ingest.upload"
	SpanIngestEncrypt = "ingest.encrypt"
	SpanIngestPersist = "ingest.persist"
	SpanIngestPublish = "ingest.publish"

	SpanConsumeProcess = "consume.process"
	SpanConsumeUnwrap  = "consume.unwrap"
	SpanConsumeDecrypt = "consume.decrypt"
	SpanConsumeSink    = "consume.sink"
)

// ObjectID returns an attribute for the object UUID an operation concerns.
func ObjectID(id string) attribute.KeyValue {
	return attribute.String(AttrObjectID, id)
}

// Principal returns an attribute for the authenticated email/identity behind
// an operation.
func Principal(email string) attribute.KeyValue {
	return attribute.String(AttrPrincipal, email)
}

// Bucket returns an attribute for the object store bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an object store key (ciphertext or
// sidecar).
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Filename returns an attribute for the original uploaded filename.
func Filename(name string) attribute.KeyValue {
	return attribute.String(AttrFilename, name)
}

// Size returns an attribute for a byte count (plaintext or ciphertext size).
func Size(n int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, n)
}

// WorkerID returns an attribute identifying which consumer worker produced a
// span.
func WorkerID(id int) attribute.KeyValue {
	return attribute.Int(AttrWorkerID, id)
}

// Outcome returns an attribute for a span's terminal outcome (ack, nak, or
// an apperror.Kind string).
func Outcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

// ErrorKind returns an attribute for the apperror.Kind of a failure.
func ErrorKind(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}

// EventID returns an attribute for an UploadEvent's identifier.
func EventID(id string) attribute.KeyValue {
	return attribute.String(AttrEventID, id)
}

// StartIngestSpan starts a span for one stage of the ingest pipeline
// (upload, encrypt, persist, publish), tagging it with the object and
// principal it concerns.
func StartIngestSpan(ctx context.Context, name string, objectID, principal string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{ObjectID(objectID), Principal(principal)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartConsumeSpan starts a span for one stage of the consumer pipeline
// (unwrap, decrypt, sink), tagging it with the event and worker that
// produced it.
func StartConsumeSpan(ctx context.Context, name string, eventID string, workerID int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{EventID(eventID), WorkerID(workerID)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}
