// Package event defines the UploadEvent published by IngestPipeline to
// EventBus and consumed by ConsumerPipeline.
package event

import "github.com/google/uuid"

// UploadEvent is the byte-exact payload published on the upload stream.
// Wire field names differ from the Go names for three fields, preserved for
// compatibility with the original event schema.
type UploadEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	Principal     string    `json:"email"`
	ObjectID      uuid.UUID `json:"file_uuid"`
	CiphertextRef string    `json:"s3_data_key"`
	EnvelopeRef   string    `json:"s3_metadata_key"`
	StoreBucket   string    `json:"bucket_name"`
	TimestampMs   int64     `json:"ts_ms"`
}

// New builds an UploadEvent with a fresh v4 event_id.
func New(principal string, objectID uuid.UUID, ciphertextRef, envelopeRef, storeBucket string, timestampMs int64) UploadEvent {
	return UploadEvent{
		EventID:       uuid.New(),
		Principal:     principal,
		ObjectID:      objectID,
		CiphertextRef: ciphertextRef,
		EnvelopeRef:   envelopeRef,
		StoreBucket:   storeBucket,
		TimestampMs:   timestampMs,
	}
}
