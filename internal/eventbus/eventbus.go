// Package eventbus publishes and durably consumes UploadEvents between
// IngestPipeline and ConsumerPipeline.
package eventbus

import (
	"context"

	"github.com/ingestguard/ingestguard/internal/event"
)

// Delivery wraps a single delivered event with its ack/nak handles. Ack
// commits the delivery. Nak requests redelivery and covers every failure
// class a consumer can hit — NotFound, FormatError, AuthFailure, and
// TransientIO alike — since this system allows unlimited redelivery
// attempts with backoff left to the consumer, never a poison-pill drop.
// Term passes through to the transport's terminate call where one exists
// (JetStream); nothing in this repository calls it. A payload that fails
// to unmarshal into an UploadEvent never becomes a Delivery: NATSBus naks
// it inside Fetch.
type Delivery struct {
	Event event.UploadEvent
	Ack   func()
	Nak   func()
	Term  func()
}

// Bus publishes UploadEvents and exposes a pull-based durable consumer.
type Bus interface {
	// Publish sends ev on the configured subject.
	Publish(ctx context.Context, ev event.UploadEvent) error

	// Fetch pulls up to max pending deliveries. NATSBus waits up to the pull
	// window for messages; MemoryBus returns at once. An empty, nil-error
	// result means nothing was pending — callers should loop.
	Fetch(ctx context.Context, max int) ([]Delivery, error)

	// Close releases the underlying connection.
	Close() error
}
