package eventbus

import (
	"context"
	"sync"

	"github.com/ingestguard/ingestguard/internal/event"
)

// MemoryBus is an in-process Bus backed by a channel, for tests and local
// development. Published events are never redelivered once acked; Nak
// re-queues them at the back of the channel.
type MemoryBus struct {
	mu      sync.Mutex
	pending chan event.UploadEvent
}

// NewMemoryBus builds a MemoryBus with the given buffer capacity.
func NewMemoryBus(capacity int) *MemoryBus {
	return &MemoryBus{pending: make(chan event.UploadEvent, capacity)}
}

func (b *MemoryBus) Publish(ctx context.Context, ev event.UploadEvent) error {
	select {
	case b.pending <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBus) Fetch(ctx context.Context, max int) ([]Delivery, error) {
	var deliveries []Delivery
	for len(deliveries) < max {
		select {
		case ev := <-b.pending:
			ev := ev
			deliveries = append(deliveries, Delivery{
				Event: ev,
				Ack:   func() {},
				Nak: func() {
					b.mu.Lock()
					defer b.mu.Unlock()
					b.pending <- ev
				},
				Term: func() {},
			})
		case <-ctx.Done():
			return deliveries, nil
		default:
			return deliveries, nil
		}
	}
	return deliveries, nil
}

func (b *MemoryBus) Close() error {
	return nil
}
