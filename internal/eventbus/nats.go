package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/event"
	"github.com/ingestguard/ingestguard/internal/metrics"
)

// NATSConfig configures the JetStream-backed Bus.
type NATSConfig struct {
	URL             string
	Stream          string
	Subject         string
	DurableConsumer string
	AckWait         time.Duration
	MaxAge          time.Duration
}

// NATSBus implements Bus on top of a NATS JetStream durable pull consumer.
type NATSBus struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	sub     *nats.Subscription
	subject string
	metrics *metrics.EventBusMetrics
}

// NewNATSBus connects to cfg.URL, ensures the configured stream exists with
// file-backed storage and the configured retention, and opens a durable
// pull subscription.
func NewNATSBus(cfg NATSConfig, m *metrics.EventBusMetrics) (*NATSBus, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("ingestguard"))
	if err != nil {
		return nil, apperror.New(apperror.ConfigFatal, "nats_connect", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, apperror.New(apperror.ConfigFatal, "nats_jetstream", err)
	}

	if _, err := js.AddStream(&nats.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    cfg.MaxAge,
	}); err != nil && err != nats.ErrStreamNameAlreadyInUse {
		conn.Close()
		return nil, apperror.New(apperror.ConfigFatal, "nats_add_stream", err)
	}

	sub, err := js.PullSubscribe(cfg.Subject, cfg.DurableConsumer,
		nats.BindStream(cfg.Stream),
		nats.AckWait(cfg.AckWait),
		nats.ManualAck(),
	)
	if err != nil {
		conn.Close()
		return nil, apperror.New(apperror.ConfigFatal, "nats_pull_subscribe", err)
	}

	return &NATSBus{conn: conn, js: js, sub: sub, subject: cfg.Subject, metrics: m}, nil
}

func (b *NATSBus) Publish(ctx context.Context, ev event.UploadEvent) error {
	start := time.Now()
	data, err := json.Marshal(ev)
	if err != nil {
		err = apperror.New(apperror.FormatError, "publish_marshal", err)
		b.metrics.ObservePublish(b.subject, time.Since(start), err)
		return err
	}

	_, err = b.js.Publish(b.subject, data, nats.Context(ctx))
	b.metrics.ObservePublish(b.subject, time.Since(start), err)
	if err != nil {
		return apperror.New(apperror.TransientIO, "publish", err)
	}
	return nil
}

// Fetch pulls up to max messages. A nats.ErrTimeout on an empty queue is not
// an error: it means the pull window elapsed with nothing pending.
func (b *NATSBus) Fetch(ctx context.Context, max int) ([]Delivery, error) {
	msgs, err := b.sub.Fetch(max, nats.Context(ctx))
	if err != nil {
		if err == nats.ErrTimeout || err == context.DeadlineExceeded {
			return nil, nil
		}
		return nil, apperror.New(apperror.TransientIO, "fetch", err)
	}

	deliveries := make([]Delivery, 0, len(msgs))
	for _, msg := range msgs {
		msg := msg
		var ev event.UploadEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			// Malformed event JSON is a FormatError like any other: nak so it
			// stays eligible for redelivery rather than building a Delivery
			// we have no event to attach to.
			_ = msg.Nak()
			if b.metrics != nil {
				b.metrics.RecordAck("nak")
			}
			continue
		}
		deliveries = append(deliveries, Delivery{
			Event: ev,
			Ack: func() {
				_ = msg.Ack()
				b.metrics.RecordAck("ack")
			},
			Nak: func() {
				_ = msg.Nak()
				b.metrics.RecordAck("nak")
			},
			Term: func() {
				_ = msg.Term()
				b.metrics.RecordAck("term")
			},
		})
	}
	return deliveries, nil
}

func (b *NATSBus) Close() error {
	if b.conn != nil {
		b.conn.Close()
	}
	return nil
}
