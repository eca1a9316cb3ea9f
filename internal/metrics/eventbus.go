package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EventBusMetrics instruments EventBus backends (pkg/eventbus).
type EventBusMetrics struct {
	publishedTotal  *prometheus.CounterVec
	publishDuration prometheus.Histogram
	ackTotal        *prometheus.CounterVec
	pendingGauge    prometheus.Gauge
}

// NewEventBusMetrics returns nil when metrics are disabled.
func NewEventBusMetrics() *EventBusMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &EventBusMetrics{
		publishedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestguard_eventbus_published_total",
				Help: "Total events published by subject and status",
			},
			[]string{"subject", "status"},
		),
		publishDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingestguard_eventbus_publish_duration_milliseconds",
				Help:    "Duration of event publish calls in milliseconds",
				Buckets: []float64{1, 5, 25, 100, 500, 2000},
			},
		),
		ackTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestguard_eventbus_ack_total",
				Help: "Total message acknowledgements by kind (ack, nak, term)",
			},
			[]string{"kind"},
		),
		pendingGauge: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "ingestguard_eventbus_pending_messages",
				Help: "Number of messages currently fetched but not yet acked/naked",
			},
		),
	}
}

// ObservePublish records a publish call's outcome.
func (m *EventBusMetrics) ObservePublish(subject string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.publishedTotal.WithLabelValues(subject, status).Inc()
	m.publishDuration.Observe(float64(duration.Milliseconds()))
}

// RecordAck records an ack/nak/term decision.
func (m *EventBusMetrics) RecordAck(kind string) {
	if m == nil {
		return
	}
	m.ackTotal.WithLabelValues(kind).Inc()
}

// SetPending sets the current in-flight (fetched, not yet acked) message count.
func (m *EventBusMetrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pendingGauge.Set(float64(n))
}
