package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConsumerMetrics instruments the background consumer pipeline (cmd/consumerd).
type ConsumerMetrics struct {
	processedTotal   *prometheus.CounterVec
	processDuration  *prometheus.HistogramVec
	redeliveredTotal prometheus.Counter
	sinkBytes        *prometheus.CounterVec
	activeWorkers    prometheus.Gauge
}

// NewConsumerMetrics returns nil when metrics are disabled.
func NewConsumerMetrics() *ConsumerMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &ConsumerMetrics{
		processedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestguard_consumer_processed_total",
				Help: "Total events processed by outcome (ack, nak, term)",
			},
			[]string{"outcome"},
		),
		processDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ingestguard_consumer_process_duration_milliseconds",
				Help:    "Duration of a single event's decrypt+sink pipeline in milliseconds",
				Buckets: []float64{5, 25, 100, 500, 2000, 10000, 60000},
			},
			[]string{"stage"},
		),
		redeliveredTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "ingestguard_consumer_redelivered_total",
				Help: "Total number of redelivered (previously nak'd) events observed",
			},
		),
		sinkBytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestguard_consumer_sink_bytes_total",
				Help: "Total decrypted bytes delivered to the sink",
			},
			[]string{"sink"},
		),
		activeWorkers: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "ingestguard_consumer_active_workers",
				Help: "Current number of worker goroutines pulling from the durable consumer",
			},
		),
	}
}

// ObserveProcessed records the terminal outcome of handling one event.
func (m *ConsumerMetrics) ObserveProcessed(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.processedTotal.WithLabelValues(outcome).Inc()
	m.processDuration.WithLabelValues(outcome).Observe(float64(duration.Milliseconds()))
}

// ObserveStage records the duration of a named sub-stage (fetch, decrypt, sink).
func (m *ConsumerMetrics) ObserveStage(stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.processDuration.WithLabelValues(stage).Observe(float64(duration.Milliseconds()))
}

// RecordRedelivered records an event delivered more than once.
func (m *ConsumerMetrics) RecordRedelivered() {
	if m == nil {
		return
	}
	m.redeliveredTotal.Inc()
}

// RecordSinkBytes records bytes handed to a named sink implementation.
func (m *ConsumerMetrics) RecordSinkBytes(sink string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sinkBytes.WithLabelValues(sink).Add(float64(n))
}

// SetActiveWorkers sets the current worker-pool gauge.
func (m *ConsumerMetrics) SetActiveWorkers(n int) {
	if m == nil {
		return
	}
	m.activeWorkers.Set(float64(n))
}
