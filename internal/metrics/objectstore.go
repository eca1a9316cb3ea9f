package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ObjectStoreMetrics instruments ObjectStore backends (pkg/objectstore).
type ObjectStoreMetrics struct {
	operationsTotal  *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	bytesTransferred *prometheus.CounterVec
}

// NewObjectStoreMetrics returns nil when metrics are disabled.
func NewObjectStoreMetrics() *ObjectStoreMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &ObjectStoreMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestguard_objectstore_operations_total",
				Help: "Total ObjectStore operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ingestguard_objectstore_operation_duration_milliseconds",
				Help:    "Duration of ObjectStore operations in milliseconds",
				Buckets: []float64{5, 25, 100, 500, 2000, 10000, 60000},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestguard_objectstore_bytes_total",
				Help: "Total bytes transferred via ObjectStore operations",
			},
			[]string{"operation", "direction"},
		),
	}
}

// ObserveOperation records an ObjectStore operation's outcome and latency.
func (m *ObjectStoreMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationLatency.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
}

// RecordBytes records bytes transferred for a put/get operation.
func (m *ObjectStoreMetrics) RecordBytes(operation, direction string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(operation, direction).Add(float64(n))
}
