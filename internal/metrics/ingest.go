package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestMetrics instruments the HTTP ingest pipeline (cmd/ingestd).
type IngestMetrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	uploadBytes        prometheus.Histogram
	encryptDuration    prometheus.Histogram
	verificationStatus *prometheus.CounterVec
	activeUploads      prometheus.Gauge
}

// NewIngestMetrics returns nil when metrics are disabled, so callers can
// wire it unconditionally into the pipeline.
func NewIngestMetrics() *IngestMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &IngestMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestguard_ingest_requests_total",
				Help: "Total number of ingest HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ingestguard_ingest_request_duration_milliseconds",
				Help:    "Duration of ingest HTTP requests in milliseconds",
				Buckets: []float64{5, 25, 100, 500, 1000, 5000, 30000, 120000},
			},
			[]string{"route"},
		),
		uploadBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingestguard_ingest_upload_bytes",
				Help:    "Distribution of plaintext upload sizes in bytes",
				Buckets: []float64{4096, 65536, 1048576, 10485760, 104857600, 1073741824},
			},
		),
		encryptDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingestguard_ingest_encrypt_duration_milliseconds",
				Help:    "Duration of the envelope-encryption step in milliseconds",
				Buckets: []float64{1, 5, 25, 100, 500, 2000, 10000},
			},
		),
		verificationStatus: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestguard_ingest_verification_status_total",
				Help: "Total uploads by verification_status (VERIFIED, NOT_VERIFIED)",
			},
			[]string{"status"},
		),
		activeUploads: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "ingestguard_ingest_active_uploads",
				Help: "Current number of in-flight upload requests",
			},
		),
	}
}

// ObserveRequest records an ingest HTTP request's outcome.
func (m *IngestMetrics) ObserveRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, statusClass(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(float64(duration.Milliseconds()))
}

// RecordUploadBytes records the plaintext size of an accepted upload.
func (m *IngestMetrics) RecordUploadBytes(n int64) {
	if m == nil || n < 0 {
		return
	}
	m.uploadBytes.Observe(float64(n))
}

// ObserveEncrypt records the duration of the inner+outer encrypt step.
func (m *IngestMetrics) ObserveEncrypt(duration time.Duration) {
	if m == nil {
		return
	}
	m.encryptDuration.Observe(float64(duration.Milliseconds()))
}

// RecordVerificationStatus records the outcome of the optional verify-decrypt step.
func (m *IngestMetrics) RecordVerificationStatus(status string) {
	if m == nil {
		return
	}
	m.verificationStatus.WithLabelValues(status).Inc()
}

// IncActiveUploads adjusts the in-flight upload gauge by delta.
func (m *IngestMetrics) IncActiveUploads(delta int) {
	if m == nil {
		return
	}
	m.activeUploads.Add(float64(delta))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
