package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard service.
type Metrics struct {
	// Upload pipeline metrics
	Uploads            *prometheus.CounterVec
	RowsProcessed      *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec

	// Cache metrics
	CacheOperations *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Uploads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Total number of file uploads by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		RowsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_processed_total",
				Help:      "Total number of data rows processed by kind",
			},
			[]string{"kind"},
		),
		ProcessingDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "processing_duration_seconds",
				Help:      "Upload processing duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"kind", "mode"},
		),
		CacheOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_operations_total",
				Help:      "Report cache operations by operation and backend",
			},
			[]string{"op", "backend"},
		),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by path, method and status",
			},
			[]string{"path", "method", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 5},
			},
			[]string{"path", "method"},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"endpoint"},
		),
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordUpload counts one upload attempt and its processing time.
func (m *Metrics) RecordUpload(kind, status, mode string, rows int64, duration time.Duration) {
	m.Uploads.WithLabelValues(kind, status).Inc()
	if rows > 0 {
		m.RowsProcessed.WithLabelValues(kind).Add(float64(rows))
	}
	m.ProcessingDuration.WithLabelValues(kind, mode).Observe(duration.Seconds())
}

// RecordCacheOp counts one report cache operation.
func (m *Metrics) RecordCacheOp(op, backend string) {
	m.CacheOperations.WithLabelValues(op, backend).Inc()
}

// RecordHTTPRequest counts one served request.
func (m *Metrics) RecordHTTPRequest(path, method string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordRateLimitHit counts one rate-limited request.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}
