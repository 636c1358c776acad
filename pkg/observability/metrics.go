// Package observability provides Prometheus metrics, health checks, and
// OpenTelemetry tracing for the assistant service.
package observability

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	taskRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radha_task_requests_total",
			Help: "Total number of assistant task requests",
		},
		[]string{"action", "model", "status"},
	)

	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radha_task_duration_seconds",
			Help:    "Assistant task duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action", "model"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radha_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radha_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "radha_active_sessions",
			Help: "Number of in-memory conversation sessions",
		},
	)

	memoryUsage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "radha_memory_usage_bytes",
			Help: "Memory usage in bytes",
		},
	)

	goroutines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "radha_goroutines",
			Help: "Number of goroutines",
		},
	)

	initOnce sync.Once
)

// InitMetrics registers the Prometheus metrics once per process.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			taskRequestsTotal,
			taskDuration,
			httpRequestsTotal,
			httpRequestDuration,
			activeSessions,
			memoryUsage,
			goroutines,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordTask records one assistant task by action, backend, and outcome.
func RecordTask(action, model, status string, duration time.Duration) {
	taskRequestsTotal.WithLabelValues(action, model, status).Inc()
	taskDuration.WithLabelValues(action, model).Observe(duration.Seconds())
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetActiveSessions sets the session count gauge.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// RefreshRuntimeGauges samples process memory and goroutine counts. Called
// on a schedule by the serve command.
func RefreshRuntimeGauges() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	memoryUsage.Set(float64(m.Alloc))
	goroutines.Set(float64(runtime.NumGoroutine()))
}
