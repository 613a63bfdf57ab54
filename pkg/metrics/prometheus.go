// Package metrics provides Prometheus metrics for the CLUE API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeHTTPError   = "http_error"
	OutcomeTransport   = "transport_error"
	OutcomeTimeout     = "timeout"
	OutcomeRateLimited = "rate_limited"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Manager manages all Prometheus metrics for the CLUE service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	upstreamBuckets  []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// LLM upstreams
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamInFlight *prometheus.GaugeVec

	// MongoDB store
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
	storeConnected    prometheus.Gauge

	// Response cache
	cacheRequests *prometheus.CounterVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
	serviceUptime        prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "clue",
		subsystem:        "api",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		upstreamBuckets:  []float64{100, 500, 1000, 5000, 15000, 30000, 60000, 120000, 180000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Requests forwarded to LLM upstreams by outcome"),
		[]string{"upstream", "route", "outcome"},
	)
	m.upstreamLatency = auto.NewHistogramVec(
		m.histogramOpts("upstream_latency_milliseconds", "LLM upstream round-trip latency in milliseconds", m.upstreamBuckets),
		[]string{"upstream"},
	)
	m.upstreamInFlight = auto.NewGaugeVec(
		m.gaugeOpts("upstream_in_flight", "Requests currently in flight per LLM upstream"),
		[]string{"upstream"},
	)

	m.storeQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("store_query_latency_milliseconds", "MongoDB query latency in milliseconds", m.histogramBuckets),
		[]string{"collection", "operation"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "MongoDB query errors by collection"),
		[]string{"collection"},
	)
	m.storeConnected = auto.NewGauge(m.gaugeOpts("store_connected", "1 when MongoDB is connected, 0 otherwise"))

	m.cacheRequests = auto.NewCounterVec(
		m.counterOpts("cache_requests_total", "Response cache lookups by result"),
		[]string{"result"},
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
	m.serviceUptime = auto.NewGauge(m.gaugeOpts("service_uptime_seconds", "Seconds since the service started"))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordUpstreamRequest counts one forwarded call and its latency.
func RecordUpstreamRequest(upstream, route, outcome string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(upstream, route, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(upstream).Observe(latencyMs)
}

// AddUpstreamInFlight adjusts the in-flight gauge by delta.
func AddUpstreamInFlight(upstream string, delta float64) {
	globalManager.upstreamInFlight.WithLabelValues(upstream).Add(delta)
}

// RecordStoreQuery records the latency of one MongoDB operation and counts failures.
func RecordStoreQuery(collection, operation string, latencyMs float64, err error) {
	globalManager.storeQueryLatency.WithLabelValues(collection, operation).Observe(latencyMs)
	if err != nil {
		globalManager.storeErrors.WithLabelValues(collection).Inc()
	}
}

// SetStoreConnected flips the connection gauge.
func SetStoreConnected(connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	globalManager.storeConnected.Set(v)
}

// RecordCacheResult counts a cache lookup as hit, miss or error.
func RecordCacheResult(result string) {
	globalManager.cacheRequests.WithLabelValues(result).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// UpdateServiceUptime sets the uptime gauge in seconds.
func UpdateServiceUptime(seconds float64) {
	globalManager.serviceUptime.Set(seconds)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
