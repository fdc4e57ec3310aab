package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordSourceFetch(source, status string)
	RecordProviderAttempt(provider, status string)
	RecordCacheLookup(kind, result string)
	RecordBroadcast(event, status string)
	RecordRefresh(duration time.Duration)
	SetDBConnectionsActive(count float64)
	RecordDBQuery(operation, status string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordSourceFetch(source, status string)       {}
func (m *NoOpMetrics) RecordProviderAttempt(provider, status string) {}
func (m *NoOpMetrics) RecordCacheLookup(kind, result string)         {}
func (m *NoOpMetrics) RecordBroadcast(event, status string)          {}
func (m *NoOpMetrics) RecordRefresh(duration time.Duration)          {}
func (m *NoOpMetrics) SetDBConnectionsActive(count float64)          {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)        {}
func (m *NoOpMetrics) Handler() http.Handler                         { return http.NotFoundHandler() }

// PrometheusMetrics records to a dedicated Prometheus registry
type PrometheusMetrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	sourceFetches   *prometheus.CounterVec
	providerAttempt *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	broadcasts      *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	dbConnections   prometheus.Gauge
	dbQueries       *prometheus.CounterVec
}

// NewPrometheus builds a PrometheusMetrics with its own registry
func NewPrometheus() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disasterfeed_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "disasterfeed_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		sourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disasterfeed_source_fetches_total",
			Help: "Official update source retrievals by outcome",
		}, []string{"source", "status"}),
		providerAttempt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disasterfeed_social_provider_attempts_total",
			Help: "Social provider chain attempts by outcome",
		}, []string{"provider", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disasterfeed_cache_lookups_total",
			Help: "Response cache lookups by result",
		}, []string{"kind", "result"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disasterfeed_broadcasts_total",
			Help: "Broadcast emits by event and outcome",
		}, []string{"event", "status"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "disasterfeed_refresh_duration_seconds",
			Help:    "Background refresh duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		dbConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "disasterfeed_db_connections_active",
			Help: "Acquired database connections",
		}),
		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disasterfeed_db_queries_total",
			Help: "Database operations by outcome",
		}, []string{"operation", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.sourceFetches, m.providerAttempt,
		m.cacheLookups, m.broadcasts, m.refreshDuration, m.dbConnections, m.dbQueries,
	)
	return m
}

func (m *PrometheusMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordSourceFetch(source, status string) {
	m.sourceFetches.WithLabelValues(source, status).Inc()
}

func (m *PrometheusMetrics) RecordProviderAttempt(provider, status string) {
	m.providerAttempt.WithLabelValues(provider, status).Inc()
}

func (m *PrometheusMetrics) RecordCacheLookup(kind, result string) {
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

func (m *PrometheusMetrics) RecordBroadcast(event, status string) {
	m.broadcasts.WithLabelValues(event, status).Inc()
}

func (m *PrometheusMetrics) RecordRefresh(duration time.Duration) {
	m.refreshDuration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) SetDBConnectionsActive(count float64) {
	m.dbConnections.Set(count)
}

func (m *PrometheusMetrics) RecordDBQuery(operation, status string) {
	m.dbQueries.WithLabelValues(operation, status).Inc()
}

func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var (
	mu            sync.RWMutex
	globalMetrics Metrics = &NoOpMetrics{}
	initOnce      sync.Once
)

func current() Metrics {
	mu.RLock()
	defer mu.RUnlock()
	return globalMetrics
}

// Init switches the global metrics to Prometheus. Later calls are no-ops.
func Init() {
	initOnce.Do(func() {
		mu.Lock()
		globalMetrics = NewPrometheus()
		mu.Unlock()
	})
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return current().Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	current().RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordSourceFetch records the outcome of one official source retrieval
func RecordSourceFetch(source, status string) {
	current().RecordSourceFetch(source, status)
}

// RecordProviderAttempt records one social provider chain attempt
func RecordProviderAttempt(provider, status string) {
	current().RecordProviderAttempt(provider, status)
}

// RecordCacheLookup records a cache hit, miss or error
func RecordCacheLookup(kind, result string) {
	current().RecordCacheLookup(kind, result)
}

// RecordBroadcast records a broadcast emit
func RecordBroadcast(event, status string) {
	current().RecordBroadcast(event, status)
}

// RecordRefresh records a background refresh run
func RecordRefresh(duration time.Duration) {
	current().RecordRefresh(duration)
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	current().SetDBConnectionsActive(count)
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	current().RecordDBQuery(operation, status)
}
