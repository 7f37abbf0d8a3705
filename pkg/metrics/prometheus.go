// Package metrics provides Prometheus metrics for the arcade backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every metric exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Leaderboard business metrics.
	worldRecordSubmissions  *prometheus.CounterVec
	tournamentSubmissions   *prometheus.CounterVec
	tournamentTrims         prometheus.Counter
	tournamentTrimmedRows   prometheus.Counter
	leaderboardSize         *prometheus.GaugeVec
	guestUsersCreated       prometheus.Counter
	namedUsersCreated       prometheus.Counter

	// Store metrics.
	storeQueryLatency  prometheus.Histogram
	storeUpdateLatency prometheus.Histogram
	storeErrors        prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics.
	errorsByEndpoint *prometheus.CounterVec
	errorsByType     *prometheus.CounterVec

	// System metrics.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global manager plus a custom registry so default Go collectors stay out.
var globalManager *Manager                     //nolint:gochecknoglobals // singleton metrics manager
var customRegistry = prometheus.NewRegistry()  //nolint:gochecknoglobals // dedicated registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with the given options applied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arcade",
		subsystem:        "backend",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.worldRecordSubmissions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "world_record_submissions_total",
		Help:      "World record submissions by outcome (new_record, kept).",
	}, []string{"outcome"})

	m.tournamentSubmissions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tournament_submissions_total",
		Help:      "Tournament score submissions by outcome (improved, kept, qualified, rejected).",
	}, []string{"outcome"})

	m.tournamentTrims = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tournament_trims_total",
		Help:      "Number of post-insert leaderboard trim passes.",
	})

	m.tournamentTrimmedRows = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tournament_trimmed_rows_total",
		Help:      "Rows deleted beyond the leaderboard capacity.",
	})

	m.leaderboardSize = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_size",
		Help:      "Observed leaderboard size per tournament.",
	}, []string{"tournament_id"})

	m.guestUsersCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "guest_users_created_total",
		Help:      "Guest identities issued.",
	})

	m.namedUsersCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "named_users_created_total",
		Help:      "Named users created.",
	})

	m.storeQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_ms",
		Help:      "Latency of document store reads in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.storeUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_update_latency_ms",
		Help:      "Latency of document store writes in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.storeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Document store operations that returned an error.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Errors by endpoint, method and error type.",
	}, []string{"endpoint", "method", "error_type"})

	m.errorsByType = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Errors by type and severity.",
	}, []string{"error_type", "severity"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes.",
	})

	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines.",
	})

	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_ms",
		Help:      "Average GC pause time in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers on the global manager.

// RecordWorldRecordSubmission counts a world record submission outcome.
func RecordWorldRecordSubmission(outcome string) {
	globalManager.worldRecordSubmissions.WithLabelValues(outcome).Inc()
}

// RecordTournamentSubmission counts a tournament submission outcome.
func RecordTournamentSubmission(outcome string) {
	globalManager.tournamentSubmissions.WithLabelValues(outcome).Inc()
}

// RecordTournamentTrim counts a trim pass and the rows it removed.
func RecordTournamentTrim(removed int64) {
	globalManager.tournamentTrims.Inc()
	globalManager.tournamentTrimmedRows.Add(float64(removed))
}

// UpdateLeaderboardSize sets the observed size of a tournament leaderboard.
func UpdateLeaderboardSize(tournamentID string, size int) {
	globalManager.leaderboardSize.WithLabelValues(tournamentID).Set(float64(size))
}

// RecordGuestUserCreated counts an issued guest identity.
func RecordGuestUserCreated() {
	globalManager.guestUsersCreated.Inc()
}

// RecordNamedUserCreated counts a created named user.
func RecordNamedUserCreated() {
	globalManager.namedUsersCreated.Inc()
}

// RecordStoreQueryLatency records a store read latency in milliseconds.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordStoreUpdateLatency records a store write latency in milliseconds.
func RecordStoreUpdateLatency(latencyMs float64) {
	globalManager.storeUpdateLatency.Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the current heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing the global manager, for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
