// Package metrics provides Prometheus metrics for the activities sign-up gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the gateway.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Upstream metrics - calls against the remote activities service
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Refresh metrics - full snapshot refetch cycles
	refreshTotal    prometheus.Counter
	refreshFailures prometheus.Counter

	// Snapshot metrics - the in-memory activities snapshot
	snapshotActivities   prometheus.Gauge
	snapshotParticipants prometheus.Gauge
	snapshotLastUnix     prometheus.Gauge

	// Command metrics - user actions flowing through the dispatch loop
	commandsTotal     *prometheus.CounterVec
	commandQueueDepth prometheus.Gauge

	// Feedback metrics
	bannerShows *prometheus.CounterVec

	// HTTP Performance Metrics - gateway endpoints
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mergington",
		subsystem:        "signup",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.upstreamRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_requests_total",
			Help:      "Total requests to the remote activities service by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.upstreamLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_latency_milliseconds",
			Help:      "Latency of remote activities service calls in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"operation"},
	)

	m.refreshTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_total",
		Help:      "Total number of full snapshot refresh cycles",
	})

	m.refreshFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_failures_total",
		Help:      "Total number of snapshot refresh cycles that failed",
	})

	m.snapshotActivities = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_activities",
		Help:      "Number of activities in the current snapshot",
	})

	m.snapshotParticipants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_participants",
		Help:      "Total registered participants across the current snapshot",
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_unix",
		Help:      "Unix timestamp of the last successful snapshot refresh",
	})

	m.commandsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "commands_total",
			Help:      "Total user commands processed by kind and result",
		},
		[]string{"kind", "result"},
	)

	m.commandQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_queue_depth",
		Help:      "Current depth of the command dispatch queue",
	})

	m.bannerShows = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "banner_shows_total",
			Help:      "Total feedback banner displays by kind",
		},
		[]string{"kind"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Package-level helpers operating on the global manager.

// RecordUpstreamRequest records one call to the remote service.
func RecordUpstreamRequest(operation, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordUpstreamLatency records the latency of a remote service call.
func RecordUpstreamLatency(operation string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordRefresh records one snapshot refresh cycle.
func RecordRefresh() {
	globalManager.refreshTotal.Inc()
}

// RecordRefreshFailure records a failed snapshot refresh cycle.
func RecordRefreshFailure() {
	globalManager.refreshFailures.Inc()
}

// UpdateSnapshot records the shape and recency of the current snapshot.
func UpdateSnapshot(activities, participants int, lastUnix int64) {
	globalManager.snapshotActivities.Set(float64(activities))
	globalManager.snapshotParticipants.Set(float64(participants))
	globalManager.snapshotLastUnix.Set(float64(lastUnix))
}

// RecordCommand records one processed user command.
func RecordCommand(kind, result string) {
	globalManager.commandsTotal.WithLabelValues(kind, result).Inc()
}

// UpdateCommandQueueDepth records the current dispatch queue depth.
func UpdateCommandQueueDepth(depth int) {
	globalManager.commandQueueDepth.Set(float64(depth))
}

// RecordBannerShow records one feedback banner display.
func RecordBannerShow(kind string) {
	globalManager.bannerShows.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records one gateway HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records the duration of a gateway HTTP request.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage records current allocated memory.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount records the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
