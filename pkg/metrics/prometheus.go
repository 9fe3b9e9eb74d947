// Package metrics provides Prometheus metrics for the raspa scratch-card service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the raspa service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - eligibility and reveal flow
	resolutions     *prometheus.CounterVec
	reveals         prometheus.Counter
	prizeDraws      prometheus.Counter
	catalogFallback prometheus.Counter
	sharedIPFlags   prometheus.Counter

	// Ledger Metrics - remote store interactions
	ledgerFetches      prometheus.Counter
	ledgerFetchErrors  prometheus.Counter
	ledgerFallbacks    prometheus.Counter
	ledgerDuplicates   prometheus.Counter
	ledgerFetchLatency prometheus.Histogram

	// Push Metrics - fire-and-forget upsert pipeline
	pushAttempts  prometheus.Counter
	pushRetries   prometheus.Counter
	pushFailures  prometheus.Counter
	pushSuccesses prometheus.Counter

	// Cache Metrics - local durable state
	cacheReadErrors prometheus.Counter
	cacheWrites     prometheus.Counter

	// Queue Metrics - push queue health
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Operational Health Metrics
	workerCount    prometheus.Gauge
	activeSessions prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics
	errorsByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "raspa",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
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
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.resolutions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "resolutions_total",
			Help:      "Total number of eligibility resolutions by outcome (fresh, resume, blocked)",
		},
		[]string{"outcome"},
	)

	m.reveals = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reveals_total",
		Help:      "Total number of scratch reveals completed",
	})

	m.prizeDraws = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prize_draws_total",
		Help:      "Total number of prizes drawn for fresh games",
	})

	m.catalogFallback = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prize_catalog_fallback_total",
		Help:      "Total number of draws that fell back to the default prize (empty catalog)",
	})

	m.sharedIPFlags = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shared_ip_flags_total",
		Help:      "Total number of logins flagged for sharing an IP with another scratched record",
	})

	// Ledger Metrics
	m.ledgerFetches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_fetches_total",
		Help:      "Total number of remote ledger fetches attempted",
	})

	m.ledgerFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_fetch_errors_total",
		Help:      "Total number of failed remote ledger fetches",
	})

	m.ledgerFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_fallbacks_total",
		Help:      "Total number of resolutions that fell open to cache-only evaluation",
	})

	m.ledgerDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_duplicate_rows_total",
		Help:      "Total number of duplicate remote rows collapsed by the tie-break rule",
	})

	m.ledgerFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_fetch_latency_milliseconds",
		Help:      "Histogram of remote ledger fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Push Metrics
	m.pushAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_attempts_total",
		Help:      "Total number of record upserts attempted against the remote ledger",
	})

	m.pushRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_retries_total",
		Help:      "Total number of upsert retries",
	})

	m.pushFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_failures_total",
		Help:      "Total number of upserts that exhausted retries",
	})

	m.pushSuccesses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_successes_total",
		Help:      "Total number of upserts acknowledged by the remote ledger",
	})

	// Cache Metrics
	m.cacheReadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_read_errors_total",
		Help:      "Total number of malformed local state reads degraded to empty",
	})

	m.cacheWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_writes_total",
		Help:      "Total number of local cache writes",
	})

	// Queue Metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_queue_size",
		Help:      "Current size of the push queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_queue_capacity",
		Help:      "Configured capacity of the push queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_queue_utilization_ratio",
		Help:      "Push queue utilization ratio (size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_queue_enqueues_total",
		Help:      "Total number of records enqueued for push",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_queue_dequeues_total",
		Help:      "Total number of records dequeued by push workers",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_queue_enqueue_errors_total",
		Help:      "Total number of enqueue failures (closed or full queue)",
	})

	// Operational Health Metrics
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "push_worker_count",
		Help:      "Current number of push workers",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Current number of logged-in sessions",
	})

	// HTTP Performance Metrics
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

	// Enhanced Error Metrics
	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and reason",
		},
		[]string{"component", "reason"},
	)

	// System Performance Metrics
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

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Histogram of GC pause times in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Business metrics.

// RecordResolution increments the resolution counter for an outcome.
func RecordResolution(outcome string) { globalManager.resolutions.WithLabelValues(outcome).Inc() }

// RecordReveal increments the reveal counter.
func RecordReveal() { globalManager.reveals.Inc() }

// RecordPrizeDraw increments the prize draw counter.
func RecordPrizeDraw() { globalManager.prizeDraws.Inc() }

// RecordCatalogFallback increments the default-prize fallback counter.
func RecordCatalogFallback() { globalManager.catalogFallback.Inc() }

// RecordSharedIPFlag increments the shared-IP advisory counter.
func RecordSharedIPFlag() { globalManager.sharedIPFlags.Inc() }

// Ledger metrics.

// RecordLedgerFetch increments the ledger fetch counter.
func RecordLedgerFetch() { globalManager.ledgerFetches.Inc() }

// RecordLedgerFetchError increments the ledger fetch error counter.
func RecordLedgerFetchError() { globalManager.ledgerFetchErrors.Inc() }

// RecordLedgerFallback increments the fail-open fallback counter.
func RecordLedgerFallback() { globalManager.ledgerFallbacks.Inc() }

// RecordLedgerDuplicateRows adds collapsed duplicate rows to the counter.
func RecordLedgerDuplicateRows(n int) { globalManager.ledgerDuplicates.Add(float64(n)) }

// RecordLedgerFetchLatency records a fetch latency observation in milliseconds.
func RecordLedgerFetchLatency(ms float64) { globalManager.ledgerFetchLatency.Observe(ms) }

// Push metrics.

// RecordPushAttempt increments the push attempt counter.
func RecordPushAttempt() { globalManager.pushAttempts.Inc() }

// RecordPushRetry increments the push retry counter.
func RecordPushRetry() { globalManager.pushRetries.Inc() }

// RecordPushFailure increments the push failure counter.
func RecordPushFailure() { globalManager.pushFailures.Inc() }

// RecordPushSuccess increments the push success counter.
func RecordPushSuccess() { globalManager.pushSuccesses.Inc() }

// Cache metrics.

// RecordCacheReadError increments the malformed local state counter.
func RecordCacheReadError() { globalManager.cacheReadErrors.Inc() }

// RecordCacheWrite increments the cache write counter.
func RecordCacheWrite() { globalManager.cacheWrites.Inc() }

// Queue metrics.

// UpdateQueueSize sets the current queue size gauge.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization gauge.
func UpdateQueueUtilization(ratio float64) { globalManager.queueUtilization.Set(ratio) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueues.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeues.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// Operational metrics.

// UpdateWorkerCount sets the push worker count gauge.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateActiveSessions sets the active session gauge.
func UpdateActiveSessions(count int) { globalManager.activeSessions.Set(float64(count)) }

// HTTP metrics.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// Error metrics.

// RecordErrorByComponent increments the per-component error counter.
func RecordErrorByComponent(component, reason string) {
	globalManager.errorsByComponent.WithLabelValues(component, reason).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the allocated memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records a GC pause observation in milliseconds.
func RecordSystemGCPauseTime(ms float64) { globalManager.systemGCPauseTime.Observe(ms) }
