// Package metrics provides Prometheus metrics for the scout service.
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

// Manager manages all Prometheus metrics for the scout service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core pipeline metrics
	recordsIngested   prometheus.Counter
	recordsDuplicate  prometheus.Counter
	normalizeLatency  prometheus.Histogram
	rosterUpdates     prometheus.Counter
	dataQualityIssues *prometheus.CounterVec
	repairs           *prometheus.CounterVec

	// Operational health
	queueSize    prometheus.Gauge
	workerCount  prometheus.Gauge
	totalPlayers prometheus.Gauge

	// Snapshot Metrics - Repository snapshot timings
	repositorySnapshotRebuildDuration prometheus.Histogram
	repositorySnapshotLastUnix        prometheus.Gauge
	repositorySnapshotCount           prometheus.Counter
	repositorySnapshotLastDurationMs  prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Upstream collaborator
	upstreamFetches      *prometheus.CounterVec
	upstreamFetchLatency prometheus.Histogram
	upstreamRetries      prometheus.Counter
	upstreamBreakerState prometheus.Gauge

	// Selection cache
	selectionStale *prometheus.CounterVec

	// Archive
	archiveWrites *prometheus.CounterVec

	// Queue Metrics - Message queue performance
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics - Processing performance
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

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
		namespace:        "scout",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// A disabled manager still builds its collectors so recording stays
	// nil-safe, but against a registry nobody gathers.
	if !m.enabled {
		m.registry = prometheus.NewRegistry()
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often callers should refresh gauge metrics.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) name(n string) string { return m.metricPrefix + n }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Core pipeline
	m.recordsIngested = m.counter("records_ingested_total", "Total number of raw player records normalized and stored")
	m.recordsDuplicate = m.counter("records_duplicate_total", "Total number of unchanged records skipped at ingest")
	m.normalizeLatency = m.histogram("normalize_latency_milliseconds", "Histogram of record normalization latency in milliseconds", m.histogramBuckets)
	m.rosterUpdates = m.counter("roster_updates_total", "Total number of roster upserts")
	m.dataQualityIssues = m.counterVec("data_quality_issues_total", "Data-quality warnings attached to normalized records", "kind")
	m.repairs = m.counterVec("repairs_total", "Invariant repairs applied during normalization", "kind")

	// Operational health
	m.queueSize = m.gauge("queue_size", "Current size of the ingest queue (backlog indicator)")
	m.workerCount = m.gauge("worker_count", "Current number of normalizer workers")
	m.totalPlayers = m.gauge("total_players", "Total number of players in the roster")

	// HTTP
	m.httpRequests = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Upstream
	m.upstreamFetches = m.counterVec("upstream_fetches_total", "Upstream fetch attempts by source and outcome", "source", "outcome")
	m.upstreamFetchLatency = m.histogram("upstream_fetch_latency_milliseconds", "Latency of a full upstream fetch in milliseconds", m.histogramBuckets)
	m.upstreamRetries = m.counter("upstream_retries_total", "Total number of retried upstream page requests")
	m.upstreamBreakerState = m.gauge("upstream_breaker_state", "Upstream circuit breaker state (0 closed, 1 half-open, 2 open)")

	// Selection
	m.selectionStale = m.counterVec("selection_stale_total", "Cached comparison entries found stale on read", "reason")

	// Archive
	m.archiveWrites = m.counterVec("archive_writes_total", "Raw record archive writes by outcome", "outcome")

	// Snapshot
	m.repositorySnapshotRebuildDuration = m.histogram("repository_snapshot_rebuild_duration_milliseconds", "Repository snapshot rebuild duration in milliseconds", m.histogramBuckets)
	m.repositorySnapshotLastUnix = m.gauge("repository_snapshot_last_unix", "Unix timestamp of the last repository snapshot publish")
	m.repositorySnapshotCount = m.counter("repository_snapshot_count_total", "Total number of repository snapshots published")
	m.repositorySnapshotLastDurationMs = m.gauge("repository_snapshot_last_duration_milliseconds", "Last repository snapshot rebuild duration in milliseconds")

	// Queue
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Queue processing latency in milliseconds", m.histogramBuckets)

	// Worker
	m.workerActiveCount = m.gauge("worker_active_count", "Number of active workers")
	m.workerIdleCount = m.gauge("worker_idle_count", "Number of idle workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of worker errors")

	// Errors
	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")

	// System
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordIngested increments the ingested records counter.
func RecordIngested() {
	globalManager.recordsIngested.Inc()
}

// RecordDuplicate increments the duplicate records counter.
func RecordDuplicate() {
	globalManager.recordsDuplicate.Inc()
}

// RecordNormalizeLatency records normalization latency in milliseconds.
func RecordNormalizeLatency(latencyMs float64) {
	globalManager.normalizeLatency.Observe(latencyMs)
}

// RecordRosterUpdate increments the roster updates counter.
func RecordRosterUpdate() {
	globalManager.rosterUpdates.Inc()
}

// RecordDataQualityIssue counts a data-quality warning by kind.
func RecordDataQualityIssue(kind string) {
	globalManager.dataQualityIssues.WithLabelValues(kind).Inc()
}

// RecordRepair counts an invariant repair by kind.
func RecordRepair(kind string) {
	globalManager.repairs.WithLabelValues(kind).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateTotalPlayers sets the roster size.
func UpdateTotalPlayers(count int) {
	globalManager.totalPlayers.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Upstream Metrics Functions.

// RecordUpstreamFetch counts a fetch by source ("http", "file") and outcome.
func RecordUpstreamFetch(source, outcome string) {
	globalManager.upstreamFetches.WithLabelValues(source, outcome).Inc()
}

// RecordUpstreamFetchLatency records the latency of a complete fetch.
func RecordUpstreamFetchLatency(latencyMs float64) {
	globalManager.upstreamFetchLatency.Observe(latencyMs)
}

// RecordUpstreamRetry increments the upstream retry counter.
func RecordUpstreamRetry() {
	globalManager.upstreamRetries.Inc()
}

// UpdateUpstreamBreakerState sets the breaker state gauge.
func UpdateUpstreamBreakerState(state int) {
	globalManager.upstreamBreakerState.Set(float64(state))
}

// RecordSelectionStale counts a stale cached comparison entry.
func RecordSelectionStale(reason string) {
	globalManager.selectionStale.WithLabelValues(reason).Inc()
}

// RecordArchiveWrite counts an archive write by outcome.
func RecordArchiveWrite(outcome string) {
	globalManager.archiveWrites.WithLabelValues(outcome).Inc()
}

// Snapshot Metrics Functions.

// RecordRepositorySnapshot records one snapshot rebuild.
func RecordRepositorySnapshot(duration time.Duration) {
	ms := float64(duration.Microseconds()) / 1000
	globalManager.repositorySnapshotRebuildDuration.Observe(ms)
	globalManager.repositorySnapshotLastDurationMs.Set(ms)
	globalManager.repositorySnapshotLastUnix.Set(float64(time.Now().Unix()))
	globalManager.repositorySnapshotCount.Inc()
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
