// Package metrics provides Prometheus metrics for the matchday engine.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// defaultLatencyBuckets are milliseconds.
var defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000} //nolint:gochecknoglobals // static buckets

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Match simulation
	matchesStarted   prometheus.Counter
	matchesFinished  prometheus.Counter
	matchActive      prometheus.Gauge
	minutesAdvanced  prometheus.Counter
	eventsApplied    *prometheus.CounterVec
	phaseTransitions *prometheus.CounterVec
	objections       *prometheus.CounterVec
	disciplineSteps  *prometheus.CounterVec
	varReviews       *prometheus.CounterVec
	frameLatency     prometheus.Histogram
	invalidCommands  *prometheus.CounterVec

	// Handoff queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	handoffDuplicates  prometheus.Counter

	// Handoff workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	resultsStored           prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var (
	global   atomic.Pointer[Manager]             //nolint:gochecknoglobals // process-wide metrics manager
	registry atomic.Pointer[prometheus.Registry] //nolint:gochecknoglobals // keeps default Go collectors out
)

func init() { //nolint:gochecknoinits // recorders work before Setup is called
	Setup()
}

// Setup replaces the process-wide manager with one built from opts on a
// fresh registry. Call it once at startup, before serving /metrics.
func Setup(opts ...Option) *Manager {
	r := prometheus.NewRegistry()
	m := NewManager(append([]Option{WithPrometheusRegistry(r)}, opts...)...)
	registry.Store(r)
	global.Store(m)
	return m
}

func globalManager() *Manager { return global.Load() }

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchday",
		subsystem:        "engine",
		histogramBuckets: defaultLatencyBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.matchesStarted = m.counter("matches_started_total", "Total number of matches kicked off")
	m.matchesFinished = m.counter("matches_finished_total", "Total number of matches finalized and handed off")
	m.matchActive = m.gauge("match_active", "1 while a match simulation is mounted")
	m.minutesAdvanced = m.counter("minutes_advanced_total", "Total number of simulated match minutes")
	m.eventsApplied = m.counterVec("events_applied_total", "Match events appended to the log by type", "type")
	m.phaseTransitions = m.counterVec("phase_transitions_total", "Phase transitions by target phase", "phase")
	m.objections = m.counterVec("objections_total", "Manager objections by route taken", "route")
	m.disciplineSteps = m.counterVec("discipline_escalations_total", "Manager discipline escalations by new state", "state")
	m.varReviews = m.counterVec("var_reviews_total", "Resolved VAR reviews by trigger and outcome", "trigger", "outcome")
	m.frameLatency = m.histogram("frame_latency_milliseconds", "Positional frame computation time in milliseconds",
		[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10})
	m.invalidCommands = m.counterVec("invalid_commands_total", "Commands rejected as invalid transitions", "command")

	m.queueSize = m.gauge("handoff_queue_size", "Current number of results waiting for handoff")
	m.queueCapacity = m.gauge("handoff_queue_capacity", "Maximum handoff queue capacity")
	m.queueEnqueued = m.counter("handoff_queue_enqueue_total", "Total number of results enqueued for handoff")
	m.queueDequeued = m.counter("handoff_queue_dequeue_total", "Total number of results dequeued by workers")
	m.queueEnqueueErrors = m.counterVec("handoff_queue_enqueue_errors_total", "Handoff enqueue failures by reason", "reason")
	m.handoffDuplicates = m.counter("handoff_duplicates_total", "Finish requests ignored because the result was already handed off")

	m.workerCount = m.gauge("handoff_worker_count", "Number of handoff workers")
	m.workerProcessingLatency = m.histogram("handoff_processing_latency_milliseconds", "Time spent storing one result", m.histogramBuckets)
	m.workerErrors = m.counter("handoff_worker_errors_total", "Total number of failed result updates")
	m.resultsStored = m.counter("results_stored_total", "Total number of results accepted by the updater")

	m.httpRequests = promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordMatchStarted marks a kickoff and flips the active gauge.
func RecordMatchStarted() {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.matchesStarted.Inc()
	m.matchActive.Set(1)
}

// RecordMatchReleased clears the active gauge.
func RecordMatchReleased() {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.matchActive.Set(0)
}

// RecordMatchFinished counts a finalized match.
func RecordMatchFinished() {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.matchesFinished.Inc()
}

// RecordMinuteAdvanced counts one simulated minute.
func RecordMinuteAdvanced() {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.minutesAdvanced.Inc()
}

// RecordEventApplied counts an appended event of the given type.
func RecordEventApplied(eventType string) {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.eventsApplied.WithLabelValues(eventType).Inc()
}

// RecordPhaseTransition counts a transition into phase.
func RecordPhaseTransition(phase string) {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.phaseTransitions.WithLabelValues(phase).Inc()
}

// RecordObjection counts an objection by the route it took (review, discipline, ignored).
func RecordObjection(route string) {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.objections.WithLabelValues(route).Inc()
}

// RecordDisciplineEscalation counts a discipline step into state.
func RecordDisciplineEscalation(state string) {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.disciplineSteps.WithLabelValues(state).Inc()
}

// RecordVARReview counts a resolved review.
func RecordVARReview(trigger, outcome string) {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.varReviews.WithLabelValues(trigger, outcome).Inc()
}

// RecordFrameLatency observes one positional frame.
func RecordFrameLatency(latencyMs float64) {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.frameLatency.Observe(latencyMs)
}

// RecordInvalidCommand counts a rejected command.
func RecordInvalidCommand(command string) {
	m := globalManager()
	if !m.enabled.Load() {
		return
	}
	m.invalidCommands.WithLabelValues(command).Inc()
}

// UpdateQueueSize sets the current handoff queue size.
func UpdateQueueSize(size int) {
	globalManager().queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the handoff queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager().queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an enqueued result.
func RecordQueueEnqueue() {
	globalManager().queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeued result.
func RecordQueueDequeue() {
	globalManager().queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a failed enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager().queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordHandoffDuplicate counts a repeated finish for an already handed-off match.
func RecordHandoffDuplicate() {
	globalManager().handoffDuplicates.Inc()
}

// UpdateWorkerCount sets the number of handoff workers.
func UpdateWorkerCount(count int) {
	globalManager().workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes time spent on one result.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager().workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed result update.
func RecordWorkerError() {
	globalManager().workerErrors.Inc()
}

// RecordResultStored counts a result accepted by the updater.
func RecordResultStored() {
	globalManager().resultsStored.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager().systemGoroutineCount.Set(float64(count))
}

// RefreshInterval returns how often periodic gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager().refreshInterval
}

// SetEnabled toggles recording of simulation metrics.
func SetEnabled(enabled bool) {
	globalManager().enabled.Store(enabled)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return registry.Load()
}
