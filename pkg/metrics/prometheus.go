// Package metrics provides Prometheus metrics for the kudos scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Event intake
	eventsReceived  prometheus.Counter
	eventsDuplicate prometheus.Counter
	eventsMalformed prometheus.Counter
	eventsDropped   prometheus.Counter

	// Command pipeline
	commandsParsed prometheus.CounterVec
	selfTargets    prometheus.Counter
	quotaDenials   prometheus.Counter
	scoreApplies   prometheus.Counter
	eraResets      prometheus.Counter

	// Store health
	storeErrors  prometheus.Counter
	storeLatency prometheus.Histogram
	trackedItems prometheus.Gauge

	// Replies to the chat gateway
	repliesSent   prometheus.CounterVec
	replyFailures prometheus.Counter

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	handlerLatency     prometheus.Histogram

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace: "kudos",
		subsystem: "engine",
		registry:  prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_received_total",
		Help:      "Total number of chat events accepted for processing",
	})

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Total number of redelivered events suppressed by the dedupe guard",
	})

	m.eventsMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_malformed_total",
		Help:      "Total number of events rejected for missing required fields",
	})

	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_dropped_total",
		Help:      "Total number of events dropped due to queue backpressure",
	})

	m.commandsParsed = *auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commands_parsed_total",
		Help:      "Total number of point commands parsed, by operation",
	}, []string{"op"})

	m.selfTargets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "self_targets_total",
		Help:      "Total number of commands rejected for targeting their own actor",
	})

	m.quotaDenials = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quota_denials_total",
		Help:      "Total number of commands denied by the per-actor rate limit",
	})

	m.scoreApplies = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_applies_total",
		Help:      "Total number of score deltas committed to the store",
	})

	m.eraResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "era_resets_total",
		Help:      "Total number of administrative era resets",
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of score store failures",
	})

	m.storeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_ms",
		Help:      "Score store operation latency in milliseconds",
		Buckets:   prometheus.DefBuckets,
	})

	m.trackedItems = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_items",
		Help:      "Number of items with a score record",
	})

	m.repliesSent = *auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replies_sent_total",
		Help:      "Total number of replies handed to the chat gateway, by delivery",
	}, []string{"delivery"})

	m.replyFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reply_failures_total",
		Help:      "Total number of replies the chat gateway failed to deliver",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued events",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the event queue",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of rejected enqueue attempts",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of running event workers",
	})

	m.handlerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "handler_latency_ms",
		Help:      "End-to-end event handling latency in milliseconds",
		Buckets:   prometheus.DefBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Package-level helpers operating on the global manager.

func RecordEventReceived()  { globalManager.eventsReceived.Inc() }
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }
func RecordEventMalformed() { globalManager.eventsMalformed.Inc() }
func RecordEventDropped()   { globalManager.eventsDropped.Inc() }

func RecordCommandParsed(op string) { globalManager.commandsParsed.WithLabelValues(op).Inc() }
func RecordSelfTarget()             { globalManager.selfTargets.Inc() }
func RecordQuotaDenial()            { globalManager.quotaDenials.Inc() }
func RecordScoreApply()             { globalManager.scoreApplies.Inc() }
func RecordEraReset()               { globalManager.eraResets.Inc() }

func RecordStoreError() { globalManager.storeErrors.Inc() }
func RecordStoreLatency(latencyMs float64) {
	globalManager.storeLatency.Observe(latencyMs)
}
func UpdateTrackedItems(count int) { globalManager.trackedItems.Set(float64(count)) }

func RecordReplySent(delivery string) { globalManager.repliesSent.WithLabelValues(delivery).Inc() }
func RecordReplyFailure()             { globalManager.replyFailures.Inc() }

func UpdateQueueSize(size int)         { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }
func RecordQueueEnqueueError()         { globalManager.queueEnqueueErrors.Inc() }
func UpdateWorkerCount(count int)      { globalManager.workerCount.Set(float64(count)) }
func RecordHandlerLatency(latencyMs float64) {
	globalManager.handlerLatency.Observe(latencyMs)
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
