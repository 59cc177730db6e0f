package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/travelstreams/metric"
)

// engineMetrics holds Prometheus metrics for the call engines.
type engineMetrics struct {
	// Call lifecycle
	callsStarted   *prometheus.CounterVec // By shape
	callsCompleted *prometheus.CounterVec // By shape and status
	callDuration   *prometheus.HistogramVec
	activeCalls    *prometheus.GaugeVec

	// Per-shape domain metrics
	queryMatches    prometheus.Histogram
	queryDuration   prometheus.Histogram
	timelineUpdates *prometheus.CounterVec // By flight
	cartItems       *prometheus.CounterVec // By kind
	chatMessages    *prometheus.CounterVec // By topic and outcome
}

// newEngineMetrics creates and registers engine metrics with the provided registry.
func newEngineMetrics(registry *metric.MetricsRegistry) (*engineMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &engineMetrics{
		callsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "engine",
			Name:      "calls_started_total",
			Help:      "Total number of calls started",
		}, []string{"shape"}),

		callsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "engine",
			Name:      "calls_completed_total",
			Help:      "Total number of calls completed",
		}, []string{"shape", "status"}), // status: ok, invalid, aborted, unavailable

		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "travelstreams",
			Subsystem: "engine",
			Name:      "call_duration_seconds",
			Help:      "End-to-end call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}, []string{"shape"}),

		activeCalls: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "travelstreams",
			Subsystem: "engine",
			Name:      "active_calls",
			Help:      "Current number of calls in flight",
		}, []string{"shape"}),

		queryMatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "travelstreams",
			Subsystem: "engine",
			Name:      "query_matches",
			Help:      "Number of flights matched per query",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}),

		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "travelstreams",
			Subsystem: "engine",
			Name:      "query_duration_seconds",
			Help:      "Query processing duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1.0, 2.0, 5.0},
		}),

		timelineUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "engine",
			Name:      "timeline_updates_total",
			Help:      "Total number of monitoring updates emitted",
		}, []string{"flight"}),

		cartItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "engine",
			Name:      "cart_items_total",
			Help:      "Total number of cart items received",
		}, []string{"kind"}),

		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "engine",
			Name:      "chat_messages_total",
			Help:      "Total number of chat messages classified",
		}, []string{"topic", "outcome"}), // outcome: replied, passed
	}

	// Register all metrics
	if err := registry.RegisterCounterVec("engine", "calls_started", m.callsStarted); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("engine", "calls_completed", m.callsCompleted); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("engine", "call_duration", m.callDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterGaugeVec("engine", "active_calls", m.activeCalls); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram("engine", "query_matches", m.queryMatches); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram("engine", "query_duration", m.queryDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("engine", "timeline_updates", m.timelineUpdates); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("engine", "cart_items", m.cartItems); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("engine", "chat_messages", m.chatMessages); err != nil {
		return nil, err
	}

	return m, nil
}

// recordCallStarted records one call entering the supervisor.
func (m *engineMetrics) recordCallStarted(shape string) {
	if m == nil {
		return
	}
	m.callsStarted.WithLabelValues(shape).Inc()
	m.activeCalls.WithLabelValues(shape).Inc()
}

// recordCallCompleted records call completion and releases the gauge slot.
func (m *engineMetrics) recordCallCompleted(shape, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.callsCompleted.WithLabelValues(shape, status).Inc()
	m.callDuration.WithLabelValues(shape).Observe(duration.Seconds())
	m.activeCalls.WithLabelValues(shape).Dec()
}

// recordQuery records the result size and duration of one query.
func (m *engineMetrics) recordQuery(matched int, duration time.Duration) {
	if m == nil {
		return
	}
	m.queryMatches.Observe(float64(matched))
	m.queryDuration.Observe(duration.Seconds())
}

// recordTimelineUpdate records one emitted monitoring update.
func (m *engineMetrics) recordTimelineUpdate(flight string) {
	if m == nil {
		return
	}
	m.timelineUpdates.WithLabelValues(flight).Inc()
}

// recordCartItem records one received cart item.
func (m *engineMetrics) recordCartItem(kind string) {
	if m == nil {
		return
	}
	m.cartItems.WithLabelValues(kind).Inc()
}

// recordChatMessage records one classified chat message.
func (m *engineMetrics) recordChatMessage(topic string, replied bool) {
	if m == nil {
		return
	}
	outcome := "replied"
	if !replied {
		outcome = "passed"
	}
	m.chatMessages.WithLabelValues(topic, outcome).Inc()
}
