package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not domain-specific)
type Metrics struct {
	// Call metrics
	ServiceStatus  *prometheus.GaugeVec
	CallsStarted   *prometheus.CounterVec
	CallsCompleted *prometheus.CounterVec
	ActiveCalls    *prometheus.GaugeVec
	StreamMessages *prometheus.CounterVec
	CallDuration   *prometheus.HistogramVec
	ErrorsTotal    *prometheus.CounterVec

	// Health metrics
	HealthCheckStatus *prometheus.GaugeVec

	// NATS metrics
	NATSConnected  prometheus.Gauge
	NATSRTT        prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "travelstreams",
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"service"},
		),

		CallsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "travelstreams",
				Subsystem: "calls",
				Name:      "started_total",
				Help:      "Total number of calls started",
			},
			[]string{"service", "shape"},
		),

		CallsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "travelstreams",
				Subsystem: "calls",
				Name:      "completed_total",
				Help:      "Total number of calls completed",
			},
			[]string{"service", "shape", "status"},
		),

		ActiveCalls: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "travelstreams",
				Subsystem: "calls",
				Name:      "active",
				Help:      "Number of calls currently in flight",
			},
			[]string{"service", "shape"},
		),

		StreamMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "travelstreams",
				Subsystem: "stream",
				Name:      "messages_total",
				Help:      "Total number of stream messages moved",
			},
			[]string{"service", "shape", "direction"},
		),

		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "travelstreams",
				Subsystem: "calls",
				Name:      "duration_seconds",
				Help:      "Call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "shape"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "travelstreams",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"service", "class"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "travelstreams",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"service"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "travelstreams",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSRTT: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "travelstreams",
				Subsystem: "nats",
				Name:      "rtt_milliseconds",
				Help:      "NATS round-trip time in milliseconds",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "travelstreams",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),
	}
}

// RecordServiceStatus updates service status metric
func (c *Metrics) RecordServiceStatus(service string, status int) {
	c.ServiceStatus.WithLabelValues(service).Set(float64(status))
}

// RecordCallStarted increments the started counter and active gauge
func (c *Metrics) RecordCallStarted(service, shape string) {
	c.CallsStarted.WithLabelValues(service, shape).Inc()
	c.ActiveCalls.WithLabelValues(service, shape).Inc()
}

// RecordCallCompleted increments the completed counter and releases the
// active gauge slot.
func (c *Metrics) RecordCallCompleted(service, shape, status string) {
	c.CallsCompleted.WithLabelValues(service, shape, status).Inc()
	c.ActiveCalls.WithLabelValues(service, shape).Dec()
}

// RecordStreamMessage counts one message moved on a stream. Direction
// is "in" or "out".
func (c *Metrics) RecordStreamMessage(service, shape, direction string) {
	c.StreamMessages.WithLabelValues(service, shape, direction).Inc()
}

// RecordCallDuration records end-to-end call time
func (c *Metrics) RecordCallDuration(service, shape string, duration time.Duration) {
	c.CallDuration.WithLabelValues(service, shape).Observe(duration.Seconds())
}

// RecordError increments error counter by error class
func (c *Metrics) RecordError(service, class string) {
	c.ErrorsTotal.WithLabelValues(service, class).Inc()
}

// RecordHealthStatus updates health check status
func (c *Metrics) RecordHealthStatus(service string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthCheckStatus.WithLabelValues(service).Set(value)
}

// RecordNATSStatus updates NATS connection status
func (c *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.NATSConnected.Set(value)
}

// RecordNATSRTT updates NATS round-trip time
func (c *Metrics) RecordNATSRTT(rtt time.Duration) {
	c.NATSRTT.Set(float64(rtt.Milliseconds()))
}

// RecordNATSReconnect increments reconnection counter
func (c *Metrics) RecordNATSReconnect() {
	c.NATSReconnects.Inc()
}
