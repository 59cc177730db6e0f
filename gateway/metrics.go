package gateway

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/travelstreams/metric"
)

// gatewayMetrics holds Prometheus metrics for the transport layer.
type gatewayMetrics struct {
	requests       *prometheus.CounterVec // By shape and status
	framesIn       *prometheus.CounterVec // By shape
	framesOut      *prometheus.CounterVec // By shape
	activeSessions *prometheus.GaugeVec   // By shape
	decodeFailures *prometheus.CounterVec // By shape
}

func newGatewayMetrics(registry *metric.MetricsRegistry) (*gatewayMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &gatewayMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of transport requests completed",
		}, []string{"shape", "status"}),

		framesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "gateway",
			Name:      "frames_in_total",
			Help:      "Total number of inbound stream frames",
		}, []string{"shape"}),

		framesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "gateway",
			Name:      "frames_out_total",
			Help:      "Total number of outbound stream frames",
		}, []string{"shape"}),

		activeSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "travelstreams",
			Subsystem: "gateway",
			Name:      "active_sessions",
			Help:      "Current number of open stream sessions",
		}, []string{"shape"}),

		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "gateway",
			Name:      "decode_failures_total",
			Help:      "Total number of undecodable inbound payloads",
		}, []string{"shape"}),
	}

	if err := registry.RegisterCounterVec("gateway", "requests", m.requests); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("gateway", "frames_in", m.framesIn); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("gateway", "frames_out", m.framesOut); err != nil {
		return nil, err
	}
	if err := registry.RegisterGaugeVec("gateway", "active_sessions", m.activeSessions); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("gateway", "decode_failures", m.decodeFailures); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *gatewayMetrics) recordRequest(shape, status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(shape, status).Inc()
}

func (m *gatewayMetrics) recordFrameIn(shape string) {
	if m == nil {
		return
	}
	m.framesIn.WithLabelValues(shape).Inc()
}

func (m *gatewayMetrics) recordFrameOut(shape string) {
	if m == nil {
		return
	}
	m.framesOut.WithLabelValues(shape).Inc()
}

func (m *gatewayMetrics) sessionOpened(shape string) {
	if m == nil {
		return
	}
	m.activeSessions.WithLabelValues(shape).Inc()
}

func (m *gatewayMetrics) sessionClosed(shape string) {
	if m == nil {
		return
	}
	m.activeSessions.WithLabelValues(shape).Dec()
}

func (m *gatewayMetrics) recordDecodeFailure(shape string) {
	if m == nil {
		return
	}
	m.decodeFailures.WithLabelValues(shape).Inc()
}
