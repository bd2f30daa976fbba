package bridge

import "github.com/prometheus/client_golang/prometheus"

// Metrics are shared by every messenger created with the same instance.
type Metrics struct {
	sent          *prometheus.CounterVec
	received      *prometheus.CounterVec
	pending       prometheus.Gauge
	handlerErrors prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "envelopes_sent_total",
			Help:      "Envelopes posted on the transport, by kind.",
		}, []string{"kind"}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "envelopes_received_total",
			Help:      "Envelopes received from the transport, by kind.",
		}, []string{"kind"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bridge",
			Name:      "pending_requests",
			Help:      "Requests waiting for a reply.",
		}),
		handlerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "handler_errors_total",
			Help:      "Handler invocations that produced an error reply.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.sent, m.received, m.pending, m.handlerErrors)
	}
	return m
}
