package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks realtime connections and fan-out.
type Metrics struct {
	Connections *prometheus.GaugeVec
	Published   *prometheus.CounterVec
	Dropped     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Connections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "votegate_realtime_connections",
			Help: "Open realtime connections, by role",
		}, []string{"role"}),
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_realtime_events_published_total",
			Help: "Events broadcast to rooms, by event type",
		}, []string{"type"}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "votegate_realtime_events_dropped_total",
			Help: "Events dropped because a connection's queue was full",
		}),
	}
}

func (m *Metrics) Connected(role string) {
	if m != nil {
		m.Connections.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) Disconnected(role string) {
	if m != nil {
		m.Connections.WithLabelValues(role).Dec()
	}
}

func (m *Metrics) IncPublished(eventType string) {
	if m != nil {
		m.Published.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) IncDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}
