package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the agent action collectors.
type Metrics struct {
	actions  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

// NewMetrics registers the action collectors with reg. A nil reg uses a
// fresh private registry.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movi",
			Subsystem: "agent",
			Name:      "actions_total",
			Help:      "Agent actions handled, by intent and outcome.",
		}, []string{"intent", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "movi",
			Subsystem: "agent",
			Name:      "action_duration_seconds",
			Help:      "Time spent handling agent actions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{m.actions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveAction records one handled action.
func (m *Metrics) ObserveAction(intent, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(intent, outcome).Inc()
	m.duration.WithLabelValues(intent).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
