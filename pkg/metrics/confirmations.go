package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConfirmationMetrics records supplier confirmation task outcomes.
type ConfirmationMetrics struct {
	outcomes *prometheus.CounterVec
	inflight prometheus.Gauge
}

func NewConfirmationMetrics(reg prometheus.Registerer) *ConfirmationMetrics {
	if reg == nil {
		return &ConfirmationMetrics{}
	}
	m := &ConfirmationMetrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_confirmation_tasks_total",
			Help: "Supplier confirmation tasks by final outcome.",
		}, []string{"outcome"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_confirmation_tasks_inflight",
			Help: "Queued or running supplier confirmation tasks.",
		}),
	}
	reg.MustRegister(m.outcomes, m.inflight)
	return m
}

func (m *ConfirmationMetrics) IncOutcome(outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(labelOrUnknown(outcome)).Inc()
}

func (m *ConfirmationMetrics) AddInflight(delta float64) {
	if m == nil || m.inflight == nil {
		return
	}
	m.inflight.Add(delta)
}
