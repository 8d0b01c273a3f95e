package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts eligibility outcomes. A nil *Metrics records nothing.
type Metrics struct {
	evaluations *prometheus.CounterVec
	conflicts   prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "terralegit_eligibility_evaluations_total",
			Help: "Eligibility evaluations by outcome",
		}, []string{"eligible", "reason"}),
		conflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "terralegit_eligibility_conflicting_rules_total",
			Help: "Evaluations that hit a category both allowed and restricted",
		}),
	}
}

func (m *Metrics) observe(eligible bool, reason string) {
	if m == nil {
		return
	}
	label := "false"
	if eligible {
		label = "true"
	}
	m.evaluations.WithLabelValues(label, reason).Inc()
	if reason == "conflicting_rule" {
		m.conflicts.Inc()
	}
}
