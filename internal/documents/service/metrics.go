package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts readiness evaluations. A nil *Metrics records nothing.
type Metrics struct {
	readiness *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		readiness: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "terralegit_document_readiness_evaluations_total",
			Help: "Readiness evaluations by owner kind and outcome",
		}, []string{"owner_kind", "ready"}),
	}
}

func (m *Metrics) observeReadiness(ownerKind string, ready bool) {
	if m == nil {
		return
	}
	m.readiness.WithLabelValues(ownerKind, strconv.FormatBool(ready)).Inc()
}
