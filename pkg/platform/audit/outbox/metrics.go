package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks relay throughput. A nil *Metrics records nothing.
type Metrics struct {
	relayed  prometheus.Counter
	failures prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		relayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "terralegit_audit_outbox_relayed_total",
			Help: "Outbox rows published to Kafka",
		}),
		failures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "terralegit_audit_outbox_relay_failures_total",
			Help: "Relay batches that failed and will be retried",
		}),
	}
}

func (m *Metrics) AddRelayed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.relayed.Add(float64(n))
}

func (m *Metrics) IncFailures() {
	if m == nil {
		return
	}
	m.failures.Inc()
}
