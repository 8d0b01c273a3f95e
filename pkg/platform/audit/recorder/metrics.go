package recorder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit recorder. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	recorded        *prometheus.CounterVec
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram
}

// NewMetrics creates and registers the audit recorder metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		recorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "terralegit_audit_entries_recorded_total",
			Help: "Audit entries appended, by entity type",
		}, []string{"entity_type"}),
		persistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "terralegit_audit_persist_failures_total",
			Help: "Audit writes that failed and aborted their transition",
		}),
		persistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "terralegit_audit_persist_duration_seconds",
			Help:    "Latency of synchronous audit writes",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}
}

func (m *Metrics) IncRecorded(entityType string) {
	if m == nil {
		return
	}
	m.recorded.WithLabelValues(entityType).Inc()
}

func (m *Metrics) IncPersistFailures() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) ObservePersistDuration(seconds float64) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(seconds)
}
