package lifecycle

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "terralegit/pkg/domain-errors"
)

var tracer = otel.Tracer("terralegit/lifecycle")

// StartTransition opens a span around one transition attempt. Call the
// returned func with the outcome.
func StartTransition(ctx context.Context, machine Machine, entityID, target string) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, string(machine)+".transition",
		trace.WithAttributes(
			attribute.String("lifecycle.machine", string(machine)),
			attribute.String("lifecycle.entity_id", entityID),
			attribute.String("lifecycle.target", target),
		),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
			if te, ok := AsTransitionError(err); ok {
				span.SetAttributes(
					attribute.String("lifecycle.from", te.From),
					attribute.String("lifecycle.guard", te.Guard),
				)
			}
		}
		span.End()
	}
}

// Metrics counts transitions across all machines. A nil *Metrics records
// nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
}

// NewMetrics creates and registers lifecycle metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "terralegit_lifecycle_transitions_total",
			Help: "Committed state transitions by machine and edge",
		}, []string{"machine", "from", "to"}),
		rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "terralegit_lifecycle_rejections_total",
			Help: "Rejected transition attempts by machine and error code",
		}, []string{"machine", "code"}),
	}
}

func (m *Metrics) IncTransition(machine Machine, from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(machine), from, to).Inc()
}

func (m *Metrics) IncRejection(machine Machine, err error) {
	if m == nil || err == nil {
		return
	}
	m.rejections.WithLabelValues(string(machine), string(dErrors.CodeOf(err))).Inc()
}
