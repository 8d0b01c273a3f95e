// Package recorder provides the fail-closed audit recorder used by every
// lifecycle transition and privileged action.
//
// Record writes synchronously through the audit store inside the caller's unit
// of work. If the write fails an error is returned and the calling operation
// MUST fail: no transition is durable without its audit entry.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/requestcontext"
)

// Recorder appends audit entries with fail-closed semantics.
type Recorder struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// New creates a recorder. The store must be outbox-backed (or journal-backed in
// memory) so entries commit with the state change.
func New(store audit.Store, opts ...Option) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one entry for actor acting on (entityType, entityID).
// It fails only when the store is unavailable; the error carries
// CodeStorageUnavailable.
func (r *Recorder) Record(ctx context.Context, actor id.Actor, action audit.Action, entityType audit.EntityType, entityID string, details map[string]any) (audit.Entry, error) {
	start := time.Now()

	if action == "" || entityType == "" || entityID == "" {
		return audit.Entry{}, dErrors.New(dErrors.CodeInvariantViolation, "audit entry requires action and entity")
	}

	entry := audit.Entry{
		ID:         id.AuditLogID(uuid.New()),
		ActorID:    actor.AuditID(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		RequestID:  requestcontext.RequestID(ctx),
		Timestamp:  requestcontext.Now(ctx),
	}

	if err := r.store.Append(ctx, entry); err != nil {
		r.metrics.IncPersistFailures()
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "CRITICAL: audit write failed",
				"action", action,
				"entity_type", entityType,
				"entity_id", entityID,
				"actor_id", entry.ActorID,
				"error", err,
			)
		}
		return audit.Entry{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "audit persistence failed")
	}

	r.metrics.ObservePersistDuration(time.Since(start).Seconds())
	r.metrics.IncRecorded(string(entityType))
	return entry, nil
}
