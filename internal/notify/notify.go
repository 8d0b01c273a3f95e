// Package notify delivers informational lifecycle notifications. Delivery
// is fire-and-forget: failures are logged and never reach the caller.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Event is one notification.
type Event struct {
	Kind       string            `json:"kind"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Recipient  string            `json:"recipient,omitempty"`
	Message    string            `json:"message"`
	Data       map[string]string `json:"data,omitempty"`
	At         time.Time         `json:"at"`
}

// Sink receives notifications. Notify must not block on delivery.
type Sink interface {
	Notify(ctx context.Context, e Event)
}

// LogSink writes notifications to a logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, e Event) {
	s.logger.InfoContext(ctx, "notification",
		"kind", e.Kind,
		"entity_type", e.EntityType,
		"entity_id", e.EntityID,
		"recipient", e.Recipient,
		"message", e.Message,
	)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, Event) {}

// Multi fans an event out to several sinks.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, e Event) {
	for _, s := range m {
		s.Notify(ctx, e)
	}
}
