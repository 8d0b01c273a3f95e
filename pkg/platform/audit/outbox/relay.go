// Package outbox relays committed audit outbox rows to Kafka.
package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"terralegit/pkg/platform/audit/store/postgres"
	"terralegit/pkg/platform/tx"
)

// Source is the outbox table as seen by the relay.
type Source interface {
	FetchUnpublished(ctx context.Context, limit int) ([]postgres.OutboxRecord, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer publishes records synchronously. *kgo.Client satisfies it.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay polls the outbox and publishes each row to the audit topic. Rows are
// marked published in the same transaction that locked them, so a crash
// between produce and commit re-delivers (at-least-once).
type Relay struct {
	source    Source
	runner    tx.Runner
	producer  Producer
	topic     string
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
	metrics   *Metrics
}

// Option configures the Relay.
type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

// NewRelay creates a relay publishing to topic.
func NewRelay(source Source, runner tx.Runner, producer Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		source:    source,
		runner:    runner,
		producer:  producer,
		topic:     topic,
		batchSize: 100,
		interval:  time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. Publish failures are logged and retried
// on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for {
				n, err := r.RelayOnce(ctx)
				if err != nil {
					r.metrics.IncFailures()
					r.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
					break
				}
				if n < r.batchSize {
					break
				}
			}
		}
	}
}

// RelayOnce publishes at most one batch and returns how many rows it relayed.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var relayed int
	err := r.runner.RunInTx(ctx, func(ctx context.Context) error {
		records, err := r.source.FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		batch := make([]*kgo.Record, 0, len(records))
		ids := make([]uuid.UUID, 0, len(records))
		for _, rec := range records {
			batch = append(batch, &kgo.Record{
				Topic: r.topic,
				Key:   []byte(rec.AggregateType + ":" + rec.AggregateID),
				Value: rec.Payload,
				Headers: []kgo.RecordHeader{
					{Key: "event_type", Value: []byte(rec.EventType)},
					{Key: "outbox_id", Value: []byte(rec.ID.String())},
				},
				Timestamp: rec.CreatedAt,
			})
			ids = append(ids, rec.ID)
		}

		if err := r.producer.ProduceSync(ctx, batch...).FirstErr(); err != nil {
			return err
		}
		if err := r.source.MarkPublished(ctx, ids, time.Now()); err != nil {
			return err
		}
		relayed = len(records)
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.metrics.AddRelayed(relayed)
	return relayed, nil
}
