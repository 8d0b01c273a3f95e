package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "terralegit/pkg/domain"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/pgerr"
	txcontext "terralegit/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Each Append writes the audit_logs row and an outbox row through the SQL
// transaction carried by ctx, so both commit with the state change. The
// outbox relay publishes outbox rows to Kafka afterwards.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// OutboxPayload is the JSON structure published to Kafka.
type OutboxPayload struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Timestamp  string         `json:"timestamp"`
}

// Append writes the audit entry and its outbox row.
func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	payload, err := json.Marshal(OutboxPayload{
		ID:         entry.ID.String(),
		ActorID:    entry.ActorID,
		Action:     string(entry.Action),
		EntityType: string(entry.EntityType),
		EntityID:   entry.EntityID,
		Details:    entry.Details,
		RequestID:  entry.RequestID,
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	exec := s.execer(ctx)
	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, details, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		entry.ID.UUID(),
		entry.ActorID,
		string(entry.Action),
		string(entry.EntityType),
		entry.EntityID,
		details,
		entry.RequestID,
		entry.Timestamp,
	)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("insert audit log: %w", err))
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.New(),
		string(entry.EntityType),
		entry.EntityID,
		string(entry.Action),
		payload,
		entry.Timestamp,
	)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("insert outbox entry: %w", err))
	}
	return nil
}

// ListByEntity returns the entity's entries oldest first.
func (s *Store) ListByEntity(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, action, entity_type, entity_id, details, request_id, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at ASC, id ASC
	`, string(entityType), entityID)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("query audit logs: %w", err))
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListRecent returns the N most recent entries.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, action, entity_type, entity_id, details, request_id, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("query audit logs: %w", err))
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]audit.Entry, error) {
	var entries []audit.Entry
	for rows.Next() {
		var (
			entry      audit.Entry
			entryID    uuid.UUID
			action     string
			entityType string
			details    []byte
		)
		if err := rows.Scan(&entryID, &entry.ActorID, &action, &entityType, &entry.EntityID, &details, &entry.RequestID, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entry.ID = id.AuditLogID(entryID)
		entry.Action = audit.Action(action)
		entry.EntityType = audit.EntityType(entityType)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return entries, nil
}

// OutboxRecord is one unpublished outbox row.
type OutboxRecord struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// FetchUnpublished locks up to limit unpublished rows for the calling
// transaction. Concurrent relays skip rows another relay holds.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error) {
	tx, ok := txcontext.From(ctx)
	if !ok {
		return nil, errors.New("fetch unpublished requires a transaction")
	}
	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("query outbox: %w", err))
	}
	defer rows.Close()

	var records []OutboxRecord
	for rows.Next() {
		var r OutboxRecord
		if err := rows.Scan(&r.ID, &r.AggregateType, &r.AggregateID, &r.EventType, &r.Payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return records, nil
}

// MarkPublished stamps the given outbox rows as delivered.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, u := range ids {
		keys[i] = u.String()
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE outbox SET published_at = $1 WHERE id = ANY($2::uuid[])
	`, at, pq.Array(keys))
	if err != nil {
		return pgerr.Translate(fmt.Errorf("mark outbox published: %w", err))
	}
	return nil
}
