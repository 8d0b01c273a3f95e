package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"terralegit/internal/eligibility/models"
	"terralegit/pkg/platform/pgerr"
	txcontext "terralegit/pkg/platform/tx"
)

// Postgres persists country rules. Category and document sets are JSONB
// arrays.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Upsert(ctx context.Context, rule *models.CountryRule) error {
	allowed, err := json.Marshal(orEmpty(rule.Allowed))
	if err != nil {
		return fmt.Errorf("marshal allowed: %w", err)
	}
	restricted, err := json.Marshal(orEmpty(rule.Restricted))
	if err != nil {
		return fmt.Errorf("marshal restricted: %w", err)
	}
	docs, err := json.Marshal(orEmpty(rule.RequiredDocs))
	if err != nil {
		return fmt.Errorf("marshal required docs: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO country_rules (country_code, name, allowed, restricted, required_docs, special_notes, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (country_code) DO UPDATE SET
			name = EXCLUDED.name,
			allowed = EXCLUDED.allowed,
			restricted = EXCLUDED.restricted,
			required_docs = EXCLUDED.required_docs,
			special_notes = EXCLUDED.special_notes,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`, rule.CountryCode, rule.Name, allowed, restricted, docs, rule.SpecialNotes, rule.IsActive, rule.UpdatedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("upsert country rule: %w", err))
	}
	return nil
}

const ruleColumns = `country_code, name, allowed, restricted, required_docs, special_notes, is_active, updated_at`

func (s *Postgres) Find(ctx context.Context, countryCode string) (*models.CountryRule, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM country_rules WHERE country_code = $1`, countryCode)
	r, err := scanRule(row)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find country rule: %w", err))
	}
	return r, nil
}

func (s *Postgres) List(ctx context.Context, activeOnly bool) ([]*models.CountryRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM country_rules`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY country_code`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("list country rules: %w", err))
	}
	defer rows.Close()

	var out []*models.CountryRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan country rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(row scanner) (*models.CountryRule, error) {
	var (
		r                         models.CountryRule
		allowed, restricted, docs []byte
	)
	if err := row.Scan(&r.CountryCode, &r.Name, &allowed, &restricted, &docs, &r.SpecialNotes, &r.IsActive, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(allowed, &r.Allowed); err != nil {
		return nil, fmt.Errorf("decode allowed: %w", err)
	}
	if err := json.Unmarshal(restricted, &r.Restricted); err != nil {
		return nil, fmt.Errorf("decode restricted: %w", err)
	}
	if err := json.Unmarshal(docs, &r.RequiredDocs); err != nil {
		return nil, fmt.Errorf("decode required docs: %w", err)
	}
	return &r, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
