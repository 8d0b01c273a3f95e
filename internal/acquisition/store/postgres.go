package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"terralegit/internal/acquisition/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/pgerr"
	txcontext "terralegit/pkg/platform/tx"
)

// Postgres persists cases. The partial unique index on (buyer_id,
// listing_id) backs the one-active-case rule.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, c *models.Case) error {
	docs, err := json.Marshal(orEmpty(c.RequiredDocs))
	if err != nil {
		return fmt.Errorf("marshal required docs: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO acquisition_cases (id, buyer_id, listing_id, destination_country, compliance_state, payment_state,
			required_docs, rejection_reason, notes, withdrawn_at, funds_released_at, opened_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, c.ID.UUID(), c.BuyerID.UUID(), c.ListingID.UUID(), c.DestinationCountry, string(c.ComplianceState), string(c.PaymentState),
		docs, c.RejectionReason, c.Notes, c.WithdrawnAt, c.FundsReleasedAt, c.OpenedAt, c.UpdatedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("insert case: %w", err))
	}
	return nil
}

func (s *Postgres) Save(ctx context.Context, c *models.Case) error {
	docs, err := json.Marshal(orEmpty(c.RequiredDocs))
	if err != nil {
		return fmt.Errorf("marshal required docs: %w", err)
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE acquisition_cases SET compliance_state = $2, payment_state = $3, required_docs = $4,
			rejection_reason = $5, withdrawn_at = $6, funds_released_at = $7, updated_at = $8
		WHERE id = $1
	`, c.ID.UUID(), string(c.ComplianceState), string(c.PaymentState), docs,
		c.RejectionReason, c.WithdrawnAt, c.FundsReleasedAt, c.UpdatedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("update case: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pgerr.Translate(fmt.Errorf("update case: %w", sql.ErrNoRows))
	}
	return nil
}

const caseColumns = `id, buyer_id, listing_id, destination_country, compliance_state, payment_state,
	required_docs, rejection_reason, notes, withdrawn_at, funds_released_at, opened_at, updated_at`

func (s *Postgres) Find(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+caseColumns+` FROM acquisition_cases WHERE id = $1`, caseID.UUID())
	c, err := scanCase(row)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find case: %w", err))
	}
	return c, nil
}

func (s *Postgres) FindActive(ctx context.Context, buyerID id.BuyerID, listingID id.ListingID) (*models.Case, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT `+caseColumns+` FROM acquisition_cases
		WHERE buyer_id = $1 AND listing_id = $2 AND compliance_state <> 'compliance_rejected' AND withdrawn_at IS NULL
	`, buyerID.UUID(), listingID.UUID())
	c, err := scanCase(row)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find active case: %w", err))
	}
	return c, nil
}

func (s *Postgres) ListByBuyer(ctx context.Context, buyerID id.BuyerID) ([]*models.Case, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+caseColumns+` FROM acquisition_cases WHERE buyer_id = $1 ORDER BY opened_at DESC`, buyerID.UUID())
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("list cases: %w", err))
	}
	defer rows.Close()

	var out []*models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (*models.Case, error) {
	var (
		c                         models.Case
		rawID, buyerID, listingID uuid.UUID
		compliance, payment       string
		docs                      []byte
	)
	if err := row.Scan(&rawID, &buyerID, &listingID, &c.DestinationCountry, &compliance, &payment,
		&docs, &c.RejectionReason, &c.Notes, &c.WithdrawnAt, &c.FundsReleasedAt, &c.OpenedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(docs, &c.RequiredDocs); err != nil {
		return nil, fmt.Errorf("decode required docs: %w", err)
	}
	c.ID = id.CaseID(rawID)
	c.BuyerID = id.BuyerID(buyerID)
	c.ListingID = id.ListingID(listingID)
	c.ComplianceState = models.ComplianceState(compliance)
	c.PaymentState = models.PaymentState(payment)
	return &c, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
