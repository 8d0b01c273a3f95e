package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	catalog "terralegit/internal/catalog/models"
	docs "terralegit/internal/documents/models"
	"terralegit/internal/listing/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/pgerr"
	txcontext "terralegit/pkg/platform/tx"
)

// Postgres persists listings.
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

func (s *Postgres) Create(ctx context.Context, l *models.Listing) error {
	badges, err := json.Marshal(nonNil(l.Badges))
	if err != nil {
		return fmt.Errorf("marshal badges: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO listings (id, seller_id, species_id, category, title, description, origin_country, quantity,
			price_cents, currency, status, health_doc_status, badges, rejection_reason, sold_case_id,
			created_at, submitted_at, approved_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, l.ID.UUID(), l.SellerID.UUID(), l.SpeciesID.UUID(), string(l.Category), l.Title, l.Description, l.OriginCountry, l.Quantity,
		l.PriceCents, l.Currency, string(l.Status), string(l.HealthDocStatus), badges, l.RejectionReason, caseUUID(l.SoldCaseID),
		l.CreatedAt, l.SubmittedAt, l.ApprovedAt, l.UpdatedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("insert listing: %w", err))
	}
	return nil
}

// Save writes the mutable lifecycle fields.
func (s *Postgres) Save(ctx context.Context, l *models.Listing) error {
	badges, err := json.Marshal(nonNil(l.Badges))
	if err != nil {
		return fmt.Errorf("marshal badges: %w", err)
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE listings SET status = $2, health_doc_status = $3, badges = $4, rejection_reason = $5,
			sold_case_id = $6, submitted_at = $7, approved_at = $8, updated_at = $9
		WHERE id = $1
	`, l.ID.UUID(), string(l.Status), string(l.HealthDocStatus), badges, l.RejectionReason,
		caseUUID(l.SoldCaseID), l.SubmittedAt, l.ApprovedAt, l.UpdatedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("update listing: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pgerr.Translate(fmt.Errorf("update listing: %w", sql.ErrNoRows))
	}
	return nil
}

const listingColumns = `id, seller_id, species_id, category, title, description, origin_country, quantity,
	price_cents, currency, status, health_doc_status, badges, rejection_reason, sold_case_id,
	created_at, submitted_at, approved_at, updated_at`

func (s *Postgres) Find(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, listingID.UUID())
	l, err := scanListing(row)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find listing: %w", err))
	}
	return l, nil
}

func (s *Postgres) List(ctx context.Context, f models.Filter) ([]*models.Listing, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.SellerID != nil {
		args = append(args, f.SellerID.UUID())
		where = append(where, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("list listings: %w", err))
	}
	defer rows.Close()

	var out []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*models.Listing, error) {
	var (
		l                              models.Listing
		rawID, sellerID, speciesID     uuid.UUID
		category, status, healthStatus string
		badges                         []byte
		soldCase                       uuid.NullUUID
	)
	if err := row.Scan(&rawID, &sellerID, &speciesID, &category, &l.Title, &l.Description, &l.OriginCountry, &l.Quantity,
		&l.PriceCents, &l.Currency, &status, &healthStatus, &badges, &l.RejectionReason, &soldCase,
		&l.CreatedAt, &l.SubmittedAt, &l.ApprovedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(badges, &l.Badges); err != nil {
		return nil, fmt.Errorf("decode badges: %w", err)
	}
	l.ID = id.ListingID(rawID)
	l.SellerID = id.SellerID(sellerID)
	l.SpeciesID = id.SpeciesID(speciesID)
	l.Category = catalog.Category(category)
	l.Status = models.Status(status)
	l.HealthDocStatus = docs.Status(healthStatus)
	if soldCase.Valid {
		c := id.CaseID(soldCase.UUID)
		l.SoldCaseID = &c
	}
	return &l, nil
}

func caseUUID(c *id.CaseID) uuid.NullUUID {
	if c == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: c.UUID(), Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
