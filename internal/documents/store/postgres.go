package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"terralegit/internal/documents/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/pgerr"
	txcontext "terralegit/pkg/platform/tx"
)

// Postgres persists documents.
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

func (s *Postgres) Create(ctx context.Context, d *models.Document) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO documents (id, owner_kind, owner_id, document_type, file_name, file_url, status, expiry_date, notes, uploaded_at, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, d.ID.UUID(), string(d.Owner.Kind), d.Owner.ID, d.Type, d.FileName, d.FileURL, string(d.Status), d.ExpiryDate, d.Notes, d.UploadedAt, d.ReviewedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("insert document: %w", err))
	}
	return nil
}

// Save updates the review fields. Owner, type and file are immutable.
func (s *Postgres) Save(ctx context.Context, d *models.Document) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE documents SET status = $2, notes = $3, reviewed_at = $4, expiry_date = $5
		WHERE id = $1
	`, d.ID.UUID(), string(d.Status), d.Notes, d.ReviewedAt, d.ExpiryDate)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("update document: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pgerr.Translate(fmt.Errorf("update document: %w", sql.ErrNoRows))
	}
	return nil
}

const documentColumns = `id, owner_kind, owner_id, document_type, file_name, file_url, status, expiry_date, notes, uploaded_at, reviewed_at`

func (s *Postgres) Find(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, docID.UUID())
	d, err := scanDocument(row)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find document: %w", err))
	}
	return d, nil
}

// ListByOwner reads through the caller's transaction when there is one so
// guards see the same snapshot they commit against.
func (s *Postgres) ListByOwner(ctx context.Context, owner models.Owner) ([]models.Document, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY uploaded_at, id
	`, string(owner.Kind), owner.ID)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("list documents: %w", err))
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*models.Document, error) {
	var (
		d       models.Document
		rawID   uuid.UUID
		kind    string
		status  string
		ownerID uuid.UUID
	)
	if err := row.Scan(&rawID, &kind, &ownerID, &d.Type, &d.FileName, &d.FileURL, &status, &d.ExpiryDate, &d.Notes, &d.UploadedAt, &d.ReviewedAt); err != nil {
		return nil, err
	}
	d.ID = id.DocumentID(rawID)
	d.Owner = models.Owner{Kind: models.OwnerKind(kind), ID: ownerID}
	d.Status = models.Status(status)
	return &d, nil
}
