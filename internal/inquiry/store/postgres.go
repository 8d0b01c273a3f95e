package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"terralegit/internal/inquiry/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/pgerr"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, inq *models.Inquiry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inquiries (id, inquiry_type, name, email, organization, message, status, created_at, handled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, inq.ID.UUID(), string(inq.Type), inq.Name, inq.Email, inq.Organization, inq.Message, string(inq.Status), inq.CreatedAt, inq.HandledAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("insert inquiry: %w", err))
	}
	return nil
}

func (s *Postgres) Save(ctx context.Context, inq *models.Inquiry) error {
	res, err := s.db.ExecContext(ctx, `UPDATE inquiries SET status = $2, handled_at = $3 WHERE id = $1`,
		inq.ID.UUID(), string(inq.Status), inq.HandledAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("update inquiry: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pgerr.Translate(fmt.Errorf("update inquiry: %w", sql.ErrNoRows))
	}
	return nil
}

const inquiryColumns = `id, inquiry_type, name, email, organization, message, status, created_at, handled_at`

func (s *Postgres) Find(ctx context.Context, inquiryID id.InquiryID) (*models.Inquiry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, inquiryID.UUID())
	inq, err := scanInquiry(row)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find inquiry: %w", err))
	}
	return inq, nil
}

func (s *Postgres) List(ctx context.Context, status *models.Status) ([]*models.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("list inquiries: %w", err))
	}
	defer rows.Close()

	var out []*models.Inquiry
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		out = append(out, inq)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInquiry(row scanner) (*models.Inquiry, error) {
	var (
		inq         models.Inquiry
		rawID       uuid.UUID
		typ, status string
	)
	if err := row.Scan(&rawID, &typ, &inq.Name, &inq.Email, &inq.Organization, &inq.Message, &status, &inq.CreatedAt, &inq.HandledAt); err != nil {
		return nil, err
	}
	inq.ID = id.InquiryID(rawID)
	inq.Type = models.Type(typ)
	inq.Status = models.Status(status)
	return &inq, nil
}
