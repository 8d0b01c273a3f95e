package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"terralegit/internal/identity/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/pgerr"
	txcontext "terralegit/pkg/platform/tx"
)

// Postgres persists users and profiles.
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

func (s *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO users (id, email, username, role, verification_status, region, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID.UUID(), u.Email, u.Username, string(u.Role), string(u.VerificationStatus), u.Region, u.CreatedAt, u.UpdatedAt)
	return pgerr.Translate(wrap("insert user", err))
}

func (s *Postgres) SaveUser(ctx context.Context, u *models.User) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE users SET role = $2, verification_status = $3, region = $4, updated_at = $5 WHERE id = $1
	`, u.ID.UUID(), string(u.Role), string(u.VerificationStatus), u.Region, u.UpdatedAt)
	return pgerr.Translate(wrap("update user", err))
}

func (s *Postgres) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	var (
		u      models.User
		rawID  uuid.UUID
		role   string
		status string
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, email, username, role, verification_status, region, created_at, updated_at
		FROM users WHERE id = $1
	`, userID.UUID()).Scan(&rawID, &u.Email, &u.Username, &role, &status, &u.Region, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find user: %w", err))
	}
	u.ID = id.UserID(rawID)
	u.Role = id.Role(role)
	u.VerificationStatus = id.VerificationStatus(status)
	return &u, nil
}

func (s *Postgres) CreateSeller(ctx context.Context, p *models.SellerProfile) error {
	permits, err := json.Marshal(nonNil(p.PermitRefs))
	if err != nil {
		return fmt.Errorf("marshal permit refs: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO seller_profiles (id, user_id, business_name, business_type, license_number, permit_refs, country, audit_status, verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID.UUID(), p.UserID.UUID(), p.BusinessName, p.BusinessType, p.LicenseNumber, permits, p.Country, string(p.AuditStatus), p.VerifiedAt, p.CreatedAt)
	return pgerr.Translate(wrap("insert seller profile", err))
}

func (s *Postgres) SaveSeller(ctx context.Context, p *models.SellerProfile) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE seller_profiles SET audit_status = $2, verified_at = $3 WHERE id = $1
	`, p.ID.UUID(), string(p.AuditStatus), p.VerifiedAt)
	return pgerr.Translate(wrap("update seller profile", err))
}

const sellerColumns = `id, user_id, business_name, business_type, license_number, permit_refs, country, audit_status, verified_at, created_at`

func (s *Postgres) FindSeller(ctx context.Context, sellerID id.SellerID) (*models.SellerProfile, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+sellerColumns+` FROM seller_profiles WHERE id = $1`, sellerID.UUID())
	return scanSeller(row)
}

func (s *Postgres) FindSellerByUser(ctx context.Context, userID id.UserID) (*models.SellerProfile, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+sellerColumns+` FROM seller_profiles WHERE user_id = $1`, userID.UUID())
	return scanSeller(row)
}

func scanSeller(row *sql.Row) (*models.SellerProfile, error) {
	var (
		p       models.SellerProfile
		rawID   uuid.UUID
		userID  uuid.UUID
		permits []byte
		status  string
	)
	if err := row.Scan(&rawID, &userID, &p.BusinessName, &p.BusinessType, &p.LicenseNumber, &permits, &p.Country, &status, &p.VerifiedAt, &p.CreatedAt); err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find seller profile: %w", err))
	}
	if err := json.Unmarshal(permits, &p.PermitRefs); err != nil {
		return nil, fmt.Errorf("decode permit refs: %w", err)
	}
	p.ID = id.SellerID(rawID)
	p.UserID = id.UserID(userID)
	p.AuditStatus = id.VerificationStatus(status)
	return &p, nil
}

func (s *Postgres) CreateBuyer(ctx context.Context, p *models.BuyerProfile) error {
	acks, err := json.Marshal(nonNil(p.Acknowledgments))
	if err != nil {
		return fmt.Errorf("marshal acknowledgments: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO buyer_profiles (id, user_id, purpose, acknowledgments, destination_country, facility_description, verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID.UUID(), p.UserID.UUID(), p.Purpose, acks, p.DestinationCountry, p.FacilityDescription, p.VerifiedAt, p.CreatedAt)
	return pgerr.Translate(wrap("insert buyer profile", err))
}

const buyerColumns = `id, user_id, purpose, acknowledgments, destination_country, facility_description, verified_at, created_at`

func (s *Postgres) FindBuyer(ctx context.Context, buyerID id.BuyerID) (*models.BuyerProfile, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+buyerColumns+` FROM buyer_profiles WHERE id = $1`, buyerID.UUID())
	return scanBuyer(row)
}

func (s *Postgres) FindBuyerByUser(ctx context.Context, userID id.UserID) (*models.BuyerProfile, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+buyerColumns+` FROM buyer_profiles WHERE user_id = $1`, userID.UUID())
	return scanBuyer(row)
}

func scanBuyer(row *sql.Row) (*models.BuyerProfile, error) {
	var (
		p      models.BuyerProfile
		rawID  uuid.UUID
		userID uuid.UUID
		acks   []byte
	)
	if err := row.Scan(&rawID, &userID, &p.Purpose, &acks, &p.DestinationCountry, &p.FacilityDescription, &p.VerifiedAt, &p.CreatedAt); err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find buyer profile: %w", err))
	}
	if err := json.Unmarshal(acks, &p.Acknowledgments); err != nil {
		return nil, fmt.Errorf("decode acknowledgments: %w", err)
	}
	p.ID = id.BuyerID(rawID)
	p.UserID = id.UserID(userID)
	return &p, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
