package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"terralegit/internal/catalog/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/pgerr"
	txcontext "terralegit/pkg/platform/tx"
)

// Postgres persists species.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, sp *models.Species) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO species (id, common_name, scientific_name, category, care_level, welfare_notes, care_guidance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sp.ID.UUID(), sp.CommonName, sp.ScientificName, string(sp.Category), string(sp.CareLevel), sp.WelfareNotes, sp.CareGuidance, sp.CreatedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("insert species: %w", err))
	}
	return nil
}

const speciesColumns = `id, common_name, scientific_name, category, care_level, welfare_notes, care_guidance, created_at`

func (s *Postgres) FindByID(ctx context.Context, speciesID id.SpeciesID) (*models.Species, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+speciesColumns+` FROM species WHERE id = $1`, speciesID.UUID())
	sp, err := scanSpecies(row)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find species: %w", err))
	}
	return sp, nil
}

func (s *Postgres) List(ctx context.Context, category *models.Category) ([]*models.Species, error) {
	query := `SELECT ` + speciesColumns + ` FROM species`
	var args []any
	if category != nil {
		query += ` WHERE category = $1`
		args = append(args, string(*category))
	}
	query += ` ORDER BY common_name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("list species: %w", err))
	}
	defer rows.Close()

	var out []*models.Species
	for rows.Next() {
		sp, err := scanSpecies(rows)
		if err != nil {
			return nil, fmt.Errorf("scan species: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSpecies(row scanner) (*models.Species, error) {
	var (
		sp       models.Species
		rawID    uuid.UUID
		category string
		care     string
	)
	if err := row.Scan(&rawID, &sp.CommonName, &sp.ScientificName, &category, &care, &sp.WelfareNotes, &sp.CareGuidance, &sp.CreatedAt); err != nil {
		return nil, err
	}
	sp.ID = id.SpeciesID(rawID)
	sp.Category = models.Category(category)
	sp.CareLevel = models.CareLevel(care)
	return &sp, nil
}
