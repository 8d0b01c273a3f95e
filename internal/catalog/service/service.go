package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"terralegit/internal/authz"
	"terralegit/internal/catalog/models"
	id "terralegit/pkg/domain"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

// Store persists species.
type Store interface {
	Create(ctx context.Context, sp *models.Species) error
	FindByID(ctx context.Context, speciesID id.SpeciesID) (*models.Species, error)
	List(ctx context.Context, category *models.Category) ([]*models.Species, error)
}

// AuditRecorder appends fail-closed audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, actor id.Actor, action audit.Action, entityType audit.EntityType, entityID string, details map[string]any) (audit.Entry, error)
}

// Service manages the species catalog.
type Service struct {
	store   Store
	runner  tx.Runner
	auditor AuditRecorder
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, runner tx.Runner, auditor AuditRecorder, opts ...Option) *Service {
	s := &Service{store: store, runner: runner, auditor: auditor, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSpeciesCommand carries the fields of a new catalog entry.
type AddSpeciesCommand struct {
	CommonName     string
	ScientificName string
	Category       models.Category
	CareLevel      models.CareLevel
	WelfareNotes   string
	CareGuidance   string
}

// AddSpecies creates a catalog entry. Entries are never updated afterwards.
func (s *Service) AddSpecies(ctx context.Context, cmd AddSpeciesCommand) (*models.Species, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionManageSpecies, authz.Resource{}); err != nil {
		return nil, err
	}

	sp, err := models.NewSpecies(id.SpeciesID(uuid.New()), cmd.CommonName, cmd.ScientificName,
		cmd.Category, cmd.CareLevel, cmd.WelfareNotes, cmd.CareGuidance, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, sp); err != nil {
			return sentinel.ToDomain(err, "species")
		}
		_, err := s.auditor.Record(ctx, actor, audit.ActionSpeciesAdded, audit.EntitySpecies, sp.ID.String(), map[string]any{
			"scientific_name": sp.ScientificName,
			"category":        string(sp.Category),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "species added",
		"species_id", sp.ID,
		"category", sp.Category,
		"request_id", requestcontext.RequestID(ctx),
	)
	return sp, nil
}

func (s *Service) GetSpecies(ctx context.Context, speciesID id.SpeciesID) (*models.Species, error) {
	sp, err := s.store.FindByID(ctx, speciesID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "species")
	}
	return sp, nil
}

func (s *Service) ListSpecies(ctx context.Context, category *models.Category) ([]*models.Species, error) {
	list, err := s.store.List(ctx, category)
	if err != nil {
		return nil, sentinel.ToDomain(err, "species")
	}
	return list, nil
}
