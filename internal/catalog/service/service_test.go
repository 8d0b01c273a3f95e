package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"terralegit/internal/catalog/models"
	"terralegit/internal/catalog/store"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/audit/recorder"
	auditmemory "terralegit/pkg/platform/audit/store/memory"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

type CatalogServiceSuite struct {
	suite.Suite
	svc    *Service
	audits *auditmemory.InMemoryStore
	admin  context.Context
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	s.audits = auditmemory.NewInMemoryStore()
	s.svc = New(store.NewInMemory(), tx.NewMemoryRunner(), recorder.New(s.audits),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	s.admin = requestcontext.WithActor(ctx, id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleComplianceAdmin})
}

func (s *CatalogServiceSuite) axolotl() AddSpeciesCommand {
	return AddSpeciesCommand{
		CommonName:     "Axolotl",
		ScientificName: "Ambystoma mexicanum",
		Category:       models.CategoryCaptiveBredSpecialty,
		CareLevel:      models.CareIntermediate,
	}
}

func (s *CatalogServiceSuite) TestAddSpecies() {
	s.Run("compliance admin adds species with an audit entry", func() {
		sp, err := s.svc.AddSpecies(s.admin, s.axolotl())
		s.Require().NoError(err)

		found, err := s.svc.GetSpecies(s.admin, sp.ID)
		s.Require().NoError(err)
		s.Equal("Axolotl", found.CommonName)

		entries, err := s.audits.ListByEntity(s.admin, audit.EntitySpecies, sp.ID.String())
		s.Require().NoError(err)
		s.Len(entries, 1)
	})

	s.Run("duplicate scientific name conflicts", func() {
		_, err := s.svc.AddSpecies(s.admin, s.axolotl())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("sellers cannot edit the catalog", func() {
		seller := requestcontext.WithActor(context.Background(), id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleVerifiedSeller, Status: id.VerificationApproved})
		cmd := s.axolotl()
		cmd.ScientificName = "Ambystoma other"
		_, err := s.svc.AddSpecies(seller, cmd)
		s.True(dErrors.HasCode(err, dErrors.CodeAuthorizationDenied))
	})

	s.Run("audit outage aborts the write", func() {
		s.audits.SetUnavailable(context.DeadlineExceeded)
		defer s.audits.SetUnavailable(nil)

		cmd := s.axolotl()
		cmd.ScientificName = "Ambystoma tigrinum"
		_, err := s.svc.AddSpecies(s.admin, cmd)
		s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))

		list, err := s.svc.ListSpecies(s.admin, nil)
		s.Require().NoError(err)
		s.Len(list, 1)
	})
}

func (s *CatalogServiceSuite) TestListSpeciesByCategory() {
	_, err := s.svc.AddSpecies(s.admin, s.axolotl())
	s.Require().NoError(err)
	_, err = s.svc.AddSpecies(s.admin, AddSpeciesCommand{
		CommonName: "Holstein cattle", ScientificName: "Bos taurus", Category: models.CategoryLivestock, CareLevel: models.CareBeginner,
	})
	s.Require().NoError(err)

	livestock := models.CategoryLivestock
	list, err := s.svc.ListSpecies(s.admin, &livestock)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("Bos taurus", list[0].ScientificName)
}
