package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/audit/recorder"
	auditmemory "terralegit/pkg/platform/audit/store/memory"
	"terralegit/pkg/requestcontext"
)

type AuditReadSuite struct {
	suite.Suite
	store *auditmemory.InMemoryStore
	svc   *Service
	admin context.Context
}

func TestAuditReadSuite(t *testing.T) {
	suite.Run(t, new(AuditReadSuite))
}

func (s *AuditReadSuite) SetupTest() {
	s.store = auditmemory.NewInMemoryStore()
	s.svc = New(s.store)
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	s.admin = requestcontext.WithActor(ctx, id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleComplianceAdmin})

	rec := recorder.New(s.store)
	for i := 0; i < 3; i++ {
		_, err := rec.Record(s.admin, id.SystemActor(), audit.ActionListingTransitioned, audit.EntityListing, "listing-1", map[string]any{"step": i})
		s.Require().NoError(err)
	}
	_, err := rec.Record(s.admin, id.SystemActor(), audit.ActionCaseOpened, audit.EntityAcquisitionCase, "case-1", nil)
	s.Require().NoError(err)
}

func (s *AuditReadSuite) TestHistory() {
	s.Run("entries for one entity only", func() {
		entries, err := s.svc.History(s.admin, audit.EntityListing, "listing-1")
		s.Require().NoError(err)
		s.Len(entries, 3)
		for _, e := range entries {
			s.Equal("listing-1", e.EntityID)
		}
	})

	s.Run("unknown entity type", func() {
		_, err := s.svc.History(s.admin, "invoice", "x")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("buyers are denied", func() {
		buyer := requestcontext.WithActor(context.Background(), id.Actor{
			ID: id.UserID(uuid.New()), Role: id.RoleVerifiedBuyer, Status: id.VerificationApproved,
		})
		_, err := s.svc.History(buyer, audit.EntityListing, "listing-1")
		s.True(dErrors.HasCode(err, dErrors.CodeAuthorizationDenied))
	})
}

func (s *AuditReadSuite) TestRecentClampsLimit() {
	entries, err := s.svc.Recent(s.admin, 2)
	s.Require().NoError(err)
	s.Len(entries, 2)

	entries, err = s.svc.Recent(s.admin, 0)
	s.Require().NoError(err)
	s.Len(entries, 4)

	entries, err = s.svc.Recent(s.admin, MaxRecentLimit+1)
	s.Require().NoError(err)
	s.Len(entries, 4)
}
