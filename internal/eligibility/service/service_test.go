package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	catalog "terralegit/internal/catalog/models"
	"terralegit/internal/eligibility/models"
	"terralegit/internal/eligibility/seed"
	"terralegit/internal/eligibility/store"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/audit/recorder"
	auditmemory "terralegit/pkg/platform/audit/store/memory"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

type EligibilityServiceSuite struct {
	suite.Suite
	svc    *Service
	audits *auditmemory.InMemoryStore
	ctx    context.Context
	admin  context.Context
}

func TestEligibilityServiceSuite(t *testing.T) {
	suite.Run(t, new(EligibilityServiceSuite))
}

func (s *EligibilityServiceSuite) SetupTest() {
	s.audits = auditmemory.NewInMemoryStore()
	s.svc = New(store.NewInMemory(), tx.NewMemoryRunner(), recorder.New(s.audits),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.admin = requestcontext.WithActor(s.ctx, id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleComplianceAdmin})

	rules, err := seed.Default(now)
	s.Require().NoError(err)
	n, err := s.svc.Seed(s.ctx, rules)
	s.Require().NoError(err)
	s.Equal(6, n)
}

func (s *EligibilityServiceSuite) TestScenarioRestrictedCategory() {
	res, err := s.svc.Evaluate(s.ctx, "US", catalog.CategoryCaptiveBredSpecialty)
	s.Require().NoError(err)
	s.False(res.Eligible)
	s.Equal(models.ReasonRestricted, res.Reason)
}

func (s *EligibilityServiceSuite) TestEvaluate() {
	s.Run("eligible result lists required documents", func() {
		res, err := s.svc.Evaluate(s.ctx, "de", catalog.CategoryCaptiveBredSpecialty)
		s.Require().NoError(err)
		s.True(res.Eligible)
		s.Equal("DE", res.CountryCode)
		s.Contains(res.RequiredDocs, "health_certificate")
	})

	s.Run("unknown country fails closed", func() {
		res, err := s.svc.Evaluate(s.ctx, "ZZ", catalog.CategoryLivestock)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownDestination))
		s.False(res.Eligible)
	})

	s.Run("malformed country is unknown", func() {
		_, err := s.svc.Evaluate(s.ctx, "Narnia", catalog.CategoryLivestock)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownDestination))
	})

	s.Run("invalid category is an input error", func() {
		_, err := s.svc.Evaluate(s.ctx, "US", catalog.Category("dragons"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("research is configured nowhere", func() {
		res, err := s.svc.Evaluate(s.ctx, "UK", catalog.CategoryResearch)
		s.Require().NoError(err)
		s.Equal(models.ReasonCategoryNotConfigured, res.Reason)
	})
}

func (s *EligibilityServiceSuite) TestDeactivatedDestinationIsUnknown() {
	res, err := s.svc.Evaluate(s.ctx, "US", catalog.CategoryLivestock)
	s.Require().NoError(err)
	s.True(res.Eligible)

	_, err = s.svc.DeactivateRule(s.admin, "US")
	s.Require().NoError(err)

	_, err = s.svc.Evaluate(s.ctx, "US", catalog.CategoryLivestock)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnknownDestination))
}

func (s *EligibilityServiceSuite) TestUpsertConflictingRule() {
	rule, err := s.svc.UpsertRule(s.admin, UpsertRuleCommand{
		CountryCode: "nz",
		Name:        "New Zealand",
		Allowed:     []catalog.Category{catalog.CategoryLivestock},
		Restricted:  []catalog.Category{catalog.CategoryLivestock},
		Active:      true,
	})
	s.Require().NoError(err)
	s.Equal("NZ", rule.CountryCode)

	res, err := s.svc.Evaluate(s.ctx, "NZ", catalog.CategoryLivestock)
	s.Require().NoError(err)
	s.False(res.Eligible)
	s.Equal(models.ReasonConflictingRule, res.Reason)

	entries, err := s.audits.ListByEntity(s.ctx, audit.EntityCountryRule, "NZ")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Contains(entries[0].Details, "conflicts")
}

func (s *EligibilityServiceSuite) TestDeactivateRule() {
	s.Run("deactivated country becomes unknown", func() {
		rule, err := s.svc.DeactivateRule(s.admin, "JP")
		s.Require().NoError(err)
		s.False(rule.IsActive)

		_, err = s.svc.Evaluate(s.ctx, "JP", catalog.CategoryLivestock)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownDestination))

		active, err := s.svc.ListRules(s.ctx, true)
		s.Require().NoError(err)
		s.Len(active, 5)
		all, err := s.svc.ListRules(s.ctx, false)
		s.Require().NoError(err)
		s.Len(all, 6)
	})

	s.Run("second deactivation is not audited", func() {
		_, err := s.svc.DeactivateRule(s.admin, "JP")
		s.Require().NoError(err)
		entries, err := s.audits.ListByEntity(s.ctx, audit.EntityCountryRule, "JP")
		s.Require().NoError(err)
		s.Len(entries, 2)
	})

	s.Run("reseeding does not revive a deactivated rule", func() {
		rules, err := seed.Default(time.Now())
		s.Require().NoError(err)
		n, err := s.svc.Seed(s.ctx, rules)
		s.Require().NoError(err)
		s.Zero(n)
		rule, err := s.svc.GetRule(s.ctx, "JP")
		s.Require().NoError(err)
		s.False(rule.IsActive)
	})

	s.Run("buyers cannot manage rules", func() {
		buyer := requestcontext.WithActor(s.ctx, id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleVerifiedBuyer, Status: id.VerificationApproved})
		_, err := s.svc.DeactivateRule(buyer, "US")
		s.True(dErrors.HasCode(err, dErrors.CodeAuthorizationDenied))
	})
}

func (s *EligibilityServiceSuite) TestVisibleDestinations() {
	dest, err := s.svc.VisibleDestinations(s.ctx, catalog.CategoryCompanion)
	s.Require().NoError(err)
	s.Equal([]string{"CA", "DE", "JP", "UK", "US"}, dest)

	dest, err = s.svc.VisibleDestinations(s.ctx, catalog.CategoryConservation)
	s.Require().NoError(err)
	s.Empty(dest)
}

func (s *EligibilityServiceSuite) TestAuditOutageAbortsUpsert() {
	s.audits.SetUnavailable(context.DeadlineExceeded)
	defer s.audits.SetUnavailable(nil)

	_, err := s.svc.UpsertRule(s.admin, UpsertRuleCommand{CountryCode: "FR", Name: "France", Active: true})
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))

	_, err = s.svc.GetRule(s.ctx, "FR")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
