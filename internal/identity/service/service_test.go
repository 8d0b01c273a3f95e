package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"terralegit/internal/identity/store"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/audit/recorder"
	auditmemory "terralegit/pkg/platform/audit/store/memory"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

type IdentityServiceSuite struct {
	suite.Suite
	svc    *Service
	audits *auditmemory.InMemoryStore
	base   context.Context
	admin  context.Context
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.audits = auditmemory.NewInMemoryStore()
	s.svc = New(store.NewInMemory(), tx.NewMemoryRunner(), recorder.New(s.audits),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.base = requestcontext.WithTime(context.Background(), time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	s.admin = requestcontext.WithActor(s.base, id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleComplianceAdmin})
}

func (s *IdentityServiceSuite) register(email, username string) id.UserID {
	u, err := s.svc.RegisterUser(s.base, email, username, "us")
	s.Require().NoError(err)
	return u.ID
}

func (s *IdentityServiceSuite) as(userID id.UserID) context.Context {
	actor, err := s.svc.ResolveActor(s.base, userID)
	s.Require().NoError(err)
	return requestcontext.WithActor(s.base, actor)
}

func (s *IdentityServiceSuite) TestRegisterUser() {
	s.Run("new users are registered and pending", func() {
		userID := s.register("Ada@Example.com", "ada")
		u, err := s.svc.GetUser(s.base, userID)
		s.Require().NoError(err)
		s.Equal(id.RoleRegistered, u.Role)
		s.Equal(id.VerificationPending, u.VerificationStatus)
		s.Equal("ada@example.com", u.Email)
		s.Equal("US", u.Region)

		entries, err := s.audits.ListByEntity(s.base, audit.EntityUser, userID.String())
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(audit.ActionUserRegistered, entries[0].Action)
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.svc.RegisterUser(s.base, "ada@example.com", "ada2", "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("invalid email is rejected", func() {
		_, err := s.svc.RegisterUser(s.base, "nope", "someone", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *IdentityServiceSuite) TestEscalateRole() {
	userID := s.register("grace@example.com", "grace")

	s.Run("verified role requires approval", func() {
		_, err := s.svc.EscalateRole(s.admin, userID, id.RoleVerifiedSeller)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("approval then escalation succeeds", func() {
		_, err := s.svc.SetVerificationStatus(s.admin, userID, id.VerificationApproved)
		s.Require().NoError(err)
		u, err := s.svc.EscalateRole(s.admin, userID, id.RoleVerifiedSeller)
		s.Require().NoError(err)
		s.Equal(id.RoleVerifiedSeller, u.Role)
	})

	s.Run("losing approval demotes a verified role", func() {
		u, err := s.svc.SetVerificationStatus(s.admin, userID, id.VerificationSuspended)
		s.Require().NoError(err)
		s.Equal(id.RoleRegistered, u.Role)
	})

	s.Run("only compliance may escalate", func() {
		_, err := s.svc.EscalateRole(s.as(userID), userID, id.RoleSuperAdmin)
		s.True(dErrors.HasCode(err, dErrors.CodeAuthorizationDenied))
	})

	s.Run("system role cannot be assigned", func() {
		_, err := s.svc.SetVerificationStatus(s.admin, userID, id.VerificationApproved)
		s.Require().NoError(err)
		_, err = s.svc.EscalateRole(s.admin, userID, id.RoleSystem)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *IdentityServiceSuite) TestProfiles() {
	sellerUser := s.register("farm@example.com", "farm")
	buyerUser := s.register("zoo@example.com", "zoo")

	s.Run("profiles require role selection first", func() {
		_, err := s.svc.CreateSellerProfile(s.as(sellerUser), CreateSellerProfileCommand{BusinessName: "Farm", Country: "US"})
		s.True(dErrors.HasCode(err, dErrors.CodeAuthorizationDenied))
	})

	for _, u := range []struct {
		user id.UserID
		role id.Role
	}{{sellerUser, id.RoleVerifiedSeller}, {buyerUser, id.RoleVerifiedBuyer}} {
		_, err := s.svc.SetVerificationStatus(s.admin, u.user, id.VerificationApproved)
		s.Require().NoError(err)
		_, err = s.svc.EscalateRole(s.admin, u.user, u.role)
		s.Require().NoError(err)
	}

	s.Run("seller profile starts with audit pending", func() {
		p, err := s.svc.CreateSellerProfile(s.as(sellerUser), CreateSellerProfileCommand{
			BusinessName: "Green Pastures", BusinessType: "breeder", LicenseNumber: "L-1", Country: "us",
		})
		s.Require().NoError(err)
		s.Equal(id.VerificationPending, p.AuditStatus)
		s.False(p.CanAuthorListings())
		s.Equal("US", p.Country)

		reviewed, err := s.svc.ReviewSellerAudit(s.admin, p.ID, id.VerificationApproved)
		s.Require().NoError(err)
		s.True(reviewed.CanAuthorListings())
		s.NotNil(reviewed.VerifiedAt)

		bySeller, err := s.svc.SellerForUser(s.base, sellerUser)
		s.Require().NoError(err)
		s.Equal(p.ID, bySeller.ID)
	})

	s.Run("second seller profile conflicts", func() {
		_, err := s.svc.CreateSellerProfile(s.as(sellerUser), CreateSellerProfileCommand{BusinessName: "Again", Country: "US"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("buyer profile carries its destination", func() {
		p, err := s.svc.CreateBuyerProfile(s.as(buyerUser), CreateBuyerProfileCommand{
			Purpose: "education", DestinationCountry: "de", Acknowledgments: []string{"welfare"},
		})
		s.Require().NoError(err)
		s.Equal("DE", p.DestinationCountry)

		found, err := s.svc.BuyerForUser(s.base, buyerUser)
		s.Require().NoError(err)
		s.Equal(p.ID, found.ID)
	})

	s.Run("seller cannot create a buyer profile", func() {
		_, err := s.svc.CreateBuyerProfile(s.as(sellerUser), CreateBuyerProfileCommand{Purpose: "x", DestinationCountry: "US"})
		s.True(dErrors.HasCode(err, dErrors.CodeAuthorizationDenied))
	})
}

func (s *IdentityServiceSuite) TestAuditOutageAbortsVerification() {
	userID := s.register("kay@example.com", "kay")
	s.audits.SetUnavailable(context.DeadlineExceeded)
	defer s.audits.SetUnavailable(nil)

	_, err := s.svc.SetVerificationStatus(s.admin, userID, id.VerificationApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))

	u, err := s.svc.GetUser(s.base, userID)
	s.Require().NoError(err)
	s.Equal(id.VerificationPending, u.VerificationStatus)
}
