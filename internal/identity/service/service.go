package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"terralegit/internal/authz"
	"terralegit/internal/identity/models"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

// Store persists users and their role profiles.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, userID id.UserID) (*models.User, error)

	CreateSeller(ctx context.Context, p *models.SellerProfile) error
	SaveSeller(ctx context.Context, p *models.SellerProfile) error
	FindSeller(ctx context.Context, sellerID id.SellerID) (*models.SellerProfile, error)
	FindSellerByUser(ctx context.Context, userID id.UserID) (*models.SellerProfile, error)

	CreateBuyer(ctx context.Context, p *models.BuyerProfile) error
	FindBuyer(ctx context.Context, buyerID id.BuyerID) (*models.BuyerProfile, error)
	FindBuyerByUser(ctx context.Context, userID id.UserID) (*models.BuyerProfile, error)
}

// AuditRecorder appends fail-closed audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, actor id.Actor, action audit.Action, entityType audit.EntityType, entityID string, details map[string]any) (audit.Entry, error)
}

// Service owns users, role escalation and seller/buyer profiles.
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

// RegisterUser creates an account with role registered and verification
// pending.
func (s *Service) RegisterUser(ctx context.Context, email, username, region string) (*models.User, error) {
	if err := authz.Authorize(requestcontext.Actor(ctx), authz.ActionRegisterUser, authz.Resource{}); err != nil {
		return nil, err
	}
	user, err := models.NewUser(id.UserID(uuid.New()), email, username, region, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateUser(ctx, user); err != nil {
			return sentinel.ToDomain(err, "user")
		}
		_, err := s.auditor.Record(ctx, user.Actor(), audit.ActionUserRegistered, audit.EntityUser, user.ID.String(), map[string]any{
			"username": user.Username,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "request_id", requestcontext.RequestID(ctx))
	return user, nil
}

// SetVerificationStatus records a compliance decision on a user.
func (s *Service) SetVerificationStatus(ctx context.Context, userID id.UserID, status id.VerificationStatus) (*models.User, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionManageVerification, authz.Resource{}); err != nil {
		return nil, err
	}
	if _, err := id.ParseVerificationStatus(string(status)); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.store.FindUser(ctx, userID)
		if err != nil {
			return sentinel.ToDomain(err, "user")
		}
		previous, previousRole := user.VerificationStatus, user.Role
		user.ApplyVerification(status, requestcontext.Now(ctx))
		if err := s.store.SaveUser(ctx, user); err != nil {
			return sentinel.ToDomain(err, "user")
		}
		details := map[string]any{"from": string(previous), "to": string(status)}
		if previousRole != user.Role {
			details["role_revoked"] = string(previousRole)
		}
		_, err = s.auditor.Record(ctx, actor, audit.ActionVerificationChanged, audit.EntityUser, user.ID.String(), details)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// EscalateRole assigns a role. Verified roles require verification approved.
func (s *Service) EscalateRole(ctx context.Context, userID id.UserID, role id.Role) (*models.User, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionEscalateRole, authz.Resource{}); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.store.FindUser(ctx, userID)
		if err != nil {
			return sentinel.ToDomain(err, "user")
		}
		if err := user.CanEscalateTo(role); err != nil {
			return err
		}
		previous := user.Role
		user.ApplyRole(role, requestcontext.Now(ctx))
		if err := s.store.SaveUser(ctx, user); err != nil {
			return sentinel.ToDomain(err, "user")
		}
		_, err = s.auditor.Record(ctx, actor, audit.ActionRoleEscalated, audit.EntityUser, user.ID.String(), map[string]any{
			"from": string(previous),
			"to":   string(role),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "role escalated", "user_id", userID, "role", role, "request_id", requestcontext.RequestID(ctx))
	return user, nil
}

// CreateSellerProfileCommand carries seller business metadata.
type CreateSellerProfileCommand struct {
	BusinessName  string
	BusinessType  string
	LicenseNumber string
	PermitRefs    []string
	Country       string
}

// CreateSellerProfile attaches a seller profile to the calling user. The
// user must already hold a seller-capable role. Audit starts pending.
func (s *Service) CreateSellerProfile(ctx context.Context, cmd CreateSellerProfileCommand) (*models.SellerProfile, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionCreateSellerProfile, authz.Owned(actor.ID)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cmd.BusinessName) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "business name is required")
	}
	country, err := id.ParseCountryCode(cmd.Country)
	if err != nil {
		return nil, err
	}

	var profile *models.SellerProfile
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.store.FindUser(ctx, actor.ID)
		if err != nil {
			return sentinel.ToDomain(err, "user")
		}
		if !user.CanHoldSellerProfile() {
			return dErrors.New(dErrors.CodeAuthorizationDenied, "seller profile requires role verified_seller or institutional_account")
		}
		profile = &models.SellerProfile{
			ID:            id.SellerID(uuid.New()),
			UserID:        user.ID,
			BusinessName:  strings.TrimSpace(cmd.BusinessName),
			BusinessType:  cmd.BusinessType,
			LicenseNumber: cmd.LicenseNumber,
			PermitRefs:    cmd.PermitRefs,
			Country:       country,
			AuditStatus:   id.VerificationPending,
			CreatedAt:     requestcontext.Now(ctx),
		}
		if err := s.store.CreateSeller(ctx, profile); err != nil {
			return sentinel.ToDomain(err, "seller profile")
		}
		_, err = s.auditor.Record(ctx, actor, audit.ActionSellerProfileCreated, audit.EntitySellerProfile, profile.ID.String(), map[string]any{
			"user_id": user.ID.String(),
			"country": country,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// CreateBuyerProfileCommand carries buyer purpose and destination.
type CreateBuyerProfileCommand struct {
	Purpose             string
	Acknowledgments     []string
	DestinationCountry  string
	FacilityDescription string
}

// CreateBuyerProfile attaches a buyer profile to the calling user.
func (s *Service) CreateBuyerProfile(ctx context.Context, cmd CreateBuyerProfileCommand) (*models.BuyerProfile, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionCreateBuyerProfile, authz.Owned(actor.ID)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cmd.Purpose) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "purpose of purchase is required")
	}
	destination, err := id.ParseCountryCode(cmd.DestinationCountry)
	if err != nil {
		return nil, err
	}

	var profile *models.BuyerProfile
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.store.FindUser(ctx, actor.ID)
		if err != nil {
			return sentinel.ToDomain(err, "user")
		}
		if !user.CanHoldBuyerProfile() {
			return dErrors.New(dErrors.CodeAuthorizationDenied, "buyer profile requires role verified_buyer or institutional_account")
		}
		now := requestcontext.Now(ctx)
		profile = &models.BuyerProfile{
			ID:                  id.BuyerID(uuid.New()),
			UserID:              user.ID,
			Purpose:             strings.TrimSpace(cmd.Purpose),
			Acknowledgments:     cmd.Acknowledgments,
			DestinationCountry:  destination,
			FacilityDescription: cmd.FacilityDescription,
			VerifiedAt:          &now,
			CreatedAt:           now,
		}
		if err := s.store.CreateBuyer(ctx, profile); err != nil {
			return sentinel.ToDomain(err, "buyer profile")
		}
		_, err = s.auditor.Record(ctx, actor, audit.ActionBuyerProfileCreated, audit.EntityBuyerProfile, profile.ID.String(), map[string]any{
			"user_id":     user.ID.String(),
			"destination": destination,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// ReviewSellerAudit records the compliance audit outcome for a seller.
func (s *Service) ReviewSellerAudit(ctx context.Context, sellerID id.SellerID, status id.VerificationStatus) (*models.SellerProfile, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionReviewSellerAudit, authz.Resource{}); err != nil {
		return nil, err
	}
	if _, err := id.ParseVerificationStatus(string(status)); err != nil {
		return nil, err
	}

	var profile *models.SellerProfile
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		profile, err = s.store.FindSeller(ctx, sellerID)
		if err != nil {
			return sentinel.ToDomain(err, "seller profile")
		}
		previous := profile.AuditStatus
		profile.ApplyAuditReview(status, requestcontext.Now(ctx))
		if err := s.store.SaveSeller(ctx, profile); err != nil {
			return sentinel.ToDomain(err, "seller profile")
		}
		_, err = s.auditor.Record(ctx, actor, audit.ActionSellerAuditReviewed, audit.EntitySellerProfile, profile.ID.String(), map[string]any{
			"from": string(previous),
			"to":   string(status),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "seller audit reviewed", "seller_id", sellerID, "status", status, "request_id", requestcontext.RequestID(ctx))
	return profile, nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "user")
	}
	return u, nil
}

func (s *Service) GetSeller(ctx context.Context, sellerID id.SellerID) (*models.SellerProfile, error) {
	p, err := s.store.FindSeller(ctx, sellerID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "seller profile")
	}
	return p, nil
}

func (s *Service) GetBuyer(ctx context.Context, buyerID id.BuyerID) (*models.BuyerProfile, error) {
	p, err := s.store.FindBuyer(ctx, buyerID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "buyer profile")
	}
	return p, nil
}

func (s *Service) SellerForUser(ctx context.Context, userID id.UserID) (*models.SellerProfile, error) {
	p, err := s.store.FindSellerByUser(ctx, userID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "seller profile")
	}
	return p, nil
}

func (s *Service) BuyerForUser(ctx context.Context, userID id.UserID) (*models.BuyerProfile, error) {
	p, err := s.store.FindBuyerByUser(ctx, userID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "buyer profile")
	}
	return p, nil
}

// ResolveActor loads the current role and verification status for an
// authenticated subject.
func (s *Service) ResolveActor(ctx context.Context, userID id.UserID) (id.Actor, error) {
	u, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return id.Actor{}, sentinel.ToDomain(err, "user")
	}
	return u.Actor(), nil
}
