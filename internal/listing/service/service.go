package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"terralegit/internal/authz"
	catalog "terralegit/internal/catalog/models"
	docs "terralegit/internal/documents/models"
	eligibility "terralegit/internal/eligibility/models"
	identity "terralegit/internal/identity/models"
	"terralegit/internal/lifecycle"
	"terralegit/internal/listing/models"
	"terralegit/internal/notify"
	"terralegit/internal/platform/lock"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

const (
	guardSellerAudit  = "seller auditStatus must be approved"
	guardHealthDocs   = "healthDocStatus must be approved"
	defaultHealthType = "health_certificate"
)

// Store persists listings.
type Store interface {
	Create(ctx context.Context, l *models.Listing) error
	Save(ctx context.Context, l *models.Listing) error
	Find(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	List(ctx context.Context, f models.Filter) ([]*models.Listing, error)
}

// AuditRecorder appends fail-closed audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, actor id.Actor, action audit.Action, entityType audit.EntityType, entityID string, details map[string]any) (audit.Entry, error)
}

// Sellers looks up seller profiles.
type Sellers interface {
	GetSeller(ctx context.Context, sellerID id.SellerID) (*identity.SellerProfile, error)
	SellerForUser(ctx context.Context, userID id.UserID) (*identity.SellerProfile, error)
}

// Species looks up catalog entries.
type Species interface {
	GetSpecies(ctx context.Context, speciesID id.SpeciesID) (*catalog.Species, error)
}

// HealthDocs derives a listing's health document status from its documents.
type HealthDocs interface {
	HealthDocStatus(ctx context.Context, listingID id.ListingID, docType string) (docs.Status, error)
}

// Eligibility evaluates destination rules.
type Eligibility interface {
	Evaluate(ctx context.Context, countryCode string, category catalog.Category) (eligibility.Result, error)
}

// Service owns the listing lifecycle.
type Service struct {
	store         Store
	runner        tx.Runner
	auditor       AuditRecorder
	sellers       Sellers
	species       Species
	health        HealthDocs
	eligibility   Eligibility
	locker        lock.Locker
	notifier      notify.Sink
	metrics       *lifecycle.Metrics
	logger        *slog.Logger
	healthDocType string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *lifecycle.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithNotifier(n notify.Sink) Option {
	return func(s *Service) { s.notifier = n }
}

// WithHealthDocType sets the document type that backs healthDocStatus.
func WithHealthDocType(docType string) Option {
	return func(s *Service) {
		if docType != "" {
			s.healthDocType = docType
		}
	}
}

func New(store Store, runner tx.Runner, auditor AuditRecorder, sellers Sellers, species Species, health HealthDocs, elig Eligibility, opts ...Option) *Service {
	s := &Service{
		store:         store,
		runner:        runner,
		auditor:       auditor,
		sellers:       sellers,
		species:       species,
		health:        health,
		eligibility:   elig,
		locker:        lock.NewMemory(),
		notifier:      notify.Discard{},
		logger:        slog.Default(),
		healthDocType: defaultHealthType,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateListingCommand carries a new draft listing.
type CreateListingCommand struct {
	SpeciesID     id.SpeciesID
	Title         string
	Description   string
	OriginCountry string
	Quantity      int
	PriceCents    int64
	Currency      string
}

func (c CreateListingCommand) validate() (origin, currency string, err error) {
	if strings.TrimSpace(c.Title) == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if c.Quantity <= 0 {
		return "", "", dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	if c.PriceCents < 0 {
		return "", "", dErrors.New(dErrors.CodeValidation, "price must not be negative")
	}
	currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if len(currency) != 3 {
		return "", "", dErrors.New(dErrors.CodeValidation, "currency must be a three letter code")
	}
	origin, err = id.ParseCountryCode(c.OriginCountry)
	if err != nil {
		return "", "", err
	}
	return origin, currency, nil
}

// CreateListing drafts a listing for the calling seller. The seller's audit
// must already be approved.
func (s *Service) CreateListing(ctx context.Context, cmd CreateListingCommand) (*models.Listing, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionAuthorListing, authz.Owned(actor.ID)); err != nil {
		return nil, err
	}
	origin, currency, err := cmd.validate()
	if err != nil {
		return nil, err
	}
	seller, err := s.sellers.SellerForUser(ctx, actor.ID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "seller profile")
	}
	if !seller.CanAuthorListings() {
		return nil, dErrors.New(dErrors.CodeAuthorizationDenied, guardSellerAudit)
	}
	sp, err := s.species.GetSpecies(ctx, cmd.SpeciesID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "species")
	}

	now := requestcontext.Now(ctx)
	l := &models.Listing{
		ID:              id.ListingID(uuid.New()),
		SellerID:        seller.ID,
		SpeciesID:       sp.ID,
		Category:        sp.Category,
		Title:           strings.TrimSpace(cmd.Title),
		Description:     cmd.Description,
		OriginCountry:   origin,
		Quantity:        cmd.Quantity,
		PriceCents:      cmd.PriceCents,
		Currency:        currency,
		Status:          models.StatusDraft,
		HealthDocStatus: docs.StatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, l); err != nil {
			return sentinel.ToDomain(err, "listing")
		}
		_, err := s.auditor.Record(ctx, actor, audit.ActionListingCreated, audit.EntityListing, l.ID.String(), map[string]any{
			"seller_id":  seller.ID.String(),
			"species_id": sp.ID.String(),
			"category":   string(l.Category),
			"status":     string(l.Status),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "listing created",
		"listing_id", l.ID,
		"seller_id", seller.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return l, nil
}

// SubmitListing moves a draft to review.
func (s *Service) SubmitListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	return s.transition(ctx, listingID, models.StatusPendingReview, step{
		action: authz.ActionAuthorListing,
		owned:  true,
		guard:  sellerAudited(models.StatusPendingReview),
	})
}

// ApproveListing publishes a listing under review. Both the seller audit and
// the listing's health documents are re-read inside the lock.
func (s *Service) ApproveListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	return s.transition(ctx, listingID, models.StatusApproved, step{
		action: authz.ActionReviewListing,
		guard: func(ctx context.Context, l *models.Listing, seller *identity.SellerProfile) error {
			if err := sellerAudited(models.StatusApproved)(ctx, l, seller); err != nil {
				return err
			}
			status, err := s.health.HealthDocStatus(ctx, l.ID, s.healthDocType)
			if err != nil {
				return sentinel.ToDomain(err, "listing documents")
			}
			l.HealthDocStatus = status
			if status != docs.StatusApproved {
				return l.Reject(models.StatusApproved, guardHealthDocs)
			}
			return nil
		},
	})
}

// RejectListing closes a listing under review. A rejected listing is never
// resubmitted.
func (s *Service) RejectListing(ctx context.Context, listingID id.ListingID, reason string) (*models.Listing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	return s.transition(ctx, listingID, models.StatusRejected, step{
		action:  authz.ActionReviewListing,
		details: map[string]any{"reason": reason},
		apply:   func(l *models.Listing) { l.RejectionReason = reason },
	})
}

func (s *Service) WithdrawListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	return s.transition(ctx, listingID, models.StatusWithdrawn, step{
		action: authz.ActionAuthorListing,
		owned:  true,
	})
}

// MarkSold closes an approved listing on behalf of the case that completed
// against it. When called inside a unit of work it joins that unit.
func (s *Service) MarkSold(ctx context.Context, listingID id.ListingID, caseID id.CaseID) (*models.Listing, error) {
	return s.transition(ctx, listingID, models.StatusSold, step{
		action:  authz.ActionMarkSold,
		details: map[string]any{"case_id": caseID.String()},
		apply:   func(l *models.Listing) { l.SoldCaseID = &caseID },
	})
}

type guard func(ctx context.Context, l *models.Listing, seller *identity.SellerProfile) error

type step struct {
	action  authz.Action
	owned   bool
	guard   guard
	apply   func(l *models.Listing)
	details map[string]any
}

func sellerAudited(to models.Status) guard {
	return func(_ context.Context, l *models.Listing, seller *identity.SellerProfile) error {
		if !seller.CanAuthorListings() {
			return l.Reject(to, guardSellerAudit)
		}
		return nil
	}
}

func (s *Service) transition(ctx context.Context, listingID id.ListingID, to models.Status, st step) (l *models.Listing, err error) {
	ctx, end := lifecycle.StartTransition(ctx, lifecycle.MachineListing, listingID.String(), string(to))
	defer func() {
		s.metrics.IncRejection(lifecycle.MachineListing, err)
		end(err)
	}()

	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, st.action, authz.Resource{}); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.Key("listing", listingID))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		from   models.Status
		seller *identity.SellerProfile
	)
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		l, err = s.store.Find(ctx, listingID)
		if err != nil {
			return sentinel.ToDomain(err, "listing")
		}
		seller, err = s.sellers.GetSeller(ctx, l.SellerID)
		if err != nil {
			return sentinel.ToDomain(err, "seller profile")
		}
		if st.owned {
			if err := authz.Authorize(actor, st.action, authz.Owned(seller.UserID)); err != nil {
				return err
			}
		}
		if err := models.Transitions.Check(l.Status, to); err != nil {
			return err
		}
		if st.guard != nil {
			if err := st.guard(ctx, l, seller); err != nil {
				return err
			}
		}
		from = l.Status
		now := requestcontext.Now(ctx)
		if err := l.Move(to, now); err != nil {
			return err
		}
		if st.apply != nil {
			st.apply(l)
		}
		if err := s.store.Save(ctx, l); err != nil {
			return sentinel.ToDomain(err, "listing")
		}
		details := map[string]any{"from": string(from), "to": string(to)}
		for k, v := range st.details {
			details[k] = v
		}
		_, err = s.auditor.Record(ctx, actor, audit.ActionListingTransitioned, audit.EntityListing, l.ID.String(), details)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(lifecycle.MachineListing, string(from), string(to))
	s.logger.InfoContext(ctx, "listing transitioned",
		"listing_id", l.ID,
		"from", from,
		"to", to,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.notifier.Notify(ctx, notify.Event{
		Kind:       "listing." + string(to),
		EntityType: string(audit.EntityListing),
		EntityID:   l.ID.String(),
		Recipient:  seller.UserID.String(),
		Message:    fmt.Sprintf("Listing %q is now %s", l.Title, to),
		At:         requestcontext.Now(ctx),
	})
	return l, nil
}

// GetListing returns a listing with healthDocStatus evaluated at read time.
func (s *Service) GetListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	l, err := s.store.Find(ctx, listingID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "listing")
	}
	status, err := s.health.HealthDocStatus(ctx, l.ID, s.healthDocType)
	if err != nil {
		return nil, sentinel.ToDomain(err, "listing documents")
	}
	l.HealthDocStatus = status
	return l, nil
}

// ListQuery filters ListListings. Destination hides listings whose category
// is not eligible for that country.
type ListQuery struct {
	Status      *models.Status
	SellerID    *id.SellerID
	Destination string
}

func (s *Service) ListListings(ctx context.Context, q ListQuery) ([]*models.Listing, error) {
	listings, err := s.store.List(ctx, models.Filter{Status: q.Status, SellerID: q.SellerID})
	if err != nil {
		return nil, sentinel.ToDomain(err, "listing")
	}
	if q.Destination == "" || len(listings) == 0 {
		return listings, nil
	}

	visible, err := s.eligibleCategories(ctx, q.Destination, listings)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if visible[l.Category] {
			out = append(out, l)
		}
	}
	return out, nil
}

// eligibleCategories evaluates each distinct category once, concurrently.
func (s *Service) eligibleCategories(ctx context.Context, destination string, listings []*models.Listing) (map[catalog.Category]bool, error) {
	var categories []catalog.Category
	for _, l := range listings {
		if !slices.Contains(categories, l.Category) {
			categories = append(categories, l.Category)
		}
	}

	var mu sync.Mutex
	visible := make(map[catalog.Category]bool, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for _, category := range categories {
		g.Go(func() error {
			res, err := s.eligibility.Evaluate(gctx, destination, category)
			if err != nil && !dErrors.HasCode(err, dErrors.CodeUnknownDestination) {
				return err
			}
			mu.Lock()
			visible[category] = res.Eligible
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return visible, nil
}

// ResolveDocumentOwner returns the user behind the listing's seller.
func (s *Service) ResolveDocumentOwner(ctx context.Context, owner docs.Owner) (id.UserID, error) {
	l, err := s.store.Find(ctx, id.ListingID(owner.ID))
	if err != nil {
		return id.UserID{}, sentinel.ToDomain(err, "listing")
	}
	seller, err := s.sellers.GetSeller(ctx, l.SellerID)
	if err != nil {
		return id.UserID{}, sentinel.ToDomain(err, "seller profile")
	}
	return seller.UserID, nil
}
