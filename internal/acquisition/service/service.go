package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"terralegit/internal/acquisition/models"
	"terralegit/internal/authz"
	catalog "terralegit/internal/catalog/models"
	docs "terralegit/internal/documents/models"
	eligibility "terralegit/internal/eligibility/models"
	identity "terralegit/internal/identity/models"
	"terralegit/internal/lifecycle"
	listing "terralegit/internal/listing/models"
	"terralegit/internal/notify"
	"terralegit/internal/platform/lock"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

// Pseudo-states used in audit details for actions that are not machine
// states of their own.
const (
	stateWithdrawn = "withdrawn"
	stateReleased  = "released"
)

// Store persists acquisition cases.
type Store interface {
	Create(ctx context.Context, c *models.Case) error
	Save(ctx context.Context, c *models.Case) error
	Find(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	FindActive(ctx context.Context, buyerID id.BuyerID, listingID id.ListingID) (*models.Case, error)
	ListByBuyer(ctx context.Context, buyerID id.BuyerID) ([]*models.Case, error)
}

// AuditRecorder appends fail-closed audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, actor id.Actor, action audit.Action, entityType audit.EntityType, entityID string, details map[string]any) (audit.Entry, error)
}

// Buyers looks up buyer profiles.
type Buyers interface {
	GetBuyer(ctx context.Context, buyerID id.BuyerID) (*identity.BuyerProfile, error)
	BuyerForUser(ctx context.Context, userID id.UserID) (*identity.BuyerProfile, error)
}

// Listings reads listings and closes them when a case completes.
type Listings interface {
	GetListing(ctx context.Context, listingID id.ListingID) (*listing.Listing, error)
	MarkSold(ctx context.Context, listingID id.ListingID, caseID id.CaseID) (*listing.Listing, error)
}

// Eligibility evaluates destination rules.
type Eligibility interface {
	Evaluate(ctx context.Context, countryCode string, category catalog.Category) (eligibility.Result, error)
}

// Documents computes readiness over an owner's documents.
type Documents interface {
	Readiness(ctx context.Context, owner docs.Owner, required []string) (docs.Readiness, error)
}

// Shipments reports delivery of the shipment linked to a case.
type Shipments interface {
	DeliveredForCase(ctx context.Context, caseID id.CaseID) (bool, error)
}

// Service owns the compliance and payment machines of acquisition cases.
type Service struct {
	store       Store
	runner      tx.Runner
	auditor     AuditRecorder
	buyers      Buyers
	listings    Listings
	eligibility Eligibility
	documents   Documents
	shipments   Shipments
	locker      lock.Locker
	notifier    notify.Sink
	metrics     *lifecycle.Metrics
	logger      *slog.Logger
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

func New(store Store, runner tx.Runner, auditor AuditRecorder, buyers Buyers, listings Listings, elig Eligibility, documents Documents, opts ...Option) *Service {
	s := &Service{
		store:       store,
		runner:      runner,
		auditor:     auditor,
		buyers:      buyers,
		listings:    listings,
		eligibility: elig,
		documents:   documents,
		locker:      lock.NewMemory(),
		notifier:    notify.Discard{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UseShipments attaches the shipment lookup once the shipment service
// exists. Until then funds cannot be released.
func (s *Service) UseShipments(sh Shipments) {
	s.shipments = sh
}

// OpenCase binds the calling buyer to an approved listing.
func (s *Service) OpenCase(ctx context.Context, listingID id.ListingID, notes string) (*models.Case, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionOpenCase, authz.Owned(actor.ID)); err != nil {
		return nil, err
	}
	buyer, err := s.buyers.BuyerForUser(ctx, actor.ID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "buyer profile")
	}

	release, err := s.locker.Acquire(ctx, fmt.Sprintf("case-open:%s:%s", buyer.ID, listingID))
	if err != nil {
		return nil, err
	}
	defer release()

	l, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "listing")
	}
	if l.Status != listing.StatusApproved {
		return nil, lifecycle.Reject(lifecycle.MachineCompliance, "", string(models.ComplianceEligibilityCheck),
			fmt.Sprintf("listing must be approved, is %s", l.Status))
	}
	switch _, err := s.store.FindActive(ctx, buyer.ID, listingID); {
	case err == nil:
		return nil, dErrors.New(dErrors.CodeConflict, "an active case already exists for this buyer and listing")
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, sentinel.ToDomain(err, "case")
	}

	c := models.New(id.CaseID(uuid.New()), buyer.ID, listingID, buyer.DestinationCountry, strings.TrimSpace(notes), requestcontext.Now(ctx))
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, c); err != nil {
			return sentinel.ToDomain(err, "case")
		}
		_, err := s.auditor.Record(ctx, actor, audit.ActionCaseOpened, audit.EntityAcquisitionCase, c.ID.String(), map[string]any{
			"buyer_id":            buyer.ID.String(),
			"listing_id":          listingID.String(),
			"destination_country": c.DestinationCountry,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "case opened",
		"case_id", c.ID,
		"listing_id", listingID,
		"buyer_id", buyer.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return c, nil
}

// change is one committed transition within a unit.
type change struct {
	machine lifecycle.Machine
	from    string
	to      string
	action  audit.Action
	details map[string]any
}

type mutation func(ctx context.Context, c *models.Case, now time.Time) ([]change, error)

// mutate runs fn against a fresh copy of the case under its lock. The case
// and its audit entries commit in one unit with whatever fn wrote.
func (s *Service) mutate(ctx context.Context, caseID id.CaseID, machine lifecycle.Machine, target string, action authz.Action, owned bool, fn mutation) (c *models.Case, err error) {
	ctx, end := lifecycle.StartTransition(ctx, machine, caseID.String(), target)
	defer func() {
		s.metrics.IncRejection(machine, err)
		end(err)
	}()

	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, action, authz.Resource{}); err != nil {
		return nil, err
	}
	release, err := s.locker.Acquire(ctx, lock.Key("case", caseID))
	if err != nil {
		return nil, err
	}
	defer release()

	var changes []change
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.store.Find(ctx, caseID)
		if err != nil {
			return sentinel.ToDomain(err, "case")
		}
		if owned {
			owner, err := s.buyerUser(ctx, c.BuyerID)
			if err != nil {
				return err
			}
			if err := authz.Authorize(actor, action, authz.Owned(owner)); err != nil {
				return err
			}
		}
		changes, err = fn(ctx, c, requestcontext.Now(ctx))
		if err != nil || len(changes) == 0 {
			return err
		}
		if err := s.store.Save(ctx, c); err != nil {
			return sentinel.ToDomain(err, "case")
		}
		for _, ch := range changes {
			details := map[string]any{"from": ch.from, "to": ch.to}
			for k, v := range ch.details {
				details[k] = v
			}
			if _, err := s.auditor.Record(ctx, actor, ch.action, audit.EntityAcquisitionCase, c.ID.String(), details); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ch := range changes {
		s.metrics.IncTransition(ch.machine, ch.from, ch.to)
		s.logger.InfoContext(ctx, "case transitioned",
			"case_id", c.ID,
			"machine", ch.machine,
			"from", ch.from,
			"to", ch.to,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.notifyBuyer(ctx, c, changes)
	return c, nil
}

func (s *Service) notifyBuyer(ctx context.Context, c *models.Case, changes []change) {
	if len(changes) == 0 {
		return
	}
	buyer, err := s.buyers.GetBuyer(ctx, c.BuyerID)
	if err != nil {
		s.logger.WarnContext(ctx, "case notification skipped", "case_id", c.ID, "error", err)
		return
	}
	for _, ch := range changes {
		s.notifier.Notify(ctx, notify.Event{
			Kind:       fmt.Sprintf("case.%s.%s", ch.machine, ch.to),
			EntityType: string(audit.EntityAcquisitionCase),
			EntityID:   c.ID.String(),
			Recipient:  buyer.UserID.String(),
			Message:    fmt.Sprintf("Case %s %s is now %s", c.ID, ch.machine, ch.to),
			At:         requestcontext.Now(ctx),
		})
	}
}

func (s *Service) buyerUser(ctx context.Context, buyerID id.BuyerID) (id.UserID, error) {
	buyer, err := s.buyers.GetBuyer(ctx, buyerID)
	if err != nil {
		return id.UserID{}, sentinel.ToDomain(err, "buyer profile")
	}
	return buyer.UserID, nil
}

func complianceChange(from, to models.ComplianceState, details map[string]any) change {
	return change{
		machine: lifecycle.MachineCompliance,
		from:    string(from),
		to:      string(to),
		action:  audit.ActionComplianceAdvanced,
		details: details,
	}
}

func paymentChange(from, to models.PaymentState, details map[string]any) change {
	return change{
		machine: lifecycle.MachinePayment,
		from:    string(from),
		to:      string(to),
		action:  audit.ActionPaymentTransitioned,
		details: details,
	}
}

// AdvanceCompliance takes the next automatic compliance step. From
// eligibility_check the destination rule decides between documents_pending
// and compliance_rejected; an ineligible destination is a committed
// rejection, not an error. From documents_pending the case documents must be
// ready at this instant.
func (s *Service) AdvanceCompliance(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	return s.mutate(ctx, caseID, lifecycle.MachineCompliance, "next", authz.ActionAdvanceCompliance, false,
		func(ctx context.Context, c *models.Case, now time.Time) ([]change, error) {
			from := c.ComplianceState
			switch from {
			case models.ComplianceEligibilityCheck:
				return s.checkEligibility(ctx, c, now)
			case models.ComplianceDocumentsPending:
				r, err := s.documents.Readiness(ctx, docs.CaseOwner(c.ID), c.RequiredDocs)
				if err != nil {
					return nil, sentinel.ToDomain(err, "case documents")
				}
				if !r.Ready() {
					return nil, c.RejectCompliance(models.ComplianceDocumentsApproved, r.UnmetGuard())
				}
				if err := c.MoveCompliance(models.ComplianceDocumentsApproved, now); err != nil {
					return nil, err
				}
				return []change{complianceChange(from, c.ComplianceState, map[string]any{"complete": r.Complete})}, nil
			default:
				return nil, c.RejectCompliance(from, "no automatic compliance step from "+string(from))
			}
		})
}

func (s *Service) checkEligibility(ctx context.Context, c *models.Case, now time.Time) ([]change, error) {
	from := c.ComplianceState
	l, err := s.listings.GetListing(ctx, c.ListingID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "listing")
	}
	res, err := s.eligibility.Evaluate(ctx, c.DestinationCountry, l.Category)
	switch {
	case dErrors.HasCode(err, dErrors.CodeUnknownDestination):
		res = eligibility.Result{CountryCode: c.DestinationCountry, Category: l.Category, Reason: eligibility.ReasonUnknownDestination}
	case err != nil:
		return nil, err
	}
	details := map[string]any{
		"destination_country": c.DestinationCountry,
		"category":            string(l.Category),
	}
	if !res.Eligible {
		if err := c.MoveCompliance(models.ComplianceRejected, now); err != nil {
			return nil, err
		}
		c.RejectionReason = fmt.Sprintf("%s: %s", dErrors.CodeIneligibleDestination, res.Reason)
		details["reason"] = c.RejectionReason
		return []change{complianceChange(from, c.ComplianceState, details)}, nil
	}
	if err := c.MoveCompliance(models.ComplianceDocumentsPending, now); err != nil {
		return nil, err
	}
	c.SnapshotRequiredDocs(res.RequiredDocs)
	details["required_docs"] = c.RequiredDocs
	return []change{complianceChange(from, c.ComplianceState, details)}, nil
}

// RejectCase is the compliance override into compliance_rejected.
func (s *Service) RejectCase(ctx context.Context, caseID id.CaseID, reason string) (*models.Case, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	return s.mutate(ctx, caseID, lifecycle.MachineCompliance, string(models.ComplianceRejected), authz.ActionRejectCase, false,
		func(_ context.Context, c *models.Case, now time.Time) ([]change, error) {
			from := c.ComplianceState
			if err := c.MoveCompliance(models.ComplianceRejected, now); err != nil {
				return nil, err
			}
			c.RejectionReason = reason
			return []change{complianceChange(from, c.ComplianceState, map[string]any{"reason": reason})}, nil
		})
}

// WithdrawCase lets the buyer step back. The pair may then be reopened.
func (s *Service) WithdrawCase(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	return s.mutate(ctx, caseID, lifecycle.MachineCompliance, stateWithdrawn, authz.ActionWithdrawCase, true,
		func(_ context.Context, c *models.Case, now time.Time) ([]change, error) {
			reject := func(guard string) error {
				return lifecycle.Reject(lifecycle.MachineCompliance, string(c.ComplianceState), stateWithdrawn, guard)
			}
			switch {
			case c.WithdrawnAt != nil:
				return nil, reject("case is withdrawn")
			case c.ComplianceState == models.ComplianceRejected:
				return nil, reject("case is rejected")
			case c.PaymentState == models.PaymentAuthorized || c.PaymentState == models.PaymentCaptured:
				return nil, reject("open payment must be refunded or failed first")
			}
			c.WithdrawnAt = &now
			c.UpdatedAt = now
			return []change{{
				machine: lifecycle.MachineCompliance,
				from:    string(c.ComplianceState),
				to:      stateWithdrawn,
				action:  audit.ActionCaseWithdrawn,
			}}, nil
		})
}

// AuthorizePayment, CapturePayment and FailPayment are payment provider
// callbacks.
func (s *Service) AuthorizePayment(ctx context.Context, caseID id.CaseID, reference string) (*models.Case, error) {
	return s.payment(ctx, caseID, models.PaymentAuthorized, authz.ActionPaymentCallback, reference)
}

// CapturePayment captures into escrow. When the case is already compliant
// and its shipment delivered, funds are released in the same unit.
func (s *Service) CapturePayment(ctx context.Context, caseID id.CaseID, reference string) (*models.Case, error) {
	return s.payment(ctx, caseID, models.PaymentCaptured, authz.ActionPaymentCallback, reference)
}

func (s *Service) FailPayment(ctx context.Context, caseID id.CaseID, reference string) (*models.Case, error) {
	return s.payment(ctx, caseID, models.PaymentFailed, authz.ActionPaymentCallback, reference)
}

func (s *Service) RefundPayment(ctx context.Context, caseID id.CaseID, reference string) (*models.Case, error) {
	return s.payment(ctx, caseID, models.PaymentRefunded, authz.ActionRefundPayment, reference)
}

func (s *Service) payment(ctx context.Context, caseID id.CaseID, to models.PaymentState, action authz.Action, reference string) (*models.Case, error) {
	return s.mutate(ctx, caseID, lifecycle.MachinePayment, string(to), action, false,
		func(ctx context.Context, c *models.Case, now time.Time) ([]change, error) {
			from := c.PaymentState
			if (to == models.PaymentAuthorized || to == models.PaymentCaptured) && !c.Active() {
				return nil, c.RejectPayment(to, "case must be active")
			}
			if err := c.MovePayment(to, now); err != nil {
				return nil, err
			}
			var details map[string]any
			if reference != "" {
				details = map[string]any{"reference": reference}
			}
			changes := []change{paymentChange(from, to, details)}
			if to != models.PaymentCaptured || c.ComplianceState != models.ComplianceDocumentsApproved {
				return changes, nil
			}
			released, err := s.tryRelease(ctx, c, now)
			if err != nil {
				return nil, err
			}
			return append(changes, released...), nil
		})
}

// ReleaseFunds is the external escrow release. It completes the case and
// marks the listing sold.
func (s *Service) ReleaseFunds(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	return s.mutate(ctx, caseID, lifecycle.MachinePayment, stateReleased, authz.ActionReleaseFunds, false,
		func(ctx context.Context, c *models.Case, now time.Time) ([]change, error) {
			delivered, err := s.delivered(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			if guard := c.ReleaseGuard(delivered); guard != "" {
				return nil, lifecycle.Reject(lifecycle.MachinePayment, string(c.PaymentState), stateReleased, guard)
			}
			return s.release(ctx, c, now)
		})
}

// SettleDelivery is called once the case's shipment is delivered. It
// releases funds if payment and compliance already allow it.
func (s *Service) SettleDelivery(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	return s.mutate(ctx, caseID, lifecycle.MachinePayment, stateReleased, authz.ActionReleaseFunds, false, s.tryRelease)
}

// tryRelease releases funds when every condition already holds, and is a
// no-op otherwise.
func (s *Service) tryRelease(ctx context.Context, c *models.Case, now time.Time) ([]change, error) {
	delivered, err := s.delivered(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if c.ReleaseGuard(delivered) != "" {
		return nil, nil
	}
	return s.release(ctx, c, now)
}

// release must run inside the case's unit with the case lock held. The
// listing lock is taken after the case lock.
func (s *Service) release(ctx context.Context, c *models.Case, now time.Time) ([]change, error) {
	if _, err := s.listings.MarkSold(ctx, c.ListingID, c.ID); err != nil {
		return nil, err
	}
	c.FundsReleasedAt = &now
	c.UpdatedAt = now
	return []change{{
		machine: lifecycle.MachinePayment,
		from:    string(c.PaymentState),
		to:      stateReleased,
		action:  audit.ActionFundsReleased,
		details: map[string]any{"listing_id": c.ListingID.String()},
	}}, nil
}

func (s *Service) delivered(ctx context.Context, caseID id.CaseID) (bool, error) {
	if s.shipments == nil {
		return false, nil
	}
	ok, err := s.shipments.DeliveredForCase(ctx, caseID)
	if err != nil {
		return false, sentinel.ToDomain(err, "shipment")
	}
	return ok, nil
}

// GetCase returns a case visible to its buyer, compliance or system.
func (s *Service) GetCase(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	c, err := s.store.Find(ctx, caseID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "case")
	}
	owner, err := s.buyerUser(ctx, c.BuyerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(requestcontext.Actor(ctx), authz.ActionViewCase, authz.Owned(owner)); err != nil {
		return nil, err
	}
	return c, nil
}

// ListMyCases returns the calling buyer's cases.
func (s *Service) ListMyCases(ctx context.Context) ([]*models.Case, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionViewCase, authz.Owned(actor.ID)); err != nil {
		return nil, err
	}
	buyer, err := s.buyers.BuyerForUser(ctx, actor.ID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "buyer profile")
	}
	cases, err := s.store.ListByBuyer(ctx, buyer.ID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "case")
	}
	return cases, nil
}

// Readiness reports the case documents against the required types captured
// at eligibility. Before eligibility has run, the destination's current rule
// is used as a preview.
func (s *Service) Readiness(ctx context.Context, caseID id.CaseID) (docs.Readiness, error) {
	c, err := s.GetCase(ctx, caseID)
	if err != nil {
		return docs.Readiness{}, err
	}
	required := c.RequiredDocs
	if c.ComplianceState == models.ComplianceEligibilityCheck {
		l, err := s.listings.GetListing(ctx, c.ListingID)
		if err != nil {
			return docs.Readiness{}, sentinel.ToDomain(err, "listing")
		}
		res, err := s.eligibility.Evaluate(ctx, c.DestinationCountry, l.Category)
		if err != nil && !dErrors.HasCode(err, dErrors.CodeUnknownDestination) {
			return docs.Readiness{}, err
		}
		required = res.RequiredDocs
	}
	return s.documents.Readiness(ctx, docs.CaseOwner(c.ID), required)
}

// LookupCase reads a case without an actor check, for collaborating
// services.
func (s *Service) LookupCase(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	c, err := s.store.Find(ctx, caseID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "case")
	}
	return c, nil
}

// ResolveDocumentOwner returns the user behind the case's buyer.
func (s *Service) ResolveDocumentOwner(ctx context.Context, owner docs.Owner) (id.UserID, error) {
	c, err := s.store.Find(ctx, id.CaseID(owner.ID))
	if err != nil {
		return id.UserID{}, sentinel.ToDomain(err, "case")
	}
	return s.buyerUser(ctx, c.BuyerID)
}
