package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	acquisition "terralegit/internal/acquisition/models"
	"terralegit/internal/authz"
	docs "terralegit/internal/documents/models"
	"terralegit/internal/lifecycle"
	"terralegit/internal/notify"
	"terralegit/internal/platform/lock"
	"terralegit/internal/shipment/models"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

const (
	guardCaseApproved = "case complianceState must be documents_approved"
	guardCaseActive   = "linked case is no longer active"
	stateCheckpoint   = "checkpoint"
	stateHoldCleared  = "hold_cleared"
)

// Store persists shipments and their append-only checkpoints.
type Store interface {
	Create(ctx context.Context, sh *models.Shipment) error
	Save(ctx context.Context, sh *models.Shipment) error
	Find(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error)
	FindByCase(ctx context.Context, caseID id.CaseID) (*models.Shipment, error)
	AppendCheckpoint(ctx context.Context, cp models.WelfareCheckpoint) error
	ListCheckpoints(ctx context.Context, shipmentID id.ShipmentID) ([]models.WelfareCheckpoint, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actor id.Actor, action audit.Action, entityType audit.EntityType, entityID string, details map[string]any) (audit.Entry, error)
}

// Cases is the acquisition side of a shipment: the precondition on creation,
// the owner of the shipment, and the escrow release on delivery.
type Cases interface {
	LookupCase(ctx context.Context, caseID id.CaseID) (*acquisition.Case, error)
	ResolveDocumentOwner(ctx context.Context, owner docs.Owner) (id.UserID, error)
	SettleDelivery(ctx context.Context, caseID id.CaseID) (*acquisition.Case, error)
}

type Documents interface {
	Readiness(ctx context.Context, owner docs.Owner, required []string) (docs.Readiness, error)
}

// Service owns the shipment machine and welfare checkpoints.
type Service struct {
	store        Store
	runner       tx.Runner
	auditor      AuditRecorder
	cases        Cases
	documents    Documents
	requiredDocs []string
	locker       lock.Locker
	notifier     notify.Sink
	metrics      *lifecycle.Metrics
	logger       *slog.Logger
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

// WithRequiredDocs sets the document types a shipment needs before
// documents_approved.
func WithRequiredDocs(types []string) Option {
	return func(s *Service) { s.requiredDocs = types }
}

func New(store Store, runner tx.Runner, auditor AuditRecorder, cases Cases, documents Documents, opts ...Option) *Service {
	s := &Service{
		store:        store,
		runner:       runner,
		auditor:      auditor,
		cases:        cases,
		documents:    documents,
		requiredDocs: []string{"transport_manifest", "welfare_plan"},
		locker:       lock.NewMemory(),
		notifier:     notify.Discard{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateShipmentCommand describes a new shipment for a compliant case.
type CreateShipmentCommand struct {
	CaseID             id.CaseID
	OriginCountry      string
	Route              []models.Waypoint
	WelfarePlanID      string
	EstimatedDeparture *time.Time
	EstimatedArrival   *time.Time
}

// CreateShipment requests a quote for a case whose compliance state is
// documents_approved. A case has at most one live shipment; a cancelled one
// may be replaced.
func (s *Service) CreateShipment(ctx context.Context, cmd CreateShipmentCommand) (*models.Shipment, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionCreateShipment, authz.Resource{}); err != nil {
		return nil, err
	}
	origin, err := id.ParseCountryCode(cmd.OriginCountry)
	if err != nil {
		return nil, err
	}
	if cmd.EstimatedDeparture != nil && cmd.EstimatedArrival != nil && cmd.EstimatedArrival.Before(*cmd.EstimatedDeparture) {
		return nil, dErrors.New(dErrors.CodeValidation, "estimated arrival precedes departure")
	}

	release, err := s.locker.Acquire(ctx, lock.Key("case", cmd.CaseID))
	if err != nil {
		return nil, err
	}
	defer release()

	c, err := s.cases.LookupCase(ctx, cmd.CaseID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "case")
	}
	reject := func(guard string) error {
		return lifecycle.Reject(lifecycle.MachineShipment, "", string(models.StatusQuoteRequested), guard)
	}
	if c.ComplianceState != acquisition.ComplianceDocumentsApproved {
		return nil, reject(guardCaseApproved)
	}
	if !c.Active() {
		return nil, reject(guardCaseActive)
	}

	now := requestcontext.Now(ctx)
	caseID := c.ID
	sh := &models.Shipment{
		ID:                 id.ShipmentID(uuid.New()),
		CaseID:             &caseID,
		OriginCountry:      origin,
		DestinationCountry: c.DestinationCountry,
		Status:             models.StatusQuoteRequested,
		Route:              cmd.Route,
		WelfarePlanID:      strings.TrimSpace(cmd.WelfarePlanID),
		EstimatedDeparture: cmd.EstimatedDeparture,
		EstimatedArrival:   cmd.EstimatedArrival,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, sh); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "case already has a live shipment")
			}
			return sentinel.ToDomain(err, "shipment")
		}
		_, err := s.auditor.Record(ctx, actor, audit.ActionShipmentCreated, audit.EntityShipment, sh.ID.String(), map[string]any{
			"case_id":             caseID.String(),
			"origin_country":      sh.OriginCountry,
			"destination_country": sh.DestinationCountry,
			"waypoints":           len(sh.Route),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "shipment created",
		"shipment_id", sh.ID,
		"case_id", caseID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return sh, nil
}

type step struct {
	action  authz.Action
	audit   audit.Action
	to      string
	details map[string]any
	apply   func(ctx context.Context, sh *models.Shipment, now time.Time) error
	// checkpoint is appended in the same unit when set.
	checkpoint *models.WelfareCheckpoint
}

// mutate applies st to a fresh copy of the shipment under its lock.
func (s *Service) mutate(ctx context.Context, shipmentID id.ShipmentID, st step) (sh *models.Shipment, from models.Status, err error) {
	ctx, end := lifecycle.StartTransition(ctx, lifecycle.MachineShipment, shipmentID.String(), st.to)
	defer func() {
		s.metrics.IncRejection(lifecycle.MachineShipment, err)
		end(err)
	}()

	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, st.action, authz.Resource{}); err != nil {
		return nil, "", err
	}
	release, err := s.locker.Acquire(ctx, lock.Key("shipment", shipmentID))
	if err != nil {
		return nil, "", err
	}
	defer release()

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		sh, err = s.store.Find(ctx, shipmentID)
		if err != nil {
			return sentinel.ToDomain(err, "shipment")
		}
		from = sh.Status
		now := requestcontext.Now(ctx)
		if err := st.apply(ctx, sh, now); err != nil {
			return err
		}
		if err := s.store.Save(ctx, sh); err != nil {
			return sentinel.ToDomain(err, "shipment")
		}
		if st.checkpoint != nil {
			st.checkpoint.ShipmentID = sh.ID
			st.checkpoint.RecordedAt = now
			if err := s.store.AppendCheckpoint(ctx, *st.checkpoint); err != nil {
				return sentinel.ToDomain(err, "checkpoint")
			}
		}
		details := map[string]any{"from": string(from), "to": st.to}
		for k, v := range st.details {
			details[k] = v
		}
		_, err = s.auditor.Record(ctx, actor, st.audit, audit.EntityShipment, sh.ID.String(), details)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	if sh.Status != from {
		s.metrics.IncTransition(lifecycle.MachineShipment, string(from), string(sh.Status))
	}
	s.logger.InfoContext(ctx, "shipment updated",
		"shipment_id", sh.ID,
		"action", st.audit,
		"from", from,
		"to", st.to,
		"held_for_welfare", sh.HeldForWelfare,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.notify(ctx, sh, st.to)
	return sh, from, nil
}

// AdvanceShipment moves the shipment one step forward. Cancellation has its
// own operation.
func (s *Service) AdvanceShipment(ctx context.Context, shipmentID id.ShipmentID, to models.Status) (*models.Shipment, error) {
	if to == models.StatusCancelled {
		return nil, dErrors.New(dErrors.CodeValidation, "use cancel to cancel a shipment")
	}
	sh, _, err := s.mutate(ctx, shipmentID, step{
		action: authz.ActionAdvanceShipment,
		audit:  audit.ActionShipmentTransitioned,
		to:     string(to),
		apply: func(ctx context.Context, sh *models.Shipment, now time.Time) error {
			if err := models.Transitions.Check(sh.Status, to); err != nil {
				return err
			}
			if sh.CaseID != nil && !sh.HeldForWelfare {
				c, err := s.cases.LookupCase(ctx, *sh.CaseID)
				if err != nil {
					return sentinel.ToDomain(err, "case")
				}
				if !c.Active() {
					return sh.Reject(to, guardCaseActive)
				}
			}
			if to == models.StatusDocumentsApproved && !sh.HeldForWelfare {
				r, err := s.documents.Readiness(ctx, docs.ShipmentOwner(sh.ID), s.requiredDocs)
				if err != nil {
					return sentinel.ToDomain(err, "shipment documents")
				}
				if !r.Ready() {
					return sh.Reject(to, r.UnmetGuard())
				}
			}
			return sh.Move(to, now)
		},
	})
	if err != nil {
		return nil, err
	}
	if sh.Status == models.StatusDelivered && sh.CaseID != nil {
		s.settle(ctx, *sh.CaseID)
	}
	return sh, nil
}

// settle asks the case to release escrowed funds. The delivery is already
// committed, so a failure here is logged and the release can be retried
// through the case.
func (s *Service) settle(ctx context.Context, caseID id.CaseID) {
	sysCtx := requestcontext.WithActor(ctx, id.SystemActor())
	c, err := s.cases.SettleDelivery(sysCtx, caseID)
	if err != nil {
		s.logger.WarnContext(ctx, "funds release after delivery failed",
			"case_id", caseID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "delivery settled",
		"case_id", caseID,
		"funds_released", c.FundsReleasedAt != nil,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// CancelShipment is allowed from any non-terminal state, held or not.
func (s *Service) CancelShipment(ctx context.Context, shipmentID id.ShipmentID, reason string) (*models.Shipment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "cancel reason is required")
	}
	sh, _, err := s.mutate(ctx, shipmentID, step{
		action:  authz.ActionCancelShipment,
		audit:   audit.ActionShipmentTransitioned,
		to:      string(models.StatusCancelled),
		details: map[string]any{"reason": reason},
		apply: func(_ context.Context, sh *models.Shipment, now time.Time) error {
			return sh.Cancel(reason, now)
		},
	})
	return sh, err
}

// RecordCheckpointCommand is one welfare observation.
type RecordCheckpointCommand struct {
	Type           models.CheckpointType
	Location       string
	ConditionNotes string
	Temperature    *float64
	Passed         bool
}

// RecordCheckpoint appends a checkpoint. A failed one holds the shipment.
func (s *Service) RecordCheckpoint(ctx context.Context, shipmentID id.ShipmentID, cmd RecordCheckpointCommand) (*models.WelfareCheckpoint, error) {
	if strings.TrimSpace(cmd.Location) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "location is required")
	}
	cp := &models.WelfareCheckpoint{
		ID:             id.CheckpointID(uuid.New()),
		Type:           cmd.Type,
		Location:       strings.TrimSpace(cmd.Location),
		ConditionNotes: strings.TrimSpace(cmd.ConditionNotes),
		Temperature:    cmd.Temperature,
		Passed:         cmd.Passed,
	}
	_, _, err := s.mutate(ctx, shipmentID, step{
		action:     authz.ActionRecordCheckpoint,
		audit:      audit.ActionCheckpointRecorded,
		to:         stateCheckpoint,
		checkpoint: cp,
		details: map[string]any{
			"checkpoint_id":   cp.ID.String(),
			"checkpoint_type": string(cp.Type),
			"location":        cp.Location,
			"passed":          cp.Passed,
		},
		apply: func(_ context.Context, sh *models.Shipment, now time.Time) error {
			return sh.Observe(*cp, now)
		},
	})
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// ClearWelfareHold lets a compliance actor lift a welfare hold.
func (s *Service) ClearWelfareHold(ctx context.Context, shipmentID id.ShipmentID, notes string) (*models.Shipment, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "clearance notes are required")
	}
	sh, _, err := s.mutate(ctx, shipmentID, step{
		action:  authz.ActionClearWelfareHold,
		audit:   audit.ActionWelfareHoldCleared,
		to:      stateHoldCleared,
		details: map[string]any{"notes": notes},
		apply: func(_ context.Context, sh *models.Shipment, now time.Time) error {
			return sh.ClearHold(now)
		},
	})
	return sh, err
}

func (s *Service) notify(ctx context.Context, sh *models.Shipment, what string) {
	if sh.CaseID == nil {
		return
	}
	recipient, err := s.cases.ResolveDocumentOwner(ctx, docs.CaseOwner(*sh.CaseID))
	if err != nil {
		s.logger.WarnContext(ctx, "shipment notification skipped", "shipment_id", sh.ID, "error", err)
		return
	}
	s.notifier.Notify(ctx, notify.Event{
		Kind:       fmt.Sprintf("shipment.%s", what),
		EntityType: string(audit.EntityShipment),
		EntityID:   sh.ID.String(),
		Recipient:  recipient.String(),
		Message:    fmt.Sprintf("Shipment %s is %s", sh.ID, sh.Status),
		Data:       map[string]string{"held_for_welfare": strconv.FormatBool(sh.HeldForWelfare)},
		At:         requestcontext.Now(ctx),
	})
}

// GetShipment is visible to the case's buyer, compliance and system.
func (s *Service) GetShipment(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error) {
	sh, err := s.store.Find(ctx, shipmentID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "shipment")
	}
	if err := s.authorizeView(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *Service) ListCheckpoints(ctx context.Context, shipmentID id.ShipmentID) ([]models.WelfareCheckpoint, error) {
	if _, err := s.GetShipment(ctx, shipmentID); err != nil {
		return nil, err
	}
	cps, err := s.store.ListCheckpoints(ctx, shipmentID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "checkpoint")
	}
	return cps, nil
}

func (s *Service) authorizeView(ctx context.Context, sh *models.Shipment) error {
	actor := requestcontext.Actor(ctx)
	res := authz.Resource{}
	if sh.CaseID != nil && !actor.Role.IsCompliance() && actor.Role != id.RoleSystem {
		owner, err := s.ResolveDocumentOwner(ctx, docs.ShipmentOwner(sh.ID))
		if err != nil {
			return err
		}
		res = authz.Owned(owner)
	}
	return authz.Authorize(actor, authz.ActionViewShipment, res)
}

// DeliveredForCase reports whether the case's live shipment reached
// delivered.
func (s *Service) DeliveredForCase(ctx context.Context, caseID id.CaseID) (bool, error) {
	sh, err := s.store.FindByCase(ctx, caseID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sh.Status == models.StatusDelivered, nil
}

// ResolveDocumentOwner maps shipment documents to the buyer of the linked
// case.
func (s *Service) ResolveDocumentOwner(ctx context.Context, owner docs.Owner) (id.UserID, error) {
	sh, err := s.store.Find(ctx, id.ShipmentID(owner.ID))
	if err != nil {
		return id.UserID{}, sentinel.ToDomain(err, "shipment")
	}
	if sh.CaseID == nil {
		return id.UserID{}, dErrors.New(dErrors.CodeNotFound, "shipment has no linked case")
	}
	return s.cases.ResolveDocumentOwner(ctx, docs.CaseOwner(*sh.CaseID))
}
