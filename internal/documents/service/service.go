package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"terralegit/internal/authz"
	"terralegit/internal/documents/models"
	"terralegit/internal/platform/lock"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

// Store persists documents.
type Store interface {
	Create(ctx context.Context, d *models.Document) error
	Save(ctx context.Context, d *models.Document) error
	Find(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	ListByOwner(ctx context.Context, owner models.Owner) ([]models.Document, error)
}

// AuditRecorder appends fail-closed audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, actor id.Actor, action audit.Action, entityType audit.EntityType, entityID string, details map[string]any) (audit.Entry, error)
}

// BlobStore writes uploaded file content.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// OwnerResolver confirms an owner exists and returns the user who controls
// it. A nil UserID means no single user owns it.
type OwnerResolver interface {
	ResolveDocumentOwner(ctx context.Context, owner models.Owner) (id.UserID, error)
}

// Resolvers dispatches owner resolution by kind. Entries may be added after
// the service is built.
type Resolvers map[models.OwnerKind]OwnerResolver

func (r Resolvers) ResolveDocumentOwner(ctx context.Context, owner models.Owner) (id.UserID, error) {
	res, ok := r[owner.Kind]
	if !ok {
		return id.UserID{}, dErrors.Newf(dErrors.CodeInvalidInput, "documents cannot be attached to %s", owner.Kind)
	}
	return res.ResolveDocumentOwner(ctx, owner)
}

// Service manages document uploads, review and readiness.
type Service struct {
	store    Store
	runner   tx.Runner
	auditor  AuditRecorder
	blobs    BlobStore
	owners   OwnerResolver
	locker   lock.Locker
	logger   *slog.Logger
	metrics  *Metrics
	maxBytes int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithMaxBytes caps inline upload content.
func WithMaxBytes(n int) Option {
	return func(s *Service) { s.maxBytes = n }
}

func New(store Store, runner tx.Runner, auditor AuditRecorder, blobs BlobStore, owners OwnerResolver, opts ...Option) *Service {
	s := &Service{
		store:    store,
		runner:   runner,
		auditor:  auditor,
		blobs:    blobs,
		owners:   owners,
		locker:   lock.NewMemory(),
		logger:   slog.Default(),
		maxBytes: 10 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadCommand describes a new document. Content is optional; without it
// FileURL must point at an already stored file.
type UploadCommand struct {
	Owner       models.Owner
	Type        string
	FileName    string
	FileURL     string
	ContentType string
	Content     []byte
	ExpiryDate  *time.Time
	Notes       string
	Submit      bool
}

// Upload attaches a document to its owner as draft, or submitted when
// cmd.Submit is set.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (*models.Document, error) {
	actor := requestcontext.Actor(ctx)
	docType := strings.TrimSpace(cmd.Type)
	fileName := path.Base(strings.TrimSpace(cmd.FileName))
	if docType == "" || fileName == "" || fileName == "." || fileName == "/" {
		return nil, dErrors.New(dErrors.CodeValidation, "document type and file name are required")
	}
	if len(cmd.Content) > s.maxBytes {
		return nil, dErrors.Newf(dErrors.CodeValidation, "document exceeds %d bytes", s.maxBytes)
	}
	if len(cmd.Content) == 0 && cmd.FileURL == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "content or file url is required")
	}

	ownerUser, err := s.owners.ResolveDocumentOwner(ctx, cmd.Owner)
	if err != nil {
		return nil, sentinel.ToDomain(err, string(cmd.Owner.Kind))
	}
	if err := authz.Authorize(actor, authz.ActionUploadDocument, authz.Owned(ownerUser)); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	doc := &models.Document{
		ID:         id.DocumentID(uuid.New()),
		Owner:      cmd.Owner,
		Type:       docType,
		FileName:   fileName,
		FileURL:    cmd.FileURL,
		Status:     models.StatusDraft,
		ExpiryDate: cmd.ExpiryDate,
		Notes:      cmd.Notes,
		UploadedAt: now,
	}
	if cmd.Submit {
		doc.Status = models.StatusSubmitted
	}
	if len(cmd.Content) > 0 {
		key := fmt.Sprintf("%s/%s/%s/%s", cmd.Owner.Kind, cmd.Owner.ID, doc.ID, fileName)
		url, err := s.blobs.Put(ctx, key, cmd.ContentType, cmd.Content)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "document storage unavailable")
		}
		doc.FileURL = url
	}

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, doc); err != nil {
			return sentinel.ToDomain(err, "document")
		}
		_, err := s.auditor.Record(ctx, actor, audit.ActionDocumentUploaded, audit.EntityDocument, doc.ID.String(), map[string]any{
			"owner_kind":    string(doc.Owner.Kind),
			"owner_id":      doc.Owner.ID.String(),
			"document_type": doc.Type,
			"status":        string(doc.Status),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "document uploaded",
		"document_id", doc.ID,
		"owner", doc.Owner.String(),
		"document_type", doc.Type,
		"request_id", requestcontext.RequestID(ctx),
	)
	return doc, nil
}

// Submit sends a draft or needs-action document to review.
func (s *Service) Submit(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	return s.transition(ctx, docID, models.StatusSubmitted, "")
}

func (s *Service) StartReview(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	return s.transition(ctx, docID, models.StatusUnderReview, "")
}

func (s *Service) Approve(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	return s.transition(ctx, docID, models.StatusApproved, "")
}

// RequestAction returns a document to its owner with reviewer notes.
func (s *Service) RequestAction(ctx context.Context, docID id.DocumentID, notes string) (*models.Document, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "notes are required when requesting action")
	}
	return s.transition(ctx, docID, models.StatusNeedsAction, notes)
}

func (s *Service) transition(ctx context.Context, docID id.DocumentID, to models.Status, notes string) (*models.Document, error) {
	actor := requestcontext.Actor(ctx)
	release, err := s.locker.Acquire(ctx, lock.Key("document", docID))
	if err != nil {
		return nil, err
	}
	defer release()

	var doc *models.Document
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.store.Find(ctx, docID)
		if err != nil {
			return sentinel.ToDomain(err, "document")
		}
		if err := s.authorizeTransition(ctx, actor, doc, to); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		from := doc.EffectiveStatus(now)
		if err := doc.Transition(to, notes, now); err != nil {
			return err
		}
		if err := s.store.Save(ctx, doc); err != nil {
			return sentinel.ToDomain(err, "document")
		}
		details := map[string]any{"from": string(from), "to": string(to)}
		if notes != "" {
			details["notes"] = notes
		}
		_, err = s.auditor.Record(ctx, actor, audit.ActionDocumentStatusChanged, audit.EntityDocument, doc.ID.String(), details)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) authorizeTransition(ctx context.Context, actor id.Actor, doc *models.Document, to models.Status) error {
	if to != models.StatusSubmitted {
		return authz.Authorize(actor, authz.ActionReviewDocument, authz.Resource{})
	}
	ownerUser, err := s.owners.ResolveDocumentOwner(ctx, doc.Owner)
	if err != nil {
		return sentinel.ToDomain(err, string(doc.Owner.Kind))
	}
	return authz.Authorize(actor, authz.ActionUploadDocument, authz.Owned(ownerUser))
}

func (s *Service) authorizeView(ctx context.Context, owner models.Owner) error {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionViewDocument, authz.Resource{}); err != nil {
		return err
	}
	if actor.Role.IsCompliance() || actor.Role == id.RoleSystem {
		return nil
	}
	ownerUser, err := s.owners.ResolveDocumentOwner(ctx, owner)
	if err != nil {
		return sentinel.ToDomain(err, string(owner.Kind))
	}
	return authz.Authorize(actor, authz.ActionViewDocument, authz.Owned(ownerUser))
}

func (s *Service) Get(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	d, err := s.store.Find(ctx, docID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "document")
	}
	if err := s.authorizeView(ctx, d.Owner); err != nil {
		return nil, err
	}
	return d, nil
}

// ListByOwner returns owner's documents to the owner and to compliance.
func (s *Service) ListByOwner(ctx context.Context, owner models.Owner) ([]models.Document, error) {
	if err := s.authorizeView(ctx, owner); err != nil {
		return nil, err
	}
	return s.listByOwner(ctx, owner)
}

func (s *Service) listByOwner(ctx context.Context, owner models.Owner) ([]models.Document, error) {
	docs, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, sentinel.ToDomain(err, "document")
	}
	return docs, nil
}

// Readiness evaluates the owner's documents against required at the
// request time. Expiry is applied here, at read time.
func (s *Service) Readiness(ctx context.Context, owner models.Owner, required []string) (models.Readiness, error) {
	docs, err := s.ListByOwner(ctx, owner)
	if err != nil {
		return models.Readiness{}, err
	}
	r := models.ComputeReadiness(docs, required, requestcontext.Now(ctx))
	s.metrics.observeReadiness(string(owner.Kind), r.Ready())
	return r, nil
}

// HealthDocStatus is the effective status of a listing's latest document of
// docType. Only the status leaves the service, so public listing reads use it.
func (s *Service) HealthDocStatus(ctx context.Context, listingID id.ListingID, docType string) (models.Status, error) {
	docs, err := s.listByOwner(ctx, models.ListingOwner(listingID))
	if err != nil {
		return "", err
	}
	return models.HealthStatus(docs, docType, requestcontext.Now(ctx)), nil
}
