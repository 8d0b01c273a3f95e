package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"terralegit/internal/authz"
	"terralegit/internal/inquiry/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, inq *models.Inquiry) error
	Save(ctx context.Context, inq *models.Inquiry) error
	Find(ctx context.Context, inquiryID id.InquiryID) (*models.Inquiry, error)
	List(ctx context.Context, status *models.Status) ([]*models.Inquiry, error)
}

// Service accepts contact-form inquiries and lets compliance staff triage them.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SubmitInquiryCommand struct {
	Type         models.Type
	Name         string
	Email        string
	Organization string
	Message      string
}

// SubmitInquiry is open to anonymous callers.
func (s *Service) SubmitInquiry(ctx context.Context, cmd SubmitInquiryCommand) (*models.Inquiry, error) {
	if err := authz.Authorize(requestcontext.Actor(ctx), authz.ActionSubmitInquiry, authz.Resource{}); err != nil {
		return nil, err
	}
	inq, err := models.New(id.InquiryID(uuid.New()), cmd.Type, cmd.Name, cmd.Email, cmd.Organization, cmd.Message, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, inq); err != nil {
		return nil, sentinel.ToDomain(err, "inquiry")
	}
	s.logger.InfoContext(ctx, "inquiry submitted",
		"inquiry_id", inq.ID,
		"type", inq.Type,
		"request_id", requestcontext.RequestID(ctx),
	)
	return inq, nil
}

func (s *Service) ListInquiries(ctx context.Context, status *models.Status) ([]*models.Inquiry, error) {
	if err := authz.Authorize(requestcontext.Actor(ctx), authz.ActionManageInquiries, authz.Resource{}); err != nil {
		return nil, err
	}
	list, err := s.store.List(ctx, status)
	if err != nil {
		return nil, sentinel.ToDomain(err, "inquiry")
	}
	return list, nil
}

// MarkInquiryHandled is idempotent.
func (s *Service) MarkInquiryHandled(ctx context.Context, inquiryID id.InquiryID) (*models.Inquiry, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionManageInquiries, authz.Resource{}); err != nil {
		return nil, err
	}
	inq, err := s.store.Find(ctx, inquiryID)
	if err != nil {
		return nil, sentinel.ToDomain(err, "inquiry")
	}
	if inq.Status == models.StatusHandled {
		return inq, nil
	}
	inq.MarkHandled(requestcontext.Now(ctx))
	if err := s.store.Save(ctx, inq); err != nil {
		return nil, sentinel.ToDomain(err, "inquiry")
	}
	s.logger.InfoContext(ctx, "inquiry handled",
		"inquiry_id", inq.ID,
		"actor_id", actor.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return inq, nil
}
