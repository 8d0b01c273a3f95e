package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"terralegit/internal/inquiry/models"
	"terralegit/internal/inquiry/service"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/requestcontext"
)

type Service interface {
	SubmitInquiry(ctx context.Context, cmd service.SubmitInquiryCommand) (*models.Inquiry, error)
	ListInquiries(ctx context.Context, status *models.Status) ([]*models.Inquiry, error)
	MarkInquiryHandled(ctx context.Context, inquiryID id.InquiryID) (*models.Inquiry, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/inquiries", h.HandleSubmit)
	r.Get("/inquiries", h.HandleList)
	r.Post("/inquiries/{id}/handled", h.HandleMarkHandled)
}

type SubmitInquiryRequest struct {
	Type         string `json:"inquiry_type"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Message      string `json:"message"`

	typ models.Type
}

// Validate only parses the type; field rules live on the model.
func (r *SubmitInquiryRequest) Validate() error {
	typ, err := models.ParseType(r.Type)
	if err != nil {
		return err
	}
	r.typ = typ
	return nil
}

type InquiryResponse struct {
	ID           string     `json:"id"`
	Type         string     `json:"inquiry_type"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Organization string     `json:"organization,omitempty"`
	Message      string     `json:"message"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	HandledAt    *time.Time `json:"handled_at,omitempty"`
}

func toResponse(inq *models.Inquiry) InquiryResponse {
	return InquiryResponse{
		ID:           inq.ID.String(),
		Type:         string(inq.Type),
		Name:         inq.Name,
		Email:        inq.Email,
		Organization: inq.Organization,
		Message:      inq.Message,
		Status:       string(inq.Status),
		CreatedAt:    inq.CreatedAt,
		HandledAt:    inq.HandledAt,
	}
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitInquiryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	inq, err := h.service.SubmitInquiry(ctx, service.SubmitInquiryCommand{
		Type:         req.typ,
		Name:         req.Name,
		Email:        req.Email,
		Organization: req.Organization,
		Message:      req.Message,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit inquiry failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(inq))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var filter *models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter = &status
	}
	list, err := h.service.ListInquiries(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]InquiryResponse, 0, len(list))
	for _, inq := range list {
		out = append(out, toResponse(inq))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"inquiries": out})
}

func (h *Handler) HandleMarkHandled(w http.ResponseWriter, r *http.Request) {
	inquiryID, err := id.ParseInquiryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inq, err := h.service.MarkInquiryHandled(r.Context(), inquiryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(inq))
}
