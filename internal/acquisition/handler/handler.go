package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"terralegit/internal/acquisition/models"
	dochandler "terralegit/internal/documents/handler"
	docs "terralegit/internal/documents/models"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/requestcontext"
)

// Service defines the acquisition case operations the handler needs.
type Service interface {
	OpenCase(ctx context.Context, listingID id.ListingID, notes string) (*models.Case, error)
	GetCase(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	ListMyCases(ctx context.Context) ([]*models.Case, error)
	Readiness(ctx context.Context, caseID id.CaseID) (docs.Readiness, error)
	AdvanceCompliance(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	RejectCase(ctx context.Context, caseID id.CaseID, reason string) (*models.Case, error)
	WithdrawCase(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	AuthorizePayment(ctx context.Context, caseID id.CaseID, reference string) (*models.Case, error)
	CapturePayment(ctx context.Context, caseID id.CaseID, reference string) (*models.Case, error)
	FailPayment(ctx context.Context, caseID id.CaseID, reference string) (*models.Case, error)
	RefundPayment(ctx context.Context, caseID id.CaseID, reference string) (*models.Case, error)
	ReleaseFunds(ctx context.Context, caseID id.CaseID) (*models.Case, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/cases", h.HandleOpen)
	r.Get("/cases", h.HandleListMine)
	r.Get("/cases/{id}", h.HandleGet)
	r.Get("/cases/{id}/readiness", h.HandleReadiness)
	r.Post("/cases/{id}/advance", h.transition(h.service.AdvanceCompliance))
	r.Post("/cases/{id}/withdraw", h.transition(h.service.WithdrawCase))
	r.Post("/cases/{id}/release", h.transition(h.service.ReleaseFunds))
	r.Post("/cases/{id}/reject", h.HandleReject)
	r.Post("/cases/{id}/payment/authorize", h.payment(h.service.AuthorizePayment))
	r.Post("/cases/{id}/payment/capture", h.payment(h.service.CapturePayment))
	r.Post("/cases/{id}/payment/fail", h.payment(h.service.FailPayment))
	r.Post("/cases/{id}/payment/refund", h.payment(h.service.RefundPayment))
}

type OpenCaseRequest struct {
	ListingID string `json:"listing_id"`
	Notes     string `json:"notes"`

	listingID id.ListingID
}

func (r *OpenCaseRequest) Validate() error {
	listingID, err := id.ParseListingID(r.ListingID)
	if err != nil {
		return err
	}
	r.listingID = listingID
	return nil
}

type RejectCaseRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectCaseRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

// PaymentRequest carries the provider's reference for a payment callback.
type PaymentRequest struct {
	Reference string `json:"reference"`
}

func (r *PaymentRequest) Validate() error {
	if len(r.Reference) > 256 {
		return dErrors.New(dErrors.CodeValidation, "reference is too long")
	}
	return nil
}

type CaseResponse struct {
	ID                 string     `json:"id"`
	BuyerID            string     `json:"buyer_id"`
	ListingID          string     `json:"listing_id"`
	DestinationCountry string     `json:"destination_country"`
	ComplianceState    string     `json:"compliance_state"`
	PaymentState       string     `json:"payment_state"`
	RequiredDocs       []string   `json:"required_docs"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	Completed          bool       `json:"completed"`
	WithdrawnAt        *time.Time `json:"withdrawn_at,omitempty"`
	FundsReleasedAt    *time.Time `json:"funds_released_at,omitempty"`
	OpenedAt           time.Time  `json:"opened_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func caseResponse(c *models.Case) CaseResponse {
	resp := CaseResponse{
		ID:                 c.ID.String(),
		BuyerID:            c.BuyerID.String(),
		ListingID:          c.ListingID.String(),
		DestinationCountry: c.DestinationCountry,
		ComplianceState:    string(c.ComplianceState),
		PaymentState:       string(c.PaymentState),
		RequiredDocs:       c.RequiredDocs,
		RejectionReason:    c.RejectionReason,
		Notes:              c.Notes,
		Completed:          c.Completed(),
		WithdrawnAt:        c.WithdrawnAt,
		FundsReleasedAt:    c.FundsReleasedAt,
		OpenedAt:           c.OpenedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	if resp.RequiredDocs == nil {
		resp.RequiredDocs = []string{}
	}
	return resp
}

func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OpenCaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.OpenCase(ctx, req.listingID, req.Notes)
	if err != nil {
		h.logger.WarnContext(ctx, "open case failed", "request_id", requestID, "listing_id", req.listingID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, caseResponse(c))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.GetCase(r.Context(), caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, caseResponse(c))
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	cases, err := h.service.ListMyCases(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]CaseResponse, 0, len(cases))
	for _, c := range cases {
		out = append(out, caseResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"cases": out})
}

func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.Readiness(r.Context(), caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dochandler.ReadinessBody(res))
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caseID, err := id.ParseCaseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectCaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.RejectCase(ctx, caseID, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "reject case failed", "request_id", requestID, "case_id", caseID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, caseResponse(c))
}

func (h *Handler) transition(fn func(context.Context, id.CaseID) (*models.Case, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caseID, err := id.ParseCaseID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		c, err := fn(ctx, caseID)
		if err != nil {
			h.logger.WarnContext(ctx, "case transition failed", "request_id", requestcontext.RequestID(ctx), "case_id", caseID, "error", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, caseResponse(c))
	}
}

func (h *Handler) payment(fn func(context.Context, id.CaseID, string) (*models.Case, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)
		caseID, err := id.ParseCaseID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req, ok := httputil.DecodeAndPrepare[PaymentRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		c, err := fn(ctx, caseID, req.Reference)
		if err != nil {
			h.logger.WarnContext(ctx, "payment transition failed", "request_id", requestID, "case_id", caseID, "error", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, caseResponse(c))
	}
}
