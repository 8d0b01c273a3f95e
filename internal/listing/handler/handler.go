package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"terralegit/internal/listing/models"
	"terralegit/internal/listing/service"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/requestcontext"
)

// Service defines the listing operations the handler needs.
type Service interface {
	CreateListing(ctx context.Context, cmd service.CreateListingCommand) (*models.Listing, error)
	SubmitListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	ApproveListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	RejectListing(ctx context.Context, listingID id.ListingID, reason string) (*models.Listing, error)
	WithdrawListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	GetListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	ListListings(ctx context.Context, q service.ListQuery) ([]*models.Listing, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/listings", h.HandleCreate)
	r.Get("/listings", h.HandleList)
	r.Get("/listings/{id}", h.HandleGet)
	r.Post("/listings/{id}/submit", h.transition(h.service.SubmitListing))
	r.Post("/listings/{id}/approve", h.transition(h.service.ApproveListing))
	r.Post("/listings/{id}/withdraw", h.transition(h.service.WithdrawListing))
	r.Post("/listings/{id}/reject", h.HandleReject)
}

type CreateListingRequest struct {
	SpeciesID     string `json:"species_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	OriginCountry string `json:"origin_country"`
	Quantity      int    `json:"quantity"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`

	speciesID id.SpeciesID
}

func (r *CreateListingRequest) Validate() error {
	speciesID, err := id.ParseSpeciesID(r.SpeciesID)
	if err != nil {
		return err
	}
	r.speciesID = speciesID
	if strings.TrimSpace(r.Title) == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if r.Quantity <= 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	return nil
}

type RejectListingRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectListingRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

type ListingResponse struct {
	ID              string     `json:"id"`
	SellerID        string     `json:"seller_id"`
	SpeciesID       string     `json:"species_id"`
	Category        string     `json:"category"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	OriginCountry   string     `json:"origin_country"`
	Quantity        int        `json:"quantity"`
	PriceCents      int64      `json:"price_cents"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	HealthDocStatus string     `json:"health_doc_status"`
	Badges          []string   `json:"badges"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	SoldCaseID      string     `json:"sold_case_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
}

func listingResponse(l *models.Listing) ListingResponse {
	resp := ListingResponse{
		ID:              l.ID.String(),
		SellerID:        l.SellerID.String(),
		SpeciesID:       l.SpeciesID.String(),
		Category:        string(l.Category),
		Title:           l.Title,
		Description:     l.Description,
		OriginCountry:   l.OriginCountry,
		Quantity:        l.Quantity,
		PriceCents:      l.PriceCents,
		Currency:        l.Currency,
		Status:          string(l.Status),
		HealthDocStatus: string(l.HealthDocStatus),
		Badges:          l.Badges,
		RejectionReason: l.RejectionReason,
		CreatedAt:       l.CreatedAt,
		SubmittedAt:     l.SubmittedAt,
		ApprovedAt:      l.ApprovedAt,
	}
	if resp.Badges == nil {
		resp.Badges = []string{}
	}
	if l.SoldCaseID != nil {
		resp.SoldCaseID = l.SoldCaseID.String()
	}
	return resp
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateListingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	l, err := h.service.CreateListing(ctx, service.CreateListingCommand{
		SpeciesID:     req.speciesID,
		Title:         req.Title,
		Description:   req.Description,
		OriginCountry: req.OriginCountry,
		Quantity:      req.Quantity,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create listing failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, listingResponse(l))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	listingID, err := id.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	l, err := h.service.GetListing(r.Context(), listingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listingResponse(l))
}

// HandleList supports ?status=, ?seller_id= and ?destination=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var query service.ListQuery
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		query.Status = &status
	}
	if raw := q.Get("seller_id"); raw != "" {
		sellerID, err := id.ParseSellerID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		query.SellerID = &sellerID
	}
	if raw := q.Get("destination"); raw != "" {
		dest, err := id.ParseCountryCode(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		query.Destination = dest
	}

	listings, err := h.service.ListListings(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, listingResponse(l))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"listings": out})
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	listingID, err := id.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectListingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	l, err := h.service.RejectListing(ctx, listingID, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "reject listing failed", "request_id", requestID, "listing_id", listingID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listingResponse(l))
}

func (h *Handler) transition(fn func(context.Context, id.ListingID) (*models.Listing, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		listingID, err := id.ParseListingID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		l, err := fn(ctx, listingID)
		if err != nil {
			h.logger.WarnContext(ctx, "listing transition failed", "request_id", requestcontext.RequestID(ctx), "listing_id", listingID, "error", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, listingResponse(l))
	}
}
