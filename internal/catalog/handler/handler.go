package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"terralegit/internal/catalog/models"
	"terralegit/internal/catalog/service"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/requestcontext"
)

// Service defines the catalog operations the handler needs.
type Service interface {
	AddSpecies(ctx context.Context, cmd service.AddSpeciesCommand) (*models.Species, error)
	GetSpecies(ctx context.Context, speciesID id.SpeciesID) (*models.Species, error)
	ListSpecies(ctx context.Context, category *models.Category) ([]*models.Species, error)
}

// Handler wires species endpoints to the catalog service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts catalog endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/species", h.HandleList)
	r.Get("/species/{id}", h.HandleGet)
	r.Post("/species", h.HandleAdd)
}

// AddSpeciesRequest is the body of POST /species.
type AddSpeciesRequest struct {
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name"`
	Category       string `json:"category"`
	CareLevel      string `json:"care_level"`
	WelfareNotes   string `json:"welfare_notes"`
	CareGuidance   string `json:"care_guidance"`

	category models.Category
	care     models.CareLevel
}

func (r *AddSpeciesRequest) Validate() error {
	if strings.TrimSpace(r.CommonName) == "" || strings.TrimSpace(r.ScientificName) == "" {
		return dErrors.New(dErrors.CodeValidation, "common_name and scientific_name are required")
	}
	category, err := models.ParseCategory(r.Category)
	if err != nil {
		return err
	}
	care, err := models.ParseCareLevel(r.CareLevel)
	if err != nil {
		return err
	}
	r.category, r.care = category, care
	return nil
}

// SpeciesResponse is the JSON shape of a species.
type SpeciesResponse struct {
	ID             string    `json:"id"`
	CommonName     string    `json:"common_name"`
	ScientificName string    `json:"scientific_name"`
	Category       string    `json:"category"`
	CareLevel      string    `json:"care_level"`
	WelfareNotes   string    `json:"welfare_notes,omitempty"`
	CareGuidance   string    `json:"care_guidance,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toResponse(sp *models.Species) SpeciesResponse {
	return SpeciesResponse{
		ID:             sp.ID.String(),
		CommonName:     sp.CommonName,
		ScientificName: sp.ScientificName,
		Category:       string(sp.Category),
		CareLevel:      string(sp.CareLevel),
		WelfareNotes:   sp.WelfareNotes,
		CareGuidance:   sp.CareGuidance,
		CreatedAt:      sp.CreatedAt,
	}
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddSpeciesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sp, err := h.service.AddSpecies(ctx, service.AddSpeciesCommand{
		CommonName:     req.CommonName,
		ScientificName: req.ScientificName,
		Category:       req.category,
		CareLevel:      req.care,
		WelfareNotes:   req.WelfareNotes,
		CareGuidance:   req.CareGuidance,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add species failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(sp))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	speciesID, err := id.ParseSpeciesID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sp, err := h.service.GetSpecies(r.Context(), speciesID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(sp))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var filter *models.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter = &category
	}
	list, err := h.service.ListSpecies(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]SpeciesResponse, 0, len(list))
	for _, sp := range list {
		out = append(out, toResponse(sp))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"species": out})
}
