package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/requestcontext"
)

type Service interface {
	History(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error)
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit", h.HandleRecent)
	r.Get("/audit/{entityType}/{entityID}", h.HandleHistory)
}

type EntryResponse struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

func toResponses(entries []audit.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{
			ID:         e.ID.String(),
			ActorID:    e.ActorID,
			Action:     string(e.Action),
			EntityType: string(e.EntityType),
			EntityID:   e.EntityID,
			Details:    e.Details,
			RequestID:  e.RequestID,
			Timestamp:  e.Timestamp,
		})
	}
	return out
}

func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be an integer"))
			return
		}
		limit = n
	}
	entries, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.logger.WarnContext(r.Context(), "read audit log failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": toResponses(entries)})
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.History(r.Context(),
		audit.EntityType(chi.URLParam(r, "entityType")), chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": toResponses(entries)})
}
