package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	catalog "terralegit/internal/catalog/models"
	"terralegit/internal/eligibility/models"
	"terralegit/internal/eligibility/service"
	dErrors "terralegit/pkg/domain-errors"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/requestcontext"
)

// Service defines the eligibility operations the handler needs.
type Service interface {
	Evaluate(ctx context.Context, countryCode string, category catalog.Category) (models.Result, error)
	UpsertRule(ctx context.Context, cmd service.UpsertRuleCommand) (*models.CountryRule, error)
	DeactivateRule(ctx context.Context, countryCode string) (*models.CountryRule, error)
	GetRule(ctx context.Context, countryCode string) (*models.CountryRule, error)
	ListRules(ctx context.Context, activeOnly bool) ([]*models.CountryRule, error)
	VisibleDestinations(ctx context.Context, category catalog.Category) ([]string, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/eligibility", h.HandleEvaluate)
	r.Get("/destinations", h.HandleDestinations)
	r.Get("/country-rules", h.HandleListRules)
	r.Get("/country-rules/{code}", h.HandleGetRule)
	r.Put("/country-rules/{code}", h.HandleUpsertRule)
	r.Post("/country-rules/{code}/deactivate", h.HandleDeactivateRule)
}

type UpsertRuleRequest struct {
	Name         string   `json:"name"`
	Allowed      []string `json:"allowed_categories"`
	Restricted   []string `json:"restricted_categories"`
	RequiredDocs []string `json:"required_doc_types"`
	SpecialNotes string   `json:"special_notes"`
	Active       *bool    `json:"is_active"`

	allowed    []catalog.Category
	restricted []catalog.Category
}

func (r *UpsertRuleRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	var err error
	if r.allowed, err = parseCategories(r.Allowed); err != nil {
		return err
	}
	if r.restricted, err = parseCategories(r.Restricted); err != nil {
		return err
	}
	return nil
}

func parseCategories(raw []string) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(raw))
	for _, s := range raw {
		c, err := catalog.ParseCategory(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type RuleResponse struct {
	CountryCode  string    `json:"country_code"`
	Name         string    `json:"name"`
	Allowed      []string  `json:"allowed_categories"`
	Restricted   []string  `json:"restricted_categories"`
	RequiredDocs []string  `json:"required_doc_types"`
	SpecialNotes string    `json:"special_notes,omitempty"`
	IsActive     bool      `json:"is_active"`
	Conflicts    []string  `json:"conflicts,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func names(cs []catalog.Category) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, string(c))
	}
	return out
}

func ruleResponse(r *models.CountryRule) RuleResponse {
	resp := RuleResponse{
		CountryCode:  r.CountryCode,
		Name:         r.Name,
		Allowed:      names(r.Allowed),
		Restricted:   names(r.Restricted),
		RequiredDocs: r.RequiredDocs,
		SpecialNotes: r.SpecialNotes,
		IsActive:     r.IsActive,
		UpdatedAt:    r.UpdatedAt,
	}
	if c := r.Conflicts(); len(c) > 0 {
		resp.Conflicts = names(c)
	}
	if resp.RequiredDocs == nil {
		resp.RequiredDocs = []string{}
	}
	return resp
}

type EligibilityResponse struct {
	CountryCode  string   `json:"country_code"`
	Category     string   `json:"category"`
	Eligible     bool     `json:"eligible"`
	RequiredDocs []string `json:"required_docs"`
	Reason       string   `json:"reason,omitempty"`
}

func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	category, err := catalog.ParseCategory(q.Get("category"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.Evaluate(ctx, q.Get("country"), category)
	if err != nil {
		h.logger.WarnContext(ctx, "evaluate eligibility failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	docs := res.RequiredDocs
	if docs == nil {
		docs = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, EligibilityResponse{
		CountryCode:  res.CountryCode,
		Category:     string(res.Category),
		Eligible:     res.Eligible,
		RequiredDocs: docs,
		Reason:       string(res.Reason),
	})
}

func (h *Handler) HandleDestinations(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	dest, err := h.service.VisibleDestinations(r.Context(), category)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if dest == nil {
		dest = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"category": category, "destinations": dest})
}

func (h *Handler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	rules, err := h.service.ListRules(r.Context(), activeOnly)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, ruleResponse(rule))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"rules": out})
}

func (h *Handler) HandleGetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.service.GetRule(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ruleResponse(rule))
}

func (h *Handler) HandleUpsertRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpsertRuleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	rule, err := h.service.UpsertRule(ctx, service.UpsertRuleCommand{
		CountryCode:  chi.URLParam(r, "code"),
		Name:         req.Name,
		Allowed:      req.allowed,
		Restricted:   req.restricted,
		RequiredDocs: req.RequiredDocs,
		SpecialNotes: req.SpecialNotes,
		Active:       active,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert country rule failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ruleResponse(rule))
}

func (h *Handler) HandleDeactivateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rule, err := h.service.DeactivateRule(ctx, chi.URLParam(r, "code"))
	if err != nil {
		h.logger.WarnContext(ctx, "deactivate country rule failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ruleResponse(rule))
}
