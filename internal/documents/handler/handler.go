package handler

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"terralegit/internal/documents/models"
	"terralegit/internal/documents/service"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/requestcontext"
)

// Service defines the document operations the handler needs.
type Service interface {
	Upload(ctx context.Context, cmd service.UploadCommand) (*models.Document, error)
	Submit(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	StartReview(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	Approve(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	RequestAction(ctx context.Context, docID id.DocumentID, notes string) (*models.Document, error)
	Get(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	ListByOwner(ctx context.Context, owner models.Owner) ([]models.Document, error)
	Readiness(ctx context.Context, owner models.Owner, required []string) (models.Readiness, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/documents", h.HandleUpload)
	r.Get("/documents", h.HandleList)
	r.Get("/documents/readiness", h.HandleReadiness)
	r.Get("/documents/{id}", h.HandleGet)
	r.Post("/documents/{id}/submit", h.transition(h.service.Submit))
	r.Post("/documents/{id}/review", h.transition(h.service.StartReview))
	r.Post("/documents/{id}/approve", h.transition(h.service.Approve))
	r.Post("/documents/{id}/request-action", h.HandleRequestAction)
}

type UploadRequest struct {
	OwnerKind     string     `json:"owner_kind"`
	OwnerID       string     `json:"owner_id"`
	DocumentType  string     `json:"document_type"`
	FileName      string     `json:"file_name"`
	FileURL       string     `json:"file_url"`
	ContentType   string     `json:"content_type"`
	ContentBase64 string     `json:"content_base64"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	Notes         string     `json:"notes"`
	Submit        bool       `json:"submit"`

	owner   models.Owner
	content []byte
}

func (r *UploadRequest) Validate() error {
	owner, err := models.ParseOwner(r.OwnerKind, r.OwnerID)
	if err != nil {
		return err
	}
	r.owner = owner
	if strings.TrimSpace(r.DocumentType) == "" || strings.TrimSpace(r.FileName) == "" {
		return dErrors.New(dErrors.CodeValidation, "document_type and file_name are required")
	}
	if r.ContentBase64 != "" {
		content, err := base64.StdEncoding.DecodeString(r.ContentBase64)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "content_base64 is not valid base64")
		}
		r.content = content
	}
	return nil
}

type RequestActionRequest struct {
	Notes string `json:"notes"`
}

func (r *RequestActionRequest) Validate() error {
	if strings.TrimSpace(r.Notes) == "" {
		return dErrors.New(dErrors.CodeValidation, "notes are required")
	}
	return nil
}

type DocumentResponse struct {
	ID              string     `json:"id"`
	OwnerKind       string     `json:"owner_kind"`
	OwnerID         string     `json:"owner_id"`
	DocumentType    string     `json:"document_type"`
	FileName        string     `json:"file_name"`
	FileURL         string     `json:"file_url"`
	Status          string     `json:"status"`
	EffectiveStatus string     `json:"effective_status"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	UploadedAt      time.Time  `json:"uploaded_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

func documentResponse(d *models.Document, now time.Time) DocumentResponse {
	return DocumentResponse{
		ID:              d.ID.String(),
		OwnerKind:       string(d.Owner.Kind),
		OwnerID:         d.Owner.ID.String(),
		DocumentType:    d.Type,
		FileName:        d.FileName,
		FileURL:         d.FileURL,
		Status:          string(d.Status),
		EffectiveStatus: string(d.EffectiveStatus(now)),
		ExpiryDate:      d.ExpiryDate,
		Notes:           d.Notes,
		UploadedAt:      d.UploadedAt,
		ReviewedAt:      d.ReviewedAt,
	}
}

type ReadinessResponse struct {
	Ready      bool     `json:"ready"`
	Complete   []string `json:"complete"`
	Missing    []string `json:"missing"`
	Pending    []string `json:"pending"`
	Expired    []string `json:"expired"`
	UnmetGuard string   `json:"unmet_guard,omitempty"`
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ReadinessBody renders a readiness report.
func ReadinessBody(r models.Readiness) ReadinessResponse {
	return ReadinessResponse{
		Ready:      r.Ready(),
		Complete:   orEmpty(r.Complete),
		Missing:    orEmpty(r.Missing),
		Pending:    orEmpty(r.Pending),
		Expired:    orEmpty(r.Expired),
		UnmetGuard: r.UnmetGuard(),
	}
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UploadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	doc, err := h.service.Upload(ctx, service.UploadCommand{
		Owner:       req.owner,
		Type:        req.DocumentType,
		FileName:    req.FileName,
		FileURL:     req.FileURL,
		ContentType: req.ContentType,
		Content:     req.content,
		ExpiryDate:  req.ExpiryDate,
		Notes:       req.Notes,
		Submit:      req.Submit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "document upload failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, documentResponse(doc, requestcontext.Now(ctx)))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, err := h.service.Get(r.Context(), docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, documentResponse(doc, requestcontext.Now(r.Context())))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	owner, err := models.ParseOwner(q.Get("owner_kind"), q.Get("owner_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docs, err := h.service.ListByOwner(r.Context(), owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	now := requestcontext.Now(r.Context())
	out := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, documentResponse(&docs[i], now))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	owner, err := models.ParseOwner(q.Get("owner_kind"), q.Get("owner_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var required []string
	for _, t := range strings.Split(q.Get("required"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			required = append(required, t)
		}
	}
	res, err := h.service.Readiness(r.Context(), owner, required)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ReadinessBody(res))
}

func (h *Handler) transition(fn func(context.Context, id.DocumentID) (*models.Document, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		doc, err := fn(ctx, docID)
		if err != nil {
			h.logger.WarnContext(ctx, "document transition failed", "request_id", requestcontext.RequestID(ctx), "document_id", docID, "error", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, documentResponse(doc, requestcontext.Now(ctx)))
	}
}

func (h *Handler) HandleRequestAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RequestActionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	doc, err := h.service.RequestAction(ctx, docID, req.Notes)
	if err != nil {
		h.logger.WarnContext(ctx, "request action failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, documentResponse(doc, requestcontext.Now(ctx)))
}
