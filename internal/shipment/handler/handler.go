package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"terralegit/internal/shipment/models"
	"terralegit/internal/shipment/service"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/requestcontext"
)

// Service defines the shipment operations the handler needs.
type Service interface {
	CreateShipment(ctx context.Context, cmd service.CreateShipmentCommand) (*models.Shipment, error)
	GetShipment(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error)
	AdvanceShipment(ctx context.Context, shipmentID id.ShipmentID, to models.Status) (*models.Shipment, error)
	CancelShipment(ctx context.Context, shipmentID id.ShipmentID, reason string) (*models.Shipment, error)
	RecordCheckpoint(ctx context.Context, shipmentID id.ShipmentID, cmd service.RecordCheckpointCommand) (*models.WelfareCheckpoint, error)
	ClearWelfareHold(ctx context.Context, shipmentID id.ShipmentID, notes string) (*models.Shipment, error)
	ListCheckpoints(ctx context.Context, shipmentID id.ShipmentID) ([]models.WelfareCheckpoint, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/shipments", h.HandleCreate)
	r.Get("/shipments/{id}", h.HandleGet)
	r.Post("/shipments/{id}/advance", h.HandleAdvance)
	r.Post("/shipments/{id}/cancel", h.HandleCancel)
	r.Post("/shipments/{id}/clear-hold", h.HandleClearHold)
	r.Post("/shipments/{id}/checkpoints", h.HandleRecordCheckpoint)
	r.Get("/shipments/{id}/checkpoints", h.HandleListCheckpoints)
}

type CreateShipmentRequest struct {
	CaseID             string            `json:"case_id"`
	OriginCountry      string            `json:"origin_country"`
	Route              []models.Waypoint `json:"route"`
	WelfarePlanID      string            `json:"welfare_plan_id"`
	EstimatedDeparture *time.Time        `json:"estimated_departure"`
	EstimatedArrival   *time.Time        `json:"estimated_arrival"`

	caseID id.CaseID
}

func (r *CreateShipmentRequest) Validate() error {
	caseID, err := id.ParseCaseID(r.CaseID)
	if err != nil {
		return err
	}
	r.caseID = caseID
	for i, wp := range r.Route {
		if strings.TrimSpace(wp.Location) == "" {
			return dErrors.Newf(dErrors.CodeValidation, "route[%d].location is required", i)
		}
	}
	return nil
}

type AdvanceShipmentRequest struct {
	Status string `json:"status"`

	status models.Status
}

func (r *AdvanceShipmentRequest) Validate() error {
	status, err := models.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	r.status = status
	return nil
}

type CancelShipmentRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelShipmentRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

type ClearHoldRequest struct {
	Notes string `json:"notes"`
}

func (r *ClearHoldRequest) Validate() error {
	if strings.TrimSpace(r.Notes) == "" {
		return dErrors.New(dErrors.CodeValidation, "notes are required")
	}
	return nil
}

type RecordCheckpointRequest struct {
	CheckpointType string   `json:"checkpoint_type"`
	Location       string   `json:"location"`
	ConditionNotes string   `json:"condition_notes"`
	Temperature    *float64 `json:"temperature"`
	Passed         *bool    `json:"passed"`

	checkpointType models.CheckpointType
}

func (r *RecordCheckpointRequest) Validate() error {
	t, err := models.ParseCheckpointType(r.CheckpointType)
	if err != nil {
		return err
	}
	r.checkpointType = t
	if strings.TrimSpace(r.Location) == "" {
		return dErrors.New(dErrors.CodeValidation, "location is required")
	}
	if r.Passed == nil {
		return dErrors.New(dErrors.CodeValidation, "passed is required")
	}
	return nil
}

type ShipmentResponse struct {
	ID                 string            `json:"id"`
	CaseID             string            `json:"case_id,omitempty"`
	OriginCountry      string            `json:"origin_country"`
	DestinationCountry string            `json:"destination_country"`
	Status             string            `json:"status"`
	Route              []models.Waypoint `json:"route"`
	WelfarePlanID      string            `json:"welfare_plan_id,omitempty"`
	HeldForWelfare     bool              `json:"held_for_welfare"`
	WelfareClearedAt   *time.Time        `json:"welfare_cleared_at,omitempty"`
	CancelReason       string            `json:"cancel_reason,omitempty"`
	EstimatedDeparture *time.Time        `json:"estimated_departure,omitempty"`
	EstimatedArrival   *time.Time        `json:"estimated_arrival,omitempty"`
	ActualDeparture    *time.Time        `json:"actual_departure,omitempty"`
	ActualArrival      *time.Time        `json:"actual_arrival,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func shipmentResponse(sh *models.Shipment) ShipmentResponse {
	resp := ShipmentResponse{
		ID:                 sh.ID.String(),
		OriginCountry:      sh.OriginCountry,
		DestinationCountry: sh.DestinationCountry,
		Status:             string(sh.Status),
		Route:              sh.Route,
		WelfarePlanID:      sh.WelfarePlanID,
		HeldForWelfare:     sh.HeldForWelfare,
		WelfareClearedAt:   sh.WelfareClearedAt,
		CancelReason:       sh.CancelReason,
		EstimatedDeparture: sh.EstimatedDeparture,
		EstimatedArrival:   sh.EstimatedArrival,
		ActualDeparture:    sh.ActualDeparture,
		ActualArrival:      sh.ActualArrival,
		CreatedAt:          sh.CreatedAt,
		UpdatedAt:          sh.UpdatedAt,
	}
	if sh.CaseID != nil {
		resp.CaseID = sh.CaseID.String()
	}
	if resp.Route == nil {
		resp.Route = []models.Waypoint{}
	}
	return resp
}

type CheckpointResponse struct {
	ID             string    `json:"id"`
	ShipmentID     string    `json:"shipment_id"`
	CheckpointType string    `json:"checkpoint_type"`
	Location       string    `json:"location"`
	ConditionNotes string    `json:"condition_notes,omitempty"`
	Temperature    *float64  `json:"temperature,omitempty"`
	Passed         bool      `json:"passed"`
	RecordedAt     time.Time `json:"recorded_at"`
}

func checkpointResponse(cp models.WelfareCheckpoint) CheckpointResponse {
	return CheckpointResponse{
		ID:             cp.ID.String(),
		ShipmentID:     cp.ShipmentID.String(),
		CheckpointType: string(cp.Type),
		Location:       cp.Location,
		ConditionNotes: cp.ConditionNotes,
		Temperature:    cp.Temperature,
		Passed:         cp.Passed,
		RecordedAt:     cp.RecordedAt,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateShipmentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sh, err := h.service.CreateShipment(ctx, service.CreateShipmentCommand{
		CaseID:             req.caseID,
		OriginCountry:      req.OriginCountry,
		Route:              req.Route,
		WelfarePlanID:      req.WelfarePlanID,
		EstimatedDeparture: req.EstimatedDeparture,
		EstimatedArrival:   req.EstimatedArrival,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create shipment failed", "request_id", requestID, "case_id", req.caseID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, shipmentResponse(sh))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sh, err := h.service.GetShipment(r.Context(), shipmentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, shipmentResponse(sh))
}

func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	withBody(h, w, r, func(ctx context.Context, shipmentID id.ShipmentID, req *AdvanceShipmentRequest) (*models.Shipment, error) {
		return h.service.AdvanceShipment(ctx, shipmentID, req.status)
	})
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	withBody(h, w, r, func(ctx context.Context, shipmentID id.ShipmentID, req *CancelShipmentRequest) (*models.Shipment, error) {
		return h.service.CancelShipment(ctx, shipmentID, req.Reason)
	})
}

func (h *Handler) HandleClearHold(w http.ResponseWriter, r *http.Request) {
	withBody(h, w, r, func(ctx context.Context, shipmentID id.ShipmentID, req *ClearHoldRequest) (*models.Shipment, error) {
		return h.service.ClearWelfareHold(ctx, shipmentID, req.Notes)
	})
}

func (h *Handler) HandleRecordCheckpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RecordCheckpointRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cp, err := h.service.RecordCheckpoint(ctx, shipmentID, service.RecordCheckpointCommand{
		Type:           req.checkpointType,
		Location:       req.Location,
		ConditionNotes: req.ConditionNotes,
		Temperature:    req.Temperature,
		Passed:         *req.Passed,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record checkpoint failed", "request_id", requestID, "shipment_id", shipmentID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, checkpointResponse(*cp))
}

func (h *Handler) HandleListCheckpoints(w http.ResponseWriter, r *http.Request) {
	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cps, err := h.service.ListCheckpoints(r.Context(), shipmentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]CheckpointResponse, 0, len(cps))
	for _, cp := range cps {
		out = append(out, checkpointResponse(cp))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"checkpoints": out})
}

// withBody decodes T and runs a shipment transition with it.
func withBody[T any, PT interface {
	*T
	httputil.Validatable
}](h *Handler, w http.ResponseWriter, r *http.Request, fn func(context.Context, id.ShipmentID, *T) (*models.Shipment, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[T, PT](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sh, err := fn(ctx, shipmentID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "shipment transition failed", "request_id", requestID, "shipment_id", shipmentID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, shipmentResponse(sh))
}
