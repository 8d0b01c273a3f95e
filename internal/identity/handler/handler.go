package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"terralegit/internal/identity/models"
	"terralegit/internal/identity/service"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/requestcontext"
)

// Service defines the identity operations the handler needs.
type Service interface {
	RegisterUser(ctx context.Context, email, username, region string) (*models.User, error)
	GetUser(ctx context.Context, userID id.UserID) (*models.User, error)
	SetVerificationStatus(ctx context.Context, userID id.UserID, status id.VerificationStatus) (*models.User, error)
	EscalateRole(ctx context.Context, userID id.UserID, role id.Role) (*models.User, error)
	CreateSellerProfile(ctx context.Context, cmd service.CreateSellerProfileCommand) (*models.SellerProfile, error)
	CreateBuyerProfile(ctx context.Context, cmd service.CreateBuyerProfileCommand) (*models.BuyerProfile, error)
	ReviewSellerAudit(ctx context.Context, sellerID id.SellerID, status id.VerificationStatus) (*models.SellerProfile, error)
	GetSeller(ctx context.Context, sellerID id.SellerID) (*models.SellerProfile, error)
	GetBuyer(ctx context.Context, buyerID id.BuyerID) (*models.BuyerProfile, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts user and profile endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.HandleRegister)
	r.Get("/users/{id}", h.HandleGetUser)
	r.Put("/users/{id}/verification", h.HandleSetVerification)
	r.Put("/users/{id}/role", h.HandleEscalateRole)

	r.Post("/sellers", h.HandleCreateSeller)
	r.Get("/sellers/{id}", h.HandleGetSeller)
	r.Put("/sellers/{id}/audit", h.HandleReviewSellerAudit)

	r.Post("/buyers", h.HandleCreateBuyer)
	r.Get("/buyers/{id}", h.HandleGetBuyer)
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Region   string `json:"region"`
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Username) == "" {
		return dErrors.New(dErrors.CodeValidation, "email and username are required")
	}
	return nil
}

type VerificationRequest struct {
	Status string `json:"status"`

	status id.VerificationStatus
}

func (r *VerificationRequest) Validate() error {
	status, err := id.ParseVerificationStatus(r.Status)
	if err != nil {
		return err
	}
	r.status = status
	return nil
}

type RoleRequest struct {
	Role string `json:"role"`

	role id.Role
}

func (r *RoleRequest) Validate() error {
	role, err := id.ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.role = role
	return nil
}

type SellerProfileRequest struct {
	BusinessName  string   `json:"business_name"`
	BusinessType  string   `json:"business_type"`
	LicenseNumber string   `json:"license_number"`
	PermitRefs    []string `json:"permit_refs"`
	Country       string   `json:"country"`
}

func (r *SellerProfileRequest) Validate() error {
	if strings.TrimSpace(r.BusinessName) == "" {
		return dErrors.New(dErrors.CodeValidation, "business_name is required")
	}
	if _, err := id.ParseCountryCode(r.Country); err != nil {
		return err
	}
	return nil
}

type BuyerProfileRequest struct {
	Purpose             string   `json:"purpose"`
	Acknowledgments     []string `json:"acknowledgments"`
	DestinationCountry  string   `json:"destination_country"`
	FacilityDescription string   `json:"facility_description"`
}

func (r *BuyerProfileRequest) Validate() error {
	if strings.TrimSpace(r.Purpose) == "" {
		return dErrors.New(dErrors.CodeValidation, "purpose is required")
	}
	if _, err := id.ParseCountryCode(r.DestinationCountry); err != nil {
		return err
	}
	return nil
}

type UserResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Username           string    `json:"username"`
	Role               string    `json:"role"`
	VerificationStatus string    `json:"verification_status"`
	Region             string    `json:"region,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                 u.ID.String(),
		Email:              u.Email,
		Username:           u.Username,
		Role:               string(u.Role),
		VerificationStatus: string(u.VerificationStatus),
		Region:             u.Region,
		CreatedAt:          u.CreatedAt,
	}
}

type SellerResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	BusinessName  string     `json:"business_name"`
	BusinessType  string     `json:"business_type,omitempty"`
	LicenseNumber string     `json:"license_number,omitempty"`
	PermitRefs    []string   `json:"permit_refs,omitempty"`
	Country       string     `json:"country"`
	AuditStatus   string     `json:"audit_status"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
}

func sellerResponse(p *models.SellerProfile) SellerResponse {
	return SellerResponse{
		ID:            p.ID.String(),
		UserID:        p.UserID.String(),
		BusinessName:  p.BusinessName,
		BusinessType:  p.BusinessType,
		LicenseNumber: p.LicenseNumber,
		PermitRefs:    p.PermitRefs,
		Country:       p.Country,
		AuditStatus:   string(p.AuditStatus),
		VerifiedAt:    p.VerifiedAt,
	}
}

type BuyerResponse struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	Purpose             string     `json:"purpose"`
	Acknowledgments     []string   `json:"acknowledgments,omitempty"`
	DestinationCountry  string     `json:"destination_country"`
	FacilityDescription string     `json:"facility_description,omitempty"`
	VerifiedAt          *time.Time `json:"verified_at,omitempty"`
}

func buyerResponse(p *models.BuyerProfile) BuyerResponse {
	return BuyerResponse{
		ID:                  p.ID.String(),
		UserID:              p.UserID.String(),
		Purpose:             p.Purpose,
		Acknowledgments:     p.Acknowledgments,
		DestinationCountry:  p.DestinationCountry,
		FacilityDescription: p.FacilityDescription,
		VerifiedAt:          p.VerifiedAt,
	}
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, err := h.service.RegisterUser(ctx, req.Email, req.Username, req.Region)
	if err != nil {
		h.logger.WarnContext(ctx, "register user failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, userResponse(u))
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponse(u))
}

func (h *Handler) HandleSetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, err := h.service.SetVerificationStatus(ctx, userID, req.status)
	if err != nil {
		h.logger.WarnContext(ctx, "set verification failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponse(u))
}

func (h *Handler) HandleEscalateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, err := h.service.EscalateRole(ctx, userID, req.role)
	if err != nil {
		h.logger.WarnContext(ctx, "escalate role failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponse(u))
}

func (h *Handler) HandleCreateSeller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SellerProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.CreateSellerProfile(ctx, service.CreateSellerProfileCommand{
		BusinessName:  req.BusinessName,
		BusinessType:  req.BusinessType,
		LicenseNumber: req.LicenseNumber,
		PermitRefs:    req.PermitRefs,
		Country:       req.Country,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create seller profile failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sellerResponse(p))
}

func (h *Handler) HandleGetSeller(w http.ResponseWriter, r *http.Request) {
	sellerID, err := id.ParseSellerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.GetSeller(r.Context(), sellerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sellerResponse(p))
}

func (h *Handler) HandleReviewSellerAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sellerID, err := id.ParseSellerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.ReviewSellerAudit(ctx, sellerID, req.status)
	if err != nil {
		h.logger.WarnContext(ctx, "review seller audit failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sellerResponse(p))
}

func (h *Handler) HandleCreateBuyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BuyerProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.CreateBuyerProfile(ctx, service.CreateBuyerProfileCommand{
		Purpose:             req.Purpose,
		Acknowledgments:     req.Acknowledgments,
		DestinationCountry:  req.DestinationCountry,
		FacilityDescription: req.FacilityDescription,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create buyer profile failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, buyerResponse(p))
}

func (h *Handler) HandleGetBuyer(w http.ResponseWriter, r *http.Request) {
	buyerID, err := id.ParseBuyerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.GetBuyer(r.Context(), buyerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, buyerResponse(p))
}
