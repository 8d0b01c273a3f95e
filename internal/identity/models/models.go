package models

import (
	"net/mail"
	"strings"
	"time"

	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

// User is a platform account. Role and verification status gate every
// privileged action.
type User struct {
	ID                 id.UserID
	Email              string
	Username           string
	Role               id.Role
	VerificationStatus id.VerificationStatus
	Region             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewUser builds a freshly registered user: role registered, verification
// pending.
func NewUser(userID id.UserID, email, username, region string, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "valid email is required")
	}
	if len(username) < 3 || len(username) > 64 {
		return nil, dErrors.New(dErrors.CodeValidation, "username must be 3 to 64 characters")
	}
	return &User{
		ID:                 userID,
		Email:              email,
		Username:           username,
		Role:               id.RoleRegistered,
		VerificationStatus: id.VerificationPending,
		Region:             strings.ToUpper(strings.TrimSpace(region)),
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Actor returns the principal this user acts as.
func (u *User) Actor() id.Actor {
	return id.Actor{ID: u.ID, Role: u.Role, Status: u.VerificationStatus}
}

// CanEscalateTo checks that role may be assigned to the user. Verified roles
// require an approved verification status.
func (u *User) CanEscalateTo(role id.Role) error {
	if !role.IsUserRole() {
		return dErrors.Newf(dErrors.CodeValidation, "role %s cannot be assigned to a user", role)
	}
	if role.IsVerified() && u.VerificationStatus != id.VerificationApproved {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"role %s requires verification status approved, user is %s", role, u.VerificationStatus)
	}
	return nil
}

// ApplyRole sets the role after CanEscalateTo passed.
func (u *User) ApplyRole(role id.Role, now time.Time) {
	u.Role = role
	u.UpdatedAt = now
}

// ApplyVerification sets the verification status. A user that loses approval
// while holding a verified role is demoted to registered.
func (u *User) ApplyVerification(status id.VerificationStatus, now time.Time) {
	u.VerificationStatus = status
	if status != id.VerificationApproved && u.Role.IsVerified() {
		u.Role = id.RoleRegistered
	}
	u.UpdatedAt = now
}

// CanHoldSellerProfile reports whether the user's role allows a seller profile.
func (u *User) CanHoldSellerProfile() bool {
	return u.Role == id.RoleVerifiedSeller || u.Role == id.RoleInstitutionalAccount
}

// CanHoldBuyerProfile reports whether the user's role allows a buyer profile.
func (u *User) CanHoldBuyerProfile() bool {
	return u.Role == id.RoleVerifiedBuyer || u.Role == id.RoleInstitutionalAccount
}

// SellerProfile extends a User who sells. It cannot author listings until
// its audit is approved.
type SellerProfile struct {
	ID            id.SellerID
	UserID        id.UserID
	BusinessName  string
	BusinessType  string
	LicenseNumber string
	PermitRefs    []string
	Country       string
	AuditStatus   id.VerificationStatus
	VerifiedAt    *time.Time
	CreatedAt     time.Time
}

// CanAuthorListings reports whether the seller passed audit.
func (p *SellerProfile) CanAuthorListings() bool {
	return p.AuditStatus == id.VerificationApproved
}

// ApplyAuditReview records a compliance review outcome.
func (p *SellerProfile) ApplyAuditReview(status id.VerificationStatus, now time.Time) {
	p.AuditStatus = status
	if status == id.VerificationApproved {
		p.VerifiedAt = &now
	}
}

// BuyerProfile extends a User who buys. DestinationCountry drives the
// eligibility check of every case the buyer opens.
type BuyerProfile struct {
	ID                  id.BuyerID
	UserID              id.UserID
	Purpose             string
	Acknowledgments     []string
	DestinationCountry  string
	FacilityDescription string
	VerifiedAt          *time.Time
	CreatedAt           time.Time
}
