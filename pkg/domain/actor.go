package domain

import dErrors "terralegit/pkg/domain-errors"

// Role is the platform role supplied by the identity provider.
type Role string

const (
	RolePublic               Role = "public"
	RoleRegistered           Role = "registered"
	RoleVerifiedBuyer        Role = "verified_buyer"
	RoleVerifiedSeller       Role = "verified_seller"
	RoleComplianceAdmin      Role = "compliance_admin"
	RoleSuperAdmin           Role = "super_admin"
	RoleInstitutionalAccount Role = "institutional_account"

	// RoleSystem identifies collaborator callbacks (payment provider, transport
	// booking, monitoring devices). It is never assigned to a User.
	RoleSystem Role = "system"
)

var userRoles = map[Role]bool{
	RolePublic:               true,
	RoleRegistered:           true,
	RoleVerifiedBuyer:        true,
	RoleVerifiedSeller:       true,
	RoleComplianceAdmin:      true,
	RoleSuperAdmin:           true,
	RoleInstitutionalAccount: true,
}

// ParseRole validates a role coming from a request or token.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r == RoleSystem || userRoles[r] {
		return r, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
}

// IsUserRole reports whether r may be stored on a User record.
func (r Role) IsUserRole() bool {
	return userRoles[r]
}

// IsVerified reports whether r is one of the roles that require an approved
// verification status.
func (r Role) IsVerified() bool {
	switch r {
	case RoleVerifiedBuyer, RoleVerifiedSeller, RoleInstitutionalAccount:
		return true
	}
	return false
}

// IsCompliance reports whether r may act as a compliance reviewer.
func (r Role) IsCompliance() bool {
	return r == RoleComplianceAdmin || r == RoleSuperAdmin
}

func (r Role) String() string {
	return string(r)
}

// VerificationStatus is shared by User.verificationStatus and
// SellerProfile.auditStatus.
type VerificationStatus string

const (
	VerificationPending     VerificationStatus = "pending"
	VerificationUnderReview VerificationStatus = "under_review"
	VerificationApproved    VerificationStatus = "approved"
	VerificationRejected    VerificationStatus = "rejected"
	VerificationSuspended   VerificationStatus = "suspended"
)

// ParseVerificationStatus validates a verification status.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch v := VerificationStatus(s); v {
	case VerificationPending, VerificationUnderReview, VerificationApproved, VerificationRejected, VerificationSuspended:
		return v, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid verification status")
}

// Blocked reports whether the status denies all privileged actions.
func (v VerificationStatus) Blocked() bool {
	return v == VerificationRejected || v == VerificationSuspended
}

// Actor is the authenticated principal attached to a request.
type Actor struct {
	ID     UserID
	Role   Role
	Status VerificationStatus
}

// SystemActor returns the principal used for collaborator callbacks.
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

// IsAnonymous reports whether no principal was authenticated.
func (a Actor) IsAnonymous() bool {
	return a.Role == "" || (a.ID.IsNil() && a.Role != RoleSystem)
}

// AuditID is the actor identifier written to audit records.
func (a Actor) AuditID() string {
	switch {
	case a.Role == RoleSystem:
		return "system"
	case a.ID.IsNil():
		return "anonymous"
	}
	return a.ID.String()
}
