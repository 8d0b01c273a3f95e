// Package authz is the capability check used by every service entry point.
//
// Policy is a flat table of action -> capability rather than a role
// hierarchy. Unknown actions are denied.
package authz

import (
	"fmt"

	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

// Action is a privileged operation.
type Action string

const (
	ActionRegisterUser        Action = "user.register"
	ActionManageVerification  Action = "user.verification"
	ActionEscalateRole        Action = "user.escalate_role"
	ActionCreateSellerProfile Action = "seller_profile.create"
	ActionCreateBuyerProfile  Action = "buyer_profile.create"
	ActionReviewSellerAudit   Action = "seller_profile.review"
	ActionManageSpecies       Action = "species.manage"
	ActionManageRules         Action = "country_rule.manage"

	ActionUploadDocument Action = "document.upload"
	ActionReviewDocument Action = "document.review"
	ActionViewDocument   Action = "document.view"

	ActionAuthorListing Action = "listing.author"
	ActionReviewListing Action = "listing.review"
	ActionMarkSold      Action = "listing.mark_sold"

	ActionOpenCase          Action = "case.open"
	ActionWithdrawCase      Action = "case.withdraw"
	ActionViewCase          Action = "case.view"
	ActionAdvanceCompliance Action = "case.advance_compliance"
	ActionRejectCase        Action = "case.reject"
	ActionPaymentCallback   Action = "payment.callback"
	ActionRefundPayment     Action = "payment.refund"
	ActionReleaseFunds      Action = "payment.release"

	ActionCreateShipment   Action = "shipment.create"
	ActionAdvanceShipment  Action = "shipment.advance"
	ActionCancelShipment   Action = "shipment.cancel"
	ActionRecordCheckpoint Action = "shipment.record_checkpoint"
	ActionClearWelfareHold Action = "shipment.clear_welfare_hold"
	ActionViewShipment     Action = "shipment.view"

	ActionSubmitInquiry   Action = "inquiry.submit"
	ActionManageInquiries Action = "inquiry.manage"
	ActionReadAudit       Action = "audit.read"
)

// Resource describes the entity an action targets. A zero OwnerID skips the
// ownership check.
type Resource struct {
	OwnerID id.UserID
}

// Owned returns a Resource owned by user.
func Owned(user id.UserID) Resource {
	return Resource{OwnerID: user}
}

type capability struct {
	roles  []id.Role
	public bool
	owner  bool
}

var (
	sellers    = []id.Role{id.RoleVerifiedSeller, id.RoleInstitutionalAccount}
	buyers     = []id.Role{id.RoleVerifiedBuyer, id.RoleInstitutionalAccount}
	compliance = []id.Role{id.RoleComplianceAdmin, id.RoleSuperAdmin}
	system     = []id.Role{id.RoleSystem}
)

func roles(sets ...[]id.Role) []id.Role {
	var out []id.Role
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

var policy = map[Action]capability{
	ActionRegisterUser:        {public: true},
	ActionManageVerification:  {roles: roles(compliance, system)},
	ActionEscalateRole:        {roles: roles(compliance, system)},
	ActionCreateSellerProfile: {roles: sellers, owner: true},
	ActionCreateBuyerProfile:  {roles: buyers, owner: true},
	ActionReviewSellerAudit:   {roles: compliance},
	ActionManageSpecies:       {roles: compliance},
	ActionManageRules:         {roles: compliance},

	ActionUploadDocument: {roles: roles(sellers, buyers, compliance, system), owner: true},
	ActionReviewDocument: {roles: compliance},
	ActionViewDocument:   {roles: roles(sellers, buyers, compliance, system), owner: true},

	ActionAuthorListing: {roles: sellers, owner: true},
	ActionReviewListing: {roles: compliance},
	ActionMarkSold:      {roles: roles(system, compliance)},

	ActionOpenCase:          {roles: buyers, owner: true},
	ActionWithdrawCase:      {roles: buyers, owner: true},
	ActionViewCase:          {roles: roles(buyers, compliance, system), owner: true},
	ActionAdvanceCompliance: {roles: roles(compliance, system)},
	ActionRejectCase:        {roles: compliance},
	ActionPaymentCallback:   {roles: system},
	ActionRefundPayment:     {roles: roles(system, compliance)},
	ActionReleaseFunds:      {roles: roles(system, compliance)},

	ActionCreateShipment:   {roles: roles(compliance, system)},
	ActionAdvanceShipment:  {roles: roles(compliance, system)},
	ActionCancelShipment:   {roles: roles(compliance, system)},
	ActionRecordCheckpoint: {roles: roles(compliance, system)},
	ActionClearWelfareHold: {roles: compliance},
	ActionViewShipment:     {roles: roles(buyers, compliance, system), owner: true},

	ActionSubmitInquiry:   {public: true},
	ActionManageInquiries: {roles: compliance},
	ActionReadAudit:       {roles: compliance},
}

// Authorize returns an AuthorizationDenied error unless actor may perform
// action on res. Compliance roles bypass ownership checks; verified roles
// must carry an approved verification status.
func Authorize(actor id.Actor, action Action, res Resource) error {
	c, ok := policy[action]
	if !ok {
		return deny(action, "action is not permitted")
	}
	if c.public {
		return nil
	}
	if actor.IsAnonymous() {
		return deny(action, "authentication required")
	}
	if actor.Status.Blocked() {
		return deny(action, fmt.Sprintf("actor is %s", actor.Status))
	}
	if !hasRole(c.roles, actor.Role) {
		return deny(action, fmt.Sprintf("role %s lacks capability", actor.Role))
	}
	if actor.Role.IsVerified() && actor.Status != id.VerificationApproved {
		return deny(action, "verification status must be approved")
	}
	if c.owner && !actor.Role.IsCompliance() && actor.Role != id.RoleSystem &&
		!res.OwnerID.IsNil() && res.OwnerID != actor.ID {
		return deny(action, "actor does not own the resource")
	}
	return nil
}

// Can is Authorize as a predicate.
func Can(actor id.Actor, action Action, res Resource) bool {
	return Authorize(actor, action, res) == nil
}

func hasRole(set []id.Role, r id.Role) bool {
	for _, candidate := range set {
		if candidate == r {
			return true
		}
	}
	return false
}

func deny(action Action, reason string) error {
	return dErrors.Newf(dErrors.CodeAuthorizationDenied, "%s denied: %s", action, reason)
}
