// Package models holds the acquisition case and its two independent
// machines: compliance and payment.
package models

import (
	"slices"
	"strings"
	"time"

	"terralegit/internal/lifecycle"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

// ComplianceState tracks the regulatory side of a case.
type ComplianceState string

const (
	ComplianceEligibilityCheck  ComplianceState = "eligibility_check"
	ComplianceDocumentsPending  ComplianceState = "documents_pending"
	ComplianceDocumentsApproved ComplianceState = "documents_approved"
	ComplianceRejected          ComplianceState = "compliance_rejected"
)

// ComplianceTransitions allows a compliance override from every non-terminal
// state.
var ComplianceTransitions = lifecycle.NewTable(lifecycle.MachineCompliance, map[ComplianceState][]ComplianceState{
	ComplianceEligibilityCheck:  {ComplianceDocumentsPending, ComplianceRejected},
	ComplianceDocumentsPending:  {ComplianceDocumentsApproved, ComplianceRejected},
	ComplianceDocumentsApproved: {ComplianceRejected},
	ComplianceRejected:          {},
})

// PaymentState tracks the escrowed payment. Release is a guard on an
// external action, not a state.
type PaymentState string

const (
	PaymentPending    PaymentState = "pending"
	PaymentAuthorized PaymentState = "authorized"
	PaymentCaptured   PaymentState = "captured"
	PaymentRefunded   PaymentState = "refunded"
	PaymentFailed     PaymentState = "failed"
)

var PaymentTransitions = lifecycle.NewTable(lifecycle.MachinePayment, map[PaymentState][]PaymentState{
	PaymentPending:    {PaymentAuthorized, PaymentFailed},
	PaymentAuthorized: {PaymentCaptured, PaymentFailed, PaymentRefunded},
	PaymentCaptured:   {PaymentRefunded},
	PaymentRefunded:   {},
	PaymentFailed:     {},
})

// ParsePaymentState validates a payment state from a callback.
func ParsePaymentState(s string) (PaymentState, error) {
	st := PaymentState(strings.TrimSpace(s))
	if !PaymentTransitions.Valid(st) {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid payment state %q", s)
	}
	return st, nil
}

// Case binds one buyer to one listing.
type Case struct {
	ID                 id.CaseID
	BuyerID            id.BuyerID
	ListingID          id.ListingID
	DestinationCountry string
	ComplianceState    ComplianceState
	PaymentState       PaymentState
	// RequiredDocs is the destination's document list captured when the case
	// passed eligibility. Later rule edits do not change it.
	RequiredDocs    []string
	RejectionReason string
	Notes           string
	WithdrawnAt     *time.Time
	FundsReleasedAt *time.Time
	OpenedAt        time.Time
	UpdatedAt       time.Time
}

// New opens a case in eligibility_check with a pending payment.
func New(caseID id.CaseID, buyerID id.BuyerID, listingID id.ListingID, destination, notes string, now time.Time) *Case {
	return &Case{
		ID:                 caseID,
		BuyerID:            buyerID,
		ListingID:          listingID,
		DestinationCountry: destination,
		ComplianceState:    ComplianceEligibilityCheck,
		PaymentState:       PaymentPending,
		Notes:              notes,
		OpenedAt:           now,
		UpdatedAt:          now,
	}
}

// Active reports whether the case still counts toward the one-active-case
// rule for its buyer and listing.
func (c *Case) Active() bool {
	return c.WithdrawnAt == nil && c.ComplianceState != ComplianceRejected
}

// Completed reports whether compliance and payment have both finished.
func (c *Case) Completed() bool {
	return c.ComplianceState == ComplianceDocumentsApproved && c.FundsReleasedAt != nil
}

// MoveCompliance applies a compliance edge. Withdrawn cases do not move.
func (c *Case) MoveCompliance(to ComplianceState, now time.Time) error {
	if c.WithdrawnAt != nil {
		return c.RejectCompliance(to, "case is withdrawn")
	}
	if err := ComplianceTransitions.Check(c.ComplianceState, to); err != nil {
		return err
	}
	if to == ComplianceRejected && c.FundsReleasedAt != nil {
		return c.RejectCompliance(to, "funds already released")
	}
	c.ComplianceState = to
	c.UpdatedAt = now
	return nil
}

// MovePayment applies a payment edge. Refunds after release are refused.
func (c *Case) MovePayment(to PaymentState, now time.Time) error {
	if err := PaymentTransitions.Check(c.PaymentState, to); err != nil {
		return err
	}
	if to == PaymentRefunded && c.FundsReleasedAt != nil {
		return c.RejectPayment(to, "funds already released")
	}
	c.PaymentState = to
	c.UpdatedAt = now
	return nil
}

// ReleaseGuard returns the first unmet escrow release condition, or "".
func (c *Case) ReleaseGuard(shipmentDelivered bool) string {
	switch {
	case c.FundsReleasedAt != nil:
		return "funds already released"
	case c.WithdrawnAt != nil:
		return "case is withdrawn"
	case c.ComplianceState != ComplianceDocumentsApproved:
		return "complianceState must be documents_approved"
	case c.PaymentState != PaymentCaptured:
		return "paymentState must be captured"
	case !shipmentDelivered:
		return "linked shipment must be delivered"
	}
	return ""
}

// SnapshotRequiredDocs stores the required document types, sorted and
// de-duplicated.
func (c *Case) SnapshotRequiredDocs(docs []string) {
	out := slices.Clone(docs)
	slices.Sort(out)
	c.RequiredDocs = slices.Compact(out)
	if c.RequiredDocs == nil {
		c.RequiredDocs = []string{}
	}
}

func (c *Case) RejectCompliance(to ComplianceState, guard string) error {
	return lifecycle.Reject(lifecycle.MachineCompliance, string(c.ComplianceState), string(to), guard)
}

func (c *Case) RejectPayment(to PaymentState, guard string) error {
	return lifecycle.Reject(lifecycle.MachinePayment, string(c.PaymentState), string(to), guard)
}
