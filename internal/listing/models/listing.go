package models

import (
	"strings"
	"time"

	catalog "terralegit/internal/catalog/models"
	docs "terralegit/internal/documents/models"
	"terralegit/internal/lifecycle"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

// Status is the listing lifecycle state.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusSold          Status = "sold"
	StatusWithdrawn     Status = "withdrawn"
)

// Transitions is the listing machine. Rejected listings are not
// resubmitted; the seller creates a new draft.
var Transitions = lifecycle.NewTable(lifecycle.MachineListing, map[Status][]Status{
	StatusDraft:         {StatusPendingReview},
	StatusPendingReview: {StatusApproved, StatusRejected, StatusWithdrawn},
	StatusApproved:      {StatusSold, StatusWithdrawn},
	StatusRejected:      {},
	StatusSold:          {},
	StatusWithdrawn:     {},
})

func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !Transitions.Valid(st) {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid listing status %q", s)
	}
	return st, nil
}

// Verification badges shown on approved listings.
const (
	BadgeSellerVerified     = "seller_verified"
	BadgeHealthDocsApproved = "health_docs_approved"
)

// Listing is a seller's offer of a species.
type Listing struct {
	ID              id.ListingID
	SellerID        id.SellerID
	SpeciesID       id.SpeciesID
	Category        catalog.Category
	Title           string
	Description     string
	OriginCountry   string
	Quantity        int
	PriceCents      int64
	Currency        string
	Status          Status
	HealthDocStatus docs.Status
	Badges          []string
	RejectionReason string
	SoldCaseID      *id.CaseID
	CreatedAt       time.Time
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	UpdatedAt       time.Time
}

// Move applies a transition after the table check. Guards are the
// caller's job.
func (l *Listing) Move(to Status, now time.Time) error {
	if err := Transitions.Check(l.Status, to); err != nil {
		return err
	}
	l.Status = to
	l.UpdatedAt = now
	switch to {
	case StatusPendingReview:
		l.SubmittedAt = &now
	case StatusApproved:
		l.ApprovedAt = &now
		l.Badges = []string{BadgeSellerVerified, BadgeHealthDocsApproved}
	}
	return nil
}

// Reject is a guard failure on this listing.
func (l *Listing) Reject(to Status, guard string) error {
	return lifecycle.Reject(lifecycle.MachineListing, string(l.Status), string(to), guard)
}

// Filter narrows store listings. Nil fields match everything.
type Filter struct {
	Status   *Status
	SellerID *id.SellerID
}
