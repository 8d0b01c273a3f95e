package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"terralegit/internal/lifecycle"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

// OwnerKind discriminates which entity owns a document.
type OwnerKind string

const (
	OwnerListing  OwnerKind = "listing"
	OwnerCase     OwnerKind = "acquisition_case"
	OwnerShipment OwnerKind = "shipment"
)

func ParseOwnerKind(s string) (OwnerKind, error) {
	switch k := OwnerKind(strings.TrimSpace(s)); k {
	case OwnerListing, OwnerCase, OwnerShipment:
		return k, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid document owner kind %q", s)
	}
}

// Owner references the listing, case or shipment a document belongs to.
// Build it with ListingOwner, CaseOwner or ShipmentOwner.
type Owner struct {
	Kind OwnerKind
	ID   uuid.UUID
}

func ListingOwner(listingID id.ListingID) Owner {
	return Owner{Kind: OwnerListing, ID: listingID.UUID()}
}

func CaseOwner(caseID id.CaseID) Owner {
	return Owner{Kind: OwnerCase, ID: caseID.UUID()}
}

func ShipmentOwner(shipmentID id.ShipmentID) Owner {
	return Owner{Kind: OwnerShipment, ID: shipmentID.UUID()}
}

// ParseOwner builds an Owner from its wire form.
func ParseOwner(kind, rawID string) (Owner, error) {
	k, err := ParseOwnerKind(kind)
	if err != nil {
		return Owner{}, err
	}
	switch k {
	case OwnerListing:
		v, err := id.ParseListingID(rawID)
		if err != nil {
			return Owner{}, err
		}
		return ListingOwner(v), nil
	case OwnerCase:
		v, err := id.ParseCaseID(rawID)
		if err != nil {
			return Owner{}, err
		}
		return CaseOwner(v), nil
	default:
		v, err := id.ParseShipmentID(rawID)
		if err != nil {
			return Owner{}, err
		}
		return ShipmentOwner(v), nil
	}
}

func (o Owner) String() string {
	return fmt.Sprintf("%s/%s", o.Kind, o.ID)
}

// Status is a document's review state. StatusExpired is never stored: it is
// derived from the expiry date at read time.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusNeedsAction Status = "needs_action"
	StatusApproved    Status = "approved"
	StatusExpired     Status = "expired"
)

// Transitions is the document review machine.
var Transitions = lifecycle.NewTable(lifecycle.MachineDocument, map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusApproved, StatusNeedsAction},
	StatusNeedsAction: {StatusSubmitted},
	StatusApproved:    {},
	StatusExpired:     {},
})

// Document is an uploaded file attached to an owner.
type Document struct {
	ID         id.DocumentID
	Owner      Owner
	Type       string
	FileName   string
	FileURL    string
	Status     Status
	ExpiryDate *time.Time
	Notes      string
	UploadedAt time.Time
	ReviewedAt *time.Time
}

// ExpiredAt reports whether the expiry date lies before now.
func (d *Document) ExpiredAt(now time.Time) bool {
	return d.ExpiryDate != nil && d.ExpiryDate.Before(now)
}

// EffectiveStatus is the stored status with expiry applied. Expiry
// overrides every stored status, approval included.
func (d *Document) EffectiveStatus(now time.Time) Status {
	if d.ExpiredAt(now) {
		return StatusExpired
	}
	return d.Status
}

// Transition moves the document through review. Expired documents cannot
// move; a fresh upload replaces them.
func (d *Document) Transition(to Status, notes string, now time.Time) error {
	from := d.EffectiveStatus(now)
	if err := Transitions.Check(from, to); err != nil {
		return err
	}
	d.Status = to
	if notes != "" {
		d.Notes = notes
	}
	if to == StatusApproved || to == StatusNeedsAction {
		d.ReviewedAt = &now
	}
	return nil
}
