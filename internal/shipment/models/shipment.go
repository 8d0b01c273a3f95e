// Package models holds the shipment machine and its welfare checkpoints.
package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"terralegit/internal/lifecycle"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

type Status string

const (
	StatusQuoteRequested    Status = "quote_requested"
	StatusQuoteProvided     Status = "quote_provided"
	StatusDocumentsPending  Status = "documents_pending"
	StatusDocumentsApproved Status = "documents_approved"
	StatusBookingConfirmed  Status = "booking_confirmed"
	StatusInTransit         Status = "in_transit"
	StatusCustomsClearance  Status = "customs_clearance"
	StatusDelivered         Status = "delivered"
	StatusCancelled         Status = "cancelled"
)

// Transitions is strictly sequential. Every non-terminal state may cancel.
var Transitions = lifecycle.NewTable(lifecycle.MachineShipment, map[Status][]Status{
	StatusQuoteRequested:    {StatusQuoteProvided, StatusCancelled},
	StatusQuoteProvided:     {StatusDocumentsPending, StatusCancelled},
	StatusDocumentsPending:  {StatusDocumentsApproved, StatusCancelled},
	StatusDocumentsApproved: {StatusBookingConfirmed, StatusCancelled},
	StatusBookingConfirmed:  {StatusInTransit, StatusCancelled},
	StatusInTransit:         {StatusCustomsClearance, StatusCancelled},
	StatusCustomsClearance:  {StatusDelivered, StatusCancelled},
	StatusDelivered:         {},
	StatusCancelled:         {},
})

func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !Transitions.Valid(st) {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid shipment status %q", s)
	}
	return st, nil
}

// Waypoint is one stop on the route, in travel order.
type Waypoint struct {
	Location    string `json:"location"`
	CountryCode string `json:"country_code"`
	Mode        string `json:"mode,omitempty"`
}

// Shipment moves the animals of one case from origin to destination.
type Shipment struct {
	ID                 id.ShipmentID
	CaseID             *id.CaseID
	OriginCountry      string
	DestinationCountry string
	Status             Status
	Route              []Waypoint
	WelfarePlanID      string
	EstimatedDeparture *time.Time
	EstimatedArrival   *time.Time
	ActualDeparture    *time.Time
	ActualArrival      *time.Time
	// HeldForWelfare is set by a failed checkpoint and blocks every forward
	// edge until cleared. Cancellation is still allowed.
	HeldForWelfare   bool
	WelfareClearedAt *time.Time
	CancelReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Move applies a forward or cancel edge.
func (s *Shipment) Move(to Status, now time.Time) error {
	if err := Transitions.Check(s.Status, to); err != nil {
		return err
	}
	if to != StatusCancelled {
		if s.HeldForWelfare {
			return s.Reject(to, "shipment is held for welfare")
		}
		if to == StatusBookingConfirmed && strings.TrimSpace(s.WelfarePlanID) == "" {
			return s.Reject(to, "welfarePlanId is required")
		}
	}
	switch to {
	case StatusInTransit:
		s.ActualDeparture = &now
	case StatusDelivered:
		s.ActualArrival = &now
	}
	s.Status = to
	s.UpdatedAt = now
	return nil
}

// Cancel moves to cancelled and records why.
func (s *Shipment) Cancel(reason string, now time.Time) error {
	if err := s.Move(StatusCancelled, now); err != nil {
		return err
	}
	s.CancelReason = reason
	return nil
}

// Observe attaches a checkpoint result. A failed checkpoint places the
// shipment on hold.
func (s *Shipment) Observe(cp WelfareCheckpoint, now time.Time) error {
	if Transitions.IsTerminal(s.Status) {
		return s.Reject(s.Status, fmt.Sprintf("shipment is %s", s.Status))
	}
	if !cp.Passed {
		s.HeldForWelfare = true
		s.WelfareClearedAt = nil
	}
	s.UpdatedAt = now
	return nil
}

// ClearHold releases a welfare hold.
func (s *Shipment) ClearHold(now time.Time) error {
	if !s.HeldForWelfare {
		return s.Reject(s.Status, "shipment is not held for welfare")
	}
	if Transitions.IsTerminal(s.Status) {
		return s.Reject(s.Status, fmt.Sprintf("shipment is %s", s.Status))
	}
	s.HeldForWelfare = false
	s.WelfareClearedAt = &now
	s.UpdatedAt = now
	return nil
}

func (s *Shipment) Reject(to Status, guard string) error {
	return lifecycle.Reject(lifecycle.MachineShipment, string(s.Status), string(to), guard)
}

// Clone copies the shipment including its route.
func (s *Shipment) Clone() *Shipment {
	cp := *s
	cp.Route = slices.Clone(s.Route)
	return &cp
}

// CheckpointType names the leg or event a checkpoint observed.
type CheckpointType string

const (
	CheckpointLoading  CheckpointType = "loading"
	CheckpointTransit  CheckpointType = "transit"
	CheckpointBorder   CheckpointType = "border"
	CheckpointUnload   CheckpointType = "unloading"
	CheckpointArrival  CheckpointType = "arrival"
	CheckpointVetCheck CheckpointType = "veterinary_check"
)

var checkpointTypes = []CheckpointType{
	CheckpointLoading, CheckpointTransit, CheckpointBorder, CheckpointUnload, CheckpointArrival, CheckpointVetCheck,
}

func ParseCheckpointType(s string) (CheckpointType, error) {
	t := CheckpointType(strings.TrimSpace(s))
	if !slices.Contains(checkpointTypes, t) {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid checkpoint type %q", s)
	}
	return t, nil
}

// WelfareCheckpoint is append-only.
type WelfareCheckpoint struct {
	ID             id.CheckpointID
	ShipmentID     id.ShipmentID
	Type           CheckpointType
	Location       string
	ConditionNotes string
	Temperature    *float64
	Passed         bool
	RecordedAt     time.Time
}
