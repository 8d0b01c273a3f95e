package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"terralegit/internal/shipment/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
)

// InMemory keeps shipments and their checkpoints in process.
type InMemory struct {
	mu          sync.RWMutex
	shipments   map[id.ShipmentID]*models.Shipment
	checkpoints map[id.ShipmentID][]models.WelfareCheckpoint
}

func NewInMemory() *InMemory {
	return &InMemory{
		shipments:   make(map[id.ShipmentID]*models.Shipment),
		checkpoints: make(map[id.ShipmentID][]models.WelfareCheckpoint),
	}
}

// Create refuses a second live shipment for the same case. Cancelled
// shipments do not count.
func (s *InMemory) Create(ctx context.Context, sh *models.Shipment) error {
	s.mu.RLock()
	_, exists := s.shipments[sh.ID]
	s.mu.RUnlock()
	if exists {
		return sentinel.ErrConflict
	}
	if sh.CaseID != nil {
		if cur, err := s.FindByCase(ctx, *sh.CaseID); err == nil && cur.Status != models.StatusCancelled {
			return sentinel.ErrConflict
		}
	}
	return s.Save(ctx, sh)
}

func (s *InMemory) Save(ctx context.Context, sh *models.Shipment) error {
	record := sh.Clone()
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.shipments[record.ID] = record
	})
	return nil
}

func (s *InMemory) Find(_ context.Context, shipmentID id.ShipmentID) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments[shipmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return sh.Clone(), nil
}

// FindByCase returns the case's live shipment, or its most recent cancelled
// one when none is live.
func (s *InMemory) FindByCase(_ context.Context, caseID id.CaseID) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.Shipment
	for _, sh := range s.shipments {
		if sh.CaseID == nil || *sh.CaseID != caseID {
			continue
		}
		if sh.Status != models.StatusCancelled {
			return sh.Clone(), nil
		}
		if best == nil || sh.CreatedAt.After(best.CreatedAt) {
			best = sh
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	return best.Clone(), nil
}

func (s *InMemory) AppendCheckpoint(ctx context.Context, cp models.WelfareCheckpoint) error {
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.checkpoints[cp.ShipmentID] = append(s.checkpoints[cp.ShipmentID], cp)
	})
	return nil
}

// ListCheckpoints returns checkpoints in recording order.
func (s *InMemory) ListCheckpoints(_ context.Context, shipmentID id.ShipmentID) ([]models.WelfareCheckpoint, error) {
	s.mu.RLock()
	out := slices.Clone(s.checkpoints[shipmentID])
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}
