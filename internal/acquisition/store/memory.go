package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"terralegit/internal/acquisition/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
)

// InMemory keeps cases in process.
type InMemory struct {
	mu    sync.RWMutex
	cases map[id.CaseID]models.Case
}

func NewInMemory() *InMemory {
	return &InMemory{cases: make(map[id.CaseID]models.Case)}
}

// Create refuses a second active case for the same buyer and listing.
func (s *InMemory) Create(ctx context.Context, c *models.Case) error {
	s.mu.RLock()
	_, exists := s.cases[c.ID]
	s.mu.RUnlock()
	if exists {
		return sentinel.ErrConflict
	}
	if _, err := s.FindActive(ctx, c.BuyerID, c.ListingID); err == nil {
		return sentinel.ErrConflict
	}
	return s.Save(ctx, c)
}

func (s *InMemory) Save(ctx context.Context, c *models.Case) error {
	record := *c
	record.RequiredDocs = slices.Clone(c.RequiredDocs)
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cases[record.ID] = record
	})
	return nil
}

func (s *InMemory) Find(_ context.Context, caseID id.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c.RequiredDocs = slices.Clone(c.RequiredDocs)
	return &c, nil
}

func (s *InMemory) FindActive(_ context.Context, buyerID id.BuyerID, listingID id.ListingID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cases {
		if c.BuyerID == buyerID && c.ListingID == listingID && c.Active() {
			c.RequiredDocs = slices.Clone(c.RequiredDocs)
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ListByBuyer returns the buyer's cases, newest first.
func (s *InMemory) ListByBuyer(_ context.Context, buyerID id.BuyerID) ([]*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Case
	for _, c := range s.cases {
		if c.BuyerID != buyerID {
			continue
		}
		c.RequiredDocs = slices.Clone(c.RequiredDocs)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return out, nil
}
