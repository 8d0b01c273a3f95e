package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"terralegit/internal/listing/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
)

// InMemory keeps listings in process.
type InMemory struct {
	mu       sync.RWMutex
	listings map[id.ListingID]models.Listing
}

func NewInMemory() *InMemory {
	return &InMemory{listings: make(map[id.ListingID]models.Listing)}
}

func (s *InMemory) Create(ctx context.Context, l *models.Listing) error {
	s.mu.RLock()
	_, exists := s.listings[l.ID]
	s.mu.RUnlock()
	if exists {
		return sentinel.ErrConflict
	}
	return s.Save(ctx, l)
}

func (s *InMemory) Save(ctx context.Context, l *models.Listing) error {
	record := *l
	record.Badges = slices.Clone(l.Badges)
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listings[record.ID] = record
	})
	return nil
}

func (s *InMemory) Find(_ context.Context, listingID id.ListingID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[listingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	l.Badges = slices.Clone(l.Badges)
	return &l, nil
}

// List returns matching listings newest first.
func (s *InMemory) List(_ context.Context, f models.Filter) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Listing
	for _, l := range s.listings {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		if f.SellerID != nil && l.SellerID != *f.SellerID {
			continue
		}
		l.Badges = slices.Clone(l.Badges)
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
