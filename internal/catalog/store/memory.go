package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"terralegit/internal/catalog/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
)

// InMemory is the in-process species catalog.
type InMemory struct {
	mu      sync.RWMutex
	species map[id.SpeciesID]models.Species
}

func NewInMemory() *InMemory {
	return &InMemory{species: make(map[id.SpeciesID]models.Species)}
}

// Create adds a species. Scientific names are unique, case-insensitively.
func (s *InMemory) Create(ctx context.Context, sp *models.Species) error {
	s.mu.RLock()
	for _, existing := range s.species {
		if strings.EqualFold(existing.ScientificName, sp.ScientificName) {
			s.mu.RUnlock()
			return sentinel.ErrConflict
		}
	}
	s.mu.RUnlock()

	record := *sp
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.species[record.ID] = record
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, speciesID id.SpeciesID) (*models.Species, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.species[speciesID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &sp, nil
}

// List returns species ordered by common name, optionally filtered by category.
func (s *InMemory) List(_ context.Context, category *models.Category) ([]*models.Species, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Species, 0, len(s.species))
	for _, sp := range s.species {
		if category != nil && sp.Category != *category {
			continue
		}
		copied := sp
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommonName < out[j].CommonName })
	return out, nil
}
