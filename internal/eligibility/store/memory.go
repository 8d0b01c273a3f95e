package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"terralegit/internal/eligibility/models"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
)

// InMemory keeps country rules keyed by country code.
type InMemory struct {
	mu    sync.RWMutex
	rules map[string]models.CountryRule
}

func NewInMemory() *InMemory {
	return &InMemory{rules: make(map[string]models.CountryRule)}
}

// Upsert inserts or replaces the rule for its country.
func (s *InMemory) Upsert(ctx context.Context, rule *models.CountryRule) error {
	record := clone(*rule)
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rules[record.CountryCode] = record
	})
	return nil
}

func (s *InMemory) Find(_ context.Context, countryCode string) (*models.CountryRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[countryCode]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clone(r)
	return &out, nil
}

func (s *InMemory) List(_ context.Context, activeOnly bool) ([]*models.CountryRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CountryRule, 0, len(s.rules))
	for _, r := range s.rules {
		if activeOnly && !r.IsActive {
			continue
		}
		c := clone(r)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
	return out, nil
}

func clone(r models.CountryRule) models.CountryRule {
	r.Allowed = slices.Clone(r.Allowed)
	r.Restricted = slices.Clone(r.Restricted)
	r.RequiredDocs = slices.Clone(r.RequiredDocs)
	return r
}
