// Package store keeps sliding window request counters.
package store

import (
	"context"
	"sync"
	"time"

	"terralegit/internal/ratelimit/models"
)

// InMemory is a process local sliding window store. Counters are not shared
// between replicas.
type InMemory struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string][]time.Time
}

type Option func(*InMemory)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *InMemory) {
		s.now = now
	}
}

func NewInMemory(opts ...Option) *InMemory {
	s := &InMemory{now: time.Now, windows: make(map[string][]time.Time)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records one request against key when the window has room.
func (s *InMemory) Allow(_ context.Context, key string, p models.Policy) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stamps := evict(s.windows[key], now.Add(-p.Window))
	if len(stamps) >= p.Limit {
		s.windows[key] = stamps
		return &models.Result{Allowed: false, Limit: p.Limit, ResetAt: stamps[0].Add(p.Window)}, nil
	}

	stamps = append(stamps, now)
	s.windows[key] = stamps
	return &models.Result{
		Allowed:   true,
		Limit:     p.Limit,
		Remaining: p.Limit - len(stamps),
		ResetAt:   stamps[0].Add(p.Window),
	}, nil
}

// Reset forgets every request recorded for key.
func (s *InMemory) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// evict drops timestamps at or before cutoff. stamps is sorted.
func evict(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}
