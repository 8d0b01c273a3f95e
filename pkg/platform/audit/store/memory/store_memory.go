package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
)

type entityKey struct {
	entityType audit.EntityType
	entityID   string
}

// InMemoryStore keeps audit entries in process. Appends made inside a unit of
// work become visible only when the unit commits.
type InMemoryStore struct {
	mu       sync.RWMutex
	entries  []audit.Entry
	byEntity map[entityKey][]int
	failWith error
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byEntity: make(map[entityKey][]int)}
}

// Clear drops all entries.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byEntity = make(map[entityKey][]int)
}

// SetUnavailable makes every following Append fail with err wrapped in
// sentinel.ErrUnavailable. Pass nil to restore.
func (s *InMemoryStore) SetUnavailable(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *InMemoryStore) Append(ctx context.Context, entry audit.Entry) error {
	s.mu.RLock()
	failWith := s.failWith
	s.mu.RUnlock()
	if failWith != nil {
		return errors.Join(sentinel.ErrUnavailable, failWith)
	}
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		key := entityKey{entry.EntityType, entry.EntityID}
		s.byEntity[key] = append(s.byEntity[key], len(s.entries))
		s.entries = append(s.entries, entry)
	})
	return nil
}

// ListByEntity returns the entity's entries oldest first.
func (s *InMemoryStore) ListByEntity(_ context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byEntity[entityKey{entityType, entityID}]
	out := make([]audit.Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.entries[i])
	}
	return out, nil
}

// ListRecent returns up to limit entries, most recent first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	all := append([]audit.Entry{}, s.entries...)
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Len returns the number of committed entries.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
