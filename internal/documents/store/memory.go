package store

import (
	"context"
	"sort"
	"sync"

	"terralegit/internal/documents/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
)

// InMemory keeps documents in process.
type InMemory struct {
	mu   sync.RWMutex
	docs map[id.DocumentID]models.Document
}

func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[id.DocumentID]models.Document)}
}

func (s *InMemory) Create(ctx context.Context, d *models.Document) error {
	return s.Save(ctx, d)
}

func (s *InMemory) Save(ctx context.Context, d *models.Document) error {
	record := *d
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.docs[record.ID] = record
	})
	return nil
}

func (s *InMemory) Find(_ context.Context, docID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

// ListByOwner returns the owner's documents oldest upload first.
func (s *InMemory) ListByOwner(_ context.Context, owner models.Owner) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Document
	for _, d := range s.docs {
		if d.Owner == owner {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}
