package store

import (
	"context"
	"sort"
	"sync"

	"terralegit/internal/inquiry/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
)

type InMemory struct {
	mu        sync.RWMutex
	inquiries map[id.InquiryID]models.Inquiry
}

func NewInMemory() *InMemory {
	return &InMemory{inquiries: make(map[id.InquiryID]models.Inquiry)}
}

func (s *InMemory) Create(_ context.Context, inq *models.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inquiries[inq.ID]; ok {
		return sentinel.ErrConflict
	}
	s.inquiries[inq.ID] = *inq
	return nil
}

func (s *InMemory) Save(_ context.Context, inq *models.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inquiries[inq.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.inquiries[inq.ID] = *inq
	return nil
}

func (s *InMemory) Find(_ context.Context, inquiryID id.InquiryID) (*models.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inq, ok := s.inquiries[inquiryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &inq, nil
}

// List returns inquiries newest first, optionally by status.
func (s *InMemory) List(_ context.Context, status *models.Status) ([]*models.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Inquiry
	for _, inq := range s.inquiries {
		if status != nil && inq.Status != *status {
			continue
		}
		out = append(out, &inq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
