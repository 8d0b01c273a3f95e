package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"terralegit/internal/identity/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
)

// InMemory keeps users and profiles in process.
type InMemory struct {
	mu      sync.RWMutex
	users   map[id.UserID]models.User
	sellers map[id.SellerID]models.SellerProfile
	buyers  map[id.BuyerID]models.BuyerProfile
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[id.UserID]models.User),
		sellers: make(map[id.SellerID]models.SellerProfile),
		buyers:  make(map[id.BuyerID]models.BuyerProfile),
	}
}

func (s *InMemory) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.RLock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) || strings.EqualFold(existing.Username, u.Username) {
			s.mu.RUnlock()
			return sentinel.ErrConflict
		}
	}
	s.mu.RUnlock()
	return s.SaveUser(ctx, u)
}

func (s *InMemory) SaveUser(ctx context.Context, u *models.User) error {
	record := *u
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.users[record.ID] = record
	})
	return nil
}

func (s *InMemory) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemory) CreateSeller(ctx context.Context, p *models.SellerProfile) error {
	s.mu.RLock()
	for _, existing := range s.sellers {
		if existing.UserID == p.UserID {
			s.mu.RUnlock()
			return sentinel.ErrConflict
		}
	}
	s.mu.RUnlock()
	return s.SaveSeller(ctx, p)
}

func (s *InMemory) SaveSeller(ctx context.Context, p *models.SellerProfile) error {
	record := *p
	record.PermitRefs = slices.Clone(p.PermitRefs)
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.sellers[record.ID] = record
	})
	return nil
}

func (s *InMemory) FindSeller(_ context.Context, sellerID id.SellerID) (*models.SellerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.sellers[sellerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) FindSellerByUser(_ context.Context, userID id.UserID) (*models.SellerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.sellers {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) CreateBuyer(ctx context.Context, p *models.BuyerProfile) error {
	s.mu.RLock()
	for _, existing := range s.buyers {
		if existing.UserID == p.UserID {
			s.mu.RUnlock()
			return sentinel.ErrConflict
		}
	}
	s.mu.RUnlock()

	record := *p
	record.Acknowledgments = slices.Clone(p.Acknowledgments)
	tx.Defer(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.buyers[record.ID] = record
	})
	return nil
}

func (s *InMemory) FindBuyer(_ context.Context, buyerID id.BuyerID) (*models.BuyerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.buyers[buyerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) FindBuyerByUser(_ context.Context, userID id.UserID) (*models.BuyerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.buyers {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
