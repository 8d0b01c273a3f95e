// Package service exposes the audit log to compliance staff. Entries are
// written by each bounded context through the recorder; this side only reads.
package service

import (
	"context"
	"strings"

	"terralegit/internal/authz"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/requestcontext"
)

const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
)

type Reader interface {
	ListByEntity(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Entry, error)
}

type Service struct {
	reader Reader
}

func New(reader Reader) *Service {
	return &Service{reader: reader}
}

var entityTypes = map[audit.EntityType]bool{
	audit.EntityUser:            true,
	audit.EntitySellerProfile:   true,
	audit.EntityBuyerProfile:    true,
	audit.EntitySpecies:         true,
	audit.EntityCountryRule:     true,
	audit.EntityListing:         true,
	audit.EntityDocument:        true,
	audit.EntityAcquisitionCase: true,
	audit.EntityShipment:        true,
}

// History returns every entry for one entity in append order.
func (s *Service) History(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error) {
	if err := authz.Authorize(requestcontext.Actor(ctx), authz.ActionReadAudit, authz.Resource{}); err != nil {
		return nil, err
	}
	if !entityTypes[entityType] {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown entity type %q", entityType)
	}
	if strings.TrimSpace(entityID) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "entity id is required")
	}
	entries, err := s.reader.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "audit log unavailable")
	}
	return entries, nil
}

// Recent returns the newest entries first. limit is clamped to
// [1, MaxRecentLimit]; zero means DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	if err := authz.Authorize(requestcontext.Actor(ctx), authz.ActionReadAudit, authz.Resource{}); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	entries, err := s.reader.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "audit log unavailable")
	}
	return entries, nil
}
