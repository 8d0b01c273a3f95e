package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralegit/internal/listing/models"
	id "terralegit/pkg/domain"
)

func TestInMemory_ListNewestFirst(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	seller := id.SellerID(uuid.New())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older := &models.Listing{ID: id.ListingID(uuid.New()), SellerID: seller, Status: models.StatusDraft, CreatedAt: base}
	newer := &models.Listing{ID: id.ListingID(uuid.New()), SellerID: seller, Status: models.StatusApproved, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, s.Create(ctx, older))
	require.NoError(t, s.Create(ctx, newer))

	all, err := s.List(ctx, models.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)

	approved := models.StatusApproved
	only, err := s.List(ctx, models.Filter{Status: &approved})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, newer.ID, only[0].ID)
}
