package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralegit/internal/shipment/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
)

func TestInMemory_OneShipmentPerCase(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	caseID := id.CaseID(uuid.New())

	first := &models.Shipment{ID: id.ShipmentID(uuid.New()), CaseID: &caseID, Status: models.StatusQuoteRequested,
		Route: []models.Waypoint{{Location: "Rotterdam", CountryCode: "NL"}}}
	require.NoError(t, s.Create(ctx, first))

	second := &models.Shipment{ID: id.ShipmentID(uuid.New()), CaseID: &caseID, Status: models.StatusQuoteRequested}
	assert.True(t, errors.Is(s.Create(ctx, second), sentinel.ErrConflict))

	got, err := s.FindByCase(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got.Route[0].Location = "Antwerp"
	again, err := s.Find(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rotterdam", again.Route[0].Location)
}

func TestInMemory_CancelledShipmentCanBeReplaced(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	caseID := id.CaseID(uuid.New())
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	first := &models.Shipment{ID: id.ShipmentID(uuid.New()), CaseID: &caseID, Status: models.StatusCancelled, CreatedAt: base}
	require.NoError(t, s.Create(ctx, first))

	got, err := s.FindByCase(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "a cancelled shipment is still found when nothing replaced it")

	second := &models.Shipment{ID: id.ShipmentID(uuid.New()), CaseID: &caseID, Status: models.StatusQuoteRequested, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, s.Create(ctx, second))

	got, err = s.FindByCase(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	third := &models.Shipment{ID: id.ShipmentID(uuid.New()), CaseID: &caseID, Status: models.StatusQuoteRequested, CreatedAt: base.Add(2 * time.Hour)}
	assert.True(t, errors.Is(s.Create(ctx, third), sentinel.ErrConflict))
}

func TestInMemory_CheckpointsFollowTheUnit(t *testing.T) {
	s := NewInMemory()
	runner := tx.NewMemoryRunner()
	shipmentID := id.ShipmentID(uuid.New())
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.AppendCheckpoint(ctx, models.WelfareCheckpoint{ID: id.CheckpointID(uuid.New()), ShipmentID: shipmentID, RecordedAt: base}))
		return errors.New("audit down")
	})
	require.Error(t, err)
	cps, err := s.ListCheckpoints(context.Background(), shipmentID)
	require.NoError(t, err)
	assert.Empty(t, cps)

	ctx := context.Background()
	require.NoError(t, s.AppendCheckpoint(ctx, models.WelfareCheckpoint{ShipmentID: shipmentID, Type: models.CheckpointBorder, RecordedAt: base.Add(time.Hour)}))
	require.NoError(t, s.AppendCheckpoint(ctx, models.WelfareCheckpoint{ShipmentID: shipmentID, Type: models.CheckpointLoading, RecordedAt: base}))
	cps, err = s.ListCheckpoints(ctx, shipmentID)
	require.NoError(t, err)
	require.Len(t, cps, 2)
	assert.Equal(t, models.CheckpointLoading, cps[0].Type)
}
