package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralegit/internal/shipment/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
)

var columns = []string{"id", "case_id", "origin_country", "destination_country", "status", "route", "welfare_plan_id",
	"estimated_departure", "estimated_arrival", "actual_departure", "actual_arrival",
	"held_for_welfare", "welfare_cleared_at", "cancel_reason", "created_at", "updated_at"}

func TestPostgres_FindByCase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	caseID := id.CaseID(uuid.New())
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM shipments WHERE case_id = $1") + `\s+ORDER BY status = 'cancelled', created_at DESC LIMIT 1`).
		WithArgs(caseID.UUID()).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			uuid.NewString(), caseID.String(), "US", "DE", "in_transit",
			[]byte(`[{"location":"Newark","country_code":"US"},{"location":"Frankfurt","country_code":"DE","mode":"air"}]`), "wp-1",
			nil, nil, created, nil, true, nil, "", created, created))

	sh, err := NewPostgres(db).FindByCase(context.Background(), caseID)
	require.NoError(t, err)
	require.NotNil(t, sh.CaseID)
	assert.Equal(t, caseID, *sh.CaseID)
	assert.Equal(t, models.StatusInTransit, sh.Status)
	assert.True(t, sh.HeldForWelfare)
	require.Len(t, sh.Route, 2)
	assert.Equal(t, "air", sh.Route[1].Mode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SecondShipmentForCaseConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shipments")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "shipments_live_case_idx"})

	caseID := id.CaseID(uuid.New())
	err = NewPostgres(db).Create(context.Background(), &models.Shipment{ID: id.ShipmentID(uuid.New()), CaseID: &caseID})
	assert.True(t, errors.Is(err, sentinel.ErrConflict))
}

func TestPostgres_ListCheckpoints(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	shipmentID := id.ShipmentID(uuid.New())
	at := time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM welfare_checkpoints WHERE shipment_id = $1 ORDER BY recorded_at")).
		WithArgs(shipmentID.UUID()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "shipment_id", "checkpoint_type", "location", "condition_notes", "temperature", "passed", "recorded_at"}).
			AddRow(uuid.NewString(), shipmentID.String(), "loading", "Newark", "", 18.5, true, at).
			AddRow(uuid.NewString(), shipmentID.String(), "border", "Frankfurt", "dehydrated", nil, false, at.Add(time.Hour)))

	cps, err := NewPostgres(db).ListCheckpoints(context.Background(), shipmentID)
	require.NoError(t, err)
	require.Len(t, cps, 2)
	require.NotNil(t, cps[0].Temperature)
	assert.InDelta(t, 18.5, *cps[0].Temperature, 0.001)
	assert.Nil(t, cps[1].Temperature)
	assert.False(t, cps[1].Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
