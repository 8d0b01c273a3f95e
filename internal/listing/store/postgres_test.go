package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralegit/internal/listing/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
)

var columns = []string{"id", "seller_id", "species_id", "category", "title", "description", "origin_country", "quantity",
	"price_cents", "currency", "status", "health_doc_status", "badges", "rejection_reason", "sold_case_id",
	"created_at", "submitted_at", "approved_at", "updated_at"}

func TestPostgres_ListFiltersByStatusAndSeller(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sellerID := id.SellerID(uuid.New())
	status := models.StatusApproved
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	caseID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE status = $1 AND seller_id = $2 ORDER BY created_at DESC")).
		WithArgs("approved", sellerID.UUID()).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			uuid.NewString(), sellerID.String(), uuid.NewString(), "reptile", "Ball python", "", "US", 2,
			int64(25000), "USD", "approved", "approved", []byte(`["seller_verified"]`), "", caseID.String(),
			now, now, now, now))

	listings, err := NewPostgres(db).List(context.Background(), models.Filter{Status: &status, SellerID: &sellerID})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, sellerID, listings[0].SellerID)
	assert.Equal(t, []string{models.BadgeSellerVerified}, listings[0].Badges)
	require.NotNil(t, listings[0].SoldCaseID)
	assert.Equal(t, caseID, listings[0].SoldCaseID.UUID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindMissingIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE id = $1")).WillReturnRows(sqlmock.NewRows(columns))

	_, err = NewPostgres(db).Find(context.Background(), id.ListingID(uuid.New()))
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}
