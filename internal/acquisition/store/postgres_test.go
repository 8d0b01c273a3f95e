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

	"terralegit/internal/acquisition/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/sentinel"
)

var columns = []string{"id", "buyer_id", "listing_id", "destination_country", "compliance_state", "payment_state",
	"required_docs", "rejection_reason", "notes", "withdrawn_at", "funds_released_at", "opened_at", "updated_at"}

func TestPostgres_FindActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	buyerID := id.BuyerID(uuid.New())
	listingID := id.ListingID(uuid.New())
	opened := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("withdrawn_at IS NULL")).
		WithArgs(buyerID.UUID(), listingID.UUID()).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			uuid.NewString(), buyerID.String(), listingID.String(), "DE", "documents_pending", "authorized",
			[]byte(`["health_certificate","import_permit"]`), "", "", nil, nil, opened, opened))

	c, err := NewPostgres(db).FindActive(context.Background(), buyerID, listingID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceDocumentsPending, c.ComplianceState)
	assert.Equal(t, models.PaymentAuthorized, c.PaymentState)
	assert.Equal(t, []string{"health_certificate", "import_permit"}, c.RequiredDocs)
	assert.Nil(t, c.WithdrawnAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateDuplicateActiveCaseConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO acquisition_cases")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "acquisition_cases_active_pair_idx"})

	now := time.Now()
	c := models.New(id.CaseID(uuid.New()), id.BuyerID(uuid.New()), id.ListingID(uuid.New()), "DE", "", now)
	err = NewPostgres(db).Create(context.Background(), c)
	assert.True(t, errors.Is(err, sentinel.ErrConflict))
}
