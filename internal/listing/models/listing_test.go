package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralegit/internal/lifecycle"
	dErrors "terralegit/pkg/domain-errors"
)

func TestListingMove(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	l := &Listing{Status: StatusDraft}

	require.NoError(t, l.Move(StatusPendingReview, now))
	require.NotNil(t, l.SubmittedAt)
	require.NoError(t, l.Move(StatusApproved, now))
	assert.Equal(t, []string{BadgeSellerVerified, BadgeHealthDocsApproved}, l.Badges)
	require.NoError(t, l.Move(StatusSold, now))

	err := l.Move(StatusWithdrawn, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	te, ok := lifecycle.AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, "sold", te.From)
}

func TestRejectedCannotBeResubmitted(t *testing.T) {
	assert.Error(t, Transitions.Check(StatusRejected, StatusPendingReview))
	assert.Error(t, Transitions.Check(StatusDraft, StatusApproved))
	assert.NoError(t, Transitions.Check(StatusPendingReview, StatusWithdrawn))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)
	_, err = ParseStatus("archived")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
