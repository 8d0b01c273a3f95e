package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralegit/internal/lifecycle"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

var now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func newCase() *Case {
	return New(id.CaseID(uuid.New()), id.BuyerID(uuid.New()), id.ListingID(uuid.New()), "DE", "", now)
}

func TestComplianceMachine(t *testing.T) {
	c := newCase()
	assert.True(t, c.Active())

	err := c.MoveCompliance(ComplianceDocumentsApproved, now)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	assert.Equal(t, ComplianceEligibilityCheck, c.ComplianceState)

	require.NoError(t, c.MoveCompliance(ComplianceDocumentsPending, now))
	require.NoError(t, c.MoveCompliance(ComplianceDocumentsApproved, now))
	require.NoError(t, c.MoveCompliance(ComplianceRejected, now))
	assert.False(t, c.Active())
	assert.True(t, ComplianceTransitions.IsTerminal(ComplianceRejected))
}

func TestWithdrawnCaseDoesNotMove(t *testing.T) {
	c := newCase()
	c.WithdrawnAt = &now
	err := c.MoveCompliance(ComplianceDocumentsPending, now)
	te, ok := lifecycle.AsTransitionError(err)
	require.True(t, ok)
	assert.Equal(t, "case is withdrawn", te.Guard)
	assert.False(t, c.Active())
}

func TestPaymentMachine(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		c := newCase()
		require.NoError(t, c.MovePayment(PaymentAuthorized, now))
		require.NoError(t, c.MovePayment(PaymentCaptured, now))
		require.NoError(t, c.MovePayment(PaymentRefunded, now))
	})

	t.Run("capture requires authorization", func(t *testing.T) {
		c := newCase()
		assert.True(t, dErrors.HasCode(c.MovePayment(PaymentCaptured, now), dErrors.CodeInvalidTransition))
	})

	t.Run("no refund after release", func(t *testing.T) {
		c := newCase()
		c.PaymentState = PaymentCaptured
		c.FundsReleasedAt = &now
		err := c.MovePayment(PaymentRefunded, now)
		te, ok := lifecycle.AsTransitionError(err)
		require.True(t, ok)
		assert.Equal(t, "funds already released", te.Guard)
		assert.Equal(t, PaymentCaptured, c.PaymentState)
	})
}

func TestReleaseGuard(t *testing.T) {
	c := newCase()
	assert.Equal(t, "complianceState must be documents_approved", c.ReleaseGuard(true))
	c.ComplianceState = ComplianceDocumentsApproved
	assert.Equal(t, "paymentState must be captured", c.ReleaseGuard(true))
	c.PaymentState = PaymentCaptured
	assert.Equal(t, "linked shipment must be delivered", c.ReleaseGuard(false))
	assert.Empty(t, c.ReleaseGuard(true))

	c.FundsReleasedAt = &now
	assert.True(t, c.Completed())
	assert.Equal(t, "funds already released", c.ReleaseGuard(true))
}

func TestSnapshotRequiredDocs(t *testing.T) {
	c := newCase()
	c.SnapshotRequiredDocs([]string{"import_permit", "health_certificate", "import_permit"})
	assert.Equal(t, []string{"health_certificate", "import_permit"}, c.RequiredDocs)

	c.SnapshotRequiredDocs(nil)
	assert.Equal(t, []string{}, c.RequiredDocs)
}
