package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range []string{"public", "registered", "verified_buyer", "verified_seller", "compliance_admin", "super_admin", "institutional_account", "system"} {
		role, err := ParseRole(r)
		require.NoError(t, err, r)
		assert.Equal(t, r, role.String())
	}
	_, err := ParseRole("admin")
	assert.Error(t, err)
}

func TestRoleClassification(t *testing.T) {
	assert.True(t, RoleVerifiedSeller.IsVerified())
	assert.True(t, RoleInstitutionalAccount.IsVerified())
	assert.False(t, RoleRegistered.IsVerified())
	assert.True(t, RoleSuperAdmin.IsCompliance())
	assert.False(t, RoleVerifiedBuyer.IsCompliance())
	assert.False(t, RoleSystem.IsUserRole(), "system is never stored on a user")
}

func TestActor(t *testing.T) {
	assert.True(t, Actor{}.IsAnonymous())
	assert.False(t, SystemActor().IsAnonymous())
	assert.Equal(t, "system", SystemActor().AuditID())

	uid := UserID(uuid.New())
	a := Actor{ID: uid, Role: RoleVerifiedBuyer, Status: VerificationApproved}
	assert.False(t, a.IsAnonymous())
	assert.Equal(t, uid.String(), a.AuditID())
}

func TestVerificationStatus(t *testing.T) {
	v, err := ParseVerificationStatus("under_review")
	require.NoError(t, err)
	assert.Equal(t, VerificationUnderReview, v)
	assert.True(t, VerificationSuspended.Blocked())
	assert.False(t, VerificationPending.Blocked())
	_, err = ParseVerificationStatus("ok")
	assert.Error(t, err)
}

func TestParseCountryCode(t *testing.T) {
	code, err := ParseCountryCode(" us ")
	require.NoError(t, err)
	assert.Equal(t, "US", code)

	for _, bad := range []string{"", "USA", "U1", "ü"} {
		_, err := ParseCountryCode(bad)
		assert.Error(t, err, bad)
	}
}
