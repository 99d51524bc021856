package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopcare/admin-api/internal/model"
)

func testStaff() *model.StaffMember {
	staff := &model.StaffMember{
		Email: "nurse@example.org",
		Role:  model.StaffRoleNurse,
	}
	staff.ID = uuid.New()
	return staff
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", 1, 24)
	staff := testStaff()

	token, err := svc.GenerateAccessToken(staff)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, claims.StaffID)
	assert.Equal(t, staff.Email, claims.Email)
	assert.Equal(t, model.StaffRoleNurse, claims.Role)
}

func TestRefreshTokenNotValidAsAccess(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", 1, 24)
	staff := testStaff()

	refresh, err := svc.GenerateRefreshToken(staff)
	require.NoError(t, err)

	_, err = svc.ValidateToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, claims.StaffID)
}

func TestTokenWrongSecret(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", 1, 24)
	other := NewJWTService("different", "different", 1, 24)

	token, err := svc.GenerateAccessToken(testStaff())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", 1, 24)

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
