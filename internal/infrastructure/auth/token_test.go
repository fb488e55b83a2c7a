package auth

import (
	"testing"
	"time"

	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "bizgrid-test",
	})
}

func TestIssueTokenPair(t *testing.T) {
	svc := testService()
	tenantID := uuid.New()
	userID := uuid.New()

	pair, err := svc.IssueTokenPair(IssueInput{TenantID: tenantID, UserID: userID, Role: "admin"})
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.AccessTokenExpiresAt.Before(pair.RefreshTokenExpiresAt))
}

func TestVerify(t *testing.T) {
	svc := testService()
	tenantID := uuid.New()
	userID := uuid.New()

	pair, err := svc.IssueTokenPair(IssueInput{TenantID: tenantID, UserID: userID, Role: "member"})
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		result := svc.Verify(pair.AccessToken)
		require.True(t, result.Valid)
		require.NotNil(t, result.Claims)
		assert.Equal(t, tenantID.String(), result.Claims.TenantID)
		assert.Equal(t, userID.String(), result.Claims.UserID)
		assert.Equal(t, "member", result.Claims.Role)
		assert.Equal(t, TokenTypeAccess, result.Claims.TokenType)
	})

	t.Run("never errors on garbage input", func(t *testing.T) {
		for _, raw := range []string{
			"",
			"not-a-jwt",
			"a.b.c",
			"eyJhbGciOiJIUzI1NiJ9.e30.",
			pair.AccessToken + "tampered",
		} {
			result := svc.Verify(raw)
			assert.False(t, result.Valid, "token %q must be invalid", raw)
			assert.Nil(t, result.Claims)
			assert.NotEmpty(t, result.Reason)
		}
	})

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		result := svc.Verify(pair.RefreshToken)
		assert.False(t, result.Valid)
	})

	t.Run("token signed with different secret rejected", func(t *testing.T) {
		other := NewTokenService(config.JWTConfig{
			Secret:                 "another-secret-key-that-is-also-long",
			AccessTokenExpiration:  time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "other",
		})
		otherPair, err := other.IssueTokenPair(IssueInput{TenantID: tenantID, UserID: userID})
		require.NoError(t, err)

		result := svc.Verify(otherPair.AccessToken)
		assert.False(t, result.Valid)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := NewTokenService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-characters",
			AccessTokenExpiration:  -time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "bizgrid-test",
		})
		expiredPair, err := expired.IssueTokenPair(IssueInput{TenantID: tenantID, UserID: userID})
		require.NoError(t, err)

		result := svc.Verify(expiredPair.AccessToken)
		assert.False(t, result.Valid)
	})
}

func TestRefresh(t *testing.T) {
	svc := testService()
	tenantID := uuid.New()
	userID := uuid.New()

	pair, err := svc.IssueTokenPair(IssueInput{TenantID: tenantID, UserID: userID, Role: "admin"})
	require.NoError(t, err)

	t.Run("valid refresh token yields new pair", func(t *testing.T) {
		newPair, err := svc.Refresh(pair.RefreshToken)
		require.NoError(t, err)

		result := svc.Verify(newPair.AccessToken)
		require.True(t, result.Valid)
		assert.Equal(t, tenantID.String(), result.Claims.TenantID)
		assert.Equal(t, "admin", result.Claims.Role)
	})

	t.Run("access token rejected for refresh", func(t *testing.T) {
		_, err := svc.Refresh(pair.AccessToken)
		assert.Error(t, err)
	})
}

func TestClaimsHelpers(t *testing.T) {
	svc := testService()
	tenantID := uuid.New()
	userID := uuid.New()

	pair, err := svc.IssueTokenPair(IssueInput{TenantID: tenantID, UserID: userID})
	require.NoError(t, err)

	result := svc.Verify(pair.AccessToken)
	require.True(t, result.Valid)

	gotTenant, err := result.Claims.GetTenantUUID()
	require.NoError(t, err)
	assert.Equal(t, tenantID, gotTenant)

	gotUser, err := result.Claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)

	assert.Greater(t, result.Claims.GetRemainingTTL(), time.Duration(0))
	assert.False(t, result.Claims.GetIssuedAtTime().IsZero())
}
