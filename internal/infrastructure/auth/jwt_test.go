package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "scg-test",
		MaxRefreshCount:        2,
	}
	return NewJWTService(cfg)
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		UserID:      uuid.New(),
		Email:       "analyst@example.com",
		CustomerIDs: []uuid.UUID{uuid.New()},
		Permissions: []string{"report:view", "finding:update"},
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.Email, claims.Email)
	assert.Equal(t, []string{input.CustomerIDs[0].String()}, claims.CustomerIDs)
	assert.NotEmpty(t, claims.ID)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refresh.Permissions)
	assert.Zero(t, refresh.RefreshCount)
}

func TestValidateAccessToken_Errors(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token used as access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("different secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-at-least-32-ch", AccessTokenExpiration: time.Minute})
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := newTestJWTService()
		later.now = func() time.Time { return time.Now().Add(time.Hour) }
		_, err := later.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	// MaxRefreshCount is 2
	for want := 1; want <= 2; want++ {
		claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		pair, err = svc.RefreshTokenPair(claims, input)
		require.NoError(t, err)

		next, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, want, next.RefreshCount)
	}

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	_, err = svc.RefreshTokenPair(claims, input)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
}

func TestRefreshTokenPair_OtherUser(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)
	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshTokenPair(claims, newTestInput())
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestClaims_Access(t *testing.T) {
	member := uuid.New()
	claims := &Claims{
		CustomerIDs: []string{member.String()},
		Permissions: []string{"report:view"},
	}

	assert.True(t, claims.CanAccessCustomer(member))
	assert.False(t, claims.CanAccessCustomer(uuid.New()))
	assert.True(t, claims.HasPermission("report:view"))
	assert.False(t, claims.HasPermission("report:delete"))
	assert.True(t, claims.HasAnyPermission("report:delete", "report:view"))

	ids, err := claims.GetCustomerUUIDs()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{member}, ids)

	staff := &Claims{IsStaff: true}
	assert.True(t, staff.CanAccessCustomer(uuid.New()))
	assert.True(t, staff.HasPermission("anything:at_all"))
}
