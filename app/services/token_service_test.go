package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{"valid symmetric key configuration", false, "test-secret-key-for-jwt-signing-32-chars", false},
		{"missing secret key", false, "", true},
		{"rsa without keys", true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(15*time.Minute, time.Hour, "iss", "aud", tt.useRSAKeys, "", "", tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, service)
		})
	}
}

func TestGenerateAndValidateAdminTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateAdminTokens(42)
	require.NoError(t, err)
	assert.NotEqual(t, accessToken, refreshToken)

	claims, err := service.ValidateAdminToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AdminID)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, claims.IssuedAt.Add(15*time.Minute), claims.ExpiresAt, time.Second)

	refreshClaims, err := service.ValidateAdminToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestValidateAdminToken_Rejects(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	other, err := NewTokenService(15*time.Minute, time.Hour, "test-issuer", "test-audience", false, "", "", "another-secret-key-for-jwt-signing-000")
	require.NoError(t, err)
	foreign, _, err := other.GenerateAdminTokens(1)
	require.NoError(t, err)

	wrongIssuer, err := NewTokenService(15*time.Minute, time.Hour, "someone-else", "test-audience", false, "", "", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)
	misissued, _, err := wrongIssuer.GenerateAdminTokens(1)
	require.NoError(t, err)

	expired, err := NewTokenService(-time.Minute, time.Hour, "test-issuer", "test-audience", false, "", "", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)
	stale, _, err := expired.GenerateAdminTokens(1)
	require.NoError(t, err)

	noAdmin := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_type": "access", "jti": "x", "iat": time.Now().Unix(), "exp": time.Now().Add(time.Hour).Unix(),
		"iss": "test-issuer", "aud": "test-audience",
	})
	missingAdmin, err := noAdmin.SignedString([]byte("test-secret-key-for-jwt-signing-32-chars"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", ErrTokenInvalid},
		{"wrong signature", foreign, ErrTokenInvalid},
		{"wrong issuer", misissued, ErrTokenInvalid},
		{"expired", stale, ErrTokenExpired},
		{"missing admin id", missingAdmin, ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAdminToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, claims)
		})
	}
}

func TestRevokeAndRefresh(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateAdminTokens(7)
	require.NoError(t, err)

	_, _, err = service.RefreshAdminToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	newAccess, newRefresh, err := service.RefreshAdminToken(refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)

	_, err = service.ValidateAdminToken(refreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	require.NoError(t, service.RevokeToken(accessToken))
	_, err = service.ValidateAdminToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	claims, err := service.ValidateAdminToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.AdminID)
}
