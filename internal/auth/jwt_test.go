package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(
		"test-secret-key-for-testing-purposes",
		"storefront-test",
		15*time.Minute,
	)
}

func TestNewJWTService(t *testing.T) {
	service := newTestJWTService()
	assert.NotNil(t, service)

	_, expiresAt, err := service.GenerateAccessToken("user-123", "alice", "test@example.com", RoleUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
}

func TestJWTService_GenerateAccessToken_Success(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateAccessToken("user-123", "alice", "test@example.com", RoleUser)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
}

func TestJWTService_ValidateAccessToken_Valid(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateAccessToken("user-456", "root", "admin@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-456", claims.UserID)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "user-456", claims.Subject)
	assert.True(t, claims.IsAdmin())
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	// Create a service with very short expiry
	service := NewJWTService("test-secret", "", 1*time.Millisecond)

	token, _, err := service.GenerateAccessToken("user-123", "alice", "test@example.com", RoleUser)
	require.NoError(t, err)

	// Wait for token to expire
	time.Sleep(10 * time.Millisecond)

	claims, err := service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_ValidateAccessToken_WrongSignature(t *testing.T) {
	service1 := NewJWTService("secret-key-1", "", 15*time.Minute)
	service2 := NewJWTService("secret-key-2", "", 15*time.Minute)

	token, _, err := service1.GenerateAccessToken("user-123", "alice", "test@example.com", RoleUser)
	require.NoError(t, err)

	claims, err := service2.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_WrongIssuer(t *testing.T) {
	issuing := NewJWTService("shared-secret", "some-other-service", 15*time.Minute)
	service := NewJWTService("shared-secret", "storefront-test", 15*time.Minute)

	token, _, err := issuing.GenerateAccessToken("user-123", "alice", "test@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_WrongAlgorithm(t *testing.T) {
	service := newTestJWTService()

	// Create a token with a different algorithm (none)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-123",
		Email:  "test@example.com",
		Role:   RoleAdmin,
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_MissingRole(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateAccessToken("user-123", "alice", "test@example.com", "")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestClaims_IsAdmin(t *testing.T) {
	var nilClaims *Claims

	assert.False(t, nilClaims.IsAdmin())
	assert.False(t, (&Claims{Role: RoleUser}).IsAdmin())
	assert.True(t, (&Claims{Role: RoleAdmin}).IsAdmin())
}
