package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/auth"
	"github.com/kamtrack/lead-api/internal/config"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	return &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Email:     "anna@example.com",
		Name:      "Anna Berg",
		Role:      domain.RoleKam,
		Timezone:  "Europe/Oslo",
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tokens := auth.NewTokenManager(&config.AuthConfig{
		JwtSecret:       "test-secret",
		Issuer:          "test-issuer",
		TokenTtlMinutes: 60,
	})
	user := testUser()

	token, err := tokens.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, user.Name, userCtx.DisplayName)
	assert.Equal(t, domain.RoleKam, userCtx.Role)
	assert.Equal(t, "Europe/Oslo", userCtx.Timezone)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	issuing := auth.NewTokenManager(&config.AuthConfig{JwtSecret: "secret-a", Issuer: "test"})
	validating := auth.NewTokenManager(&config.AuthConfig{JwtSecret: "secret-b", Issuer: "test"})

	token, err := issuing.IssueToken(testUser())
	require.NoError(t, err)

	_, err = validating.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tokens := auth.NewTokenManager(&config.AuthConfig{JwtSecret: "test-secret", Issuer: "test"})

	// Hand-roll a token that expired an hour ago
	now := time.Now()
	claims := auth.Claims{
		Email: "anna@example.com",
		Name:  "Anna Berg",
		Role:  string(domain.RoleKam),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    "test",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tokens.ValidateToken(expired)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tokens := auth.NewTokenManager(&config.AuthConfig{JwtSecret: "test-secret", Issuer: "test"})

	_, err := tokens.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	issuing := auth.NewTokenManager(&config.AuthConfig{JwtSecret: "test-secret", Issuer: "other"})
	validating := auth.NewTokenManager(&config.AuthConfig{JwtSecret: "test-secret", Issuer: "expected"})

	token, err := issuing.IssueToken(testUser())
	require.NoError(t, err)

	_, err = validating.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
