package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-api/internal/model"
)

func testTokenService() *TokenService {
	return NewTokenService("test-secret", "chat-api", "chat-clients", 30*time.Minute, 30*time.Minute)
}

func testUser() model.User {
	return model.User{
		ID:           "507f1f77bcf86cd799439011",
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		Roles: []model.Role{
			{ID: "000000000000000000000002", Name: "User", NormalizedName: "USER"},
		},
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := testTokenService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	signed, expiresAt, err := svc.Issue(testUser(), now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), expiresAt)

	claims, err := svc.Verify(signed, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "jdoe@example.com", claims.Email)
	assert.Equal(t, []string{"USER"}, claims.Roles)
}

func TestTokenService_ClockSkewTolerance(t *testing.T) {
	svc := testTokenService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	signed, expiresAt, err := svc.Issue(testUser(), now)
	require.NoError(t, err)

	// 29 minutes past expiry is inside the 30-minute tolerance.
	_, err = svc.Verify(signed, expiresAt.Add(29*time.Minute))
	assert.NoError(t, err)

	// 31 minutes past expiry is outside it.
	_, err = svc.Verify(signed, expiresAt.Add(31*time.Minute))
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	signed, _, err := NewTokenService("other-secret", "chat-api", "chat-clients", 30*time.Minute, 0).Issue(testUser(), now)
	require.NoError(t, err)

	_, err = testTokenService().Verify(signed, now)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestTokenService_RejectsWrongIssuerAndAudience(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	badIssuer, _, err := NewTokenService("test-secret", "someone-else", "chat-clients", 30*time.Minute, 0).Issue(testUser(), now)
	require.NoError(t, err)
	_, err = testTokenService().Verify(badIssuer, now)
	assert.ErrorIs(t, err, model.ErrInvalidToken)

	badAudience, _, err := NewTokenService("test-secret", "chat-api", "other-clients", 30*time.Minute, 0).Issue(testUser(), now)
	require.NoError(t, err)
	_, err = testTokenService().Verify(badAudience, now)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestTokenService_RejectsUnsignedToken(t *testing.T) {
	svc := testTokenService()
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "507f1f77bcf86cd799439011",
		"iss": "chat-api",
		"aud": "chat-clients",
		"exp": now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(signed, now)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestTokenService_VerifyIgnoringExpiry(t *testing.T) {
	svc := testTokenService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	signed, expiresAt, err := svc.Issue(testUser(), now)
	require.NoError(t, err)

	// Far past the skew window: Verify refuses, the refresh path accepts.
	_, err = svc.Verify(signed, expiresAt.Add(24*time.Hour))
	require.ErrorIs(t, err, model.ErrTokenExpired)

	claims, err := svc.VerifyIgnoringExpiry(signed)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
}

func TestTokenService_VerifyIgnoringExpiryStillChecksBounds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	foreign, _, err := NewTokenService("test-secret", "someone-else", "chat-clients", time.Minute, 0).Issue(testUser(), now)
	require.NoError(t, err)

	_, err = testTokenService().VerifyIgnoringExpiry(foreign)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestTokenService_IssueRefreshChangesEveryTime(t *testing.T) {
	svc := testTokenService()
	user := testUser()

	first := svc.IssueRefresh(user, time.Now())
	second := svc.IssueRefresh(user, time.Now().Add(time.Millisecond))

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
