package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), 0)
	assert.Equal(t, DefaultTokenTTL, issuer.ttl)

	userID := uuid.New()
	token, err := issuer.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestIssueSetsThirtyDayExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer([]byte("test-secret"), DefaultTokenTTL)
	issuer.now = func() time.Time { return now }

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestVerifyFailures(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	userID := uuid.New()

	valid, err := issuer.Issue(userID)
	require.NoError(t, err)

	otherIssuer := NewTokenIssuer([]byte("other-secret"), time.Hour)
	foreign, err := otherIssuer.Issue(userID)
	require.NoError(t, err)

	expiredIssuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue(userID)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: userID.String(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not-a-token"},
		{"truncated", valid[:len(valid)-4]},
		{"wrong secret", foreign},
		{"expired", expired},
		{"none algorithm", noneToken},
		{"non uuid subject", badSubject},
		{"missing expiry", noExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMissingSecret(t *testing.T) {
	issuer := NewTokenIssuer(nil, time.Hour)

	_, err := issuer.Issue(uuid.New())
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = issuer.Verify("anything")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
