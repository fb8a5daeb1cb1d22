// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = 30 * 24 * time.Hour

var (
	// ErrInvalidToken is returned when a token is absent, malformed, expired
	// or not signed with the configured secret.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSecret is returned by every operation when no signing
	// secret is configured.
	ErrMissingSecret = errors.New("token signing secret is not configured")
)

// TokenIssuer creates and verifies HS256 tokens carrying a user id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer. A non-positive ttl uses DefaultTokenTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for userID that expires after the issuer's TTL.
func (i *TokenIssuer) Issue(userID uuid.UUID) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify checks the token and returns the user id it was issued for.
// Failures wrap ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (uuid.UUID, error) {
	if len(i.secret) == 0 {
		return uuid.Nil, ErrMissingSecret
	}
	if strings.TrimSpace(tokenString) == "" {
		return uuid.Nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(strings.TrimSpace(claims.Subject))
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, nil
}
