package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields read from a backend-issued JWT.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type,omitempty"`
}

// ParseClaims decodes a token without verifying its signature. The backend
// owns the signing key; this service only needs the user id and expiry.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("session: empty token")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("session: parse token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the token's exp claim, or the zero time when absent or
// unreadable.
func ExpiresAt(token string) time.Time {
	claims, err := ParseClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// ttlFor derives a session lifetime from the refresh token expiry, bounded by
// fallback when the token carries no exp or is already past it.
func ttlFor(refreshToken string, now time.Time, fallback time.Duration) time.Duration {
	exp := ExpiresAt(refreshToken)
	if exp.IsZero() {
		return fallback
	}
	ttl := exp.Sub(now)
	if ttl <= 0 {
		return fallback
	}
	return ttl
}
