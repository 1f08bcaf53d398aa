package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTLs, overridable through configuration.
const (
	DefaultAccessTokenTTL  = 5 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenClass tells access and refresh tokens apart. A token of one class is
// never accepted where the other is expected.
type TokenClass string

const (
	ClassAccess  TokenClass = "access"
	ClassRefresh TokenClass = "refresh"
)

// Claims are the signed contents of every token minted by the service.
type Claims struct {
	jwt.RegisteredClaims

	// Class is "access" or "refresh".
	Class TokenClass `json:"token_type"`

	// Roles is only present on access tokens.
	Roles []string `json:"roles,omitempty"`
}

// NewClaims builds claims for subject valid from now until now+ttl.
// Timestamps are truncated to whole seconds, matching what survives encoding.
func NewClaims(class TokenClass, subject, issuer string, roles []string, ttl time.Duration, now time.Time) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Class: class,
		Roles: roles,
	}
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// ValidAt reports whether the claims are inside their validity window:
// iat <= now < exp. Missing timestamps never validate.
func (c *Claims) ValidAt(now time.Time) error {
	if c.IssuedAt == nil || c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if now.Before(c.IssuedAt.Time) {
		return ErrNotYetValid
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}
