package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTLs. Short access tokens limit the blast radius of a leaked
// bearer token; the refresh token carries the longer session.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenKind is a closed tag distinguishing access from refresh tokens, so a
// refresh token can never be presented where an access token is expected and
// vice versa.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Valid reports whether k is one of the known kinds.
func (k TokenKind) Valid() bool {
	switch k {
	case KindAccess, KindRefresh:
		return true
	}
	return false
}

// Claims are the token claims shared by both kinds. Role is carried as a
// string on the wire; the HTTP layer parses it back into the closed role set.
type Claims struct {
	jwt.RegisteredClaims

	// Role of the subject, e.g. "STUDENT" or "ADMIN".
	Role string `json:"role,omitempty"`

	// Kind tags the token as access or refresh.
	Kind TokenKind `json:"type,omitempty"`
}

// NewClaims builds minimally-correct claims for a token of the given kind.
// Every token gets a fresh jti so individual tokens can be correlated in logs
// and, for refresh tokens, tied to their ledger record.
func NewClaims(
	subject, role string,
	kind TokenKind,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role: role,
		Kind: kind,
	}
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
