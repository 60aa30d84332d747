package domain

import (
	"time"

	"github.com/nhifportal/auth/pkg/idx"
)

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshRecord is the ledger entry for a subject's currently valid refresh
// token. TokenHash is the SHA-256 fingerprint of the token string, never the
// token itself. One record per subject: issuing or rotating replaces it.
type RefreshRecord struct {
	ID        idx.ID
	SubjectID idx.ID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record's refresh token has passed its expiry.
func (r RefreshRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
