package domain

import (
	"time"

	"github.com/nhifportal/auth/pkg/idx"
)

// Identity is a portal account. PasswordHash holds the self-describing PHC
// string; it never leaves the store and service layers.
type Identity struct {
	ID           idx.ID
	Email        string
	FullName     string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
