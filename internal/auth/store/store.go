package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/nhifportal/auth/pkg/idx"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists is returned on unique-constraint conflicts, most
	// notably a duplicate identity email.
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStaleToken is returned by RefreshTokens.Replace when the stored
	// fingerprint no longer matches the presented one. The caller treats
	// this as losing a rotation race or as token reuse.
	ErrStaleToken = errors.New("store: stale refresh token")
)

// IdentityRepo persists portal accounts.
type IdentityRepo interface {
	Create(ctx context.Context, ident domain.Identity) error
	GetByID(ctx context.Context, id idx.ID) (domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (domain.Identity, error)
	List(ctx context.Context, limit, offset int) ([]domain.Identity, error)
	Count(ctx context.Context) (int64, error)
}

// RefreshTokenRepo persists the one-active-per-subject refresh ledger.
type RefreshTokenRepo interface {
	// Upsert installs rec as the subject's active refresh record, replacing
	// any previous one.
	Upsert(ctx context.Context, rec domain.RefreshRecord) error

	// GetBySubject returns the subject's active record, or ErrNotFound.
	GetBySubject(ctx context.Context, subjectID idx.ID) (domain.RefreshRecord, error)

	// Replace swaps the subject's record for next if and only if the stored
	// fingerprint still equals oldHash. Returns ErrStaleToken otherwise, so
	// exactly one caller wins a concurrent rotation.
	Replace(ctx context.Context, subjectID idx.ID, oldHash string, next domain.RefreshRecord) error

	// Delete removes the subject's record. Deleting a missing record is not
	// an error; logout is idempotent.
	Delete(ctx context.Context, subjectID idx.ID) error

	// DeleteExpired purges records whose expiry is at or before cutoff and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Tx exposes the repositories scoped to one transaction.
type Tx interface {
	Identities() IdentityRepo
	RefreshTokens() RefreshTokenRepo

	Commit() error
	Rollback() error
}

// Store bundles the repositories over a single database handle.
type Store interface {
	Identities() IdentityRepo
	RefreshTokens() RefreshTokenRepo

	// Tx starts a read/write transaction and returns a Tx-scoped view.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error or panic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
	Close() error
}
