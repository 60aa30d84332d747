package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/nhifportal/auth/internal/auth/store"
	"github.com/nhifportal/auth/pkg/cryptox"
	"github.com/nhifportal/auth/pkg/idx"
	"github.com/nhifportal/auth/pkg/slogx"
)

var (
	ErrEmailTaken      = errors.New("email_taken")
	ErrIdentityMissing = errors.New("identity_not_found")
)

// IdentityService owns account registration, credential checks and the
// admin-facing account listing.
type IdentityService struct {
	Store store.Store
}

// Register creates a STUDENT account. The email is lowercased before storage
// so lookups are case-insensitive without a collation dependency.
func (s *IdentityService) Register(ctx context.Context, email, fullName, password string) (domain.Identity, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	l := slogx.FromContext(ctx)
	now := time.Now()

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.Identity{}, err
	}

	ident := domain.Identity{
		ID:           idx.New(),
		Email:        normalizeEmail(email),
		FullName:     strings.TrimSpace(fullName),
		Role:         domain.RoleStudent,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Identities().Create(ctx, ident); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Identity{}, ErrEmailTaken
		}
		return domain.Identity{}, err
	}

	l.Info("identity registered",
		slog.String("subject_id", ident.ID.String()),
		slog.String("role", ident.Role.String()),
	)
	return ident, nil
}

// Login checks the credentials and returns the identity on success. Unknown
// email and wrong password collapse into the same error so responses never
// reveal whether an account exists.
func (s *IdentityService) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	ident, err := s.Store.Identities().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash verification anyway to keep the timing of the
			// two failure paths comparable.
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
			return domain.Identity{}, ErrInvalidCredentials
		}
		return domain.Identity{}, err
	}

	if err := cryptox.VerifyPassword(password, ident.PasswordHash); err != nil {
		return domain.Identity{}, ErrInvalidCredentials
	}

	return ident, nil
}

// Get loads an identity by subject id.
func (s *IdentityService) Get(ctx context.Context, id idx.ID) (domain.Identity, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	ident, err := s.Store.Identities().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrIdentityMissing
		}
		return domain.Identity{}, err
	}
	return ident, nil
}

// CreateWithRole creates an account with an explicit role and, when password
// is empty, a generated one. Used by the admin surface and bootstrap.
func (s *IdentityService) CreateWithRole(
	ctx context.Context,
	email, fullName, password string,
	role domain.Role,
) (domain.Identity, string, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	l := slogx.FromContext(ctx)
	now := time.Now()

	if password == "" {
		generated, err := cryptox.GeneratePassword()
		if err != nil {
			return domain.Identity{}, "", err
		}
		password = generated
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Identity{}, "", err
	}

	ident := domain.Identity{
		ID:           idx.New(),
		Email:        normalizeEmail(email),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Identities().Create(ctx, ident); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Identity{}, "", ErrEmailTaken
		}
		return domain.Identity{}, "", err
	}

	l.Info("identity created",
		slog.String("subject_id", ident.ID.String()),
		slog.String("role", ident.Role.String()),
	)
	return ident, password, nil
}

// List pages through identities in creation order.
func (s *IdentityService) List(ctx context.Context, limit, offset int) ([]domain.Identity, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.Identities().List(ctx, limit, offset)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
