package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/nhifportal/auth/pkg/slogx"
)

// BootstrapService seeds the first ADMIN account on an empty database so the
// admin surface is reachable from the very first boot. It does nothing once
// any identity exists.
type BootstrapService struct {
	Identities *IdentityService

	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// EnsureAdmin creates the configured admin account when the identity table is
// empty. Missing configuration on an empty database is an error; running the
// portal with no admin locks everyone out of account administration.
func (s *BootstrapService) EnsureAdmin(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	n, err := s.Identities.Store.Identities().Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if s.AdminEmail == "" || s.AdminPassword == "" {
		return errors.New("bootstrap: empty database and no admin credentials configured")
	}

	name := s.AdminName
	if name == "" {
		name = "Portal Administrator"
	}

	ident, _, err := s.Identities.CreateWithRole(ctx, s.AdminEmail, name, s.AdminPassword, domain.RoleAdmin)
	if err != nil {
		return err
	}

	l.Info("bootstrapped admin account",
		slog.String("subject_id", ident.ID.String()),
	)
	return nil
}
