package service

import (
	"context"
	"testing"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	_, idents, _ := newTestEnv(t)
	ctx := context.Background()

	ident, err := idents.Register(ctx, "Student@Example.COM", "  Jane Doe  ", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "student@example.com", ident.Email)
	require.Equal(t, "Jane Doe", ident.FullName)
	require.Equal(t, domain.RoleStudent, ident.Role)
	require.NotEqual(t, "hunter22", ident.PasswordHash)

	// Lookup is case-insensitive because the stored form is lowercased.
	got, err := idents.Login(ctx, "STUDENT@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, ident.ID, got.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, idents, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := idents.Register(ctx, "dup@example.com", "First", "hunter22")
	require.NoError(t, err)

	_, err = idents.Register(ctx, "dup@example.com", "Second", "hunter23")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	_, idents, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := idents.Register(ctx, "known@example.com", "Known", "hunter22")
	require.NoError(t, err)

	// Wrong password and unknown account yield the identical error value.
	_, wrongPass := idents.Login(ctx, "known@example.com", "wrong")
	_, noAccount := idents.Login(ctx, "ghost@example.com", "whatever")

	require.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	require.ErrorIs(t, noAccount, ErrInvalidCredentials)
}

func TestCreateWithRoleGeneratesPassword(t *testing.T) {
	_, idents, _ := newTestEnv(t)
	ctx := context.Background()

	ident, password, err := idents.CreateWithRole(ctx, "staff@example.com", "Staff", "", domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, ident.Role)
	require.Len(t, password, 12)

	got, err := idents.Login(ctx, "staff@example.com", password)
	require.NoError(t, err)
	require.Equal(t, ident.ID, got.ID)
}

func TestListPagination(t *testing.T) {
	_, idents, _ := newTestEnv(t)
	ctx := context.Background()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range emails {
		_, err := idents.Register(ctx, email, "Student", "hunter22")
		require.NoError(t, err)
	}

	page, err := idents.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)

	rest, err := idents.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
}

func TestBootstrapSeedsAdminOnce(t *testing.T) {
	_, idents, _ := newTestEnv(t)
	ctx := context.Background()

	boot := &BootstrapService{
		Identities:    idents,
		AdminEmail:    "admin@example.com",
		AdminPassword: "first-boot",
	}
	require.NoError(t, boot.EnsureAdmin(ctx))

	admin, err := idents.Login(ctx, "admin@example.com", "first-boot")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, admin.Role)

	// A second run against a populated database is a no-op, even with
	// different credentials configured.
	boot.AdminPassword = "changed"
	require.NoError(t, boot.EnsureAdmin(ctx))

	_, err = idents.Login(ctx, "admin@example.com", "changed")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
