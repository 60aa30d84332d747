package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/nhifportal/auth/pkg/idx"
)

type identitiesRepo struct {
	db dbtx
}

type identityRow struct {
	ID           string
	Email        string
	FullName     string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const identityColumns = `id, email, full_name, role, password_hash, created_at, updated_at`

func scanIdentity(row *sql.Row) (identityRow, error) {
	var r identityRow
	err := row.Scan(&r.ID, &r.Email, &r.FullName, &r.Role, &r.PasswordHash, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *identitiesRepo) Create(ctx context.Context, ident domain.Identity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, full_name, role, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ident.ID.String(), ident.Email, ident.FullName, ident.Role.String(),
		ident.PasswordHash, ident.CreatedAt, ident.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *identitiesRepo) GetByID(ctx context.Context, id idx.ID) (domain.Identity, error) {
	row, err := scanIdentity(r.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE id = ?`, id.String()))
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	return mapIdentity(row)
}

func (r *identitiesRepo) GetByEmail(ctx context.Context, email string) (domain.Identity, error) {
	row, err := scanIdentity(r.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE email = ?`, email))
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	return mapIdentity(row)
}

func (r *identitiesRepo) List(ctx context.Context, limit, offset int) ([]domain.Identity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+identityColumns+` FROM identities ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Identity
	for rows.Next() {
		var row identityRow
		if err := rows.Scan(&row.ID, &row.Email, &row.FullName, &row.Role,
			&row.PasswordHash, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		ident, err := mapIdentity(row)
		if err != nil {
			return nil, err
		}
		out = append(out, ident)
	}
	return out, rows.Err()
}

func (r *identitiesRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM identities`).Scan(&n)
	return n, err
}
