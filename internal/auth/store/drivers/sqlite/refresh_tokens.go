package sqlite

import (
	"context"
	"time"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/nhifportal/auth/internal/auth/store"
	"github.com/nhifportal/auth/pkg/idx"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) Upsert(ctx context.Context, rec domain.RefreshRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, subject_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(subject_id) DO UPDATE SET
			id = excluded.id,
			token_hash = excluded.token_hash,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		rec.ID.String(), rec.SubjectID.String(), rec.TokenHash, rec.ExpiresAt, rec.CreatedAt,
	)
	return err
}

func (r *refreshTokensRepo) GetBySubject(ctx context.Context, subjectID idx.ID) (domain.RefreshRecord, error) {
	var (
		rawID, rawSubject, tokenHash string
		expiresAt, createdAt         time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, subject_id, token_hash, expires_at, created_at
		FROM refresh_tokens WHERE subject_id = ?`, subjectID.String(),
	).Scan(&rawID, &rawSubject, &tokenHash, &expiresAt, &createdAt)
	if err != nil {
		return domain.RefreshRecord{}, mapNotFound(err)
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.RefreshRecord{}, err
	}
	subject, err := parseID(rawSubject)
	if err != nil {
		return domain.RefreshRecord{}, err
	}
	return domain.RefreshRecord{
		ID:        id,
		SubjectID: subject,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, nil
}

// Replace is the rotation step: the update only lands when the stored
// fingerprint still matches oldHash, so concurrent rotations with the same
// token produce exactly one winner.
func (r *refreshTokensRepo) Replace(ctx context.Context, subjectID idx.ID, oldHash string, next domain.RefreshRecord) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET id = ?, token_hash = ?, expires_at = ?, created_at = ?
		WHERE subject_id = ? AND token_hash = ?`,
		next.ID.String(), next.TokenHash, next.ExpiresAt, next.CreatedAt,
		subjectID.String(), oldHash,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrStaleToken
	}
	return nil
}

func (r *refreshTokensRepo) Delete(ctx context.Context, subjectID idx.ID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE subject_id = ?`, subjectID.String())
	return err
}

func (r *refreshTokensRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
