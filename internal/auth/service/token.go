package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/nhifportal/auth/internal/auth/store"
	"github.com/nhifportal/auth/pkg/cryptox"
	"github.com/nhifportal/auth/pkg/idx"
	"github.com/nhifportal/auth/pkg/jwtx"
	"github.com/nhifportal/auth/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrRefreshReuse       = errors.New("refresh_token_reuse")
)

// storeTimeout bounds every persistence call made on behalf of a single
// request. A hung database fails the request rather than pinning it.
const storeTimeout = 5 * time.Second

func boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

// TokenService mints access/refresh pairs and runs the rotation ledger.
// Both tokens are signed JWTs; the ledger stores only the SHA-256
// fingerprint of the refresh token, never the token itself.
type TokenService struct {
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// IssuePair signs a fresh access/refresh pair for the identity and installs
// the refresh fingerprint as the subject's single active ledger entry. Any
// previous refresh token for the subject stops working.
func (s *TokenService) IssuePair(ctx context.Context, ident domain.Identity) (domain.TokenPair, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	now := time.Now()

	pair, fp, err := s.signPair(ident.ID.String(), ident.Role.String(), now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	rec := domain.RefreshRecord{
		ID:        idx.New(),
		SubjectID: ident.ID,
		TokenHash: fp,
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
	}
	if err := s.Store.RefreshTokens().Upsert(ctx, rec); err != nil {
		return domain.TokenPair{}, err
	}

	return pair, nil
}

// Rotate exchanges a refresh token for a new pair. The presented token must
// verify as a refresh JWT and its fingerprint must match the subject's
// active ledger entry; a valid-but-superseded token is reported as reuse and
// revokes the whole session.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (domain.TokenPair, domain.Identity, error) {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()

	now := time.Now()
	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(refreshToken, jwtx.KindRefresh)
	if err != nil {
		return domain.TokenPair{}, domain.Identity{}, ErrInvalidRefresh
	}

	subjectID, err := idx.Parse(claims.Subject)
	if err != nil {
		return domain.TokenPair{}, domain.Identity{}, ErrInvalidRefresh
	}

	// Serialize rotations per subject so concurrent presentations of the
	// same token resolve to exactly one winner.
	lock := s.subjectLock(claims.Subject)
	lock.Lock()
	defer lock.Unlock()

	fp := cryptox.FingerprintToken(refreshToken)

	var (
		pair  domain.TokenPair
		owner domain.Identity
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := tx.RefreshTokens().GetBySubject(ctx, subjectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		if rec.TokenHash != fp {
			// The token verified but is not the active one: it was already
			// rotated away. Rejected like an expired token on the wire, but
			// flagged loudly here because it can mean theft or replay.
			l.Warn("refresh token reuse detected",
				slog.String("subject_id", claims.Subject),
			)
			return ErrRefreshReuse
		}

		if rec.Expired(now) {
			return ErrInvalidRefresh
		}

		ident, err := tx.Identities().GetByID(ctx, subjectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		newPair, newFP, err := s.signPair(ident.ID.String(), ident.Role.String(), now)
		if err != nil {
			return err
		}
		owner = ident

		next := domain.RefreshRecord{
			ID:        idx.New(),
			SubjectID: subjectID,
			TokenHash: newFP,
			ExpiresAt: now.Add(s.RefreshTTL),
			CreatedAt: now,
		}
		if err := tx.RefreshTokens().Replace(ctx, subjectID, fp, next); err != nil {
			if errors.Is(err, store.ErrStaleToken) {
				return ErrRefreshReuse
			}
			return err
		}

		pair = newPair
		return nil
	})
	if err != nil {
		return domain.TokenPair{}, domain.Identity{}, err
	}

	return pair, owner, nil
}

// Revoke drops the subject's active refresh record. Revoking an already
// revoked session is a no-op.
func (s *TokenService) Revoke(ctx context.Context, subjectID idx.ID) error {
	ctx, cancel := boundedCtx(ctx)
	defer cancel()
	return s.Store.RefreshTokens().Delete(ctx, subjectID)
}

func (s *TokenService) signPair(subject, role string, now time.Time) (domain.TokenPair, string, error) {
	access, err := s.Signer.Sign(jwtx.NewClaims(subject, role, jwtx.KindAccess, s.AccessTTL, s.Issuer, now))
	if err != nil {
		return domain.TokenPair{}, "", err
	}
	refresh, err := s.Signer.Sign(jwtx.NewClaims(subject, role, jwtx.KindRefresh, s.RefreshTTL, s.Issuer, now))
	if err != nil {
		return domain.TokenPair{}, "", err
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, cryptox.FingerprintToken(refresh), nil
}

func (s *TokenService) subjectLock(subject string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := s.locks[subject]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[subject] = lock
	}
	return lock
}
