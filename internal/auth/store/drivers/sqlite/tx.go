package sqlite

import (
	"database/sql"

	"github.com/nhifportal/auth/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Identities() store.IdentityRepo        { return &identitiesRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokenRepo { return &refreshTokensRepo{db: t.tx} }
