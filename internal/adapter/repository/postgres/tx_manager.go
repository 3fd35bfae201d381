package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tumapay/ledger/internal/usecase"
)

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager hands out database transactions to the use case layer
// without exposing pgx types above the repository boundary.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a TxManager backed by a pgx connection pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin opens a transaction at the pool's default isolation level.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{inner: tx}, nil
}

// pgTx adapts a pgx.Tx to the usecase.Transaction interface.
type pgTx struct {
	inner pgx.Tx
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.inner.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.inner.Rollback(ctx) }

// unwrap exposes the pgx transaction to repositories in this package.
func (t *pgTx) unwrap() pgx.Tx { return t.inner }
