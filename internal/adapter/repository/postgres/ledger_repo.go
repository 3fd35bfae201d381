package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CheckConsistency verifies the two ledger invariants that hold whenever
// all value movement goes through the transfer engine: entries sum to
// zero (every transfer writes a balanced pair), and each wallet's stored
// balance equals its latest entry's running balance.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, int64, error) {
	var entriesTotal pgtype.Numeric

	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM entries`).Scan(&entriesTotal)
	if err != nil {
		return decimal.Zero, 0, err
	}

	var drifted int64

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM wallets w
		JOIN LATERAL (
			SELECT wallet_current_balance
			FROM entries e
			WHERE e.wallet_id = w.id
			ORDER BY e.wallet_version DESC
			LIMIT 1
		) latest ON true
		WHERE w.balance <> latest.wallet_current_balance`).Scan(&drifted)
	if err != nil {
		return decimal.Zero, 0, err
	}

	return numericToDecimal(entriesTotal), drifted, nil
}
