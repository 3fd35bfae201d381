package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `id, wallet_id, transaction_id, amount,
	wallet_previous_balance, wallet_current_balance, wallet_version, created_at`

// Create appends an entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*pgTx).unwrap()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO entries
			(id, wallet_id, transaction_id, amount,
			 wallet_previous_balance, wallet_current_balance, wallet_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		entry.WalletID,
		entry.TransactionID,
		decimalToNumeric(entry.Amount),
		decimalToNumeric(entry.WalletPreviousBalance),
		decimalToNumeric(entry.WalletCurrentBalance),
		entry.WalletVersion,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// GetByTransaction retrieves the entry pair for a transaction.
func (r *EntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE transaction_id = $1
		ORDER BY amount`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// GetByWallet retrieves entries for a wallet, most recent first.
func (r *EntryRepository) GetByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE wallet_id = $1
		ORDER BY created_at DESC, wallet_version DESC
		LIMIT $2 OFFSET $3`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry

	for rows.Next() {
		var (
			e         domain.Entry
			amount    pgtype.Numeric
			prev      pgtype.Numeric
			curr      pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(&e.ID, &e.WalletID, &e.TransactionID, &amount, &prev, &curr, &e.WalletVersion, &createdAt)
		if err != nil {
			return nil, err
		}

		e.Amount = numericToDecimal(amount)
		e.WalletPreviousBalance = numericToDecimal(prev)
		e.WalletCurrentBalance = numericToDecimal(curr)
		e.CreatedAt = createdAt.Time

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
