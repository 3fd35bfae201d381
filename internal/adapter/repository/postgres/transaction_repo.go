package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/usecase"
)

// pgErrUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgErrUniqueViolation = "23505"

// TransactionRepository implements usecase.TransactionRepository on an
// append-only transactions table with a unique idempotency key index.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, idempotency_key, from_wallet_id, to_wallet_id, amount,
	reference, status, failure_reason, reversal_of, created_at, completed_at`

// Create appends a new transaction row. A collision on the idempotency
// key surfaces as usecase.ErrIdempotencyKeyTaken for the engine's race
// resolution.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*pgTx).unwrap()

	var completedAt pgtype.Timestamptz
	if txn.CompletedAt != nil {
		completedAt = timeToPgTimestamptz(*txn.CompletedAt)
	}

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO transactions
			(id, idempotency_key, from_wallet_id, to_wallet_id, amount,
			 reference, status, failure_reason, reversal_of, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		txn.ID,
		txn.IdempotencyKey,
		txn.FromWalletID,
		txn.ToWalletID,
		decimalToNumeric(txn.Amount),
		txn.Reference,
		string(txn.Status),
		txn.FailureReason,
		txn.ReversalOf,
		timeToPgTimestamptz(txn.CreatedAt),
		completedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return usecase.ErrIdempotencyKeyTaken
		}

		return err
	}

	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)

	return scanTransaction(row)
}

// GetByIDForUpdate retrieves a transaction with a FOR UPDATE row lock,
// serializing reversal attempts against the same original.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	pgxTx := tx.(*pgTx).unwrap()

	row := pgxTx.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)

	return scanTransaction(row)
}

// GetByIdempotencyKey retrieves a transaction by its idempotency key.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE idempotency_key = $1`, key)

	return scanTransaction(row)
}

// UpdateStatus writes the status transition for a transaction. This is
// the only update the log permits.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, completedAt time.Time) error {
	pgxTx := tx.(*pgTx).unwrap()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE transactions
		SET status = $2, completed_at = $3
		WHERE id = $1`,
		id,
		string(status),
		timeToPgTimestamptz(completedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByWallet lists transactions touching a wallet, most recent first.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE from_wallet_id = $1 OR to_wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn         domain.Transaction
		amount      pgtype.Numeric
		status      string
		createdAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.IdempotencyKey,
		&txn.FromWalletID,
		&txn.ToWalletID,
		&amount,
		&txn.Reference,
		&status,
		&txn.FailureReason,
		&txn.ReversalOf,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	txn.Amount = numericToDecimal(amount)
	txn.Status = domain.TransactionStatus(status)
	txn.CreatedAt = createdAt.Time
	txn.CompletedAt = pgTimestamptzToTimePtr(completedAt)

	return &txn, nil
}
