package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

const walletColumns = `id, owner_id, balance, status, version, created_at, updated_at`

// Create inserts a new wallet within a transaction.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	pgxTx := tx.(*pgTx).unwrap()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO wallets (id, owner_id, balance, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		wallet.ID,
		wallet.OwnerID,
		decimalToNumeric(wallet.Balance),
		string(wallet.Status),
		wallet.Version,
		timeToPgTimestamptz(wallet.CreatedAt),
		timeToPgTimestamptz(wallet.UpdatedAt),
	)

	return err
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)

	return scanWallet(row)
}

// GetByIDForUpdate retrieves a wallet with a FOR UPDATE row lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	pgxTx := tx.(*pgTx).unwrap()

	row := pgxTx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, id)

	return scanWallet(row)
}

// GetByIDsForUpdate locks multiple wallets. The ORDER BY matches the
// caller's sorted lock order so concurrent transfers acquire row locks in
// the same global sequence.
func (r *WalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	pgxTx := tx.(*pgTx).unwrap()

	rows, err := pgxTx.Query(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}

		wallets = append(wallets, wallet)
	}

	return wallets, rows.Err()
}

// UpdateBalance writes a new balance and bumps the wallet version.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*pgTx).unwrap()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE wallets
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1`,
		id,
		decimalToNumeric(balance),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// UpdateStatus writes a new lifecycle status.
func (r *WalletRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.WalletStatus, updatedAt time.Time) error {
	pgxTx := tx.(*pgTx).unwrap()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE wallets
		SET status = $2, updated_at = $3
		WHERE id = $1`,
		id,
		string(status),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// ListByOwner lists an owner's wallets.
func (r *WalletRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Wallet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE owner_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}

		wallets = append(wallets, wallet)
	}

	return wallets, rows.Err()
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w         domain.Wallet
		balance   pgtype.Numeric
		status    string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&w.ID, &w.OwnerID, &balance, &status, &w.Version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	w.Balance = numericToDecimal(balance)
	w.Status = domain.WalletStatus(status)
	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time

	return &w, nil
}
