package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/usecase"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	Status    string          `json:"status"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:        w.ID,
		OwnerID:   w.OwnerID,
		Balance:   w.Balance,
		Status:    string(w.Status),
		Version:   w.Version,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// ListWalletsResponse wraps a page of wallets.
type ListWalletsResponse struct {
	Wallets []*WalletResponse `json:"wallets"`
	Total   int64             `json:"total"`
}

// BalanceResponse represents a wallet balance lookup.
type BalanceResponse struct {
	WalletID string          `json:"wallet_id"`
	Balance  decimal.Decimal `json:"balance"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID             string          `json:"id"`
	IdempotencyKey string          `json:"idempotency_key"`
	FromWalletID   string          `json:"from_wallet_id"`
	ToWalletID     string          `json:"to_wallet_id"`
	Amount         decimal.Decimal `json:"amount"`
	Reference      string          `json:"reference,omitempty"`
	Status         string          `json:"status"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	ReversalOf     *string         `json:"reversal_of,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:             t.ID,
		IdempotencyKey: t.IdempotencyKey,
		FromWalletID:   t.FromWalletID,
		ToWalletID:     t.ToWalletID,
		Amount:         t.Amount,
		Reference:      t.Reference,
		Status:         string(t.Status),
		FailureReason:  t.FailureReason,
		ReversalOf:     t.ReversalOf,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// EntryResponse represents a balance movement in API responses.
type EntryResponse struct {
	ID                    string          `json:"id"`
	WalletID              string          `json:"wallet_id"`
	TransactionID         string          `json:"transaction_id"`
	Amount                decimal.Decimal `json:"amount"`
	WalletPreviousBalance decimal.Decimal `json:"wallet_previous_balance"`
	WalletCurrentBalance  decimal.Decimal `json:"wallet_current_balance"`
	WalletVersion         int64           `json:"wallet_version"`
	CreatedAt             time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:                    e.ID,
		WalletID:              e.WalletID,
		TransactionID:         e.TransactionID,
		Amount:                e.Amount,
		WalletPreviousBalance: e.WalletPreviousBalance,
		WalletCurrentBalance:  e.WalletCurrentBalance,
		WalletVersion:         e.WalletVersion,
		CreatedAt:             e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ConsistencyResponse represents a ledger verification result.
type ConsistencyResponse struct {
	Consistent     bool            `json:"consistent"`
	EntriesTotal   decimal.Decimal `json:"entries_total"`
	DriftedWallets int64           `json:"drifted_wallets"`
	CheckedAt      time.Time       `json:"checked_at"`
}

// ConsistencyFromReport converts a use case report to a response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:     r.Consistent,
		EntriesTotal:   r.EntriesTotal,
		DriftedWallets: r.DriftedWallets,
		CheckedAt:      r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
