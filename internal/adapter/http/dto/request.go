package dto

import (
	"github.com/shopspring/decimal"

	"github.com/tumapay/ledger/internal/usecase"
)

// CreateWalletRequest represents a request to create a wallet.
type CreateWalletRequest struct {
	OwnerID string `json:"owner_id"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWalletRequest) ToUseCaseInput() usecase.CreateWalletInput {
	return usecase.CreateWalletInput{
		OwnerID: r.OwnerID,
	}
}

// CreateTransferRequest represents a request to move money between wallets.
// The idempotency key may come from the body or the Idempotency-Key header;
// the body wins when both are set.
type CreateTransferRequest struct {
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	FromWalletID   string          `json:"from_wallet_id"`
	ToWalletID     string          `json:"to_wallet_id"`
	Amount         decimal.Decimal `json:"amount"`
	Reference      string          `json:"reference,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput(headerKey string) usecase.TransferInput {
	key := r.IdempotencyKey
	if key == "" {
		key = headerKey
	}

	return usecase.TransferInput{
		IdempotencyKey: key,
		FromWalletID:   r.FromWalletID,
		ToWalletID:     r.ToWalletID,
		Amount:         r.Amount,
		Reference:      r.Reference,
	}
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
