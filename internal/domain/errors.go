package domain

import "errors"

var (
	// Wallet errors
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletFrozen   = errors.New("wallet is frozen")
	ErrWalletClosed   = errors.New("wallet is closed")
	ErrWalletNotEmpty = errors.New("wallet balance must be zero before closing")

	// Transfer errors
	ErrSelfTransfer            = errors.New("cannot transfer to the same wallet")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key reused with different parameters")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrInvalidReversal         = errors.New("only completed transactions can be reversed")
	ErrReferenceTooLong        = errors.New("reference exceeds maximum length")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable, retry with the same idempotency key")
)
