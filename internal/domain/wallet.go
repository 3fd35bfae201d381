package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletStatus is the lifecycle state of a wallet.
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	WalletStatusFrozen WalletStatus = "frozen"
	WalletStatusClosed WalletStatus = "closed"
)

// Wallet is a named, non-negative balance owned by an account holder.
// Wallets are never deleted; closure preserves historical transactions
// that reference them.
type Wallet struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	OwnerID   string
	Status    WalletStatus
	Balance   decimal.Decimal
	Version   int64
}

// CanSend reports whether the wallet may be debited.
func (w *Wallet) CanSend() error {
	return w.checkActive()
}

// CanReceive reports whether the wallet may be credited.
func (w *Wallet) CanReceive() error {
	return w.checkActive()
}

func (w *Wallet) checkActive() error {
	switch w.Status {
	case WalletStatusActive:
		return nil
	case WalletStatusFrozen:
		return ErrWalletFrozen
	case WalletStatusClosed:
		return ErrWalletClosed
	default:
		return ErrWalletNotFound
	}
}

// ValidateDebit checks the balance covers amount. Wallet balances are
// never allowed to go negative.
func (w *Wallet) ValidateDebit(amount decimal.Decimal) error {
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (w *Wallet) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (w *Wallet) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(amount)
}
