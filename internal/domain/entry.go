package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one side of a completed transfer: a signed balance movement on a
// single wallet. Together the entries for a wallet reconstruct its balance
// at any historical point.
type Entry struct {
	CreatedAt             time.Time
	ID                    string
	WalletID              string
	TransactionID         string
	Amount                decimal.Decimal
	WalletPreviousBalance decimal.Decimal
	WalletCurrentBalance  decimal.Decimal
	WalletVersion         int64
}
