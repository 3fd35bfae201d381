package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the state of a transfer attempt.
type TransactionStatus string

const (
	TransactionStatusInitiated TransactionStatus = "initiated"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

// IsTerminal reports whether no further automatic transition occurs from s.
// The single allowed manual transition out of a terminal state is
// completed -> reversed.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusReversed:
		return true
	}
	return false
}

// Transaction is the durable record of one transfer attempt, keyed by the
// caller-supplied idempotency key.
type Transaction struct {
	CreatedAt      time.Time
	CompletedAt    *time.Time
	ReversalOf     *string
	ID             string
	IdempotencyKey string
	FromWalletID   string
	ToWalletID     string
	Reference      string
	Status         TransactionStatus
	FailureReason  string
	Amount         decimal.Decimal
}

// Validate checks the request-shaped fields of a transaction.
func (t *Transaction) Validate() error {
	if t.FromWalletID == t.ToWalletID {
		return ErrSelfTransfer
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if len(t.Reference) > MaxReferenceLength {
		return ErrReferenceTooLong
	}

	return nil
}

// Matches reports whether another transfer request carries the same
// parameters. A retried request must match exactly; the same idempotency
// key with different parameters is a caller bug.
func (t *Transaction) Matches(fromWalletID, toWalletID string, amount decimal.Decimal, reference string) bool {
	return t.FromWalletID == fromWalletID &&
		t.ToWalletID == toWalletID &&
		t.Amount.Equal(amount) &&
		t.Reference == reference
}
