package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInconsistentLedger is returned when the ledger fails verification.
var ErrInconsistentLedger = errors.New("ledger is inconsistent")

// LedgerUseCase handles ledger-wide verification.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// ConsistencyReport is the result of a ledger verification pass.
type ConsistencyReport struct {
	CheckedAt      time.Time
	EntriesTotal   decimal.Decimal
	DriftedWallets int64
	Consistent     bool
}

// CheckConsistency verifies conservation of value: every transfer writes a
// balanced debit/credit pair, so all entries sum to zero, and each wallet's
// stored balance must agree with its latest entry.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	entriesTotal, drifted, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		CheckedAt:      time.Now().UTC(),
		EntriesTotal:   entriesTotal,
		DriftedWallets: drifted,
		Consistent:     entriesTotal.IsZero() && drifted == 0,
	}

	if !report.Consistent {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
