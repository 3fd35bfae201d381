package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tumapay/ledger/internal/usecase"
	"github.com/tumapay/ledger/internal/usecase/mocks"
)

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	ledgerRepo := mocks.NewMockLedgerRepository()
	uc := usecase.NewLedgerUseCase(ledgerRepo)

	t.Run("balanced ledger", func(t *testing.T) {
		report, err := uc.CheckConsistency(context.Background())
		require.NoError(t, err)
		assert.True(t, report.Consistent)
	})

	t.Run("unbalanced entries", func(t *testing.T) {
		ledgerRepo.CheckConsistencyFunc = func(ctx context.Context) (decimal.Decimal, int64, error) {
			return decimal.NewFromInt(5), 0, nil
		}

		report, err := uc.CheckConsistency(context.Background())
		assert.ErrorIs(t, err, usecase.ErrInconsistentLedger)
		require.NotNil(t, report)
		assert.False(t, report.Consistent)
	})

	t.Run("wallet drift", func(t *testing.T) {
		ledgerRepo.CheckConsistencyFunc = func(ctx context.Context) (decimal.Decimal, int64, error) {
			return decimal.Zero, 2, nil
		}

		report, err := uc.CheckConsistency(context.Background())
		assert.ErrorIs(t, err, usecase.ErrInconsistentLedger)
		assert.EqualValues(t, 2, report.DriftedWallets)
	})
}
