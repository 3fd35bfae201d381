package integration

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/tumapay/ledger/internal/adapter/http/dto"
	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/usecase"
)

func TestReversal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	transfer := func(t *testing.T, fromID, toID string, amount int64) *domain.Transaction {
		t.Helper()
		txn, err := env.TransferUC.Transfer(ctx, usecase.TransferInput{
			IdempotencyKey: ulid.Make().String(),
			FromWalletID:   fromID,
			ToWalletID:     toID,
			Amount:         decimal.NewFromInt(amount),
		})
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		return txn
	}

	t.Run("restores both balances", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		from := env.DB.CreateTestWalletWithBalance(ctx, "owner-a", decimal.NewFromInt(500))
		to := env.DB.CreateTestWallet(ctx, "owner-b")

		original := transfer(t, from.ID, to.ID, 200)

		w := env.doJSON(t, http.MethodPost, "/api/v1/transfers/"+original.ID+"/reverse", nil, ulid.Make().String())
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		resp := decodeJSON[dto.TransactionResponse](t, w)
		if resp.ReversalOf == nil || *resp.ReversalOf != original.ID {
			t.Errorf("expected reversal_of %s, got %v", original.ID, resp.ReversalOf)
		}
		if resp.FromWalletID != to.ID || resp.ToWalletID != from.ID {
			t.Errorf("expected reversal to run opposite the original")
		}

		if balance := env.DB.WalletBalance(ctx, from.ID); !balance.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expected source balance restored to 500, got %s", balance)
		}
		if balance := env.DB.WalletBalance(ctx, to.ID); !balance.Equal(decimal.Zero) {
			t.Errorf("expected destination balance restored to 0, got %s", balance)
		}

		originalAfter, err := env.TransferUC.GetTransaction(ctx, original.ID)
		if err != nil {
			t.Fatalf("failed to reload original: %v", err)
		}
		if originalAfter.Status != domain.TransactionStatusReversed {
			t.Errorf("expected original marked reversed, got %s", originalAfter.Status)
		}
	})

	t.Run("rejects a second reversal", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		from := env.DB.CreateTestWalletWithBalance(ctx, "owner-a", decimal.NewFromInt(500))
		to := env.DB.CreateTestWallet(ctx, "owner-b")

		original := transfer(t, from.ID, to.ID, 200)

		if _, err := env.TransferUC.Reverse(ctx, original.ID); err != nil {
			t.Fatalf("first reversal failed: %v", err)
		}

		_, err := env.TransferUC.Reverse(ctx, original.ID)
		if !errors.Is(err, domain.ErrInvalidReversal) {
			t.Errorf("expected invalid reversal error, got %v", err)
		}
	})

	t.Run("rejects reversing a declined transfer", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		from := env.DB.CreateTestWalletWithBalance(ctx, "owner-a", decimal.NewFromInt(10))
		to := env.DB.CreateTestWallet(ctx, "owner-b")

		failed, err := env.TransferUC.Transfer(ctx, usecase.TransferInput{
			IdempotencyKey: ulid.Make().String(),
			FromWalletID:   from.ID,
			ToWalletID:     to.ID,
			Amount:         decimal.NewFromInt(100),
		})
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("expected declined transfer, got %v", err)
		}

		w := env.doJSON(t, http.MethodPost, "/api/v1/transfers/"+failed.ID+"/reverse", nil, ulid.Make().String())
		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
		}
	})

	t.Run("fails when the recipient already spent the funds", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		from := env.DB.CreateTestWalletWithBalance(ctx, "owner-a", decimal.NewFromInt(500))
		to := env.DB.CreateTestWallet(ctx, "owner-b")
		other := env.DB.CreateTestWallet(ctx, "owner-c")

		original := transfer(t, from.ID, to.ID, 200)

		// Recipient drains the wallet before the reversal lands.
		transfer(t, to.ID, other.ID, 150)

		_, err := env.TransferUC.Reverse(ctx, original.ID)
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Errorf("expected insufficient funds, got %v", err)
		}
	})

	t.Run("returns 404 for unknown transaction", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		w := env.doJSON(t, http.MethodPost, "/api/v1/transfers/"+ulid.Make().String()+"/reverse", nil, ulid.Make().String())
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d: %s", http.StatusNotFound, w.Code, w.Body.String())
		}
	})
}
