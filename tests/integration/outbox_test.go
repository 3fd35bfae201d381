package integration

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/infrastructure/eventpublisher"
	"github.com/tumapay/ledger/internal/usecase"
)

func TestOutbox(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("transfer commits an event with the movement", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		from := env.DB.CreateTestWalletWithBalance(ctx, "owner-a", decimal.NewFromInt(100))
		to := env.DB.CreateTestWallet(ctx, "owner-b")

		txn, err := env.TransferUC.Transfer(ctx, usecase.TransferInput{
			IdempotencyKey: ulid.Make().String(),
			FromWalletID:   from.ID,
			ToWalletID:     to.ID,
			Amount:         decimal.NewFromInt(25),
		})
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		events, err := env.OutboxRepo.GetByAggregate(ctx, domain.AggregateTypeTransaction, txn.ID, 10, 0)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event for transaction, got %d", len(events))
		}
		if events[0].EventType != domain.EventTypeTransferCompleted {
			t.Errorf("expected %s, got %s", domain.EventTypeTransferCompleted, events[0].EventType)
		}
		if events[0].Published {
			t.Errorf("expected event unpublished before the worker runs")
		}
	})

	t.Run("declined transfer commits a failed event", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		from := env.DB.CreateTestWalletWithBalance(ctx, "owner-a", decimal.NewFromInt(10))
		to := env.DB.CreateTestWallet(ctx, "owner-b")

		txn, err := env.TransferUC.Transfer(ctx, usecase.TransferInput{
			IdempotencyKey: ulid.Make().String(),
			FromWalletID:   from.ID,
			ToWalletID:     to.ID,
			Amount:         decimal.NewFromInt(100),
		})
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("expected declined transfer, got %v", err)
		}

		events, err := env.OutboxRepo.GetByAggregate(ctx, domain.AggregateTypeTransaction, txn.ID, 10, 0)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}
		if len(events) != 1 || events[0].EventType != domain.EventTypeTransferFailed {
			t.Fatalf("expected a single %s event, got %v", domain.EventTypeTransferFailed, events)
		}
	})

	t.Run("worker drains the outbox", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		from := env.DB.CreateTestWalletWithBalance(ctx, "owner-a", decimal.NewFromInt(100))
		to := env.DB.CreateTestWallet(ctx, "owner-b")

		for i := 0; i < 3; i++ {
			if _, err := env.TransferUC.Transfer(ctx, usecase.TransferInput{
				IdempotencyKey: ulid.Make().String(),
				FromWalletID:   from.ID,
				ToWalletID:     to.ID,
				Amount:         decimal.NewFromInt(5),
			}); err != nil {
				t.Fatalf("transfer %d failed: %v", i, err)
			}
		}

		if n := env.DB.CountOutboxEvents(ctx, true); n != 3 {
			t.Fatalf("expected 3 unpublished events, got %d", n)
		}

		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: env.OutboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(slog.Default()),
			Logger:     slog.Default(),
			BatchSize:  10,
			Interval:   20 * time.Millisecond,
		})

		workerCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			_ = publisher.Start(workerCtx)
			close(done)
		}()

		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if env.DB.CountOutboxEvents(ctx, true) == 0 {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}

		cancel()
		<-done

		if n := env.DB.CountOutboxEvents(ctx, true); n != 0 {
			t.Errorf("expected all events published, %d still pending", n)
		}
		if n := env.DB.CountOutboxEvents(ctx, false); n != 3 {
			t.Errorf("expected 3 events retained after publishing, got %d", n)
		}
	})

	t.Run("published events can be pruned", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		from := env.DB.CreateTestWalletWithBalance(ctx, "owner-a", decimal.NewFromInt(100))
		to := env.DB.CreateTestWallet(ctx, "owner-b")

		if _, err := env.TransferUC.Transfer(ctx, usecase.TransferInput{
			IdempotencyKey: ulid.Make().String(),
			FromWalletID:   from.ID,
			ToWalletID:     to.ID,
			Amount:         decimal.NewFromInt(5),
		}); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		events, err := env.OutboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}
		for _, event := range events {
			if err := env.OutboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
				t.Fatalf("failed to mark published: %v", err)
			}
		}

		if err := env.OutboxRepo.DeletePublished(ctx, time.Now().UTC().Add(time.Minute)); err != nil {
			t.Fatalf("failed to prune: %v", err)
		}

		if n := env.DB.CountOutboxEvents(ctx, false); n != 0 {
			t.Errorf("expected outbox empty after pruning, got %d", n)
		}
	})
}
