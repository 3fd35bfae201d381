package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tumapay/ledger/internal/domain"
)

// ErrIdempotencyKeyTaken is returned by TransactionRepository.Create when a
// concurrent transfer committed a row for the same idempotency key first.
// The engine resolves it by re-reading the winner's row; it never reaches
// callers.
var ErrIdempotencyKeyTaken = errors.New("idempotency key already recorded")

// TransferUseCase is the transfer engine: it moves value between two wallet
// balances atomically, deduplicates retries by idempotency key, and never
// lets a wallet balance go negative.
type TransferUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	txRepo     TransactionRepository
	entryRepo  EntryRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	retrier    Retrier
	cache      Cache
}

// NewTransferUseCase creates a new TransferUseCase. Cache may be nil.
func NewTransferUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	txRepo TransactionRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		retrier:    retrier,
		cache:      cache,
	}
}

// TransferInput represents a transfer request.
type TransferInput struct {
	IdempotencyKey string
	FromWalletID   string
	ToWalletID     string
	Reference      string
	Amount         decimal.Decimal
}

// Transfer moves Amount from one wallet to another.
//
// Retrying with the same idempotency key and identical parameters returns
// the prior result without moving money again; the same key with different
// parameters is rejected. The transaction row, both entries, and both
// balance updates land in a single commit, so a failure before commit
// leaves no partial state.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if err := validateTransferInput(input); err != nil {
		return nil, err
	}

	// Dedup fast path. The unique index on idempotency_key remains the
	// authority; this read just avoids opening a transaction for retries.
	existing, err := uc.txRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
	if err == nil {
		return uc.priorResult(existing, input)
	}
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, err
	}

	var result *domain.Transaction

	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		txn, err := uc.execute(ctx, tx, input)
		if err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = txn

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrIdempotencyKeyTaken) {
			// Lost the race against a concurrent retry; the committed
			// row is the result for both callers.
			winner, lookupErr := uc.txRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
			if lookupErr != nil {
				return nil, lookupErr
			}

			return uc.priorResult(winner, input)
		}

		return nil, err
	}

	uc.invalidateBalances(ctx, input.FromWalletID, input.ToWalletID)

	if result.Status == domain.TransactionStatusFailed {
		return result, domain.ErrInsufficientFunds
	}

	return result, nil
}

// execute runs the critical section under an open database transaction.
// A failed-for-insufficient-funds transaction is a durable outcome, so it
// is returned with a nil error and committed by the caller.
func (uc *TransferUseCase) execute(ctx context.Context, tx Transaction, input TransferInput) (*domain.Transaction, error) {
	// Lock both wallets in ID order regardless of direction. Any two
	// transfers sharing a wallet acquire locks in the same global order,
	// so no cycle can form.
	ids := []string{input.FromWalletID, input.ToWalletID}
	sort.Strings(ids)

	wallets, err := uc.walletRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	var fromWallet, toWallet *domain.Wallet
	for _, w := range wallets {
		switch w.ID {
		case input.FromWalletID:
			fromWallet = w
		case input.ToWalletID:
			toWallet = w
		}
	}

	if fromWallet == nil || toWallet == nil {
		return nil, domain.ErrWalletNotFound
	}

	if err := fromWallet.CanSend(); err != nil {
		return nil, err
	}

	if err := toWallet.CanReceive(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:             uc.idGen.Generate(),
		IdempotencyKey: input.IdempotencyKey,
		FromWalletID:   input.FromWalletID,
		ToWalletID:     input.ToWalletID,
		Amount:         input.Amount,
		Reference:      input.Reference,
		Status:         domain.TransactionStatusInitiated,
		CreatedAt:      now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	// The balance read before locking is stale by definition; only this
	// check, under lock, is authoritative.
	if err := fromWallet.ValidateDebit(input.Amount); err != nil {
		txn.Status = domain.TransactionStatusFailed
		txn.FailureReason = FailureReasonInsufficientFunds
		txn.CompletedAt = &now

		if err := uc.txRepo.Create(ctx, tx, txn); err != nil {
			return nil, err
		}

		if err := uc.emitTransferFailed(ctx, tx, txn, now); err != nil {
			return nil, err
		}

		return txn, nil
	}

	if err := uc.txRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.applyMovement(ctx, tx, txn, fromWallet, toWallet, now); err != nil {
		return nil, err
	}

	if err := uc.txRepo.UpdateStatus(ctx, tx, txn.ID, domain.TransactionStatusCompleted, now); err != nil {
		return nil, err
	}

	txn.Status = domain.TransactionStatusCompleted
	txn.CompletedAt = &now

	if err := uc.emitTransferCompleted(ctx, tx, txn, now); err != nil {
		return nil, err
	}

	return txn, nil
}

// applyMovement writes the debit and credit entries and both balance
// updates for a transfer from fromWallet to toWallet.
func (uc *TransferUseCase) applyMovement(
	ctx context.Context,
	tx Transaction,
	txn *domain.Transaction,
	fromWallet, toWallet *domain.Wallet,
	now time.Time,
) error {
	fromNewBalance := fromWallet.ApplyDebit(txn.Amount)
	fromEntry := &domain.Entry{
		ID:                    uc.idGen.Generate(),
		WalletID:              fromWallet.ID,
		TransactionID:         txn.ID,
		Amount:                txn.Amount.Neg(),
		WalletPreviousBalance: fromWallet.Balance,
		WalletCurrentBalance:  fromNewBalance,
		WalletVersion:         fromWallet.Version + 1,
		CreatedAt:             now,
	}

	if err := uc.entryRepo.Create(ctx, tx, fromEntry); err != nil {
		return err
	}

	if err := uc.walletRepo.UpdateBalance(ctx, tx, fromWallet.ID, fromNewBalance, now); err != nil {
		return err
	}

	fromWallet.Balance = fromNewBalance
	fromWallet.Version++

	toNewBalance := toWallet.ApplyCredit(txn.Amount)
	toEntry := &domain.Entry{
		ID:                    uc.idGen.Generate(),
		WalletID:              toWallet.ID,
		TransactionID:         txn.ID,
		Amount:                txn.Amount,
		WalletPreviousBalance: toWallet.Balance,
		WalletCurrentBalance:  toNewBalance,
		WalletVersion:         toWallet.Version + 1,
		CreatedAt:             now,
	}

	if err := uc.entryRepo.Create(ctx, tx, toEntry); err != nil {
		return err
	}

	if err := uc.walletRepo.UpdateBalance(ctx, tx, toWallet.ID, toNewBalance, now); err != nil {
		return err
	}

	toWallet.Balance = toNewBalance
	toWallet.Version++

	return nil
}

// ReversalKeyPrefix derives the idempotency key of a reversal from the
// original transaction ID, making Reverse safely retryable.
const ReversalKeyPrefix = "reversal:"

// Reverse creates an opposite-direction transfer undoing a completed
// transaction and marks the original reversed. It is an explicit
// compensating action, never triggered by a failure path.
func (uc *TransferUseCase) Reverse(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var result *domain.Transaction

	err := uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		original, err := uc.txRepo.GetByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}

		if original.Status != domain.TransactionStatusCompleted {
			return domain.ErrInvalidReversal
		}

		now := time.Now().UTC()

		// Opposite direction: the original recipient is debited.
		ids := []string{original.FromWalletID, original.ToWalletID}
		sort.Strings(ids)

		wallets, err := uc.walletRepo.GetByIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return err
		}

		var origFrom, origTo *domain.Wallet
		for _, w := range wallets {
			switch w.ID {
			case original.FromWalletID:
				origFrom = w
			case original.ToWalletID:
				origTo = w
			}
		}

		if origFrom == nil || origTo == nil {
			return domain.ErrWalletNotFound
		}

		if err := origTo.CanSend(); err != nil {
			return err
		}

		if err := origFrom.CanReceive(); err != nil {
			return err
		}

		if err := origTo.ValidateDebit(original.Amount); err != nil {
			return err
		}

		reversal := &domain.Transaction{
			ID:             uc.idGen.Generate(),
			IdempotencyKey: ReversalKeyPrefix + original.ID,
			FromWalletID:   original.ToWalletID,
			ToWalletID:     original.FromWalletID,
			Amount:         original.Amount,
			Reference:      "reversal of " + original.ID,
			Status:         domain.TransactionStatusInitiated,
			ReversalOf:     &original.ID,
			CreatedAt:      now,
		}

		if err := uc.txRepo.Create(ctx, tx, reversal); err != nil {
			return err
		}

		if err := uc.applyMovement(ctx, tx, reversal, origTo, origFrom, now); err != nil {
			return err
		}

		if err := uc.txRepo.UpdateStatus(ctx, tx, reversal.ID, domain.TransactionStatusCompleted, now); err != nil {
			return err
		}

		if err := uc.txRepo.UpdateStatus(ctx, tx, original.ID, domain.TransactionStatusReversed, now); err != nil {
			return err
		}

		reversal.Status = domain.TransactionStatusCompleted
		reversal.CompletedAt = &now

		if err := uc.emitTransferReversed(ctx, tx, reversal, original, now); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = reversal

		uc.invalidateBalances(ctx, original.FromWalletID, original.ToWalletID)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransferUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txRepo.GetByID(ctx, id)
}

// HistoryInput represents input for listing a wallet's transactions.
type HistoryInput struct {
	WalletID string
	Limit    int
	Offset   int
}

// GetHistory lists a wallet's transactions, most recent first.
func (uc *TransferUseCase) GetHistory(ctx context.Context, input HistoryInput) ([]*domain.Transaction, error) {
	if err := domain.ValidateWalletID(input.WalletID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.txRepo.ListByWallet(ctx, input.WalletID, limit, offset)
}

// GetEntries returns the debit/credit pair recorded for a transaction.
func (uc *TransferUseCase) GetEntries(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	if _, err := uc.txRepo.GetByID(ctx, transactionID); err != nil {
		return nil, err
	}

	return uc.entryRepo.GetByTransaction(ctx, transactionID)
}

// GetWalletEntries lists a wallet's balance movements, most recent first.
func (uc *TransferUseCase) GetWalletEntries(ctx context.Context, input HistoryInput) ([]*domain.Entry, error) {
	if err := domain.ValidateWalletID(input.WalletID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.entryRepo.GetByWallet(ctx, input.WalletID, limit, offset)
}

// priorResult maps an already-recorded transaction back to the outcome its
// original call produced.
func (uc *TransferUseCase) priorResult(existing *domain.Transaction, input TransferInput) (*domain.Transaction, error) {
	if !existing.Matches(input.FromWalletID, input.ToWalletID, input.Amount, input.Reference) {
		return nil, domain.ErrDuplicateIdempotencyKey
	}

	if !existing.Status.IsTerminal() {
		// A non-terminal row can only be observed if a concurrent attempt
		// is still in flight; the caller should retry shortly.
		return nil, domain.ErrStorageUnavailable
	}

	if existing.Status == domain.TransactionStatusFailed {
		return existing, domain.ErrInsufficientFunds
	}

	return existing, nil
}

func (uc *TransferUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}

	return uc.retrier.Retry(ctx, operation)
}

// invalidateBalances drops cached balances after a committed movement.
// Best-effort: a stale cache entry expires on its own within the TTL.
func (uc *TransferUseCase) invalidateBalances(ctx context.Context, walletIDs ...string) {
	if uc.cache == nil {
		return
	}

	for _, id := range walletIDs {
		_ = uc.cache.Delete(ctx, balanceCacheKey(id))
	}
}

func (uc *TransferUseCase) emitTransferCompleted(ctx context.Context, tx Transaction, txn *domain.Transaction, now time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransferCompleted,
		Payload: map[string]any{
			"transaction_id": txn.ID,
			"from_wallet_id": txn.FromWalletID,
			"to_wallet_id":   txn.ToWalletID,
			"amount":         txn.Amount.String(),
			"reference":      txn.Reference,
			"completed_at":   now.Format(time.RFC3339Nano),
		},
		CreatedAt: now,
	})
}

func (uc *TransferUseCase) emitTransferFailed(ctx context.Context, tx Transaction, txn *domain.Transaction, now time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransferFailed,
		Payload: map[string]any{
			"transaction_id": txn.ID,
			"from_wallet_id": txn.FromWalletID,
			"to_wallet_id":   txn.ToWalletID,
			"amount":         txn.Amount.String(),
			"reason":         txn.FailureReason,
		},
		CreatedAt: now,
	})
}

func (uc *TransferUseCase) emitTransferReversed(ctx context.Context, tx Transaction, reversal, original *domain.Transaction, now time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   reversal.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransferReversed,
		Payload: map[string]any{
			"reversal_transaction_id": reversal.ID,
			"original_transaction_id": original.ID,
			"amount":                  reversal.Amount.String(),
		},
		CreatedAt: now,
	})
}

func validateTransferInput(input TransferInput) error {
	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return err
	}

	if err := domain.ValidateWalletID(input.FromWalletID); err != nil {
		return err
	}

	if err := domain.ValidateWalletID(input.ToWalletID); err != nil {
		return err
	}

	if input.FromWalletID == input.ToWalletID {
		return domain.ErrSelfTransfer
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}

	return domain.ValidateReference(input.Reference)
}
