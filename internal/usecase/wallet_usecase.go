package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tumapay/ledger/internal/domain"
)

// WalletUseCase handles wallet lifecycle and reads. Lifecycle requests
// come from the account-management collaborator; balances are only ever
// mutated by the transfer engine.
type WalletUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	cache      Cache
}

// NewWalletUseCase creates a new WalletUseCase. Cache may be nil.
func NewWalletUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
) *WalletUseCase {
	return &WalletUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		cache:      cache,
	}
}

// CreateWalletInput represents input for creating a wallet.
type CreateWalletInput struct {
	OwnerID string
}

// CreateWallet creates a new active wallet with zero balance.
func (uc *WalletUseCase) CreateWallet(ctx context.Context, input CreateWalletInput) (*domain.Wallet, error) {
	if err := domain.ValidateOwnerID(input.OwnerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	wallet := &domain.Wallet{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		Balance:   decimal.Zero,
		Status:    domain.WalletStatusActive,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.walletRepo.Create(ctx, tx, wallet); err != nil {
		return nil, err
	}

	if err := uc.emitWalletEvent(ctx, tx, wallet, domain.EventTypeWalletCreated, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetWallet retrieves a wallet by ID.
func (uc *WalletUseCase) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	if err := domain.ValidateWalletID(id); err != nil {
		return nil, err
	}

	return uc.walletRepo.GetByID(ctx, id)
}

// GetBalance returns the wallet's balance. Balances only move inside
// committed transfers, so the stored value reflects exactly the completed
// transactions. Reads go through a short-TTL cache when one is configured.
func (uc *WalletUseCase) GetBalance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	if err := domain.ValidateWalletID(walletID); err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, balanceCacheKey(walletID)); err == nil {
			if balance, parseErr := decimal.NewFromString(cached); parseErr == nil {
				return balance, nil
			}
		}
	}

	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, balanceCacheKey(walletID), wallet.Balance.String(), BalanceCacheTTL)
	}

	return wallet.Balance, nil
}

// FreezeWallet moves an active wallet to frozen.
func (uc *WalletUseCase) FreezeWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.transition(ctx, id, domain.WalletStatusFrozen, domain.EventTypeWalletFrozen)
}

// UnfreezeWallet moves a frozen wallet back to active.
func (uc *WalletUseCase) UnfreezeWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.transition(ctx, id, domain.WalletStatusActive, domain.EventTypeWalletUnfrozen)
}

// CloseWallet closes a wallet. Wallets are never deleted; closure keeps
// historical transactions resolvable. Only an empty wallet can close.
func (uc *WalletUseCase) CloseWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.transition(ctx, id, domain.WalletStatusClosed, domain.EventTypeWalletClosed)
}

// ListWalletsInput represents input for listing an owner's wallets.
type ListWalletsInput struct {
	OwnerID string
	Limit   int
	Offset  int
}

// ListWallets lists an owner's wallets with pagination.
func (uc *WalletUseCase) ListWallets(ctx context.Context, input ListWalletsInput) ([]*domain.Wallet, error) {
	if err := domain.ValidateOwnerID(input.OwnerID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.walletRepo.ListByOwner(ctx, input.OwnerID, limit, offset)
}

func (uc *WalletUseCase) transition(ctx context.Context, id string, target domain.WalletStatus, eventType string) (*domain.Wallet, error) {
	if err := domain.ValidateWalletID(id); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	wallet, err := uc.walletRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := validateTransition(wallet, target); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if err := uc.walletRepo.UpdateStatus(ctx, tx, id, target, now); err != nil {
		return nil, err
	}

	wallet.Status = target
	wallet.UpdatedAt = now

	if err := uc.emitWalletEvent(ctx, tx, wallet, eventType, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, balanceCacheKey(id))
	}

	return wallet, nil
}

func validateTransition(wallet *domain.Wallet, target domain.WalletStatus) error {
	if wallet.Status == domain.WalletStatusClosed {
		return domain.ErrWalletClosed
	}

	switch target {
	case domain.WalletStatusFrozen:
		if wallet.Status != domain.WalletStatusActive {
			return domain.ErrWalletFrozen
		}
	case domain.WalletStatusActive:
		if wallet.Status != domain.WalletStatusFrozen {
			return domain.ErrWalletFrozen
		}
	case domain.WalletStatusClosed:
		if !wallet.Balance.IsZero() {
			return domain.ErrWalletNotEmpty
		}
	}

	return nil
}

func (uc *WalletUseCase) emitWalletEvent(ctx context.Context, tx Transaction, wallet *domain.Wallet, eventType string, now time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   wallet.ID,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     eventType,
		Payload: map[string]any{
			"wallet_id": wallet.ID,
			"owner_id":  wallet.OwnerID,
			"status":    string(wallet.Status),
		},
		CreatedAt: now,
	})
}

func balanceCacheKey(walletID string) string {
	return "wallet:balance:" + walletID
}
