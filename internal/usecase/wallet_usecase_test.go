package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/usecase"
	"github.com/tumapay/ledger/internal/usecase/mocks"
)

type walletFixture struct {
	walletRepo *mocks.MockWalletRepository
	outboxRepo *mocks.MockOutboxRepository
	cache      *mocks.MockCache
	uc         *usecase.WalletUseCase
}

func newWalletFixture() *walletFixture {
	f := &walletFixture{
		walletRepo: mocks.NewMockWalletRepository(),
		outboxRepo: mocks.NewMockOutboxRepository(),
		cache:      mocks.NewMockCache(),
	}

	f.uc = usecase.NewWalletUseCase(
		mocks.NewMockTransactionManager(),
		f.walletRepo,
		f.outboxRepo,
		mocks.NewMockIDGenerator(),
		f.cache,
	)

	return f
}

func TestWalletUseCase_CreateWallet(t *testing.T) {
	f := newWalletFixture()

	wallet, err := f.uc.CreateWallet(context.Background(), usecase.CreateWalletInput{OwnerID: "user-42"})
	require.NoError(t, err)

	assert.Equal(t, "user-42", wallet.OwnerID)
	assert.Equal(t, domain.WalletStatusActive, wallet.Status)
	assert.True(t, wallet.Balance.IsZero(), "new wallets start empty")

	events := f.outboxRepo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeWalletCreated, events[0].EventType)

	_, err = f.uc.CreateWallet(context.Background(), usecase.CreateWalletInput{OwnerID: ""})
	assert.Error(t, err)
}

func TestWalletUseCase_GetBalance(t *testing.T) {
	f := newWalletFixture()
	f.walletRepo.Seed(&domain.Wallet{
		ID:      "w-1",
		Status:  domain.WalletStatusActive,
		Balance: decimal.RequireFromString("123.45"),
	})

	balance, err := f.uc.GetBalance(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("123.45")))

	// Second read is served from cache even if the repo breaks.
	f.walletRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Wallet, error) {
		t.Fatal("repository should not be hit on a cached read")
		return nil, nil
	}

	balance, err = f.uc.GetBalance(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("123.45")))

	f.walletRepo.GetByIDFunc = nil
	_, err = f.uc.GetBalance(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestWalletUseCase_FreezeUnfreeze(t *testing.T) {
	f := newWalletFixture()
	f.walletRepo.Seed(&domain.Wallet{ID: "w-1", Status: domain.WalletStatusActive})

	frozen, err := f.uc.FreezeWallet(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, domain.WalletStatusFrozen, frozen.Status)

	// Freezing twice is not a valid transition.
	_, err = f.uc.FreezeWallet(context.Background(), "w-1")
	assert.Error(t, err)

	active, err := f.uc.UnfreezeWallet(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, domain.WalletStatusActive, active.Status)
}

func TestWalletUseCase_CloseWallet(t *testing.T) {
	f := newWalletFixture()
	f.walletRepo.Seed(&domain.Wallet{ID: "w-empty", Status: domain.WalletStatusActive, Balance: decimal.Zero})
	f.walletRepo.Seed(&domain.Wallet{ID: "w-funded", Status: domain.WalletStatusActive, Balance: decimal.NewFromInt(10)})

	closed, err := f.uc.CloseWallet(context.Background(), "w-empty")
	require.NoError(t, err)
	assert.Equal(t, domain.WalletStatusClosed, closed.Status)

	// A closed wallet stays closed.
	_, err = f.uc.UnfreezeWallet(context.Background(), "w-empty")
	assert.ErrorIs(t, err, domain.ErrWalletClosed)

	// Funds must be moved out before closing.
	_, err = f.uc.CloseWallet(context.Background(), "w-funded")
	assert.ErrorIs(t, err, domain.ErrWalletNotEmpty)
}

func TestWalletUseCase_ListWallets(t *testing.T) {
	f := newWalletFixture()
	f.walletRepo.Seed(&domain.Wallet{ID: "w-1", OwnerID: "user-1", Status: domain.WalletStatusActive})
	f.walletRepo.Seed(&domain.Wallet{ID: "w-2", OwnerID: "user-1", Status: domain.WalletStatusClosed})
	f.walletRepo.Seed(&domain.Wallet{ID: "w-3", OwnerID: "user-2", Status: domain.WalletStatusActive})

	wallets, err := f.uc.ListWallets(context.Background(), usecase.ListWalletsInput{OwnerID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, wallets, 2)
}
