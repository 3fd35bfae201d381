package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tumapay/ledger/internal/adapter/http/dto"
	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/usecase"
)

type walletServiceStub struct {
	createFn   func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error)
	getFn      func(ctx context.Context, id string) (*domain.Wallet, error)
	balanceFn  func(ctx context.Context, walletID string) (decimal.Decimal, error)
	freezeFn   func(ctx context.Context, id string) (*domain.Wallet, error)
	unfreezeFn func(ctx context.Context, id string) (*domain.Wallet, error)
	closeFn    func(ctx context.Context, id string) (*domain.Wallet, error)
	listFn     func(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error)
}

func (s *walletServiceStub) CreateWallet(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
	return s.createFn(ctx, input)
}

func (s *walletServiceStub) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.getFn(ctx, id)
}

func (s *walletServiceStub) GetBalance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	return s.balanceFn(ctx, walletID)
}

func (s *walletServiceStub) FreezeWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.freezeFn(ctx, id)
}

func (s *walletServiceStub) UnfreezeWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.unfreezeFn(ctx, id)
}

func (s *walletServiceStub) CloseWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.closeFn(ctx, id)
}

func (s *walletServiceStub) ListWallets(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error) {
	return s.listFn(ctx, input)
}

func TestWalletHandler_Create_Success(t *testing.T) {
	wallet := &domain.Wallet{ID: "W1", OwnerID: "owner-1", Status: domain.WalletStatusActive}

	handler := NewWalletHandler(&walletServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
			if input.OwnerID != "owner-1" {
				t.Fatalf("unexpected owner: %s", input.OwnerID)
			}
			return wallet, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateWalletRequest{OwnerID: "owner-1"})
	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.WalletResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "W1" || resp.Status != "active" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestWalletHandler_Create_InvalidOwner(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
			return nil, domain.ErrInvalidOwnerID
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateWalletRequest{OwnerID: ""})
	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWalletHandler_Balance(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		balanceFn: func(ctx context.Context, walletID string) (decimal.Decimal, error) {
			return decimal.RequireFromString("70.00"), nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/wallets/W1/balance", nil)
	req = requestWithURLParam(req, "id", "W1")
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Balance.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("expected balance 70.00, got %s", resp.Balance)
	}
}

func TestWalletHandler_Balance_NotFound(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		balanceFn: func(ctx context.Context, walletID string) (decimal.Decimal, error) {
			return decimal.Zero, domain.ErrWalletNotFound
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/wallets/missing/balance", nil)
	req = requestWithURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestWalletHandler_Freeze(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		freezeFn: func(ctx context.Context, id string) (*domain.Wallet, error) {
			return &domain.Wallet{ID: id, Status: domain.WalletStatusFrozen}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/wallets/W1/freeze", nil)
	req = requestWithURLParam(req, "id", "W1")
	rec := httptest.NewRecorder()

	handler.Freeze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.WalletResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "frozen" {
		t.Fatalf("expected frozen, got %s", resp.Status)
	}
}

func TestWalletHandler_Close_NotEmpty(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		closeFn: func(ctx context.Context, id string) (*domain.Wallet, error) {
			return nil, domain.ErrWalletNotEmpty
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/wallets/W1/close", nil)
	req = requestWithURLParam(req, "id", "W1")
	rec := httptest.NewRecorder()

	handler.Close(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestWalletHandler_List(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		listFn: func(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error) {
			if input.OwnerID != "owner-1" {
				t.Fatalf("unexpected owner: %s", input.OwnerID)
			}
			return []*domain.Wallet{{ID: "W1"}, {ID: "W2"}}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/wallets?owner_id=owner-1", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListWalletsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Wallets) != 2 {
		t.Fatalf("expected 2 wallets, got %+v", resp)
	}
}
