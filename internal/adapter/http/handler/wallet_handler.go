package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tumapay/ledger/internal/adapter/http/dto"
	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/infrastructure/metrics"
	"github.com/tumapay/ledger/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	CreateWallet(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id string) (*domain.Wallet, error)
	GetBalance(ctx context.Context, walletID string) (decimal.Decimal, error)
	FreezeWallet(ctx context.Context, id string) (*domain.Wallet, error)
	UnfreezeWallet(ctx context.Context, id string) (*domain.Wallet, error)
	CloseWallet(ctx context.Context, id string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	walletUC WalletService
	metrics  *metrics.Metrics
}

// NewWalletHandler creates a new WalletHandler. Metrics may be nil.
func NewWalletHandler(walletUC WalletService, m *metrics.Metrics) *WalletHandler {
	return &WalletHandler{walletUC: walletUC, metrics: m}
}

// Create creates a new wallet.
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	wallet, err := h.walletUC.CreateWallet(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create wallet", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.WalletsCreated.Inc()
	}
	writeJSON(w, http.StatusCreated, dto.WalletFromDomain(wallet))
}

// Get retrieves a wallet by ID.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	wallet, err := h.walletUC.GetWallet(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Balance returns the wallet's current balance.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	balance, err := h.walletUC.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		WalletID: id,
		Balance:  balance,
	})
}

// List lists wallets for an owner.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	wallets, err := h.walletUC.ListWallets(r.Context(), usecase.ListWalletsInput{
		OwnerID: ownerID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list wallets", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListWalletsResponse{
		Wallets: dto.WalletsFromDomain(wallets),
		Total:   int64(len(wallets)),
	})
}

// Freeze blocks a wallet from sending or receiving.
func (h *WalletHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "freeze", h.walletUC.FreezeWallet, "failed to freeze wallet")
}

// Unfreeze restores a frozen wallet to active.
func (h *WalletHandler) Unfreeze(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "unfreeze", h.walletUC.UnfreezeWallet, "failed to unfreeze wallet")
}

// Close permanently closes an empty wallet.
func (h *WalletHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "close", h.walletUC.CloseWallet, "failed to close wallet")
}

func (h *WalletHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	op func(ctx context.Context, id string) (*domain.Wallet, error),
	failMsg string,
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	wallet, err := op(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), failMsg, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.WalletOperations.WithLabelValues(operation).Inc()
	}
	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}
