package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tumapay/ledger/internal/adapter/http/dto"
	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/infrastructure/metrics"
	"github.com/tumapay/ledger/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	Reverse(ctx context.Context, transactionID string) (*domain.Transaction, error)
	GetHistory(ctx context.Context, input usecase.HistoryInput) ([]*domain.Transaction, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
	metrics    *metrics.Metrics
}

// NewTransferHandler creates a new TransferHandler. Metrics may be nil.
func NewTransferHandler(transferUC TransferService, m *metrics.Metrics) *TransferHandler {
	return &TransferHandler{transferUC: transferUC, metrics: m}
}

// Create executes a transfer between two wallets.
//
// A declined transfer is still a recorded transaction, so the 422 response
// carries the failed transaction body alongside the error.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput(r.Header.Get("Idempotency-Key"))

	start := time.Now()
	txn, err := h.transferUC.Transfer(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) && txn != nil {
			if h.metrics != nil {
				h.metrics.TransfersFailed.Inc()
			}
			writeJSON(w, http.StatusUnprocessableEntity, dto.TransactionFromDomain(txn))
			return
		}
		if h.metrics != nil {
			h.metrics.TransferErrors.WithLabelValues(errorType(err)).Inc()
		}
		writeError(w, mapDomainError(err), "failed to create transfer", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.TransfersCreated.Inc()
		h.metrics.TransferDuration.Observe(time.Since(start).Seconds())
		h.metrics.TransferAmount.Observe(input.Amount.InexactFloat64())
	}
	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.transferUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Reverse creates a compensating transaction for a completed transfer.
func (h *TransferHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	reversal, err := h.transferUC.Reverse(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reverse transaction", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.TransfersReversed.Inc()
	}
	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(reversal))
}

// History lists a wallet's transactions, most recent first.
func (h *TransferHandler) History(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")
	if walletID == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	txns, err := h.transferUC.GetHistory(r.Context(), usecase.HistoryInput{
		WalletID: walletID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}
