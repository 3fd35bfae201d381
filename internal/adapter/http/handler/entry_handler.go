package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tumapay/ledger/internal/adapter/http/dto"
	"github.com/tumapay/ledger/internal/domain"
	"github.com/tumapay/ledger/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	GetEntries(ctx context.Context, transactionID string) ([]*domain.Entry, error)
	GetWalletEntries(ctx context.Context, input usecase.HistoryInput) ([]*domain.Entry, error)
}

// EntryHandler exposes the audit trail of balance movements.
type EntryHandler struct {
	transferUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(transferUC EntryService) *EntryHandler {
	return &EntryHandler{transferUC: transferUC}
}

// ListByWallet lists a wallet's balance movements.
func (h *EntryHandler) ListByWallet(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")
	if walletID == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.transferUC.GetWalletEntries(r.Context(), usecase.HistoryInput{
		WalletID: walletID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListByTransaction lists the debit/credit pair of a transaction.
func (h *EntryHandler) ListByTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	entries, err := h.transferUC.GetEntries(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
