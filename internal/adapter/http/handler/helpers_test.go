package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tumapay/ledger/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrWalletNotFound, http.StatusNotFound},
		{domain.ErrTransactionNotFound, http.StatusNotFound},
		{domain.ErrSelfTransfer, http.StatusBadRequest},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrAmountTooLarge, http.StatusBadRequest},
		{domain.ErrReferenceTooLong, http.StatusBadRequest},
		{domain.ErrInvalidWalletID, http.StatusBadRequest},
		{domain.ErrInvalidOwnerID, http.StatusBadRequest},
		{domain.ErrInvalidIdempotencyKey, http.StatusBadRequest},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{domain.ErrWalletFrozen, http.StatusUnprocessableEntity},
		{domain.ErrWalletClosed, http.StatusUnprocessableEntity},
		{domain.ErrDuplicateIdempotencyKey, http.StatusConflict},
		{domain.ErrInvalidReversal, http.StatusConflict},
		{domain.ErrWalletNotEmpty, http.StatusConflict},
		{domain.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Fatalf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMapDomainErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", domain.ErrInsufficientFunds)
	if got := mapDomainError(wrapped); got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for wrapped error, got %d", got)
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=15&bad=abc", nil)

	if got := parseIntQuery(req, "limit", 20); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
	if got := parseIntQuery(req, "missing", 20); got != 20 {
		t.Fatalf("expected default 20, got %d", got)
	}
	if got := parseIntQuery(req, "bad", 20); got != 20 {
		t.Fatalf("expected default for unparseable value, got %d", got)
	}
}
