package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tumapay/ledger/internal/adapter/http/dto"
	"github.com/tumapay/ledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrReferenceTooLong),
		errors.Is(err, domain.ErrInvalidWalletID),
		errors.Is(err, domain.ErrInvalidOwnerID),
		errors.Is(err, domain.ErrInvalidIdempotencyKey):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrWalletFrozen),
		errors.Is(err, domain.ErrWalletClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey),
		errors.Is(err, domain.ErrInvalidReversal),
		errors.Is(err, domain.ErrWalletNotEmpty):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorType returns a low-cardinality label for a transfer error.
func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound):
		return "wallet_not_found"
	case errors.Is(err, domain.ErrWalletFrozen):
		return "wallet_frozen"
	case errors.Is(err, domain.ErrWalletClosed):
		return "wallet_closed"
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		return "duplicate_key"
	case errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrReferenceTooLong),
		errors.Is(err, domain.ErrInvalidWalletID),
		errors.Is(err, domain.ErrInvalidOwnerID),
		errors.Is(err, domain.ErrInvalidIdempotencyKey):
		return "validation"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage"
	default:
		return "internal"
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
