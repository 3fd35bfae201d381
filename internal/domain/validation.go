package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidWalletID       = errors.New("invalid wallet ID")
	ErrInvalidOwnerID        = errors.New("invalid owner ID")
	ErrInvalidIdempotencyKey = errors.New("invalid idempotency key")
	ErrAmountTooLarge        = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxReferenceLength      = 150
	MaxIdempotencyKeyLength = 128
	MaxIDLength             = 64
	MaxTransferAmount       = "1000000000000" // minor units
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateWalletID validates the shape of a wallet identifier. IDs are
// opaque to the ledger but must be non-empty and bounded.
func ValidateWalletID(id string) error {
	if id == "" || len(id) > MaxIDLength || !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidWalletID, id)
	}
	return nil
}

// ValidateOwnerID validates the shape of an owner identifier.
func ValidateOwnerID(id string) error {
	if id == "" || len(id) > MaxIDLength || !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidOwnerID, id)
	}
	return nil
}

// ValidateIdempotencyKey validates a caller-supplied idempotency key.
func ValidateIdempotencyKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > MaxIdempotencyKeyLength {
		return ErrInvalidIdempotencyKey
	}
	return nil
}

// ValidateAmount validates a transfer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxTransferAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransferAmount)
	}

	return nil
}

// ValidateReference validates the optional free-text reference.
func ValidateReference(reference string) error {
	if len(reference) > MaxReferenceLength {
		return fmt.Errorf("%w: maximum is %d characters", ErrReferenceTooLong, MaxReferenceLength)
	}
	return nil
}

// ValidatePagination clamps pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 100
	const defaultPageSize = 20

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
