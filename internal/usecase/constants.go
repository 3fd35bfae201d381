package usecase

import "time"

const (
	// BalanceCacheTTL bounds how stale a cached balance read may be.
	BalanceCacheTTL = 5 * time.Second

	// IdempotencyKeyTTL is how long HTTP-level idempotency replays are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// FailureReasonInsufficientFunds is recorded on failed transaction rows.
	FailureReasonInsufficientFunds = "insufficient_funds"
)
