package domain

import "time"

// Event types
const (
	EventTypeTransferCompleted = "transfer.completed"
	EventTypeTransferFailed    = "transfer.failed"
	EventTypeTransferReversed  = "transfer.reversed"
	EventTypeWalletCreated     = "wallet.created"
	EventTypeWalletFrozen      = "wallet.frozen"
	EventTypeWalletUnfrozen    = "wallet.unfrozen"
	EventTypeWalletClosed      = "wallet.closed"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeWallet      = "wallet"
)

// OutboxEvent is a notification written in the same commit as the state it
// describes and delivered best-effort after the fact.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransferCompletedEvent payload
type TransferCompletedEvent struct {
	TransactionID string `json:"transaction_id"`
	FromWalletID  string `json:"from_wallet_id"`
	ToWalletID    string `json:"to_wallet_id"`
	Amount        string `json:"amount"`
	Reference     string `json:"reference,omitempty"`
	CompletedAt   string `json:"completed_at"`
}

// TransferFailedEvent payload
type TransferFailedEvent struct {
	TransactionID string `json:"transaction_id"`
	FromWalletID  string `json:"from_wallet_id"`
	ToWalletID    string `json:"to_wallet_id"`
	Amount        string `json:"amount"`
	Reason        string `json:"reason"`
}

// TransferReversedEvent payload
type TransferReversedEvent struct {
	ReversalTransactionID string `json:"reversal_transaction_id"`
	OriginalTransactionID string `json:"original_transaction_id"`
	Amount                string `json:"amount"`
}

// WalletStatusEvent payload for wallet lifecycle events.
type WalletStatusEvent struct {
	WalletID string `json:"wallet_id"`
	OwnerID  string `json:"owner_id"`
	Status   string `json:"status"`
}
