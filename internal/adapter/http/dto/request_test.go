package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateTransferRequest_ToUseCaseInput(t *testing.T) {
	req := CreateTransferRequest{
		IdempotencyKey: "body-key",
		FromWalletID:   "W1",
		ToWalletID:     "W2",
		Amount:         decimal.RequireFromString("30.00"),
		Reference:      "invoice 42",
	}

	input := req.ToUseCaseInput("header-key")

	if input.IdempotencyKey != "body-key" {
		t.Fatalf("body key should win over header, got %q", input.IdempotencyKey)
	}
	if input.FromWalletID != "W1" || input.ToWalletID != "W2" {
		t.Fatalf("unexpected wallet IDs: %+v", input)
	}
	if !input.Amount.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("unexpected amount: %s", input.Amount)
	}
	if input.Reference != "invoice 42" {
		t.Fatalf("unexpected reference: %q", input.Reference)
	}
}

func TestCreateTransferRequest_HeaderKeyFallback(t *testing.T) {
	req := CreateTransferRequest{
		FromWalletID: "W1",
		ToWalletID:   "W2",
		Amount:       decimal.RequireFromString("1.00"),
	}

	input := req.ToUseCaseInput("header-key")

	if input.IdempotencyKey != "header-key" {
		t.Fatalf("expected header key fallback, got %q", input.IdempotencyKey)
	}
}

func TestCreateTransferRequest_DecodesAmountFormats(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "string amount", body: `{"from_wallet_id":"W1","to_wallet_id":"W2","amount":"30.00"}`, want: "30.00"},
		{name: "numeric amount", body: `{"from_wallet_id":"W1","to_wallet_id":"W2","amount":30}`, want: "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateTransferRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if !req.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("expected amount %s, got %s", tt.want, req.Amount)
			}
		})
	}
}

func TestCreateWalletRequest_ToUseCaseInput(t *testing.T) {
	req := CreateWalletRequest{OwnerID: "owner-1"}

	if input := req.ToUseCaseInput(); input.OwnerID != "owner-1" {
		t.Fatalf("unexpected owner: %q", input.OwnerID)
	}
}
