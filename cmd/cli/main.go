package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "Ledger CLI tool",
		Long:  `A command line interface for interacting with the wallet ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(walletCmd())
	rootCmd.AddCommand(transferCmd())
	rootCmd.AddCommand(ledgerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	var ownerID string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/wallets", map[string]string{"owner_id": ownerID}, "")
		},
	}
	createCmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID for the new wallet")
	_ = createCmd.MarkFlagRequired("owner")

	getCmd := &cobra.Command{
		Use:   "get <wallet-id>",
		Short: "Fetch a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/wallets/" + args[0])
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <wallet-id>",
		Short: "Fetch a wallet balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/wallets/" + args[0] + "/balance")
		},
	}

	var limit, offset int
	historyCmd := &cobra.Command{
		Use:   "history <wallet-id>",
		Short: "List a wallet's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/wallets/%s/history?limit=%d&offset=%d", args[0], limit, offset)
			body, status, err := do(http.MethodGet, path, nil, "")
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return printResponse(body, status)
			}
			return printHistory(body)
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Maximum transactions to return")
	historyCmd.Flags().IntVar(&offset, "offset", 0, "Number of transactions to skip")

	cmd.AddCommand(createCmd, getCmd, balanceCmd, historyCmd)
	return cmd
}

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer operations",
	}

	var from, to, amount, key, reference string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Transfer an amount between two wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = ulid.Make().String()
				fmt.Printf("idempotency key: %s\n", key)
			}
			body := map[string]string{
				"from_wallet_id": from,
				"to_wallet_id":   to,
				"amount":         amount,
			}
			if reference != "" {
				body["reference"] = reference
			}
			return postJSON("/api/v1/transfers", body, key)
		},
	}
	createCmd.Flags().StringVar(&from, "from", "", "Source wallet ID")
	createCmd.Flags().StringVar(&to, "to", "", "Destination wallet ID")
	createCmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer")
	createCmd.Flags().StringVar(&key, "key", "", "Idempotency key (generated when omitted)")
	createCmd.Flags().StringVar(&reference, "reference", "", "Free-form reference")
	_ = createCmd.MarkFlagRequired("from")
	_ = createCmd.MarkFlagRequired("to")
	_ = createCmd.MarkFlagRequired("amount")

	getCmd := &cobra.Command{
		Use:   "get <transaction-id>",
		Short: "Fetch a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/transfers/" + args[0])
		},
	}

	var reverseKey string
	reverseCmd := &cobra.Command{
		Use:   "reverse <transaction-id>",
		Short: "Reverse a completed transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reverseKey == "" {
				reverseKey = ulid.Make().String()
				fmt.Printf("idempotency key: %s\n", reverseKey)
			}
			return postJSON("/api/v1/transfers/"+args[0]+"/reverse", map[string]string{}, reverseKey)
		},
	}
	reverseCmd.Flags().StringVar(&reverseKey, "key", "", "Idempotency key (generated when omitted)")

	cmd.AddCommand(createCmd, getCmd, reverseCmd)
	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := do(http.MethodGet, "/api/v1/ledger/consistency", nil, "")
			if err != nil {
				return err
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if status != http.StatusOK {
				fmt.Printf("Consistency check FAILED (Status: %d)\n", status)
				printJSON(result)
				return fmt.Errorf("ledger inconsistent")
			}

			fmt.Printf("Consistency check PASSED\n")
			printJSON(result)
			return nil
		},
	}

	cmd.AddCommand(consistencyCmd)
	return cmd
}

func getJSON(path string) error {
	body, status, err := do(http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return printResponse(body, status)
}

func postJSON(path string, payload any, idempotencyKey string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, status, err := do(http.MethodPost, path, bytes.NewReader(data), idempotencyKey)
	if err != nil {
		return err
	}
	return printResponse(body, status)
}

func do(method, path string, body io.Reader, idempotencyKey string) ([]byte, int, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return data, resp.StatusCode, nil
}

func printResponse(body []byte, status int) error {
	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Println(string(body))
	} else {
		printJSON(result)
	}

	if status >= http.StatusBadRequest {
		return fmt.Errorf("request rejected (Status: %d)", status)
	}
	return nil
}

func printHistory(body []byte) error {
	var txns []struct {
		ID           string `json:"id"`
		FromWalletID string `json:"from_wallet_id"`
		ToWalletID   string `json:"to_wallet_id"`
		Amount       string `json:"amount"`
		Status       string `json:"status"`
		Reference    string `json:"reference"`
		CreatedAt    string `json:"created_at"`
	}
	if err := json.Unmarshal(body, &txns); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("%-28s %-28s %-28s %12s %-10s %-24s %s\n",
		"ID", "FROM", "TO", "AMOUNT", "STATUS", "REFERENCE", "CREATED")
	for _, txn := range txns {
		fmt.Printf("%-28s %-28s %-28s %12s %-10s %-24s %s\n",
			txn.ID, txn.FromWalletID, txn.ToWalletID,
			txn.Amount, txn.Status, truncate(txn.Reference, 24), txn.CreatedAt)
	}
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
