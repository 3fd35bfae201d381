package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	adaptershttp "github.com/tumapay/ledger/internal/adapter/http"
	"github.com/tumapay/ledger/internal/adapter/http/handler"
	postgresrepo "github.com/tumapay/ledger/internal/adapter/repository/postgres"
	redisrepo "github.com/tumapay/ledger/internal/adapter/repository/redis"
	infraredis "github.com/tumapay/ledger/internal/infrastructure/redis"
	"github.com/tumapay/ledger/internal/usecase"
	"github.com/tumapay/ledger/tests/testutil"
)

// testEnv wires the full stack against the test database, the way the
// server binary does.
type testEnv struct {
	DB         *testutil.TestDB
	Router     http.Handler
	WalletRepo *postgresrepo.WalletRepository
	OutboxRepo *postgresrepo.OutboxRepository
	TransferUC *usecase.TransferUseCase
	WalletUC   *usecase.WalletUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)

	pool := testDB.Pool
	txManager := postgresrepo.NewTxManager(pool)
	walletRepo := postgresrepo.NewWalletRepository(pool)
	txRepo := postgresrepo.NewTransactionRepository(pool)
	entryRepo := postgresrepo.NewEntryRepository(pool)
	ledgerRepo := postgresrepo.NewLedgerRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)
	idGen := postgresrepo.NewULIDGenerator()
	retrier := postgresrepo.NewRetrier(nil)

	walletUC := usecase.NewWalletUseCase(txManager, walletRepo, outboxRepo, idGen, nil)
	transferUC := usecase.NewTransferUseCase(txManager, walletRepo, txRepo, entryRepo, outboxRepo, idGen, retrier, nil)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		WalletHandler:    handler.NewWalletHandler(walletUC, nil),
		TransferHandler:  handler.NewTransferHandler(transferUC, nil),
		EntryHandler:     handler.NewEntryHandler(transferUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
	})

	return &testEnv{
		DB:         testDB,
		Router:     router,
		WalletRepo: walletRepo,
		OutboxRepo: outboxRepo,
		TransferUC: transferUC,
		WalletUC:   walletUC,
	}
}

// doJSON performs a request against the router with an optional JSON body
// and idempotency key header.
func (env *testEnv) doJSON(t *testing.T, method, path string, body any, idempotencyKey string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		r.Header.Set("Idempotency-Key", idempotencyKey)
	}

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, r)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return v
}
