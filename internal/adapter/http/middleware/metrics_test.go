package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tumapay/ledger/internal/infrastructure/metrics"
)

// promauto registers on the default registry, so the package shares a
// single Metrics value and tests assert on counter deltas.
var middlewareMetrics = metrics.New()

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	mw := NewMetricsMiddleware(middlewareMetrics)

	counter := middlewareMetrics.HTTPRequests.WithLabelValues(http.MethodGet, "/health", "200")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("expected request counter to advance by 1, got %v -> %v", before, got)
	}
}

func TestMetricsMiddlewareCountsReplays(t *testing.T) {
	mw := NewMetricsMiddleware(middlewareMetrics)
	before := testutil.ToFloat64(middlewareMetrics.IdempotentReplays)

	// A replayed response carries the marker header set by the
	// idempotency layer.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Idempotency-Replay", "true")
		w.WriteHeader(http.StatusCreated)
	})).ServeHTTP(rr, req)

	if got := testutil.ToFloat64(middlewareMetrics.IdempotentReplays); got != before+1 {
		t.Fatalf("expected replay counter to advance by 1, got %v -> %v", before, got)
	}

	// A plain response must not count as a replay.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	rr = httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})).ServeHTTP(rr, req)

	if got := testutil.ToFloat64(middlewareMetrics.IdempotentReplays); got != before+1 {
		t.Fatalf("expected replay counter to stay at %v, got %v", before+1, got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/wallets/01ABC123", "/api/v1/wallets/:id"},
		{"/api/v1/wallets/01ABC123/balance", "/api/v1/wallets/:id/balance"},
		{"/api/v1/wallets/01ABC123/history", "/api/v1/wallets/:id/history"},
		{"/api/v1/transfers/01XYZ789", "/api/v1/transfers/:id"},
		{"/api/v1/transfers/01XYZ789/reverse", "/api/v1/transfers/:id/reverse"},
		{"/api/v1/wallets/", "/api/v1/wallets/"},
		{"/api/v1/ledger/consistency", "/api/v1/ledger/consistency"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Fatalf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
