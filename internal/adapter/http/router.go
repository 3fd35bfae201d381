package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tumapay/ledger/internal/adapter/http/handler"
	"github.com/tumapay/ledger/internal/adapter/http/middleware"
	"github.com/tumapay/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler    *handler.WalletHandler
	TransferHandler  *handler.TransferHandler
	EntryHandler     *handler.EntryHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logging          *middleware.LoggingMiddleware
	Metrics          *middleware.MetricsMiddleware
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Wallets
		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", cfg.WalletHandler.Create)
			r.Get("/", cfg.WalletHandler.List)
			r.Get("/{id}", cfg.WalletHandler.Get)
			r.Get("/{id}/balance", cfg.WalletHandler.Balance)
			r.Get("/{id}/history", cfg.TransferHandler.History)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByWallet)
			r.Post("/{id}/freeze", cfg.WalletHandler.Freeze)
			r.Post("/{id}/unfreeze", cfg.WalletHandler.Unfreeze)
			r.Post("/{id}/close", cfg.WalletHandler.Close)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/{id}", cfg.TransferHandler.Get)
			r.Post("/{id}/reverse", cfg.TransferHandler.Reverse)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByTransaction)
		})

		// Ledger
		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
