package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/tumapay/ledger/internal/adapter/http"
	"github.com/tumapay/ledger/internal/adapter/http/handler"
	"github.com/tumapay/ledger/internal/adapter/http/middleware"
	postgresRepo "github.com/tumapay/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/tumapay/ledger/internal/adapter/repository/redis"
	"github.com/tumapay/ledger/internal/infrastructure/config"
	"github.com/tumapay/ledger/internal/infrastructure/eventpublisher"
	"github.com/tumapay/ledger/internal/infrastructure/logger"
	"github.com/tumapay/ledger/internal/infrastructure/logging"
	"github.com/tumapay/ledger/internal/infrastructure/metrics"
	"github.com/tumapay/ledger/internal/infrastructure/postgres"
	"github.com/tumapay/ledger/internal/infrastructure/redis"
	"github.com/tumapay/ledger/internal/usecase"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Run migrations before opening the pool so the schema is in place
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("migrations applied")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics and the request-scoped structured logger
	m := metrics.New()
	appLogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(m)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	walletUC := usecase.NewWalletUseCase(txManager, walletRepo, outboxRepo, idGen, cache)
	transferUC := usecase.NewTransferUseCase(txManager, walletRepo, txRepo, entryRepo, outboxRepo, idGen, retrier, cache)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	// Outbox publisher drains committed events in the background
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(appLogger.Logger),
		Logger:     appLogger.Logger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Initialize handlers
	walletHandler := handler.NewWalletHandler(walletUC, m)
	transferHandler := handler.NewTransferHandler(transferUC, m)
	entryHandler := handler.NewEntryHandler(transferUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		rateLimiter = middleware.NewRateLimiter(float64(cfg.RateLimitPerMinute)/60.0, cfg.RateLimitPerMinute, m)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:    walletHandler,
		TransferHandler:  transferHandler,
		EntryHandler:     entryHandler,
		LedgerHandler:    ledgerHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logging:          middleware.NewLoggingMiddleware(appLogger),
		Metrics:          middleware.NewMetricsMiddleware(m),
		RateLimiter:      rateLimiter,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
