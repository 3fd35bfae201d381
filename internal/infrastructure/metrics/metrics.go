package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersCreated  prometheus.Counter
	TransfersFailed   prometheus.Counter
	TransfersReversed prometheus.Counter
	TransferDuration  prometheus.Histogram
	TransferAmount    prometheus.Histogram
	TransferErrors    *prometheus.CounterVec
	IdempotentReplays prometheus.Counter

	// Wallet metrics
	WalletsCreated   prometheus.Counter
	WalletOperations *prometheus.CounterVec

	// Outbox metrics
	EventsPublished prometheus.Counter
	EventsPending   prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBRetries prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Transfer metrics
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transfers_created_total",
			Help: "Total number of transfers committed",
		}),
		TransfersFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transfers_failed_total",
			Help: "Total number of transfers declined for insufficient funds",
		}),
		TransfersReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transfers_reversed_total",
			Help: "Total number of transfers reversed",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),
		IdempotentReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_idempotent_replays_total",
			Help: "Total number of transfers answered from a prior result",
		}),

		// Wallet metrics
		WalletsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_wallets_created_total",
			Help: "Total number of wallets created",
		}),
		WalletOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_wallet_operations_total",
				Help: "Total wallet operations by type",
			},
			[]string{"operation"},
		),
		// Outbox metrics
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_events_published_total",
			Help: "Total outbox events published",
		}),
		EventsPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_events_pending",
			Help: "Outbox events awaiting publication",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_db_retries_total",
			Help: "Total database operations retried after transient errors",
		}),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
