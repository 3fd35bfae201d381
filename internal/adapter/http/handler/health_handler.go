package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const readinessTimeout = 5 * time.Second

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{pool: pool, redis: redisClient}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness reports 200 only when both backing stores answer within a
// short deadline.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{"postgres", h.pool.Ping},
		{"redis", func(ctx context.Context) error { return h.redis.Ping(ctx).Err() }},
	}

	status := map[string]string{"status": "ready"}
	for _, check := range checks {
		if err := check.ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, check.name+" unhealthy", err.Error())
			return
		}
		status[check.name] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
