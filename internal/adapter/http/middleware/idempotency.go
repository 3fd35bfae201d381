package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tumapay/ledger/internal/usecase"
)

// IdempotencyKeyHeader is the header name for idempotency keys.
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyMiddleware replays cached responses for retried mutating
// requests. It sits in front of the engine's durable dedup: the engine's
// unique key constraint is authoritative, this layer just saves the round
// trip to Postgres when Redis still remembers the response.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl == 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		exists, cachedResponse, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			// Redis being down must not block transfers; the engine
			// still deduplicates by key.
			next.ServeHTTP(w, r)
			return
		}

		if exists && cachedResponse != nil && string(cachedResponse) != "processing" {
			status, body := decodeStored(cachedResponse)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.WriteHeader(status)
			w.Write(body)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Cache successes and insufficient-funds declines: a declined
		// transfer is a durable terminal outcome, so its replay is as
		// stable as a completed one.
		if (recorder.statusCode >= 200 && recorder.statusCode < 300) ||
			recorder.statusCode == http.StatusUnprocessableEntity {
			if stored, err := json.Marshal(storedResponse{
				Status: recorder.statusCode,
				Body:   recorder.body.Bytes(),
			}); err == nil {
				m.store.Update(r.Context(), key, stored, m.ttl)
			}
		}
	})
}

// storedResponse is the cached form of a replayable response. The status
// rides alongside the body so a replayed 201 or 422 keeps its code.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

func decodeStored(cached []byte) (int, []byte) {
	var stored storedResponse
	if err := json.Unmarshal(cached, &stored); err == nil && stored.Status != 0 {
		return stored.Status, stored.Body
	}
	return http.StatusOK, cached
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
