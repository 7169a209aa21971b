package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	// How long the in-progress lock is held before the handler must have
	// finished and written the final entry.
	provisionalLockTTL = 60 * time.Second
	redisOpTimeout     = 2 * time.Second
)

type idempotencyEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

// Idempotency deduplicates mutating requests that carry an Idempotency-Key
// header. A repeated key with the same body replays the stored response; the
// same key with a different body is a conflict. Requests without the header
// pass through untouched.
func Idempotency(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			var body []byte
			if r.Body != nil {
				body, _ = io.ReadAll(r.Body)
			}
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			bodyHash := hashBody(body)

			redisKey := "idemp:" + r.Method + ":" + r.URL.Path + ":" + key
			ctx, cancel := context.WithTimeout(r.Context(), redisOpTimeout)
			defer cancel()

			acquired, err := acquireLock(ctx, rdb, redisKey, bodyHash)
			if err != nil {
				logger.Error("Idempotency store unavailable", "error", err)
				http.Error(w, `{"error":{"message":"Idempotency store unavailable"}}`, http.StatusServiceUnavailable)
				return
			}
			if !acquired {
				replayOrConflict(ctx, rdb, redisKey, bodyHash, w, logger)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			buf := &bytes.Buffer{}
			ww.Tee(buf)
			next.ServeHTTP(ww, r)

			final := idempotencyEntry{
				InProgress: false,
				Code:       ww.Status(),
				Body:       buf.Bytes(),
				BodySHA256: bodyHash,
				CreatedAt:  time.Now().UTC(),
			}
			saveCtx, saveCancel := context.WithTimeout(context.Background(), redisOpTimeout)
			defer saveCancel()
			if err := saveEntry(saveCtx, rdb, redisKey, final, ttl); err != nil {
				logger.Error("Failed to store idempotency entry", "key", redisKey, "error", err)
			}
		})
	}
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func acquireLock(ctx context.Context, rdb *redis.Client, key, bodyHash string) (bool, error) {
	entry := idempotencyEntry{
		InProgress: true,
		BodySHA256: bodyHash,
		CreatedAt:  time.Now().UTC(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, raw, provisionalLockTTL).Result()
}

func saveEntry(ctx context.Context, rdb *redis.Client, key string, entry idempotencyEntry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}

func replayOrConflict(ctx context.Context, rdb *redis.Client, key, bodyHash string, w http.ResponseWriter, logger *slog.Logger) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		logger.Error("Failed to load idempotency entry", "key", key, "error", err)
		http.Error(w, `{"error":{"message":"request is already in progress"}}`, http.StatusConflict)
		return
	}

	var entry idempotencyEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.Error("Failed to decode idempotency entry", "key", key, "error", err)
		http.Error(w, `{"error":{"message":"request is already in progress"}}`, http.StatusConflict)
		return
	}

	if entry.BodySHA256 != "" && entry.BodySHA256 != bodyHash {
		http.Error(w, `{"error":{"message":"Idempotency-Key reused with different body"}}`, http.StatusConflict)
		return
	}
	if !entry.InProgress && entry.Code != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(entry.Code)
		w.Write(entry.Body)
		return
	}
	http.Error(w, `{"error":{"message":"request is already in progress"}}`, http.StatusConflict)
}
