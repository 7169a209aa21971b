package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"credit-engine/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterMiddleware(t *testing.T) {
	serve := func(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	t.Run("should pass requests through when disabled", func(t *testing.T) {
		rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: false}, testLogger)
		handler := rl.Middleware(okHandler())

		for i := 0; i < 10; i++ {
			assert.Equal(t, http.StatusOK, serve(handler, "10.0.0.1:1234").Code)
		}
	})

	t.Run("should return 429 once the burst is exhausted", func(t *testing.T) {
		rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2}, testLogger)
		handler := rl.Middleware(okHandler())

		assert.Equal(t, http.StatusOK, serve(handler, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, serve(handler, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusTooManyRequests, serve(handler, "10.0.0.1:1234").Code)
	})

	t.Run("should track clients separately by IP", func(t *testing.T) {
		rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, testLogger)
		handler := rl.Middleware(okHandler())

		assert.Equal(t, http.StatusOK, serve(handler, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusTooManyRequests, serve(handler, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, serve(handler, "10.0.0.2:1234").Code)
	})

	t.Run("should prefer the X-Forwarded-For client address", func(t *testing.T) {
		rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, testLogger)
		handler := rl.Middleware(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		// Same forwarded client from a different socket shares the bucket.
		req2 := httptest.NewRequest(http.MethodGet, "/", nil)
		req2.RemoteAddr = "10.0.0.2:5678"
		req2.Header.Set("X-Forwarded-For", "203.0.113.5")
		rr2 := httptest.NewRecorder()
		handler.ServeHTTP(rr2, req2)
		assert.Equal(t, http.StatusTooManyRequests, rr2.Code)
	})
}
