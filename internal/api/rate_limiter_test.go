package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterReusesPerClientLimiter(t *testing.T) {
	rl := NewRateLimiter(5)

	first := rl.getLimiter("10.0.0.1")
	second := rl.getLimiter("10.0.0.1")
	other := rl.getLimiter("10.0.0.2")

	assert.Same(t, first, second, "same client must share one limiter")
	assert.NotSame(t, first, other, "different clients get separate limiters")
}

func TestRateLimitMiddlewareThrottles(t *testing.T) {
	rl := NewRateLimiter(1) // burst of 10, then throttled

	handler := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed, limited := 0, 0
	for i := 0; i < 30; i++ {
		req := httptest.NewRequest("GET", "/api/wallets", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		switch w.Code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			limited++
		}
	}

	assert.Equal(t, 30, allowed+limited)
	assert.LessOrEqual(t, allowed, 11, "burst budget is 10 plus at most one refill")
	assert.Greater(t, limited, 0, "sustained traffic past the burst must be throttled")
}

func TestRateLimitMiddlewareSeparatesClients(t *testing.T) {
	rl := NewRateLimiter(1)

	handler := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Exhaust one client's burst.
	for i := 0; i < 15; i++ {
		req := httptest.NewRequest("GET", "/api/wallets", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// A fresh client is unaffected.
	req := httptest.NewRequest("GET", "/api/wallets", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
