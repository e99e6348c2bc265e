package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLoginLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the budget then blocks", func(t *testing.T) {
		limiter := NewMemoryLoginLimiter()

		for i := 0; i < loginMaxAttempts; i++ {
			assert.True(t, limiter.Allow(ctx, "10.0.0.1"))
		}
		assert.False(t, limiter.Allow(ctx, "10.0.0.1"))
	})

	t.Run("budgets are per ip", func(t *testing.T) {
		limiter := NewMemoryLoginLimiter()

		for i := 0; i < loginMaxAttempts; i++ {
			limiter.Allow(ctx, "10.0.0.1")
		}
		assert.False(t, limiter.Allow(ctx, "10.0.0.1"))
		assert.True(t, limiter.Allow(ctx, "10.0.0.2"))
	})
}

func TestLoginLimitMiddleware(t *testing.T) {
	limiter := NewMemoryLoginLimiter()
	mw := NewLoginLimitMiddleware(limiter)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < loginMaxAttempts; i++ {
		assert.Equal(t, http.StatusOK, do().Code)
	}

	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
