package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()

	// Create middleware with limit of 3 requests per second
	rateLimitMW := RateLimitMiddleware(3, 1*time.Second)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	do := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, rateLimitMW(handler)(c))
		return rec
	}

	t.Run("allows requests within limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			rec := do("192.168.1.1:12345")
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("blocks requests exceeding limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			do("192.168.1.2:12345")
		}

		// Fourth request should be blocked
		rec := do("192.168.1.2:12345")

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), ErrCodeRateLimited)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})

	t.Run("allows requests from different IPs", func(t *testing.T) {
		for _, ip := range []string{"10.0.0.1:12345", "10.0.0.2:12345", "10.0.0.3:12345"} {
			rec := do(ip)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitWithConfig_Skipper(t *testing.T) {
	e := echo.New()
	mw := RateLimitWithConfig(RateLimitConfig{
		Limit:  1,
		Window: time.Second,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/ws"
		},
	})
	handler := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.RemoteAddr = "10.1.1.1:1"
		rec := httptest.NewRecorder()

		assert.NoError(t, mw(handler)(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	limiter := NewRateLimiter(2, 100*time.Millisecond)
	defer limiter.Stop()
	ip := "test-ip"

	// Use up the limit
	ok, _ := limiter.allow(ip)
	assert.True(t, ok)
	ok, _ = limiter.allow(ip)
	assert.True(t, ok)
	ok, wait := limiter.allow(ip)
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	// Wait for window to reset
	time.Sleep(150 * time.Millisecond)

	// Should be allowed again
	ok, _ = limiter.allow(ip)
	assert.True(t, ok)

	// Stop can be called more than once
	limiter.Stop()
}
