package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/keydrop-back/internal/response"
)

// ErrCodeRateLimited is the error code returned when a client is throttled.
const ErrCodeRateLimited = "RATE_LIMITED"

// RateLimiter tracks request counts per IP.
type RateLimiter struct {
	requests map[string]*requestInfo
	mu       sync.Mutex
	limit    int           // max requests per window
	window   time.Duration // time window
	done     chan struct{}
	stopOnce sync.Once
}

type requestInfo struct {
	count     int
	resetTime time.Time
}

// NewRateLimiter creates a new RateLimiter. Call Stop to end its cleanup loop.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string]*requestInfo),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// cleanup periodically removes expired entries.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, info := range rl.requests {
				if now.After(info.resetTime) {
					delete(rl.requests, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// allow checks if a request from the given IP is allowed. When it is not,
// the time until the window resets is returned.
func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	info, exists := rl.requests[ip]

	if !exists || now.After(info.resetTime) {
		rl.requests[ip] = &requestInfo{
			count:     1,
			resetTime: now.Add(rl.window),
		}
		return true, 0
	}

	if info.count >= rl.limit {
		return false, info.resetTime.Sub(now)
	}

	info.count++
	return true, 0
}

// RateLimitConfig configures RateLimitMiddleware.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// Skipper exempts requests such as the stream upgrade.
	Skipper func(c echo.Context) bool
}

// RateLimitMiddleware returns a rate limiting middleware.
func RateLimitMiddleware(limit int, window time.Duration) echo.MiddlewareFunc {
	return RateLimitWithConfig(RateLimitConfig{Limit: limit, Window: window})
}

// RateLimitWithConfig returns a rate limiting middleware for cfg.
func RateLimitWithConfig(cfg RateLimitConfig) echo.MiddlewareFunc {
	limiter := NewRateLimiter(cfg.Limit, cfg.Window)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			ok, wait := limiter.allow(c.RealIP())
			if !ok {
				secs := int(wait.Seconds() + 0.999)
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return response.ErrorWithCode(c, http.StatusTooManyRequests, ErrCodeRateLimited,
					"リクエストが多すぎます。しばらく待ってから再試行してください。")
			}

			return next(c)
		}
	}
}
