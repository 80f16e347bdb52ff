package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"simplesearch/pkg/utils"
)

const (
	rateWindow    = time.Minute
	sweepInterval = time.Minute
	staleAfter    = 5 * time.Minute
)

type clientWindow struct {
	windowStart time.Time
	count       int
}

// RateLimiter caps requests per client IP over a fixed one-minute window.
// State lives in process memory, so limits apply per instance.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	rate    int
}

// NewRateLimiter creates a limiter allowing rate requests per minute per
// client IP and starts its background sweep.
func NewRateLimiter(rate int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		rate:    rate,
	}
	go rl.sweep()
	return rl
}

// RateLimit rejects requests over the per-IP budget with 429 and a
// Retry-After hint for the remainder of the window.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		rl.mu.Lock()
		cw, ok := rl.clients[c.ClientIP()]
		if !ok || now.Sub(cw.windowStart) >= rateWindow {
			rl.clients[c.ClientIP()] = &clientWindow{windowStart: now, count: 1}
			rl.mu.Unlock()
			c.Next()
			return
		}

		if cw.count >= rl.rate {
			retryAfter := rateWindow - now.Sub(cw.windowStart)
			rl.mu.Unlock()
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "Rate limit exceeded", nil)
			c.Abort()
			return
		}

		cw.count++
		rl.mu.Unlock()
		c.Next()
	}
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-staleAfter)
		rl.mu.Lock()
		for ip, cw := range rl.clients {
			if cw.windowStart.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// SecurityHeaders sets the standard response hardening headers.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// RequestID attaches a request id, honoring one supplied by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = utils.GenerateRandomID(8)
		}

		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
