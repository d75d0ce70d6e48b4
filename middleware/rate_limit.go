package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/AnTengye/qualitytrack/config"
	"github.com/gin-gonic/gin"
)

// bucket counts one client's requests in its current window
type bucket struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window limiter keyed per client
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int           // requests per window
	window  time.Duration // time window
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		now:     time.Now,
	}
}

// Allow records a request for key. When the limit is reached it returns
// false and how long until the client's window resets.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		l.sweep(now)
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}

	if b.count >= l.rate {
		return false, b.resetAt.Sub(now)
	}
	b.count++
	return true, 0
}

// sweep drops expired buckets so idle clients do not accumulate
// Must be called with lock held
func (l *RateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}

// RateLimit middleware limits requests per client IP and route
func RateLimit(cfg *config.RateLimitConfig) gin.HandlerFunc {
	limiter := NewRateLimiter(cfg.Requests, cfg.Window())

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		key := clientIP + " " + c.FullPath()

		ok, retryAfter := limiter.Allow(key)
		if !ok {
			slog.Warn("rate limit exceeded",
				"client_ip", clientIP,
				"route", c.FullPath(),
				"request_id", GetRequestID(c),
			)

			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
