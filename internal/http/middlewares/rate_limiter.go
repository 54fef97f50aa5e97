package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/stableswap-engine/internal/metrics"
)

// RateLimiter is a per-client-IP token bucket. Buckets idle long enough to
// have refilled completely are dropped, since a fresh bucket is identical.
type RateLimiter struct {
	mu        sync.Mutex
	rate      float64
	burst     float64
	buckets   map[string]*bucket
	now       func() time.Time
	idleTTL   time.Duration
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

func NewRateLimiter(rate, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    float64(rate),
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
		now:     time.Now,
		idleTTL: time.Duration(float64(burst) / float64(rate) * float64(time.Second)),
	}
}

// Allow takes one token from key's bucket if one is available.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.burst, last: now}
		rl.buckets[key] = b
	}

	b.tokens += now.Sub(b.last).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep runs at most once per idleTTL. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleTTL {
		return
	}
	rl.lastSweep = now
	for key, b := range rl.buckets {
		if now.Sub(b.last) >= rl.idleTTL {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			metrics.RateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "code": "RATE_LIMITED", "error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
