package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterRefills(t *testing.T) {
	clock := time.Unix(0, 0)
	rl := NewRateLimiter(10, 2)
	rl.now = func() time.Time { return clock }

	require.True(t, rl.Allow("a"))
	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"))

	// 10/s refills one token every 100ms
	clock = clock.Add(50 * time.Millisecond)
	require.False(t, rl.Allow("a"))
	clock = clock.Add(60 * time.Millisecond)
	require.True(t, rl.Allow("a"))

	clock = clock.Add(time.Hour)
	require.True(t, rl.Allow("a"))
	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
}

func TestRateLimiterDropsIdleBuckets(t *testing.T) {
	clock := time.Unix(1_000, 0)
	rl := NewRateLimiter(10, 20)
	rl.now = func() time.Time { return clock }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		require.True(t, rl.Allow(ip))
	}
	require.Len(t, rl.buckets, 3)

	// 20 tokens at 10/s refill in 2s
	clock = clock.Add(time.Second)
	require.True(t, rl.Allow("10.0.0.1"))
	require.Len(t, rl.buckets, 3)

	clock = clock.Add(1500 * time.Millisecond)
	require.True(t, rl.Allow("10.0.0.4"))
	require.Len(t, rl.buckets, 2)
	require.Contains(t, rl.buckets, "10.0.0.1")
	require.Contains(t, rl.buckets, "10.0.0.4")

	// a dropped client starts again with a full bucket
	for i := 0; i < 20; i++ {
		require.True(t, rl.Allow("10.0.0.2"))
	}
	require.False(t, rl.Allow("10.0.0.2"))
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(1, 1).RateLimitMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), "RATE_LIMITED")
}
