package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/stableswap-engine/internal/metrics"
)

var unobservedPaths = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// route templates only; raw paths would give one series per pool id
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if _, skip := unobservedPaths[path]; skip {
			c.Next()
			return
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}
