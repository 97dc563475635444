package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"guestbook/internal/observability"
)

// Metrics records request latency by matched route so that unknown paths
// collapse into a single series.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
