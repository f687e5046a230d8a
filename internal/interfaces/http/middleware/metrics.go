package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolfee/backend/internal/infrastructure/telemetry"
)

// unmatchedRoute labels requests that did not match a registered route, so
// arbitrary paths cannot inflate metric cardinality
const unmatchedRoute = "unmatched"

// HTTPMetrics records request count and latency per route pattern.
// A nil recorder yields a pass-through middleware.
func HTTPMetrics(m *telemetry.HTTPMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.Record(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
