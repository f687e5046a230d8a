package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/schoolfee/backend/internal/infrastructure/telemetry"
)

// Profiling label keys
const (
	ProfilingLabelRoute    = "route"
	ProfilingLabelResource = "resource"
	ProfilingLabelMethod   = "method"
	ProfilingLabelTenantID = "tenant_id"
)

// Profiling attaches pprof labels to the handler goroutine so continuous
// profiles can be sliced by route and school. It must run after the JWT
// middleware for the tenant label to be present.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		labels := []string{
			ProfilingLabelMethod, c.Request.Method,
			ProfilingLabelRoute, route,
		}
		if resource := resourceFromRoute(route); resource != "" {
			labels = append(labels, ProfilingLabelResource, resource)
		}
		if p, ok := GetPrincipal(c); ok {
			labels = append(labels, ProfilingLabelTenantID, p.TenantID.String())
		}

		telemetry.WithLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}, labels...)
	}
}

// resourceFromRoute returns the first static segment after /api/vN,
// e.g. "/api/v1/fee-payments/:id/receipt" -> "fee-payments"
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
