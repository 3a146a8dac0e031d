package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scg/portal/internal/infrastructure/telemetry"
)

// Profiling tags the profile samples of each request with its method,
// route pattern, controller and customer. Health and swagger requests
// are not tagged.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || strings.HasPrefix(path, "/swagger") {
			c.Next()
			return
		}

		route := c.FullPath()
		labels := map[string]string{
			telemetry.ProfilingLabelMethod:     c.Request.Method,
			telemetry.ProfilingLabelRoute:      route,
			telemetry.ProfilingLabelController: controllerOf(route),
			telemetry.ProfilingLabelCustomerID: c.Param(CustomerIDParam),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// controllerOf returns the first static segment after the API prefix,
// e.g. "customers" for /api/v1/customers/:customer_id/reports
func controllerOf(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api", strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
			continue
		case len(part) > 1 && part[0] == 'v' && part[1] >= '0' && part[1] <= '9':
			continue
		}
		return part
	}
	return ""
}
