package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scg/portal/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "scg-portal",
		Enabled:     true,
	}
}

// TracingWithConfig wraps otelgin. The span is named "METHOD route",
// e.g. "GET /api/v1/customers/:customer_id/reports/:service_id".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector copies request_id, user_id and customer_id onto
// the request span once the rest of the chain has run. It must be placed
// after TracingWithConfig; otelgin ends the span when its chain returns.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpan(c, span)
		}
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	for _, key := range []string{logger.GinRequestIDKey, logger.GinUserIDKey, logger.GinCustomerIDKey} {
		if v := c.GetString(key); v != "" {
			span.SetAttributes(attribute.String(key, v))
		}
	}
}

// SpanErrorMarker marks the request span as failed for 4xx and 5xx
// responses. It must run after TracingWithConfig. The description is also
// set as error.message; otelgin clears the status description of 5xx spans.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		description := spanErrorDescription(status)
		span.SetStatus(codes.Error, description)
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String("error.message", description),
		)
	}
}

func spanErrorDescription(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Forbidden"
	case status == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}
