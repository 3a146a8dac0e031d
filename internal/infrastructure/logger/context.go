package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey     contextKey = "logger"
	requestIDKey  contextKey = "request_id"
	customerIDKey contextKey = "customer_id"
	userIDKey     contextKey = "user_id"
)

// WithContext returns a new context carrying the logger
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithCustomerID stores the selected customer ID in the context
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	return context.WithValue(ctx, customerIDKey, customerID)
}

// WithUserID stores the authenticated user ID in the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// GetCustomerID retrieves the selected customer ID from context
func GetCustomerID(ctx context.Context) string {
	v, _ := ctx.Value(customerIDKey).(string)
	return v
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// ContextFields returns the correlation fields found in ctx:
// trace_id and span_id from the active span, then request, user and customer IDs.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if v := GetRequestID(ctx); v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v := GetUserID(ctx); v != "" {
		fields = append(fields, zap.String("user_id", v))
	}
	if v := GetCustomerID(ctx); v != "" {
		fields = append(fields, zap.String("customer_id", v))
	}
	return fields
}

// L returns the context logger enriched with the correlation fields.
//
//	logger.L(ctx).Info("Report uploaded", zap.String("report_id", id))
func L(ctx context.Context) *zap.Logger {
	return FromContext(ctx).With(ContextFields(ctx)...)
}
