package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// queryStartKey is the statement instance key of the query start time
const queryStartKey = "scg_timing:start"

// DBTracing adds otelgorm spans to every query and flags slow ones
type DBTracing struct {
	slowThreshold time.Duration
	fullSQL       bool
	logger        *zap.Logger
}

// NewDBTracing creates the plugin. Query variables stay out of spans unless fullSQL is set.
func NewDBTracing(slowThreshold time.Duration, fullSQL bool, logger *zap.Logger) *DBTracing {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	return &DBTracing{slowThreshold: slowThreshold, fullSQL: fullSQL, logger: logger}
}

// Register installs otelgorm and the timing callbacks on db
func (t *DBTracing) Register(db *gorm.DB) error {
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !t.fullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	// Before hooks run ahead of otelgorm's; after hooks run while its span is still open.
	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("otel:before:create").Register("scg_timing:before_create", t.before) },
		func() error { return cb.Query().Before("otel:before:select").Register("scg_timing:before_query", t.before) },
		func() error { return cb.Update().Before("otel:before:update").Register("scg_timing:before_update", t.before) },
		func() error { return cb.Delete().Before("otel:before:delete").Register("scg_timing:before_delete", t.before) },
		func() error { return cb.Row().Before("otel:before:row").Register("scg_timing:before_row", t.before) },
		func() error { return cb.Raw().Before("otel:before:raw").Register("scg_timing:before_raw", t.before) },
		func() error { return cb.Create().Before("otel:after:create").Register("scg_timing:after_create", t.after) },
		func() error { return cb.Query().Before("otel:after:select").Register("scg_timing:after_query", t.after) },
		func() error { return cb.Update().Before("otel:after:update").Register("scg_timing:after_update", t.after) },
		func() error { return cb.Delete().Before("otel:after:delete").Register("scg_timing:after_delete", t.after) },
		func() error { return cb.Row().Before("otel:after:row").Register("scg_timing:after_row", t.after) },
		func() error { return cb.Raw().Before("otel:after:raw").Register("scg_timing:after_raw", t.after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register query timing callback: %w", err)
		}
	}
	t.logger.Info("Database tracing enabled",
		zap.Bool("full_sql", t.fullSQL),
		zap.Duration("slow_query_threshold", t.slowThreshold))
	return nil
}

func (t *DBTracing) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (t *DBTracing) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) && span.IsRecording() {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= t.slowThreshold {
		return
	}
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	t.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("duration", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected))
}
