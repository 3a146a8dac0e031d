package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const metricsStartKey = "scg_metrics:start"

// DBMetrics records query counts, latency and connection pool usage
type DBMetrics struct {
	poolConnections    *Gauge
	poolConnectionsMax *Gauge
	queryTotal         *Counter
	queryDuration      *Histogram
	slowQueryTotal     *Counter

	slowThreshold time.Duration
	poolInterval  time.Duration
	logger        *zap.Logger
	sqlDB         *sql.DB

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDBMetrics creates the instruments on meter
func NewDBMetrics(meter metric.Meter, slowThreshold, poolInterval time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	if poolInterval <= 0 {
		poolInterval = 15 * time.Second
	}
	m := &DBMetrics{
		slowThreshold: slowThreshold,
		poolInterval:  poolInterval,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}

	var err error
	if m.poolConnections, err = NewGauge(meter, "db_pool_connections",
		"Number of connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	if m.poolConnectionsMax, err = NewGauge(meter, "db_pool_connections_max",
		"Maximum number of open connections", "{connection}"); err != nil {
		return nil, err
	}
	if m.queryTotal, err = NewCounter(meter, "db_query_total",
		"Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total",
		"Queries slower than the slow query threshold", "{query}"); err != nil {
		return nil, err
	}
	return m, nil
}

// Register installs the query callbacks on db and remembers its pool
func (m *DBMetrics) Register(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	m.sqlDB = sqlDB

	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("scg_metrics:before_create", m.before) },
		func() error { return cb.Query().Before("gorm:query").Register("scg_metrics:before_query", m.before) },
		func() error { return cb.Update().Before("gorm:update").Register("scg_metrics:before_update", m.before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("scg_metrics:before_delete", m.before) },
		func() error { return cb.Row().Before("gorm:row").Register("scg_metrics:before_row", m.before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("scg_metrics:before_raw", m.before) },
		func() error { return cb.Create().After("gorm:create").Register("scg_metrics:after_create", m.afterOp("INSERT")) },
		func() error { return cb.Query().After("gorm:query").Register("scg_metrics:after_query", m.afterOp("SELECT")) },
		func() error { return cb.Update().After("gorm:update").Register("scg_metrics:after_update", m.afterOp("UPDATE")) },
		func() error { return cb.Delete().After("gorm:delete").Register("scg_metrics:after_delete", m.afterOp("DELETE")) },
		func() error { return cb.Row().After("gorm:row").Register("scg_metrics:after_row", m.afterOp("")) },
		func() error { return cb.Raw().After("gorm:raw").Register("scg_metrics:after_raw", m.afterOp("")) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	m.logger.Info("Database metrics registered",
		zap.Duration("slow_query_threshold", m.slowThreshold),
		zap.Duration("pool_stats_interval", m.poolInterval))
	return nil
}

func (m *DBMetrics) before(db *gorm.DB) {
	db.InstanceSet(metricsStartKey, time.Now())
}

// afterOp records the finished statement. An empty operation is read from the SQL.
func (m *DBMetrics) afterOp(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		op := operation
		if op == "" {
			op = detectOperation(db.Statement.SQL.String())
		}
		var elapsed time.Duration
		if v, ok := db.InstanceGet(metricsStartKey); ok {
			if start, ok := v.(time.Time); ok {
				elapsed = time.Since(start)
			}
		}
		m.RecordQuery(ctx, op, db.Statement.Table, elapsed)
	}
}

// RecordQuery counts one query and its latency
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, elapsed time.Duration) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "OTHER"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(operation))
	if elapsed > m.slowThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

func detectOperation(query string) string {
	query = strings.ToUpper(strings.TrimSpace(query))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(query, op) {
			return op
		}
	}
	return "OTHER"
}

// StartPoolStats samples the connection pool until Stop or ctx ends
func (m *DBMetrics) StartPoolStats(ctx context.Context) {
	if m.sqlDB == nil {
		m.logger.Warn("Pool stats not started: database not registered")
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.poolInterval)
		defer ticker.Stop()

		m.collectPoolStats(ctx)
		for {
			select {
			case <-ticker.C:
				m.collectPoolStats(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *DBMetrics) collectPoolStats(ctx context.Context) {
	stats := m.sqlDB.Stats()
	m.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool sampling. Safe to call more than once.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}
