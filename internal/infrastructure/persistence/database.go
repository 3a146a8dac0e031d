package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/scg/portal/internal/infrastructure/config"
	"github.com/scg/portal/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection
type Database struct {
	DB *gorm.DB
}

// Options tunes how the connection logs and which plugins it loads
type Options struct {
	Logger        *zap.Logger
	LogLevel      string // silent, error, warn, info
	SlowThreshold time.Duration
	Plugins       []gorm.Plugin
}

// NewDatabase connects to PostgreSQL and configures the pool
func NewDatabase(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	db, err := Open(postgres.Open(cfg.DSN()), opts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Open opens a GORM connection on any dialector with the portal's settings.
// Tests use it with sqlite and sqlmock.
func Open(dialector gorm.Dialector, opts Options) (*Database, error) {
	gormCfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	}
	if opts.Logger != nil {
		gormOpts := []logger.GormLoggerOption{}
		if opts.SlowThreshold > 0 {
			gormOpts = append(gormOpts, logger.WithSlowThreshold(opts.SlowThreshold))
		}
		gormCfg.Logger = logger.NewGormLogger(opts.Logger, logger.MapGormLogLevel(opts.LogLevel), gormOpts...)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	for _, p := range opts.Plugins {
		if err := db.Use(p); err != nil {
			return nil, fmt.Errorf("failed to register gorm plugin %s: %w", p.Name(), err)
		}
	}
	return &Database{DB: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
