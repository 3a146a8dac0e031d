//go:build integration

// Package integration runs the portal against a real PostgreSQL started with
// testcontainers. Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/scg/portal/internal/infrastructure/migration"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB is a migrated database connection
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// NewTestDB connects to the package's shared container, starting and
// migrating it on first use. Tables are truncated before the test runs.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	sharedContainerMu.Lock()
	if sharedContainer == nil {
		startContainer(t)
	}
	dsn := sharedContainerDSN
	sharedContainerMu.Unlock()

	db, sqlDB := connect(t, dsn)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, DSN: dsn, t: t}
	tdb.CleanTables()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return tdb
}

func startContainer(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("scg_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	_, sqlDB := connect(t, dsn)
	defer sqlDB.Close()

	m, err := migration.New(sqlDB, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up(), "Failed to apply the embedded schema")

	sharedContainer = container
	sharedContainerDSN = dsn
}

func connect(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	return db, sqlDB
}

// CleanTables truncates every table except the migration bookkeeping
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err)

	for _, table := range tables {
		require.NoError(tdb.t, tdb.DB.Exec(`TRUNCATE TABLE "`+table+`" CASCADE`).Error)
	}
}

// terminateSharedContainer stops the container started by NewTestDB
func terminateSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()
	if sharedContainer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = sharedContainer.Terminate(ctx)
	sharedContainer = nil
}
