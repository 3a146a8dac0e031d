// Package testutil provides helpers shared by the portal's package tests and
// the integration suite.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB is a GORM handle backed by sqlmock
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens a postgres-dialect GORM connection on sqlmock.
// Unmet expectations fail the test during cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "unmet database expectations")
		_ = conn.Close()
	})
	return &MockDB{DB: db, Mock: mock, SqlDB: conn}
}

var testNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a stable UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(seed))
}

// TestCustomerID is the customer most fixtures belong to
func TestCustomerID() uuid.UUID {
	return NewTestUUID("test-customer")
}

// TestUserID is the acting user of most fixtures
func TestUserID() uuid.UUID {
	return NewTestUUID("test-user")
}

// Date parses a YYYY-MM-DD literal in UTC
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d
}

// WaitFor polls condition until it holds or timeout passes
func WaitFor(condition func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return condition()
}
