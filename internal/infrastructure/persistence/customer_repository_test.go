package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/customer"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGormDB opens gorm on a sqlmock connection with the postgres dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func newMockCustomerRepository(t *testing.T) (*GormCustomerRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockGormDB(t)
	return NewGormCustomerRepository(gormDB), mock, mockDB
}

var customerColumns = []string{"id", "created_at", "updated_at", "version", "name", "type"}

func TestGormCustomerRepository_FindByID(t *testing.T) {
	t.Run("finds existing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows(customerColumns).
			AddRow(customerID, now, now, 1, "Acme Bank", "customer")

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnRows(rows)

		c, err := repo.FindByID(context.Background(), customerID)

		require.NoError(t, err)
		assert.Equal(t, customerID, c.ID)
		assert.Equal(t, "Acme Bank", c.Name)
		assert.Equal(t, customer.TypeCustomer, c.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps record not found", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), customerID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindByIDs(t *testing.T) {
	t.Run("finds customers ordered by name", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		id1, id2 := uuid.New(), uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows(customerColumns).
			AddRow(id2, now, now, 1, "Alpha", "main").
			AddRow(id1, now, now, 1, "Beta", "reseller")

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id IN \(\$1,\$2\) ORDER BY name ASC`).
			WithArgs(id1, id2).
			WillReturnRows(rows)

		customers, err := repo.FindByIDs(context.Background(), []uuid.UUID{id1, id2})

		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.True(t, customers[0].IsMain())
		assert.Equal(t, customer.TypeReseller, customers[1].Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice for no ids", func(t *testing.T) {
		repo, _, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customers, err := repo.FindByIDs(context.Background(), nil)

		require.NoError(t, err)
		assert.NotNil(t, customers)
		assert.Empty(t, customers)
	})
}

func TestGormCustomerRepository_FindAll(t *testing.T) {
	repo, mock, mockDB := newMockCustomerRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE LOWER\(name\) LIKE \$1 AND type = \$2 ORDER BY name ASC LIMIT \$3 OFFSET \$4`).
		WithArgs(`%100\%%`, "customer", 10, 10).
		WillReturnRows(sqlmock.NewRows(customerColumns))

	customers, err := repo.FindAll(context.Background(), shared.Filter{
		Search:   "100%",
		Filters:  map[string]interface{}{"type": "customer"},
		Page:     2,
		PageSize: 10,
	})

	require.NoError(t, err)
	assert.Empty(t, customers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_Count(t *testing.T) {
	repo, mock, mockDB := newMockCustomerRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE type = \$1`).
		WithArgs("main").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.Count(context.Background(), shared.Filter{Filters: map[string]interface{}{"type": "main"}})

	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_Save(t *testing.T) {
	storedCustomer := func(t *testing.T) *customer.Customer {
		c, err := customer.NewCustomer("Acme Bank", customer.TypeCustomer)
		require.NoError(t, err)
		c.MarkStored()
		require.NoError(t, c.Update("Acme Bank AG", customer.TypeCustomer))
		return c
	}

	t.Run("updates the row at the version it was read", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		c := storedCustomer(t)
		mock.ExpectExec(`UPDATE "customers" SET .* WHERE \(?id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), c))
		assert.Equal(t, 2, c.StoredVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is an optimistic lock error", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		c := storedCustomer(t)
		mock.ExpectExec(`UPDATE "customers" SET .* WHERE \(?id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(context.Background(), c)
		assert.ErrorIs(t, err, shared.ErrOptimisticLock)
		assert.Equal(t, 1, c.StoredVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_Delete(t *testing.T) {
	t.Run("deletes existing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		mock.ExpectExec(`DELETE FROM "customers" WHERE id = \$1`).
			WithArgs(customerID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), customerID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing was deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		mock.ExpectExec(`DELETE FROM "customers" WHERE id = \$1`).
			WithArgs(customerID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), customerID), shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_ExistsByName(t *testing.T) {
	repo, mock, mockDB := newMockCustomerRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE LOWER\(name\) = \$1`).
		WithArgs("acme bank").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "  Acme Bank ")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
