package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockReportRepository(t *testing.T) (*GormReportRepository, sqlmock.Sqlmock, func()) {
	gormDB, mock, mockDB := newMockGormDB(t)
	return NewGormReportRepository(gormDB), mock, func() { mockDB.Close() }
}

func TestGormReportRepository_FindByIDForService(t *testing.T) {
	repo, mock, done := newMockReportRepository(t)
	defer done()

	customerID, serviceID, id := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "reports" WHERE customer_id = \$1 AND service_id = \$2 AND id = \$3`).
		WithArgs(customerID, serviceID, id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByIDForService(context.Background(), customerID, serviceID, id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReportRepository_CountByServices(t *testing.T) {
	repo, mock, done := newMockReportRepository(t)
	defer done()

	customerID, svcA, svcB := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT service_id, COUNT\(\*\) AS count FROM "reports" WHERE customer_id = \$1 AND service_id IN \(\$2,\$3\) GROUP BY`).
		WithArgs(customerID, svcA, svcB).
		WillReturnRows(sqlmock.NewRows([]string{"service_id", "count"}).AddRow(svcA.String(), 4))

	counts, err := repo.CountByServices(context.Background(), customerID, []uuid.UUID{svcA, svcB})

	require.NoError(t, err)
	assert.Equal(t, int64(4), counts[svcA])
	assert.Zero(t, counts[svcB])
	assert.NoError(t, mock.ExpectationsWereMet())

	empty, err := repo.CountByServices(context.Background(), customerID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormReportRepository_StatusCounts(t *testing.T) {
	t.Run("burp findings", func(t *testing.T) {
		repo, mock, done := newMockReportRepository(t)
		defer done()

		rep := &report.Report{Kind: catalog.ReportKindBurpSuite}
		rep.ID = uuid.New()
		mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "burpsuite_findings" WHERE report_id = \$1 GROUP BY`).
			WithArgs(rep.ID).
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
				AddRow("not_started", 7).
				AddRow("fixed", 2))

		counts, err := repo.StatusCounts(context.Background(), rep)

		require.NoError(t, err)
		assert.Equal(t, int64(7), counts[report.StatusNotStarted])
		assert.Equal(t, int64(2), counts[report.StatusFixed])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unsupported kind", func(t *testing.T) {
		repo, _, done := newMockReportRepository(t)
		defer done()

		_, err := repo.StatusCounts(context.Background(), &report.Report{Kind: catalog.ReportKindSupport})
		assert.Error(t, err)
	})
}

func TestGormReportRepository_SelectFindings(t *testing.T) {
	t.Run("single nessus finding missing", func(t *testing.T) {
		repo, mock, done := newMockReportRepository(t)
		defer done()

		reportID, findingID := uuid.New(), uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "nessus_findings" WHERE report_id = \$1 AND id = \$2`).
			WithArgs(reportID, findingID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.SelectNessusFindings(context.Background(), reportID, report.BulkSelection{Type: report.BulkSingle, FindingID: findingID})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("risk factor with no matches is empty", func(t *testing.T) {
		repo, mock, done := newMockReportRepository(t)
		defer done()

		reportID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "nessus_findings" WHERE report_id = \$1 AND signature_id IN \(SELECT id FROM "nessus_signatures" WHERE risk_factor = \$2\)`).
			WithArgs(reportID, "Critical").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		findings, err := repo.SelectNessusFindings(context.Background(), reportID, report.BulkSelection{Type: report.BulkRiskFactor, RiskFactor: "Critical"})

		require.NoError(t, err)
		assert.Empty(t, findings)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("burp severity", func(t *testing.T) {
		repo, mock, done := newMockReportRepository(t)
		defer done()

		reportID, findingID := uuid.New(), uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "burpsuite_findings" WHERE report_id = \$1 AND severity = \$2`).
			WithArgs(reportID, "High").
			WillReturnRows(sqlmock.NewRows([]string{"id", "report_id", "signature_id", "host", "severity", "status"}).
				AddRow(findingID, reportID, 2097920, "https://portal.example.com", "High", "in_review"))

		findings, err := repo.SelectBurpFindings(context.Background(), reportID, report.BulkSelection{Type: report.BulkSeverity, Severity: "High"})

		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, findingID, findings[0].ID)
		assert.Equal(t, report.StatusInReview, findings[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bulk type of the other scanner", func(t *testing.T) {
		repo, _, done := newMockReportRepository(t)
		defer done()

		_, err := repo.SelectBurpFindings(context.Background(), uuid.New(), report.BulkSelection{Type: report.BulkRiskFactor})
		assert.EqualError(t, err, "Invalid bulk type: risk_factor")
	})
}

func TestGormReportRepository_SaveNessusStatuses(t *testing.T) {
	repo, mock, done := newMockReportRepository(t)
	defer done()

	by := uuid.New()
	at := time.Now()
	f := report.NessusFinding{StatusTrail: report.StatusTrail{Status: report.StatusMitigated, ChangedAt: &at, ChangedBy: &by}}
	f.ID = uuid.New()
	f.UpdatedAt = at

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "nessus_findings" SET .* WHERE id = \$5`).
		WithArgs(report.StatusMitigated, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), f.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveNessusStatuses(context.Background(), []report.NessusFinding{f}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReportRepository_Delete(t *testing.T) {
	t.Run("removes findings and report", func(t *testing.T) {
		repo, mock, done := newMockReportRepository(t)
		defer done()

		id := uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "nessus_findings" WHERE report_id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 12))
		mock.ExpectExec(`DELETE FROM "burpsuite_findings" WHERE report_id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "reports" WHERE id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the report is gone", func(t *testing.T) {
		repo, mock, done := newMockReportRepository(t)
		defer done()

		id := uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "nessus_findings"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "burpsuite_findings"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "reports"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(context.Background(), id), shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormReportRepository_UpdateSourceKey(t *testing.T) {
	repo, mock, done := newMockReportRepository(t)
	defer done()

	id := uuid.New()
	mock.ExpectExec(`UPDATE "reports" SET .* WHERE id = \$3`).
		WithArgs("reports/a/b/scan.json", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSourceKey(context.Background(), id, "reports/a/b/scan.json")

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
