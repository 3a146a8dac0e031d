package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
)

// ReportRepository defines persistence for reports and their findings
type ReportRepository interface {
	// FindByIDForService finds a report of a customer and service
	FindByIDForService(ctx context.Context, customerID, serviceID, id uuid.UUID) (*Report, error)

	// FindByService lists a customer's reports for a service, newest first
	FindByService(ctx context.Context, customerID, serviceID uuid.UUID, filter shared.Filter) ([]Report, int64, error)

	// CountByServices counts a customer's reports per service
	CountByServices(ctx context.Context, customerID uuid.UUID, serviceIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	// CreateNessus stores a Nessus report and its findings in batches
	CreateNessus(ctx context.Context, report *Report, findings []NessusFinding) error

	// CreateBurp stores a Burp report and its findings in batches
	CreateBurp(ctx context.Context, report *Report, findings []BurpFinding) error

	// UpdateSourceKey records where the raw upload was archived
	UpdateSourceKey(ctx context.Context, id uuid.UUID, key string) error

	// Delete removes a report and its findings
	Delete(ctx context.Context, id uuid.UUID) error

	NessusFindings(ctx context.Context, reportID uuid.UUID) ([]NessusFinding, error)
	BurpFindings(ctx context.Context, reportID uuid.UUID) ([]BurpFinding, error)

	// StatusCounts counts a report's findings per status
	StatusCounts(ctx context.Context, report *Report) (map[FindingStatus]int64, error)

	// SelectNessusFindings resolves a bulk selection to findings of the report
	SelectNessusFindings(ctx context.Context, reportID uuid.UUID, sel BulkSelection) ([]NessusFinding, error)

	// SelectBurpFindings resolves a bulk selection to findings of the report
	SelectBurpFindings(ctx context.Context, reportID uuid.UUID, sel BulkSelection) ([]BurpFinding, error)

	SaveNessusStatuses(ctx context.Context, findings []NessusFinding) error
	SaveBurpStatuses(ctx context.Context, findings []BurpFinding) error
}
