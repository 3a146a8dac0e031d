package engagement

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EngagementRepository defines persistence for engagements and time entries
type EngagementRepository interface {
	// HighestNumber returns the highest engagement number, or "" when none exist
	HighestNumber(ctx context.Context) (string, error)

	FindByIDForCustomer(ctx context.Context, customerID, id uuid.UUID) (*Engagement, error)

	// FindAllForCustomer lists engagements newest first.
	// Supported filter keys: "contract_id", "status", "priority".
	FindAllForCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Engagement, int64, error)

	// FindByContractService lists the engagements of one support line with their hours
	FindByContractService(ctx context.Context, contractServiceID uuid.UUID, sort SupportSort) ([]EngagementWithHours, error)

	Save(ctx context.Context, e *Engagement) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ServiceHours sums hours over every engagement of a support line, ignoring excludeEntryID
	ServiceHours(ctx context.Context, contractServiceID uuid.UUID, excludeEntryID *uuid.UUID) (decimal.Decimal, error)

	// EngagementHours sums hours of one engagement
	EngagementHours(ctx context.Context, engagementID uuid.UUID) (decimal.Decimal, error)

	// CountByContractService counts engagements per support line
	CountByContractService(ctx context.Context, contractServiceIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	// HoursByContractService sums hours per support line
	HoursByContractService(ctx context.Context, contractServiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// StatusCounts counts the engagements of a support line per status
	StatusCounts(ctx context.Context, contractServiceID uuid.UUID) (map[Status]int64, error)

	// DailyHours returns the hours logged per date on a support line, oldest first
	DailyHours(ctx context.Context, contractServiceID uuid.UUID) ([]DailyHours, error)

	// TimeEntries lists the entries of an engagement, newest date first
	TimeEntries(ctx context.Context, engagementID uuid.UUID) ([]TimeEntry, error)

	FindTimeEntry(ctx context.Context, id uuid.UUID) (*TimeEntry, error)
	SaveTimeEntry(ctx context.Context, entry *TimeEntry) error
	DeleteTimeEntry(ctx context.Context, id uuid.UUID) error
}
