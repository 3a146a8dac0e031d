package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
)

// ServiceRepository defines the interface for service persistence
type ServiceRepository interface {
	// FindByID finds a service by ID, with its report type loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)

	// FindByIDs finds services by IDs, with report types loaded
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Service, error)

	// FindAll finds services matching the filter.
	// Supported filter keys: "is_active", "report_type_id".
	FindAll(ctx context.Context, filter shared.Filter) ([]Service, error)

	// Count counts services matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a service
	Save(ctx context.Context, service *Service) error

	// Delete removes a service
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByCode checks if a service code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// ReportTypeRepository defines the interface for report type persistence
type ReportTypeRepository interface {
	// FindByID finds a report type by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ReportType, error)

	// FindAll lists report types ordered by name
	FindAll(ctx context.Context, filter shared.Filter) ([]ReportType, error)

	// Count counts report types matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a report type
	Save(ctx context.Context, rt *ReportType) error

	// Delete removes a report type; services referencing it keep a null report type
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByName checks if a report type name is taken
	ExistsByName(ctx context.Context, name string) (bool, error)
}
