package contract

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
)

// ContractRepository defines the interface for contract persistence.
// Contracts are always loaded with their lines; line ServiceName and UnitPrice
// come from the services table.
type ContractRepository interface {
	// FindByID finds a contract by ID regardless of owner
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByIDForCustomer finds a contract by ID within a customer
	FindByIDForCustomer(ctx context.Context, customerID, id uuid.UUID) (*Contract, error)

	// FindAllForCustomer lists a customer's contracts.
	// Supported filter keys: "status".
	FindAllForCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Contract, error)

	// CountForCustomer counts a customer's contracts matching the filter
	CountForCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (int64, error)

	// FindByStatuses lists a customer's contracts in any of the given statuses
	FindByStatuses(ctx context.Context, customerID uuid.UUID, statuses []Status) ([]Contract, error)

	// FindByService lists a customer's contracts that contain the service
	FindByService(ctx context.Context, customerID, serviceID uuid.UUID) ([]Contract, error)

	// FindIDsWithService lists every contract containing the service, across customers
	FindIDsWithService(ctx context.Context, serviceID uuid.UUID) ([]uuid.UUID, error)

	// FindLine finds a single contract line by ID
	FindLine(ctx context.Context, lineID uuid.UUID) (*ContractService, error)

	// Save creates or updates a contract and replaces its lines
	Save(ctx context.Context, contract *Contract) error

	// SaveTotals persists only the computed totals
	SaveTotals(ctx context.Context, contract *Contract) error

	// Delete removes a contract; reports referencing it keep a null contract
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByNumber checks if a contract number is taken
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}
