package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDs finds multiple customers by their IDs, ordered by name
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Customer, error)

	// FindAll finds all customers matching the filter.
	// Supported filter keys: "type".
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// Delete removes a customer; owned rows cascade in the database
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByName checks if a customer with the given name exists
	ExistsByName(ctx context.Context, name string) (bool, error)
}
