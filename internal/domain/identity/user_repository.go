package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
// Every finder loads CustomerIDs.
type UserRepository interface {
	// Create creates a new user and its customer memberships
	Create(ctx context.Context, user *User) error

	// Update updates an existing user and replaces its memberships
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by lower-cased e-mail
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByCustomer lists the members of a customer with pagination
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter UserFilter) ([]*User, int64, error)

	// EmailsByIDs maps user IDs to e-mail addresses
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// ExistsByEmail checks if an email already exists, ignoring excludeID
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search keyword for email, first or last name
	Keyword string

	// Include staff members in the result
	IncludeStaff bool

	// Filter by active flag
	IsActive *bool

	Page     int
	PageSize int

	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewUserFilter creates a new UserFilter with default values
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}
