package customer

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scg/portal/internal/domain/shared"
)

// Type classifies a customer account
type Type string

const (
	TypeCustomer Type = "customer"
	TypeMain     Type = "main"     // The provider's own organization; its users include staff
	TypeReseller Type = "reseller"
)

// IsValid reports whether the type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeCustomer, TypeMain, TypeReseller:
		return true
	}
	return false
}

// Customer is a company that buys security services.
// Contracts, reports, engagements and users are all scoped by customer.
type Customer struct {
	shared.BaseAggregateRoot
	Name string `gorm:"type:varchar(100);not null"`
	Type Type   `gorm:"type:varchar(20);not null;default:'customer'"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(name string, customerType Type) (*Customer, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if customerType == "" {
		customerType = TypeCustomer
	}
	if !customerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_TYPE", "Customer type must be one of customer, main, reseller")
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              customerType,
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Update changes the customer's name and type
func (c *Customer) Update(name string, customerType Type) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	if !customerType.IsValid() {
		return shared.NewDomainError("INVALID_CUSTOMER_TYPE", "Customer type must be one of customer, main, reseller")
	}

	c.Name = name
	c.Type = customerType
	c.Touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// MarkDeleted records the deletion event before the repository removes the row
func (c *Customer) MarkDeleted() {
	c.AddDomainEvent(NewCustomerDeletedEvent(c))
}

// IsMain reports whether this is the provider's own organization
func (c *Customer) IsMain() bool {
	return c.Type == TypeMain
}

// CreatedOn returns the calendar date the customer was created, used to bound contract dates
func (c *Customer) CreatedOn() time.Time {
	y, m, d := c.CreatedAt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.CreatedAt.Location())
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 100 characters")
	}
	return nil
}
