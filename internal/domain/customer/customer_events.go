package customer

import (
	"github.com/scg/portal/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
	EventTypeCustomerDeleted = "CustomerDeleted"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, c.ID),
		Name:            c.Name,
		Type:            c.Type,
	}
}

// CustomerUpdatedEvent is published when a customer is renamed or retyped
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(c *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, c.ID, c.ID),
		Name:            c.Name,
		Type:            c.Type,
	}
}

// CustomerDeletedEvent is published when a customer and its owned data are removed
type CustomerDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCustomerDeletedEvent creates a new CustomerDeletedEvent
func NewCustomerDeletedEvent(c *Customer) *CustomerDeletedEvent {
	return &CustomerDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerDeleted, AggregateTypeCustomer, c.ID, c.ID),
		Name:            c.Name,
	}
}
