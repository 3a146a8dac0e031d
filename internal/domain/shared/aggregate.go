package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot carries the identity, optimistic lock version and
// pending events of a portal aggregate (customer, contract, payment, ...).
// storedVersion is the version last read from or written to the database;
// zero means the aggregate was never stored.
type BaseAggregateRoot struct {
	BaseEntity
	Version       int           `gorm:"not null;default:1"`
	storedVersion int           `gorm:"-"`
	domainEvents  []DomainEvent `gorm:"-"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// Touch records a change: UpdatedAt moves to now and the version is bumped,
// so the next save is checked against the version read
func (a *BaseAggregateRoot) Touch() {
	a.BaseEntity.Touch()
	a.IncrementVersion()
}

// StoredVersion is the version the database row is expected to hold
func (a *BaseAggregateRoot) StoredVersion() int {
	return a.storedVersion
}

// IsStored reports whether the aggregate was read from or written to the database
func (a *BaseAggregateRoot) IsStored() bool {
	return a.storedVersion > 0
}

// MarkStored records that the current version was written
func (a *BaseAggregateRoot) MarkStored() {
	a.storedVersion = a.Version
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// RestoreAggregateRoot rebuilds an aggregate root read from storage at version
func RestoreAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:    entity,
		Version:       version,
		storedVersion: version,
	}
}

// CustomerAggregateRoot is an aggregate owned by a single customer.
// Every read and write of such an aggregate is scoped by CustomerID.
type CustomerAggregateRoot struct {
	BaseAggregateRoot
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index"`
}

// NewCustomerAggregateRoot creates a new customer-owned aggregate root
func NewCustomerAggregateRoot(customerID uuid.UUID) CustomerAggregateRoot {
	return CustomerAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		CustomerID:        customerID,
	}
}

// SetCreatedBy sets the creator user ID
func (c *CustomerAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	c.CreatedBy = &userID
}

// BelongsTo reports whether the aggregate is owned by the given customer
func (c *CustomerAggregateRoot) BelongsTo(customerID uuid.UUID) bool {
	return c.CustomerID == customerID
}
