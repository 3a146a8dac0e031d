package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot converts AggregateModel to a domain BaseAggregateRoot
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.RestoreAggregateRoot(m.BaseModel.ToDomain(), m.Version)
}

// CustomerAggregateModel provides common persistence fields for customer-owned aggregate roots.
// It extends AggregateModel with the owning customer and creator info.
type CustomerAggregateModel struct {
	AggregateModel
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainCustomerAggregateRoot populates CustomerAggregateModel from domain CustomerAggregateRoot
func (m *CustomerAggregateModel) FromDomainCustomerAggregateRoot(c shared.CustomerAggregateRoot) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerID = c.CustomerID
	m.CreatedBy = c.CreatedBy
}

// ToCustomerAggregateRoot converts CustomerAggregateModel to a domain CustomerAggregateRoot
func (m *CustomerAggregateModel) ToCustomerAggregateRoot() shared.CustomerAggregateRoot {
	return shared.CustomerAggregateRoot{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		CreatedBy:         m.CreatedBy,
	}
}
