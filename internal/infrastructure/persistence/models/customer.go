package models

import (
	"github.com/scg/portal/internal/domain/customer"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	AggregateModel
	Name string        `gorm:"type:varchar(100);not null;uniqueIndex"`
	Type customer.Type `gorm:"type:varchar(20);not null;default:'customer'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Type:              m.Type,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *customer.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Type = c.Type
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
