package models

import (
	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ServiceModel is the persistence model for the Service domain entity.
type ServiceModel struct {
	AggregateModel
	ServiceCode  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(100);not null"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	IsActive     bool            `gorm:"not null;default:true"`
	ReportTypeID *uuid.UUID      `gorm:"type:uuid;index"`

	ReportType *ReportTypeModel `gorm:"foreignKey:ReportTypeID"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "services"
}

// ToDomain converts the persistence model to a domain Service entity.
func (m *ServiceModel) ToDomain() *catalog.Service {
	s := &catalog.Service{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ServiceCode:       m.ServiceCode,
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		IsActive:          m.IsActive,
		ReportTypeID:      m.ReportTypeID,
	}
	if m.ReportType != nil {
		s.ReportType = m.ReportType.ToDomain()
	}
	return s
}

// FromDomain populates the persistence model from a domain Service entity.
// The report type association is never written through the service.
func (m *ServiceModel) FromDomain(s *catalog.Service) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.ServiceCode = s.ServiceCode
	m.Name = s.Name
	m.Description = s.Description
	m.Price = s.Price
	m.IsActive = s.IsActive
	m.ReportTypeID = s.ReportTypeID
}

// ServiceModelFromDomain creates a new persistence model from a domain Service entity.
func ServiceModelFromDomain(s *catalog.Service) *ServiceModel {
	m := &ServiceModel{}
	m.FromDomain(s)
	return m
}

// ReportTypeModel is the persistence model for the ReportType domain entity.
type ReportTypeModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ReportTypeModel) TableName() string {
	return "report_types"
}

// ToDomain converts the persistence model to a domain ReportType entity.
func (m *ReportTypeModel) ToDomain() *catalog.ReportType {
	return &catalog.ReportType{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain ReportType entity.
func (m *ReportTypeModel) FromDomain(rt *catalog.ReportType) {
	m.FromDomainAggregateRoot(rt.BaseAggregateRoot)
	m.Name = rt.Name
	m.Description = rt.Description
	m.IsActive = rt.IsActive
}

// ReportTypeModelFromDomain creates a new persistence model from a domain ReportType entity.
func ReportTypeModelFromDomain(rt *catalog.ReportType) *ReportTypeModel {
	m := &ReportTypeModel{}
	m.FromDomain(rt)
	return m
}
