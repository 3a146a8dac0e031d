package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Service is a billable offering that can be placed on a contract
type Service struct {
	shared.BaseAggregateRoot
	ServiceCode  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(100);not null"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	IsActive     bool            `gorm:"not null;default:true"`
	ReportTypeID *uuid.UUID      `gorm:"type:uuid;index"`

	// ReportType is loaded with the service when available
	ReportType *ReportType `gorm:"-"`
}

// TableName returns the table name for GORM
func (Service) TableName() string {
	return "services"
}

// NewService creates a new active service
func NewService(code, name string, price decimal.Decimal) (*Service, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if err := validateServiceCode(code); err != nil {
		return nil, err
	}
	if err := validateServiceName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	s := &Service{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ServiceCode:       code,
		Name:              name,
		Price:             price.Round(2),
		IsActive:          true,
	}
	s.AddDomainEvent(NewServiceCreatedEvent(s))
	return s, nil
}

// Update changes name, description and price
func (s *Service) Update(name, description string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if err := validateServiceName(name); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}
	priceChanged := !s.Price.Equal(price.Round(2))

	s.Name = name
	s.Description = description
	s.Price = price.Round(2)
	s.touch()

	if priceChanged {
		s.AddDomainEvent(NewServicePriceChangedEvent(s))
	}
	return nil
}

// UpdateCode changes the service code
func (s *Service) UpdateCode(code string) error {
	code = strings.TrimSpace(code)
	if err := validateServiceCode(code); err != nil {
		return err
	}
	s.ServiceCode = code
	s.touch()
	return nil
}

// SetReportType links the service to a report type, or clears it with nil
func (s *Service) SetReportType(rt *ReportType) {
	if rt == nil {
		s.ReportTypeID = nil
		s.ReportType = nil
	} else {
		id := rt.ID
		s.ReportTypeID = &id
		s.ReportType = rt
	}
	s.touch()
}

// Activate makes the service available for new contracts
func (s *Service) Activate() error {
	if s.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Service is already active")
	}
	s.IsActive = true
	s.touch()
	return nil
}

// Deactivate withdraws the service from new contracts
func (s *Service) Deactivate() error {
	if !s.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Service is already inactive")
	}
	s.IsActive = false
	s.touch()
	return nil
}

// ReportKind returns the kind of reports this service produces
func (s *Service) ReportKind() ReportKind {
	if s.ReportType == nil {
		return ReportKindUnknown
	}
	return s.ReportType.Kind()
}

func (s *Service) touch() {
	s.Touch()
}

func validateServiceCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Service code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Service code cannot exceed 50 characters")
	}
	return nil
}

func validateServiceName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Service name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Service name cannot exceed 100 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Service price cannot be negative")
	}
	return nil
}
