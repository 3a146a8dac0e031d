package catalog

import (
	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeService = "Service"

const (
	EventTypeServiceCreated      = "ServiceCreated"
	EventTypeServicePriceChanged = "ServicePriceChanged"
)

// ServiceCreatedEvent is published when a service is added to the catalog
type ServiceCreatedEvent struct {
	shared.BaseDomainEvent
	ServiceCode string          `json:"service_code"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
}

// NewServiceCreatedEvent creates a new ServiceCreatedEvent
func NewServiceCreatedEvent(s *Service) *ServiceCreatedEvent {
	return &ServiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServiceCreated, AggregateTypeService, s.ID, uuid.Nil),
		ServiceCode:     s.ServiceCode,
		Name:            s.Name,
		Price:           s.Price,
	}
}

// ServicePriceChangedEvent is published when a service's list price changes.
// Contract totals pick up the new price on their next recalculation.
type ServicePriceChangedEvent struct {
	shared.BaseDomainEvent
	Price decimal.Decimal `json:"price"`
}

// NewServicePriceChangedEvent creates a new ServicePriceChangedEvent
func NewServicePriceChangedEvent(s *Service) *ServicePriceChangedEvent {
	return &ServicePriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServicePriceChanged, AggregateTypeService, s.ID, uuid.Nil),
		Price:           s.Price,
	}
}
