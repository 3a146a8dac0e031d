package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the Contract aggregate.
type ContractModel struct {
	CustomerAggregateModel
	ContractNumber string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	StartDate      time.Time        `gorm:"type:date;not null"`
	EndDate        time.Time        `gorm:"type:date;not null"`
	Status         contract.Status  `gorm:"type:varchar(20);not null;default:'NOTSTARTED';index"`
	Discount       *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Taxes          decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:13"`
	SubTotal       decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Total          decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Balance        decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Notes          string           `gorm:"type:text"`

	Lines []ContractServiceModel `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract aggregate.
func (m *ContractModel) ToDomain() *contract.Contract {
	c := &contract.Contract{
		CustomerAggregateRoot: m.ToCustomerAggregateRoot(),
		ContractNumber:        m.ContractNumber,
		StartDate:             m.StartDate,
		EndDate:               m.EndDate,
		Status:                m.Status,
		Discount:              m.Discount,
		Taxes:                 m.Taxes,
		SubTotal:              m.SubTotal,
		Total:                 m.Total,
		Balance:               m.Balance,
		Notes:                 m.Notes,
		Lines:                 make([]contract.ContractService, 0, len(m.Lines)),
	}
	for i := range m.Lines {
		c.Lines = append(c.Lines, m.Lines[i].ToDomain())
	}
	return c
}

// FromDomain populates the persistence model from a domain Contract aggregate.
func (m *ContractModel) FromDomain(c *contract.Contract) {
	m.FromDomainCustomerAggregateRoot(c.CustomerAggregateRoot)
	m.ContractNumber = c.ContractNumber
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.Status = c.Status
	m.Discount = c.Discount
	m.Taxes = c.Taxes
	m.SubTotal = c.SubTotal
	m.Total = c.Total
	m.Balance = c.Balance
	m.Notes = c.Notes
	m.Lines = make([]ContractServiceModel, 0, len(c.Lines))
	for _, line := range c.Lines {
		m.Lines = append(m.Lines, ContractServiceModelFromDomain(line))
	}
}

// ContractModelFromDomain creates a new persistence model from a domain Contract aggregate.
func ContractModelFromDomain(c *contract.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}

// ContractServiceModel is one service line of a contract.
// Name and price are read from the service when loading.
type ContractServiceModel struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key"`
	ContractID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_contract_service,priority:1"`
	ServiceID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_contract_service,priority:2"`
	Quantity   int              `gorm:"not null;default:1"`
	Discount   *decimal.Decimal `gorm:"type:decimal(5,2)"`

	Service *ServiceModel `gorm:"foreignKey:ServiceID"`
}

// TableName returns the table name for GORM
func (ContractServiceModel) TableName() string {
	return "contract_services"
}

// ToDomain converts the persistence model to a domain contract line.
func (m *ContractServiceModel) ToDomain() contract.ContractService {
	line := contract.ContractService{
		ID:         m.ID,
		ContractID: m.ContractID,
		ServiceID:  m.ServiceID,
		Quantity:   m.Quantity,
		Discount:   m.Discount,
	}
	if m.Service != nil {
		line.ServiceName = m.Service.Name
		line.UnitPrice = m.Service.Price
	}
	return line
}

// ContractServiceModelFromDomain creates a persistence model from a domain contract line.
func ContractServiceModelFromDomain(line contract.ContractService) ContractServiceModel {
	return ContractServiceModel{
		ID:         line.ID,
		ContractID: line.ContractID,
		ServiceID:  line.ServiceID,
		Quantity:   line.Quantity,
		Discount:   line.Discount,
	}
}
