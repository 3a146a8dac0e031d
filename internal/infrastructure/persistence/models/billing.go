package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment domain entity.
type PaymentModel struct {
	CustomerAggregateModel
	ContractID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentDate   time.Time       `gorm:"type:date;not null"`
	Method        billing.Method  `gorm:"type:varchar(20);not null"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		CustomerAggregateRoot: m.ToCustomerAggregateRoot(),
		ContractID:            m.ContractID,
		Amount:                m.Amount,
		PaymentDate:           m.PaymentDate,
		Method:                m.Method,
		InvoiceNumber:         m.InvoiceNumber,
		Notes:                 m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainCustomerAggregateRoot(p.CustomerAggregateRoot)
	m.ContractID = p.ContractID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.InvoiceNumber = p.InvoiceNumber
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
