package billing

import (
	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypePayment     = "Payment"
	EventTypePaymentRecorded = "PaymentRecorded"
)

// PaymentRecordedEvent is published after a payment is stored
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	ContractID    uuid.UUID       `json:"contract_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        Method          `json:"payment_method"`
	InvoiceNumber string          `json:"invoice_number"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, p.CustomerID),
		ContractID:      p.ContractID,
		Amount:          p.Amount,
		Method:          p.Method,
		InvoiceNumber:   p.InvoiceNumber,
	}
}
