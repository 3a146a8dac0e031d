package billing

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Method is how a payment was made
type Method string

const (
	MethodCash       Method = "CASH"
	MethodCreditCard Method = "CREDIT_CARD"
	MethodDeposit    Method = "DEPOSIT"
	MethodOther      Method = "OTHER"
)

// IsValid reports whether the method is known
func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDeposit, MethodOther:
		return true
	}
	return false
}

// Payment is money received against a contract
type Payment struct {
	shared.CustomerAggregateRoot
	ContractID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentDate   time.Time       `gorm:"type:date;not null"`
	Method        Method          `gorm:"type:varchar(20);not null"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment records a payment on a contract owned by customerID
func NewPayment(customerID, contractID uuid.UUID, amount decimal.Decimal, paidOn time.Time, method Method, invoiceNumber, notes string) (*Payment, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Invalid payment method")
	}
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" || utf8.RuneCountInString(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number must be between 1 and 50 characters")
	}
	if paidOn.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}

	p := &Payment{
		CustomerAggregateRoot: shared.NewCustomerAggregateRoot(customerID),
		ContractID:            contractID,
		Amount:                amount.Round(2),
		PaymentDate:           paidOn,
		Method:                method,
		InvoiceNumber:         invoiceNumber,
		Notes:                 notes,
	}
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// SumAmounts adds up the amounts of the given payments
func SumAmounts(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
