package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByContract lists payments of a contract, newest payment date first
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]Payment, error)

	// SumByContract totals the payments of a contract
	SumByContract(ctx context.Context, contractID uuid.UUID) (decimal.Decimal, error)

	Save(ctx context.Context, payment *Payment) error

	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)
}
