package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/billing"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Contract DTOs
// =============================================================================

// ContractLineInput places a service on a contract
type ContractLineInput struct {
	ServiceID uuid.UUID        `json:"service_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	Discount  *decimal.Decimal `json:"discount"`
}

// CreateContractRequest represents a request to create a contract
type CreateContractRequest struct {
	StartDate string              `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string              `json:"end_date" binding:"required,datetime=2006-01-02"`
	Status    string              `json:"status" binding:"omitempty,oneof=TRIAL NOTSTARTED ACTIVE COMPLETED EXPIRED CANCELLED"`
	Discount  *decimal.Decimal    `json:"discount"`
	Taxes     *decimal.Decimal    `json:"taxes"`
	Notes     string              `json:"notes"`
	Lines     []ContractLineInput `json:"lines" binding:"omitempty,dive"`
	CreatedBy *uuid.UUID          `json:"-"`
}

// UpdateContractRequest replaces a contract's header and lines.
// Lines absent from the request are removed.
type UpdateContractRequest struct {
	StartDate string              `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string              `json:"end_date" binding:"required,datetime=2006-01-02"`
	Status    string              `json:"status" binding:"omitempty,oneof=TRIAL NOTSTARTED ACTIVE COMPLETED EXPIRED CANCELLED"`
	Discount  *decimal.Decimal    `json:"discount"`
	Taxes     *decimal.Decimal    `json:"taxes"`
	Notes     string              `json:"notes"`
	Lines     []ContractLineInput `json:"lines" binding:"omitempty,dive"`
}

// ChangeStatusRequest moves a contract to another status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ContractListFilter represents query parameters for listing contracts
type ContractListFilter struct {
	Status   string `form:"status"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ContractLineResponse is a contract line with its computed amounts
type ContractLineResponse struct {
	ID                 uuid.UUID        `json:"id"`
	ServiceID          uuid.UUID        `json:"service_id"`
	ServiceName        string           `json:"service_name"`
	UnitPrice          decimal.Decimal  `json:"unit_price"`
	Quantity           int              `json:"quantity"`
	Discount           *decimal.Decimal `json:"discount,omitempty"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	DiscountedSubtotal decimal.Decimal  `json:"discounted_subtotal"`
	Total              decimal.Decimal  `json:"total"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID             uuid.UUID              `json:"id"`
	CustomerID     uuid.UUID              `json:"customer_id"`
	ContractNumber string                 `json:"contract_number"`
	StartDate      string                 `json:"start_date"`
	EndDate        string                 `json:"end_date"`
	Status         string                 `json:"status"`
	StatusLabel    string                 `json:"status_label"`
	Discount       *decimal.Decimal       `json:"discount,omitempty"`
	Taxes          decimal.Decimal        `json:"taxes"`
	TaxesAmount    decimal.Decimal        `json:"taxes_amount"`
	SubTotal       decimal.Decimal        `json:"sub_total"`
	Total          decimal.Decimal        `json:"total"`
	Balance        decimal.Decimal        `json:"balance"`
	Notes          string                 `json:"notes"`
	Lines          []ContractLineResponse `json:"lines,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// ContractDetailResponse is a contract with its payments
type ContractDetailResponse struct {
	ContractResponse
	TotalPaid decimal.Decimal   `json:"total_paid"`
	Payments  []PaymentResponse `json:"payments"`
}

// ContractTotalsResponse carries the refreshed totals after a line change
type ContractTotalsResponse struct {
	ContractID  uuid.UUID       `json:"contract_id"`
	SubTotal    decimal.Decimal `json:"sub_total"`
	TaxesAmount decimal.Decimal `json:"taxes_amount"`
	Total       decimal.Decimal `json:"total"`
	Balance     decimal.Decimal `json:"balance"`
}

// ToContractResponse converts a domain contract; lines are included when withLines is set
func ToContractResponse(c *contract.Contract, withLines bool) ContractResponse {
	resp := ContractResponse{
		ID:             c.ID,
		CustomerID:     c.CustomerID,
		ContractNumber: c.ContractNumber,
		StartDate:      shared.FormatDate(c.StartDate),
		EndDate:        shared.FormatDate(c.EndDate),
		Status:         string(c.Status),
		StatusLabel:    c.Status.Label(),
		Discount:       c.Discount,
		Taxes:          c.Taxes,
		TaxesAmount:    c.TaxesAmount(),
		SubTotal:       c.SubTotal,
		Total:          c.Total,
		Balance:        c.Balance,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if withLines {
		resp.Lines = make([]ContractLineResponse, len(c.Lines))
		for i := range c.Lines {
			line := &c.Lines[i]
			amounts := c.LineAmounts(line)
			resp.Lines[i] = ContractLineResponse{
				ID:                 line.ID,
				ServiceID:          line.ServiceID,
				ServiceName:        line.ServiceName,
				UnitPrice:          line.UnitPrice,
				Quantity:           line.Quantity,
				Discount:           line.Discount,
				Subtotal:           amounts.Subtotal.Round(2),
				DiscountedSubtotal: amounts.DiscountedSubtotal.Round(2),
				Total:              amounts.Total,
			}
		}
	}
	return resp
}

// ToContractTotalsResponse extracts the totals of a contract
func ToContractTotalsResponse(c *contract.Contract) ContractTotalsResponse {
	return ContractTotalsResponse{
		ContractID:  c.ID,
		SubTotal:    c.SubTotal,
		TaxesAmount: c.TaxesAmount(),
		Total:       c.Total,
		Balance:     c.Balance,
	}
}

// =============================================================================
// Payment DTOs
// =============================================================================

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	ContractID    uuid.UUID       `json:"contract_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate   string          `json:"payment_date" binding:"required,datetime=2006-01-02"`
	Method        string          `json:"payment_method" binding:"required,oneof=CASH CREDIT_CARD DEPOSIT OTHER"`
	InvoiceNumber string          `json:"invoice_number" binding:"required,max=50"`
	Notes         string          `json:"notes"`
	CreatedBy     *uuid.UUID      `json:"-"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	ContractID    uuid.UUID       `json:"contract_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	Method        string          `json:"payment_method"`
	InvoiceNumber string          `json:"invoice_number"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		CustomerID:    p.CustomerID,
		ContractID:    p.ContractID,
		Amount:        p.Amount,
		PaymentDate:   shared.FormatDate(p.PaymentDate),
		Method:        string(p.Method),
		InvoiceNumber: p.InvoiceNumber,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}
