package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a contract
type Status string

const (
	StatusTrial      Status = "TRIAL"
	StatusNotStarted Status = "NOTSTARTED"
	StatusActive     Status = "ACTIVE"
	StatusCompleted  Status = "COMPLETED"
	StatusExpired    Status = "EXPIRED"
	StatusCancelled  Status = "CANCELLED"
)

var statusLabels = map[Status]string{
	StatusTrial:      "Trial",
	StatusNotStarted: "Not Started",
	StatusActive:     "Active",
	StatusCompleted:  "Completed",
	StatusExpired:    "Expired",
	StatusCancelled:  "Cancelled",
}

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label of the status
func (s Status) Label() string {
	return statusLabels[s]
}

// Statuses under which reports may be uploaded against a contract
var UploadableStatuses = []Status{StatusTrial, StatusActive}

// Statuses whose services appear in the report selection
var ReportingStatuses = []Status{StatusTrial, StatusActive, StatusCompleted, StatusExpired}

// Statuses offered when opening a support engagement
var EngagementStatuses = []Status{StatusActive, StatusTrial}

// DefaultTaxes is the tax percentage applied when none is given
var DefaultTaxes = decimal.NewFromInt(13)

var hundred = decimal.NewFromInt(100)

// ContractNumberLayout formats the human-readable contract number
const ContractNumberLayout = "C-20060102-150405"

// GenerateContractNumber returns the contract number for the given instant
func GenerateContractNumber(now time.Time) string {
	return now.Format(ContractNumberLayout)
}

// Contract is an agreement between the provider and a customer for a set of services.
// Totals are derived from the lines, the discounts, the tax rate and the payments received.
type Contract struct {
	shared.CustomerAggregateRoot
	ContractNumber string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	StartDate      time.Time        `gorm:"type:date;not null"`
	EndDate        time.Time        `gorm:"type:date;not null"`
	Status         Status           `gorm:"type:varchar(20);not null;default:'NOTSTARTED'"`
	Discount       *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Taxes          decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:13"`
	SubTotal       decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Total          decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Balance        decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	Notes          string           `gorm:"type:text"`
	Lines          []ContractService
}

// TableName returns the table name for GORM
func (Contract) TableName() string {
	return "contracts"
}

// NewContract creates a contract in NOTSTARTED status.
// customerCreatedOn bounds the start date.
func NewContract(customerID uuid.UUID, customerCreatedOn time.Time, number string, start, end time.Time, discount *decimal.Decimal, taxes *decimal.Decimal, notes string) (*Contract, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if err := validateDates(customerCreatedOn, start, end); err != nil {
		return nil, err
	}
	rate := DefaultTaxes
	if taxes != nil {
		rate = *taxes
	}
	if err := validatePercentage("INVALID_TAXES", "Taxes", &rate); err != nil {
		return nil, err
	}
	if err := validatePercentage("INVALID_DISCOUNT", "Discount", discount); err != nil {
		return nil, err
	}

	c := &Contract{
		CustomerAggregateRoot: shared.NewCustomerAggregateRoot(customerID),
		ContractNumber:        number,
		StartDate:             dateOnly(start),
		EndDate:               dateOnly(end),
		Status:                StatusNotStarted,
		Discount:              discount,
		Taxes:                 rate,
		SubTotal:              decimal.Zero,
		Total:                 decimal.Zero,
		Balance:               decimal.Zero,
		Notes:                 notes,
		Lines:                 make([]ContractService, 0),
	}
	c.AddDomainEvent(NewContractCreatedEvent(c))
	return c, nil
}

// UpdateTerms changes dates, pricing and notes.
// Totals are not recomputed here; call Recalculate afterwards.
func (c *Contract) UpdateTerms(customerCreatedOn time.Time, start, end time.Time, discount *decimal.Decimal, taxes decimal.Decimal, notes string) error {
	if err := validateDates(customerCreatedOn, start, end); err != nil {
		return err
	}
	if err := validatePercentage("INVALID_TAXES", "Taxes", &taxes); err != nil {
		return err
	}
	if err := validatePercentage("INVALID_DISCOUNT", "Discount", discount); err != nil {
		return err
	}
	c.StartDate = dateOnly(start)
	c.EndDate = dateOnly(end)
	c.Discount = discount
	c.Taxes = taxes
	c.Notes = notes
	c.touch()
	return nil
}

// ChangeStatus moves the contract to any valid status
func (c *Contract) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid status")
	}
	if c.Status == status {
		return nil
	}
	old := c.Status
	c.Status = status
	c.touch()
	c.AddDomainEvent(NewContractStatusChangedEvent(c, old))
	return nil
}

// AddLine places a service on the contract.
// A service may appear at most once per contract.
func (c *Contract) AddLine(serviceID uuid.UUID, serviceName string, unitPrice decimal.Decimal, quantity int, discount *decimal.Decimal) (*ContractService, error) {
	if c.LineForService(serviceID) != nil {
		return nil, shared.NewDomainError("DUPLICATE_SERVICE", fmt.Sprintf("Service '%s' is already on this contract", serviceName))
	}
	line, err := newContractService(c.ID, serviceID, serviceName, unitPrice, quantity, discount)
	if err != nil {
		return nil, err
	}
	c.Lines = append(c.Lines, *line)
	c.touch()
	return &c.Lines[len(c.Lines)-1], nil
}

// UpdateLine changes the quantity and discount of an existing line
func (c *Contract) UpdateLine(lineID uuid.UUID, quantity int, discount *decimal.Decimal) error {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			if err := validateQuantity(quantity); err != nil {
				return err
			}
			if err := validatePercentage("INVALID_DISCOUNT", "Discount", discount); err != nil {
				return err
			}
			c.Lines[i].Quantity = quantity
			c.Lines[i].Discount = discount
			c.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RemoveLine takes a line off the contract and returns it
func (c *Contract) RemoveLine(lineID uuid.UUID) (*ContractService, error) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			removed := c.Lines[i]
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return &removed, nil
		}
	}
	return nil, shared.ErrNotFound
}

// LineForService returns the line for a service, or nil
func (c *Contract) LineForService(serviceID uuid.UUID) *ContractService {
	for i := range c.Lines {
		if c.Lines[i].ServiceID == serviceID {
			return &c.Lines[i]
		}
	}
	return nil
}

// Line returns the line with the given ID, or nil
func (c *Contract) Line(lineID uuid.UUID) *ContractService {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}

// HasService reports whether a service is on the contract
func (c *Contract) HasService(serviceID uuid.UUID) bool {
	return c.LineForService(serviceID) != nil
}

// RefreshPrices replaces line unit prices with current catalog prices.
// Lines whose service is missing from prices keep their last known price.
func (c *Contract) RefreshPrices(prices map[uuid.UUID]decimal.Decimal) {
	for i := range c.Lines {
		if p, ok := prices[c.Lines[i].ServiceID]; ok {
			c.Lines[i].UnitPrice = p
		}
	}
}

// Recalculate recomputes SubTotal, Total and Balance from the lines and the amount paid
func (c *Contract) Recalculate(paid decimal.Decimal) {
	subTotal := decimal.Zero
	for i := range c.Lines {
		subTotal = subTotal.Add(c.LineAmounts(&c.Lines[i]).DiscountedSubtotal)
	}
	subTotal = subTotal.Round(2)
	total := subTotal.Add(subTotal.Mul(c.Taxes).Div(hundred)).Round(2)
	balance := total.Sub(paid).Round(2)

	changed := !subTotal.Equal(c.SubTotal) || !total.Equal(c.Total) || !balance.Equal(c.Balance)
	c.SubTotal = subTotal
	c.Total = total
	c.Balance = balance
	if changed {
		c.BaseEntity.Touch()
		c.AddDomainEvent(NewContractTotalsRecalculatedEvent(c))
	}
}

// TaxesAmount is the tax portion of the total
func (c *Contract) TaxesAmount() decimal.Decimal {
	return c.SubTotal.Mul(c.Taxes).Div(hundred).Round(2)
}

// LineAmounts holds the computed amounts of one line
type LineAmounts struct {
	Subtotal           decimal.Decimal
	DiscountAmount     decimal.Decimal
	DiscountedSubtotal decimal.Decimal
	Total              decimal.Decimal
}

// LineAmounts computes a line's amounts. A line discount overrides the global discount.
func (c *Contract) LineAmounts(line *ContractService) LineAmounts {
	subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	rate := decimal.Zero
	switch {
	case line.Discount != nil && !line.Discount.IsZero():
		rate = *line.Discount
	case c.Discount != nil:
		rate = *c.Discount
	}
	discount := subtotal.Mul(rate).Div(hundred)
	discounted := subtotal.Sub(discount)
	return LineAmounts{
		Subtotal:           subtotal,
		DiscountAmount:     discount,
		DiscountedSubtotal: discounted,
		Total:              discounted.Mul(decimal.NewFromInt(1).Add(c.Taxes.Div(hundred))).Round(2),
	}
}

// AcceptsUploads reports whether scanner reports may be filed against the contract
func (c *Contract) AcceptsUploads() bool {
	return statusIn(c.Status, UploadableStatuses)
}

// IsActive reports whether the contract is ACTIVE
func (c *Contract) IsActive() bool {
	return c.Status == StatusActive
}

// MarkDeleted records the deletion event
func (c *Contract) MarkDeleted() {
	c.AddDomainEvent(NewContractDeletedEvent(c))
}

func (c *Contract) touch() {
	c.Touch()
}

func statusIn(s Status, set []Status) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

func validateDates(customerCreatedOn, start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return shared.NewDomainError("INVALID_DATES", "Contract start and end dates are required")
	}
	if !customerCreatedOn.IsZero() && dateOnly(start).Before(dateOnly(customerCreatedOn)) {
		return shared.NewDomainError("INVALID_START_DATE", "Contract start date cannot be before customer creation date.")
	}
	if dateOnly(end).Before(dateOnly(start)) {
		return shared.NewDomainError("INVALID_END_DATE", "Contract end date cannot be before start date.")
	}
	return nil
}

func validatePercentage(code, field string, v *decimal.Decimal) error {
	if v == nil {
		return nil
	}
	if v.IsNegative() || v.GreaterThan(hundred) {
		return shared.NewDomainError(code, field+" must be between 0 and 100.")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
