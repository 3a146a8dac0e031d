package engagement

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/shared"
)

// Status of a support engagement
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusCancelled  Status = "CANCELLED"
)

var statusLabels = map[Status]string{
	StatusOpen:       "Open",
	StatusInProgress: "In Progress",
	StatusResolved:   "Resolved",
	StatusCancelled:  "Cancelled",
}

// Label returns the display label
func (s Status) Label() string { return statusLabels[s] }

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Priority of a support engagement
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid reports whether the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

const numberPrefix = "EFF-"

// FormatNumber renders an engagement number
func FormatNumber(n int) string {
	return fmt.Sprintf("%s%04d", numberPrefix, n)
}

// ParseNumber extracts the sequence from an engagement number
func ParseNumber(s string) (int, bool) {
	if !strings.HasPrefix(s, numberPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(s[len(numberPrefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextNumber returns the number following the highest existing one
func NextNumber(highest string) string {
	n, ok := ParseNumber(highest)
	if !ok {
		return FormatNumber(1)
	}
	return FormatNumber(n + 1)
}

// Engagement is a unit of support work billed against a contracted support service
type Engagement struct {
	shared.CustomerAggregateRoot
	EngagementNumber  string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name              string    `gorm:"type:varchar(100);not null"`
	Priority          Priority  `gorm:"type:varchar(20);not null;default:'MEDIUM'"`
	ContractID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ContractServiceID uuid.UUID `gorm:"type:uuid;not null;index"`
	ClientDescription string    `gorm:"type:text;not null"`
	InternalNotes     string    `gorm:"type:text"`
	Status            Status    `gorm:"type:varchar(20);not null;default:'OPEN';index"`
}

// TableName returns the table name for GORM
func (Engagement) TableName() string {
	return "engagements"
}

// NewEngagement opens an engagement on a support line of an active contract.
// The customer and contract come from the line's contract.
func NewEngagement(customerID uuid.UUID, number string, c *contract.Contract, lineID uuid.UUID, kind catalog.ReportKind, name string, priority Priority, clientDescription, internalNotes string, createdBy uuid.UUID) (*Engagement, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Invalid priority")
	}
	if strings.TrimSpace(clientDescription) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Client description is required")
	}
	if err := checkContract(customerID, c, lineID, kind); err != nil {
		return nil, err
	}

	e := &Engagement{
		CustomerAggregateRoot: shared.NewCustomerAggregateRoot(c.CustomerID),
		EngagementNumber:      number,
		Name:                  strings.TrimSpace(name),
		Priority:              priority,
		ContractID:            c.ID,
		ContractServiceID:     lineID,
		ClientDescription:     clientDescription,
		InternalNotes:         internalNotes,
		Status:                StatusOpen,
	}
	e.SetCreatedBy(createdBy)
	return e, nil
}

func checkContract(customerID uuid.UUID, c *contract.Contract, lineID uuid.UUID, kind catalog.ReportKind) error {
	if c == nil {
		return shared.NewDomainError("INVALID_CONTRACT", "Contract is required")
	}
	if !c.IsActive() {
		return shared.NewDomainError("CONTRACT_NOT_ACTIVE", "Engagements can only be created for active contracts.")
	}
	if c.Line(lineID) == nil {
		return shared.NewDomainError("SERVICE_NOT_IN_CONTRACT", "Selected service must belong to the selected contract.")
	}
	if c.CustomerID != customerID {
		return shared.NewDomainError("CONTRACT_CUSTOMER_MISMATCH", "Contract must belong to the selected customer.")
	}
	if kind != catalog.ReportKindSupport {
		return shared.NewDomainError("NOT_SUPPORT_SERVICE", "Selected service is not a support service.")
	}
	return nil
}

// Update changes the descriptive fields and the status
func (e *Engagement) Update(name string, priority Priority, clientDescription, internalNotes string, status Status) error {
	if err := validateName(name); err != nil {
		return err
	}
	if !priority.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Invalid priority")
	}
	if strings.TrimSpace(clientDescription) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Client description is required")
	}
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid status")
	}
	e.Name = strings.TrimSpace(name)
	e.Priority = priority
	e.ClientDescription = clientDescription
	e.InternalNotes = internalNotes
	e.Status = status
	e.touch()
	return nil
}

// ChangeStatus moves the engagement to another status
func (e *Engagement) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid status")
	}
	e.Status = status
	e.touch()
	return nil
}

func (e *Engagement) touch() {
	e.Touch()
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Engagement name must be between 1 and 100 characters")
	}
	return nil
}
