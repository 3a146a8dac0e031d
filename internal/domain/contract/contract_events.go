package contract

import (
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeContract = "Contract"

const (
	EventTypeContractCreated            = "ContractCreated"
	EventTypeContractStatusChanged      = "ContractStatusChanged"
	EventTypeContractTotalsRecalculated = "ContractTotalsRecalculated"
	EventTypeContractDeleted            = "ContractDeleted"
)

// ContractCreatedEvent is published when a contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractNumber string `json:"contract_number"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, AggregateTypeContract, c.ID, c.CustomerID),
		ContractNumber:  c.ContractNumber,
	}
}

// ContractStatusChangedEvent is published on every status transition
type ContractStatusChangedEvent struct {
	shared.BaseDomainEvent
	ContractNumber string `json:"contract_number"`
	OldStatus      Status `json:"old_status"`
	NewStatus      Status `json:"new_status"`
}

// NewContractStatusChangedEvent creates a new ContractStatusChangedEvent
func NewContractStatusChangedEvent(c *Contract, old Status) *ContractStatusChangedEvent {
	return &ContractStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractStatusChanged, AggregateTypeContract, c.ID, c.CustomerID),
		ContractNumber:  c.ContractNumber,
		OldStatus:       old,
		NewStatus:       c.Status,
	}
}

// ContractTotalsRecalculatedEvent is published when sub total, total or balance change
type ContractTotalsRecalculatedEvent struct {
	shared.BaseDomainEvent
	SubTotal decimal.Decimal `json:"sub_total"`
	Total    decimal.Decimal `json:"total"`
	Balance  decimal.Decimal `json:"balance"`
}

// NewContractTotalsRecalculatedEvent creates a new ContractTotalsRecalculatedEvent
func NewContractTotalsRecalculatedEvent(c *Contract) *ContractTotalsRecalculatedEvent {
	return &ContractTotalsRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractTotalsRecalculated, AggregateTypeContract, c.ID, c.CustomerID),
		SubTotal:        c.SubTotal,
		Total:           c.Total,
		Balance:         c.Balance,
	}
}

// ContractDeletedEvent is published when a contract is removed
type ContractDeletedEvent struct {
	shared.BaseDomainEvent
	ContractNumber string `json:"contract_number"`
}

// NewContractDeletedEvent creates a new ContractDeletedEvent
func NewContractDeletedEvent(c *Contract) *ContractDeletedEvent {
	return &ContractDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractDeleted, AggregateTypeContract, c.ID, c.CustomerID),
		ContractNumber:  c.ContractNumber,
	}
}
