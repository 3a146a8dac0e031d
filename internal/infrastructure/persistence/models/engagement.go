package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/shopspring/decimal"
)

// EngagementModel is the persistence model for the Engagement aggregate.
type EngagementModel struct {
	CustomerAggregateModel
	EngagementNumber  string              `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name              string              `gorm:"type:varchar(100);not null"`
	Priority          engagement.Priority `gorm:"type:varchar(20);not null;default:'MEDIUM'"`
	ContractID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	ContractServiceID uuid.UUID           `gorm:"type:uuid;not null;index"`
	ClientDescription string              `gorm:"type:text;not null"`
	InternalNotes     string              `gorm:"type:text"`
	Status            engagement.Status   `gorm:"type:varchar(20);not null;default:'OPEN';index"`
}

// TableName returns the table name for GORM
func (EngagementModel) TableName() string {
	return "engagements"
}

// ToDomain converts the persistence model to a domain Engagement aggregate.
func (m *EngagementModel) ToDomain() *engagement.Engagement {
	return &engagement.Engagement{
		CustomerAggregateRoot: m.ToCustomerAggregateRoot(),
		EngagementNumber:      m.EngagementNumber,
		Name:                  m.Name,
		Priority:              m.Priority,
		ContractID:            m.ContractID,
		ContractServiceID:     m.ContractServiceID,
		ClientDescription:     m.ClientDescription,
		InternalNotes:         m.InternalNotes,
		Status:                m.Status,
	}
}

// FromDomain populates the persistence model from a domain Engagement aggregate.
func (m *EngagementModel) FromDomain(e *engagement.Engagement) {
	m.FromDomainCustomerAggregateRoot(e.CustomerAggregateRoot)
	m.EngagementNumber = e.EngagementNumber
	m.Name = e.Name
	m.Priority = e.Priority
	m.ContractID = e.ContractID
	m.ContractServiceID = e.ContractServiceID
	m.ClientDescription = e.ClientDescription
	m.InternalNotes = e.InternalNotes
	m.Status = e.Status
}

// EngagementModelFromDomain creates a new persistence model from a domain Engagement aggregate.
func EngagementModelFromDomain(e *engagement.Engagement) *EngagementModel {
	m := &EngagementModel{}
	m.FromDomain(e)
	return m
}

// TimeEntryModel is the persistence model for a logged time entry.
type TimeEntryModel struct {
	BaseModel
	EngagementID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientComment string          `gorm:"type:text;not null"`
	InternalNotes string          `gorm:"type:text"`
	HoursSpent    decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	Date          time.Time       `gorm:"type:date;not null;index"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (TimeEntryModel) TableName() string {
	return "time_entries"
}

// ToDomain converts the persistence model to a domain TimeEntry.
func (m *TimeEntryModel) ToDomain() *engagement.TimeEntry {
	return &engagement.TimeEntry{
		BaseEntity:    m.BaseModel.ToDomain(),
		EngagementID:  m.EngagementID,
		ClientComment: m.ClientComment,
		InternalNotes: m.InternalNotes,
		HoursSpent:    m.HoursSpent,
		Date:          m.Date,
		CreatedBy:     m.CreatedBy,
	}
}

// TimeEntryModelFromDomain creates a persistence model from a domain TimeEntry.
func TimeEntryModelFromDomain(t *engagement.TimeEntry) *TimeEntryModel {
	m := &TimeEntryModel{
		EngagementID:  t.EngagementID,
		ClientComment: t.ClientComment,
		InternalNotes: t.InternalNotes,
		HoursSpent:    t.HoursSpent,
		Date:          t.Date,
		CreatedBy:     t.CreatedBy,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
