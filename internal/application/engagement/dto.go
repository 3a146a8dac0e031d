package engagement

import (
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/shopspring/decimal"
)

// EngagementListFilter represents filter options for the engagement list
type EngagementListFilter struct {
	ContractID string `form:"contract_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=OPEN IN_PROGRESS RESOLVED CANCELLED"`
	Priority   string `form:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CreateEngagementRequest opens an engagement on a support line
type CreateEngagementRequest struct {
	ContractServiceID uuid.UUID `json:"contract_service_id" binding:"required"`
	Name              string    `json:"name" binding:"required,min=1,max=100"`
	Priority          string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	ClientDescription string    `json:"client_description" binding:"required"`
	InternalNotes     string    `json:"internal_notes"`
}

// UpdateEngagementRequest replaces the editable fields of an engagement
type UpdateEngagementRequest struct {
	Name              string `json:"name" binding:"required,min=1,max=100"`
	Priority          string `json:"priority" binding:"required,oneof=LOW MEDIUM HIGH URGENT"`
	ClientDescription string `json:"client_description" binding:"required"`
	InternalNotes     string `json:"internal_notes"`
	Status            string `json:"status" binding:"required,oneof=OPEN IN_PROGRESS RESOLVED CANCELLED"`
}

// ChangeStatusRequest moves an engagement to another status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=OPEN IN_PROGRESS RESOLVED CANCELLED"`
}

// TimeEntryRequest logs or edits work on an engagement.
// Date is YYYY-MM-DD; empty means today.
type TimeEntryRequest struct {
	ClientComment string          `json:"client_comment" binding:"required"`
	InternalNotes string          `json:"internal_notes"`
	HoursSpent    decimal.Decimal `json:"hours_spent" binding:"required"`
	Date          string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// EngagementResponse represents an engagement in API responses
type EngagementResponse struct {
	ID                uuid.UUID           `json:"id"`
	EngagementNumber  string              `json:"engagement_number"`
	Name              string              `json:"name"`
	Priority          engagement.Priority `json:"priority"`
	Status            engagement.Status   `json:"status"`
	StatusLabel       string              `json:"status_label"`
	CustomerID        uuid.UUID           `json:"customer_id"`
	ContractID        uuid.UUID           `json:"contract_id"`
	ContractServiceID uuid.UUID           `json:"contract_service_id"`
	ClientDescription string              `json:"client_description"`
	InternalNotes     string              `json:"internal_notes,omitempty"`
	CreatedBy         *uuid.UUID          `json:"created_by,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ToEngagementResponse converts a domain engagement to a response
func ToEngagementResponse(e *engagement.Engagement) EngagementResponse {
	return EngagementResponse{
		ID:                e.ID,
		EngagementNumber:  e.EngagementNumber,
		Name:              e.Name,
		Priority:          e.Priority,
		Status:            e.Status,
		StatusLabel:       e.Status.Label(),
		CustomerID:        e.CustomerID,
		ContractID:        e.ContractID,
		ContractServiceID: e.ContractServiceID,
		ClientDescription: e.ClientDescription,
		InternalNotes:     e.InternalNotes,
		CreatedBy:         e.CreatedBy,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

// TimeEntryResponse represents a time entry in API responses
type TimeEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	EngagementID  uuid.UUID       `json:"engagement_id"`
	ClientComment string          `json:"client_comment"`
	InternalNotes string          `json:"internal_notes,omitempty"`
	HoursSpent    decimal.Decimal `json:"hours_spent"`
	Date          string          `json:"date"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToTimeEntryResponse converts a domain time entry to a response
func ToTimeEntryResponse(t *engagement.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:            t.ID,
		EngagementID:  t.EngagementID,
		ClientComment: t.ClientComment,
		InternalNotes: t.InternalNotes,
		HoursSpent:    t.HoursSpent,
		Date:          t.Date.Format("2006-01-02"),
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
	}
}

// TimeEntryResult is a saved entry, with a warning when it overruns the contracted hours
type TimeEntryResult struct {
	Entry   TimeEntryResponse `json:"entry"`
	Warning string            `json:"warning,omitempty"`
}

// EngagementDetailResponse is an engagement with its time entries and hour usage
type EngagementDetailResponse struct {
	Engagement  EngagementResponse  `json:"engagement"`
	TimeEntries []TimeEntryResponse `json:"time_entries"`
	Hours       engagement.Hours    `json:"hours"`
}

// SupportLineOption is a support line an engagement can be opened on
type SupportLineOption struct {
	ContractServiceID uuid.UUID `json:"contract_service_id"`
	ServiceID         uuid.UUID `json:"service_id"`
	ServiceName       string    `json:"service_name"`
	ContractedHours   int       `json:"contracted_hours"`
}

// ContractOption is a contract with its support lines
type ContractOption struct {
	ContractID     uuid.UUID           `json:"contract_id"`
	ContractNumber string              `json:"contract_number"`
	Status         contract.Status     `json:"status"`
	Services       []SupportLineOption `json:"services"`
}

// SupportEngagement is one row of the support detail
type SupportEngagement struct {
	EngagementResponse
	TotalHours decimal.Decimal `json:"total_hours"`
}

// SupportDetailResponse is the usage of one contract's support line
type SupportDetailResponse struct {
	Line        engagement.SupportLine  `json:"line"`
	Engagements []SupportEngagement     `json:"engagements"`
	Histogram   []engagement.DailyHours `json:"histogram"`
	Stats       engagement.Stats        `json:"stats"`
}
