package engagement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupportLine is one contracted support service of a customer, with usage
type SupportLine struct {
	ContractID        uuid.UUID       `json:"contract_id"`
	ContractNumber    string          `json:"contract_number"`
	ContractStatus    string          `json:"contract_status"`
	ContractServiceID uuid.UUID       `json:"contract_service_id"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	ContractedHours   decimal.Decimal `json:"contracted_hours"`
	TotalHours        decimal.Decimal `json:"total_hours"`
	RemainingHours    decimal.Decimal `json:"remaining_hours"`
	EngagementCount   int64           `json:"engagement_count"`
}

// EngagementWithHours is an engagement and the hours logged on it
type EngagementWithHours struct {
	Engagement
	TotalHours decimal.Decimal
}

// DailyHours is one histogram bucket
type DailyHours struct {
	Date       string          `json:"date"`
	TotalHours decimal.Decimal `json:"total_hours"`
}

// Stats counts engagements by status
type Stats struct {
	OpenCount       int64           `json:"open_count"`
	InProgressCount int64           `json:"in_progress_count"`
	ResolvedCount   int64           `json:"resolved_count"`
	CancelledCount  int64           `json:"cancelled_count"`
	TotalHours      decimal.Decimal `json:"total_hours"`
}

// NewStats builds stats from per-status counts
func NewStats(counts map[Status]int64, total decimal.Decimal) Stats {
	return Stats{
		OpenCount:       counts[StatusOpen],
		InProgressCount: counts[StatusInProgress],
		ResolvedCount:   counts[StatusResolved],
		CancelledCount:  counts[StatusCancelled],
		TotalHours:      total,
	}
}

// SupportSort orders engagements in the support detail
type SupportSort string

const (
	SortCreatedDesc SupportSort = "-created_at"
	SortCreatedAsc  SupportSort = "created_at"
	SortHoursAsc    SupportSort = "hours_used"
	SortHoursDesc   SupportSort = "-hours_used"
	SortNameAsc     SupportSort = "name"
	SortNameDesc    SupportSort = "-name"
)

// ParseSupportSort falls back to newest first for unknown values
func ParseSupportSort(s string) SupportSort {
	switch SupportSort(s) {
	case SortCreatedAsc, SortHoursAsc, SortHoursDesc, SortNameAsc, SortNameDesc:
		return SupportSort(s)
	}
	return SortCreatedDesc
}
