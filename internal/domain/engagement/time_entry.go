package engagement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	halfHour = decimal.RequireFromString("0.5")
	maxHours = decimal.RequireFromString("9999.99")
	hundred  = decimal.NewFromInt(100)
)

// TimeEntry is work logged against an engagement
type TimeEntry struct {
	shared.BaseEntity
	EngagementID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientComment string          `gorm:"type:text;not null"`
	InternalNotes string          `gorm:"type:text"`
	HoursSpent    decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	Date          time.Time       `gorm:"type:date;not null;index"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (TimeEntry) TableName() string {
	return "time_entries"
}

// NewTimeEntry logs hours on date; a zero date means today
func NewTimeEntry(engagementID uuid.UUID, clientComment, internalNotes string, hours decimal.Decimal, date time.Time, createdBy uuid.UUID) (*TimeEntry, error) {
	if err := ValidateHours(hours); err != nil {
		return nil, err
	}
	if strings.TrimSpace(clientComment) == "" {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Client comment is required")
	}
	return &TimeEntry{
		BaseEntity:    shared.NewBaseEntity(),
		EngagementID:  engagementID,
		ClientComment: clientComment,
		InternalNotes: internalNotes,
		HoursSpent:    hours,
		Date:          entryDate(date),
		CreatedBy:     createdBy,
	}, nil
}

// Update changes the logged work
func (t *TimeEntry) Update(clientComment, internalNotes string, hours decimal.Decimal, date time.Time) error {
	if err := ValidateHours(hours); err != nil {
		return err
	}
	if strings.TrimSpace(clientComment) == "" {
		return shared.NewDomainError("INVALID_COMMENT", "Client comment is required")
	}
	t.ClientComment = clientComment
	t.InternalNotes = internalNotes
	t.HoursSpent = hours
	t.Date = entryDate(date)
	t.Touch()
	return nil
}

// ValidateHours requires at least half an hour in half-hour steps
func ValidateHours(h decimal.Decimal) error {
	if h.LessThan(halfHour) {
		return shared.NewDomainError("INVALID_HOURS", "Hours spent must be at least 0.5.")
	}
	if h.GreaterThan(maxHours) {
		return shared.NewDomainError("INVALID_HOURS", "Hours spent cannot exceed 9999.99.")
	}
	if !h.Mod(halfHour).IsZero() {
		return shared.NewDomainError("INVALID_HOURS", "Hours spent must be in increments of 0.5.")
	}
	return nil
}

func entryDate(d time.Time) time.Time {
	if d.IsZero() {
		d = time.Now()
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// Hours summarizes contracted and used hours of a support line
type Hours struct {
	Contracted           decimal.Decimal `json:"contracted_hours"`
	TotalService         decimal.Decimal `json:"total_service_hours"`
	Remaining            decimal.Decimal `json:"remaining_hours"`
	PercentageUsed       decimal.Decimal `json:"percentage_used"`
	Engagement           decimal.Decimal `json:"engagement_hours"`
	EngagementPercentage decimal.Decimal `json:"engagement_percentage"`
}

// ComputeHours derives remaining hours and usage percentages
func ComputeHours(contracted int, totalService, engagementHours decimal.Decimal) Hours {
	q := decimal.NewFromInt(int64(contracted))
	h := Hours{
		Contracted:           q,
		TotalService:         totalService,
		Remaining:            q.Sub(totalService),
		PercentageUsed:       decimal.Zero,
		Engagement:           engagementHours,
		EngagementPercentage: decimal.Zero,
	}
	if contracted > 0 {
		h.PercentageUsed = totalService.Div(q).Mul(hundred).Round(2)
		h.EngagementPercentage = engagementHours.Div(q).Mul(hundred).Round(2)
	}
	return h
}

// OverrunWarning describes an entry that pushes usage past the contracted hours.
// usedBefore excludes the entry itself. An empty string means no overrun.
func OverrunWarning(contracted int, usedBefore, entry decimal.Decimal) string {
	q := decimal.NewFromInt(int64(contracted))
	if usedBefore.Add(entry).LessThanOrEqual(q) {
		return ""
	}
	return fmt.Sprintf("This entry will exceed the contracted hours. Contracted: %dh, Total used: %sh, This entry: %sh",
		contracted, usedBefore.StringFixed(2), entry.StringFixed(2))
}
