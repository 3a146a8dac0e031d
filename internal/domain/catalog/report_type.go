package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/scg/portal/internal/domain/shared"
	"golang.org/x/text/cases"
)

// ReportKind selects how reports of a service are stored and displayed
type ReportKind string

const (
	ReportKindNessus    ReportKind = "nessus"
	ReportKindBurpSuite ReportKind = "burpsuite"
	ReportKindSupport   ReportKind = "support"
	ReportKindUnknown   ReportKind = "unknown"
)

// KindFromName maps a report type name to its kind, ignoring case
func KindFromName(name string) ReportKind {
	switch cases.Fold().String(strings.TrimSpace(name)) {
	case string(ReportKindNessus):
		return ReportKindNessus
	case string(ReportKindBurpSuite):
		return ReportKindBurpSuite
	case string(ReportKindSupport):
		return ReportKindSupport
	}
	return ReportKindUnknown
}

// IsScanner reports whether reports of this kind are uploaded scanner output
func (k ReportKind) IsScanner() bool {
	return k == ReportKindNessus || k == ReportKindBurpSuite
}

// ReportType names the kind of deliverable a service produces
type ReportType struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ReportType) TableName() string {
	return "report_types"
}

// NewReportType creates a new active report type
func NewReportType(name, description string) (*ReportType, error) {
	name = strings.TrimSpace(name)
	if err := validateReportTypeName(name); err != nil {
		return nil, err
	}
	return &ReportType{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		IsActive:          true,
	}, nil
}

// Update changes the report type's fields
func (rt *ReportType) Update(name, description string, active bool) error {
	name = strings.TrimSpace(name)
	if err := validateReportTypeName(name); err != nil {
		return err
	}
	rt.Name = name
	rt.Description = description
	rt.IsActive = active
	rt.Touch()
	return nil
}

// Kind returns the report kind derived from the name
func (rt *ReportType) Kind() ReportKind {
	return KindFromName(rt.Name)
}

func validateReportTypeName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Report type name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Report type name cannot exceed 100 characters")
	}
	return nil
}
