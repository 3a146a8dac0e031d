package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/shared"
)

// BulkType selects which findings a status update touches
type BulkType string

const (
	BulkSingle        BulkType = "single"
	BulkVulnerability BulkType = "vulnerability"
	BulkRiskFactor    BulkType = "risk_factor"
	BulkSignature     BulkType = "signature"
	BulkSeverity      BulkType = "severity"
)

var bulkTypesByKind = map[catalog.ReportKind][]BulkType{
	catalog.ReportKindNessus:    {BulkSingle, BulkVulnerability, BulkRiskFactor},
	catalog.ReportKindBurpSuite: {BulkSingle, BulkSignature, BulkSeverity},
}

// ParseBulkType validates a bulk type for a report kind. Empty means single.
func ParseBulkType(kind catalog.ReportKind, s string) (BulkType, error) {
	if s == "" {
		return BulkSingle, nil
	}
	for _, bt := range bulkTypesByKind[kind] {
		if string(bt) == s {
			return bt, nil
		}
	}
	return "", shared.NewDomainError("INVALID_BULK_TYPE", fmt.Sprintf("Invalid bulk type: %s", s))
}

// BulkSelection identifies the findings of a bulk status update
type BulkSelection struct {
	Type       BulkType
	FindingID  uuid.UUID
	RiskFactor string
	Severity   string
}

// Validate checks that the selection carries what its type needs
func (b BulkSelection) Validate() error {
	switch b.Type {
	case BulkSingle, BulkVulnerability, BulkSignature:
		if b.FindingID == uuid.Nil {
			return shared.NewDomainError("INVALID_FINDING", "finding_id is required")
		}
	case BulkRiskFactor:
		if b.RiskFactor == "" {
			return shared.NewDomainError("INVALID_RISK_FACTOR", "risk_factor is required")
		}
	case BulkSeverity:
		if b.Severity == "" {
			return shared.NewDomainError("INVALID_SEVERITY", "severity is required")
		}
	default:
		return shared.NewDomainError("INVALID_BULK_TYPE", fmt.Sprintf("Invalid bulk type: %s", b.Type))
	}
	return nil
}

// UpdatedFinding describes one finding changed by a bulk update
type UpdatedFinding struct {
	ID             uuid.UUID     `json:"id"`
	TargetAffected string        `json:"target_affected,omitempty"`
	Host           string        `json:"host,omitempty"`
	Status         FindingStatus `json:"status"`
	ChangedBy      string        `json:"changed_by"`
	ChangedAt      string        `json:"changed_at"`
}

// ApplyNessusStatus sets status on every finding that differs and returns the changed ones
func ApplyNessusStatus(findings []NessusFinding, status FindingStatus, by uuid.UUID, at time.Time) []NessusFinding {
	var changed []NessusFinding
	for i := range findings {
		if findings[i].Apply(status, by, at) {
			findings[i].UpdatedAt = at
			changed = append(changed, findings[i])
		}
	}
	return changed
}

// ApplyBurpStatus sets status on every finding that differs and returns the changed ones
func ApplyBurpStatus(findings []BurpFinding, status FindingStatus, by uuid.UUID, at time.Time) []BurpFinding {
	var changed []BurpFinding
	for i := range findings {
		if findings[i].Apply(status, by, at) {
			findings[i].UpdatedAt = at
			changed = append(changed, findings[i])
		}
	}
	return changed
}
