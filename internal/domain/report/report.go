package report

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/shared"
)

// Report is an uploaded scanner report of a customer for one service
type Report struct {
	shared.CustomerAggregateRoot
	Name       string
	ContractID *uuid.UUID
	ServiceID  uuid.UUID
	Date       time.Time
	Kind       catalog.ReportKind
	Inventory  pq.StringArray
	SourceKey  string
}

// NewReport creates a report header. Only scanner kinds carry findings.
func NewReport(customerID uuid.UUID, contractID *uuid.UUID, serviceID uuid.UUID, name string, date time.Time, kind catalog.ReportKind, inventory []string) (*Report, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Report name must be between 1 and 255 characters")
	}
	if !kind.IsScanner() {
		return nil, shared.NewDomainError("UNSUPPORTED_REPORT_TYPE", fmt.Sprintf("Unsupported report type: %s", kind))
	}
	if serviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERVICE", "Service is required")
	}
	if kind != catalog.ReportKindNessus {
		inventory = nil
	}
	r := &Report{
		CustomerAggregateRoot: shared.NewCustomerAggregateRoot(customerID),
		Name:                  name,
		ContractID:            contractID,
		ServiceID:             serviceID,
		Date:                  date,
		Kind:                  kind,
		Inventory:             pq.StringArray(inventory),
	}
	return r, nil
}

// ArchiveKey is the object storage key for the raw upload
func (r *Report) ArchiveKey(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload.json"
	}
	return fmt.Sprintf("reports/%s/%s/%s", r.CustomerID, r.ID, name)
}

// MarkUploaded records the upload event once findings are known
func (r *Report) MarkUploaded(findingCount, warningCount int) {
	r.AddDomainEvent(NewReportUploadedEvent(r, findingCount, warningCount))
}

// StatusTrail records who last changed a finding's status and when
type StatusTrail struct {
	Status    FindingStatus
	ChangedAt *time.Time
	ChangedBy *uuid.UUID
}

// Apply sets a new status and reports whether it changed
func (t *StatusTrail) Apply(status FindingStatus, by uuid.UUID, at time.Time) bool {
	if t.Status == status {
		return false
	}
	t.Status = status
	t.ChangedAt = &at
	t.ChangedBy = &by
	return true
}

// NessusFinding is one plugin hit on one target
type NessusFinding struct {
	shared.BaseEntity
	StatusTrail
	ReportID        uuid.UUID
	SignatureID     int
	TargetAffected  string
	OperatingSystem string
}

// NewNessusFinding creates a finding in not_started status
func NewNessusFinding(reportID uuid.UUID, signatureID int, target, os string) NessusFinding {
	if strings.TrimSpace(os) == "" {
		os = "N/A"
	}
	return NessusFinding{
		BaseEntity:      shared.NewBaseEntity(),
		StatusTrail:     StatusTrail{Status: StatusNotStarted},
		ReportID:        reportID,
		SignatureID:     signatureID,
		TargetAffected:  truncate(target, 255),
		OperatingSystem: truncate(os, 255),
	}
}

// BurpFinding is one instance of a Burp issue
type BurpFinding struct {
	shared.BaseEntity
	StatusTrail
	ReportID    uuid.UUID
	SignatureID int
	Host        string
	Path        string
	Location    string
	Severity    string
	Confidence  string
	IssueDetail string
	Requests    []string
}

// NewBurpFinding creates a finding in not_started status
func NewBurpFinding(reportID uuid.UUID, signatureID int, host string, inst BurpInstance) BurpFinding {
	detail := "N/A"
	if inst.IssueDetail != nil && *inst.IssueDetail != "" {
		detail = *inst.IssueDetail
	}
	requests := inst.Requests
	if requests == nil {
		requests = []string{}
	}
	return BurpFinding{
		BaseEntity:  shared.NewBaseEntity(),
		StatusTrail: StatusTrail{Status: StatusNotStarted},
		ReportID:    reportID,
		SignatureID: signatureID,
		Host:        truncate(host, 255),
		Path:        truncate(deref(inst.Path), 255),
		Location:    truncate(deref(inst.Location), 255),
		Severity:    truncate(deref(inst.Severity), 50),
		Confidence:  truncate(deref(inst.Confidence), 50),
		IssueDetail: detail,
		Requests:    requests,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
