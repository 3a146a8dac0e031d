package report

import (
	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/shared"
)

const AggregateTypeReport = "Report"

const (
	EventTypeReportUploaded       = "ReportUploaded"
	EventTypeFindingStatusChanged = "FindingStatusChanged"
)

// ReportUploadedEvent is published after a report and its findings are stored
type ReportUploadedEvent struct {
	shared.BaseDomainEvent
	Name         string             `json:"name"`
	Kind         catalog.ReportKind `json:"kind"`
	ServiceID    uuid.UUID          `json:"service_id"`
	FindingCount int                `json:"finding_count"`
	WarningCount int                `json:"warning_count"`
}

// NewReportUploadedEvent creates a new ReportUploadedEvent
func NewReportUploadedEvent(r *Report, findings, warnings int) *ReportUploadedEvent {
	return &ReportUploadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReportUploaded, AggregateTypeReport, r.ID, r.CustomerID),
		Name:            r.Name,
		Kind:            r.Kind,
		ServiceID:       r.ServiceID,
		FindingCount:    findings,
		WarningCount:    warnings,
	}
}

// FindingStatusChangedEvent is published once per bulk status update
type FindingStatusChangedEvent struct {
	shared.BaseDomainEvent
	BulkType     BulkType      `json:"bulk_type"`
	NewStatus    FindingStatus `json:"new_status"`
	UpdatedCount int           `json:"updated_count"`
	ChangedBy    uuid.UUID     `json:"changed_by"`
}

// NewFindingStatusChangedEvent creates a new FindingStatusChangedEvent
func NewFindingStatusChangedEvent(r *Report, bulk BulkType, status FindingStatus, count int, by uuid.UUID) *FindingStatusChangedEvent {
	return &FindingStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFindingStatusChanged, AggregateTypeReport, r.ID, r.CustomerID),
		BulkType:        bulk,
		NewStatus:       status,
		UpdatedCount:    count,
		ChangedBy:       by,
	}
}
