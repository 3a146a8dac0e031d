package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/report"
)

// ReportModel is the persistence model for the Report aggregate.
// Nessus and BurpSuite reports share the table and differ by kind.
type ReportModel struct {
	CustomerAggregateModel
	Name       string             `gorm:"type:varchar(255);not null"`
	ContractID *uuid.UUID         `gorm:"type:uuid;index"`
	ServiceID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	Date       time.Time          `gorm:"type:date;not null"`
	Kind       catalog.ReportKind `gorm:"type:varchar(20);not null;index"`
	Inventory  pq.StringArray     `gorm:"type:text[]"`
	SourceKey  string             `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ReportModel) TableName() string {
	return "reports"
}

// ToDomain converts the persistence model to a domain Report aggregate.
func (m *ReportModel) ToDomain() *report.Report {
	return &report.Report{
		CustomerAggregateRoot: m.ToCustomerAggregateRoot(),
		Name:                  m.Name,
		ContractID:            m.ContractID,
		ServiceID:             m.ServiceID,
		Date:                  m.Date,
		Kind:                  m.Kind,
		Inventory:             m.Inventory,
		SourceKey:             m.SourceKey,
	}
}

// FromDomain populates the persistence model from a domain Report aggregate.
func (m *ReportModel) FromDomain(r *report.Report) {
	m.FromDomainCustomerAggregateRoot(r.CustomerAggregateRoot)
	m.Name = r.Name
	m.ContractID = r.ContractID
	m.ServiceID = r.ServiceID
	m.Date = r.Date
	m.Kind = r.Kind
	m.Inventory = r.Inventory
	m.SourceKey = r.SourceKey
}

// ReportModelFromDomain creates a new persistence model from a domain Report aggregate.
func ReportModelFromDomain(r *report.Report) *ReportModel {
	m := &ReportModel{}
	m.FromDomain(r)
	return m
}

// StatusTrailModel holds the status columns shared by both finding tables.
type StatusTrailModel struct {
	Status          report.FindingStatus `gorm:"type:varchar(30);not null;default:'not_started';index"`
	StatusChangedAt *time.Time
	StatusChangedBy *uuid.UUID `gorm:"type:uuid"`
}

func (m StatusTrailModel) toDomain() report.StatusTrail {
	return report.StatusTrail{Status: m.Status, ChangedAt: m.StatusChangedAt, ChangedBy: m.StatusChangedBy}
}

func statusTrailModel(t report.StatusTrail) StatusTrailModel {
	return StatusTrailModel{Status: t.Status, StatusChangedAt: t.ChangedAt, StatusChangedBy: t.ChangedBy}
}

// NessusFindingModel is one Nessus plugin hit.
type NessusFindingModel struct {
	BaseModel
	StatusTrailModel
	ReportID        uuid.UUID `gorm:"type:uuid;not null;index"`
	SignatureID     int       `gorm:"not null;index"`
	TargetAffected  string    `gorm:"type:varchar(255);not null"`
	OperatingSystem string    `gorm:"type:varchar(255);not null;default:'N/A'"`
}

// TableName returns the table name for GORM
func (NessusFindingModel) TableName() string {
	return "nessus_findings"
}

// ToDomain converts the persistence model to a domain finding.
func (m *NessusFindingModel) ToDomain() report.NessusFinding {
	return report.NessusFinding{
		BaseEntity:      m.BaseModel.ToDomain(),
		StatusTrail:     m.StatusTrailModel.toDomain(),
		ReportID:        m.ReportID,
		SignatureID:     m.SignatureID,
		TargetAffected:  m.TargetAffected,
		OperatingSystem: m.OperatingSystem,
	}
}

// NessusFindingModelFromDomain creates a persistence model from a domain finding.
func NessusFindingModelFromDomain(f report.NessusFinding) NessusFindingModel {
	m := NessusFindingModel{
		StatusTrailModel: statusTrailModel(f.StatusTrail),
		ReportID:         f.ReportID,
		SignatureID:      f.SignatureID,
		TargetAffected:   f.TargetAffected,
		OperatingSystem:  f.OperatingSystem,
	}
	m.FromDomainBaseEntity(f.BaseEntity)
	return m
}

// BurpFindingModel is one instance of a Burp issue.
type BurpFindingModel struct {
	BaseModel
	StatusTrailModel
	ReportID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	SignatureID int            `gorm:"not null;index"`
	Host        string         `gorm:"type:varchar(255);not null"`
	Path        string         `gorm:"type:varchar(255)"`
	Location    string         `gorm:"type:varchar(255)"`
	Severity    string         `gorm:"type:varchar(50);index"`
	Confidence  string         `gorm:"type:varchar(50)"`
	IssueDetail string         `gorm:"type:text"`
	Requests    pq.StringArray `gorm:"type:text[]"`
}

// TableName returns the table name for GORM
func (BurpFindingModel) TableName() string {
	return "burpsuite_findings"
}

// ToDomain converts the persistence model to a domain finding.
func (m *BurpFindingModel) ToDomain() report.BurpFinding {
	return report.BurpFinding{
		BaseEntity:  m.BaseModel.ToDomain(),
		StatusTrail: m.StatusTrailModel.toDomain(),
		ReportID:    m.ReportID,
		SignatureID: m.SignatureID,
		Host:        m.Host,
		Path:        m.Path,
		Location:    m.Location,
		Severity:    m.Severity,
		Confidence:  m.Confidence,
		IssueDetail: m.IssueDetail,
		Requests:    []string(m.Requests),
	}
}

// BurpFindingModelFromDomain creates a persistence model from a domain finding.
func BurpFindingModelFromDomain(f report.BurpFinding) BurpFindingModel {
	m := BurpFindingModel{
		StatusTrailModel: statusTrailModel(f.StatusTrail),
		ReportID:         f.ReportID,
		SignatureID:      f.SignatureID,
		Host:             f.Host,
		Path:             f.Path,
		Location:         f.Location,
		Severity:         f.Severity,
		Confidence:       f.Confidence,
		IssueDetail:      f.IssueDetail,
		Requests:         pq.StringArray(f.Requests),
	}
	m.FromDomainBaseEntity(f.BaseEntity)
	return m
}

