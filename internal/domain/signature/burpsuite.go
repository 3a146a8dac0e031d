package signature

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/scg/portal/internal/domain/shared"
)

// BurpSuiteSignature is a Burp Suite issue definition
type BurpSuiteSignature struct {
	ID                           int       `gorm:"primaryKey;autoIncrement:false"`
	Name                         string    `gorm:"type:varchar(1000);not null"`
	Description                  string    `gorm:"type:text"`
	Remediation                  string    `gorm:"type:text"`
	References                   string    `gorm:"type:text"`
	VulnerabilityClassifications string    `gorm:"type:text"`
	Retired                      bool      `gorm:"not null;default:false"`
	LastUpdate                   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BurpSuiteSignature) TableName() string {
	return "burpsuite_signatures"
}

// NewBurpSuiteSignature creates a minimal signature, used when a report names an unknown issue type
func NewBurpSuiteSignature(id int, name string) (*BurpSuiteSignature, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	return &BurpSuiteSignature{
		ID:         id,
		Name:       truncate(name, 1000),
		LastUpdate: time.Now(),
	}, nil
}

// Validate checks the fields a manual create or update must carry
func (s *BurpSuiteSignature) Validate() error {
	if err := ValidateID(s.ID); err != nil {
		return err
	}
	if strings.TrimSpace(s.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Signature name cannot be empty")
	}
	return nil
}

// ReferenceList splits the references field
func (s *BurpSuiteSignature) ReferenceList() []string {
	return SplitReferences(s.References)
}

// BurpEntry is one element of a Burp issue definition bulk upload
type BurpEntry struct {
	IssueTypeID                  int    `json:"issue_type_id" yaml:"issue_type_id"`
	Name                         string `json:"name" yaml:"name"`
	Description                  string `json:"description" yaml:"description"`
	Remediation                  string `json:"remediation" yaml:"remediation"`
	References                   string `json:"references" yaml:"references"`
	VulnerabilityClassifications string `json:"vulnerability_classifications" yaml:"vulnerability_classifications"`
	Retired                      bool   `json:"retired" yaml:"retired"`
}

// DecodeBurpEntry parses one raw bulk element
func DecodeBurpEntry(raw json.RawMessage) (*BurpEntry, error) {
	var e BurpEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, shared.NewDomainError("INVALID_ENTRY", err.Error())
	}
	return &e, nil
}

// ToSignature normalizes the entry to its stored form
func (e *BurpEntry) ToSignature(lastUpdate time.Time) (*BurpSuiteSignature, error) {
	if err := ValidateID(e.IssueTypeID); err != nil {
		return nil, err
	}
	return &BurpSuiteSignature{
		ID:                           e.IssueTypeID,
		Name:                         truncate(e.Name, 1000),
		Description:                  e.Description,
		Remediation:                  e.Remediation,
		References:                   e.References,
		VulnerabilityClassifications: e.VulnerabilityClassifications,
		Retired:                      e.Retired,
		LastUpdate:                   batchTime(lastUpdate),
	}, nil
}
