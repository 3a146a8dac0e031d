package signature

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/scg/portal/internal/domain/shared"
)

// NessusSignature is a Nessus plugin description
type NessusSignature struct {
	ID                     int        `gorm:"primaryKey;autoIncrement:false"`
	Name                   string     `gorm:"type:varchar(1000);not null"`
	Description            string     `gorm:"type:text"`
	RiskFactor             RiskFactor `gorm:"type:varchar(20);not null;index"`
	Synopsis               string     `gorm:"type:text"`
	Solution               string     `gorm:"type:text"`
	References             string     `gorm:"type:text"`
	SeeAlso                string     `gorm:"type:text"`
	CPE                    string     `gorm:"type:text"`
	Agent                  string     `gorm:"type:text"`
	CVE                    string     `gorm:"type:text"`
	XRef                   string     `gorm:"column:xref;type:text"`
	CVSSBaseScore          *float64
	CVSSVector             string `gorm:"type:varchar(255)"`
	CVSS3BaseScore         *float64
	CVSS3Vector            string `gorm:"type:varchar(255)"`
	VPRScore               *float64
	EPSSScore              *float64
	ExploitabilityEase     string     `gorm:"type:varchar(255)"`
	ExploitCodeMaturity    string     `gorm:"type:varchar(50)"`
	FamilyName             string     `gorm:"type:varchar(255)"`
	PluginModificationDate *time.Time `gorm:"type:date"`
	LastUpdate             time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NessusSignature) TableName() string {
	return "nessus_signatures"
}

// Validate checks the fields a manual create or update must carry
func (s *NessusSignature) Validate() error {
	if err := ValidateID(s.ID); err != nil {
		return err
	}
	if strings.TrimSpace(s.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Signature name cannot be empty")
	}
	if !s.RiskFactor.IsValid() {
		return shared.NewDomainError("INVALID_RISK_FACTOR", "Invalid risk factor")
	}
	return nil
}

// ReferenceList splits the references field
func (s *NessusSignature) ReferenceList() []string {
	return SplitReferences(s.References)
}

// CVEList decodes the CVE identifiers
func (s *NessusSignature) CVEList() []string {
	return ParseCVEList(s.CVE)
}

// XRefList decodes the cross references
func (s *NessusSignature) XRefList() []string {
	return ParseCVEList(s.XRef)
}

// NessusEntry is one element of a Nessus plugin bulk upload
type NessusEntry struct {
	ID                     int      `json:"id" yaml:"id"`
	PluginName             string   `json:"plugin_name" yaml:"plugin_name"`
	RiskFactor             string   `json:"risk_factor" yaml:"risk_factor"`
	Description            string   `json:"description" yaml:"description"`
	Synopsis               string   `json:"synopsis" yaml:"synopsis"`
	Solution               string   `json:"solution" yaml:"solution"`
	SeeAlso                string   `json:"see_also" yaml:"see_also"`
	CPE                    string   `json:"cpe" yaml:"cpe"`
	Agent                  string   `json:"agent" yaml:"agent"`
	CVE                    []string `json:"cve" yaml:"cve"`
	XRef                   []string `json:"xref" yaml:"xref"`
	CVSSBaseScore          *float64 `json:"cvss_base_score,omitempty" yaml:"cvss_base_score,omitempty"`
	CVSSVector             string   `json:"cvss_vector" yaml:"cvss_vector"`
	CVSS3BaseScore         *float64 `json:"cvss3_base_score,omitempty" yaml:"cvss3_base_score,omitempty"`
	CVSS3Vector            string   `json:"cvss3_vector" yaml:"cvss3_vector"`
	VPRScore               *float64 `json:"vpr_score,omitempty" yaml:"vpr_score,omitempty"`
	EPSSScore              *float64 `json:"epss_score,omitempty" yaml:"epss_score,omitempty"`
	ExploitabilityEase     string   `json:"exploitability_ease" yaml:"exploitability_ease"`
	ExploitCodeMaturity    string   `json:"exploit_code_maturity" yaml:"exploit_code_maturity"`
	FamilyName             string   `json:"family_name" yaml:"family_name"`
	PluginModificationDate string   `json:"plugin_modification_date" yaml:"plugin_modification_date"`
}

// PluginDateLayout is the plugin feed date format
const PluginDateLayout = "2006/01/02"

// DecodeNessusEntry parses one raw bulk element
func DecodeNessusEntry(raw json.RawMessage) (*NessusEntry, error) {
	var e NessusEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, shared.NewDomainError("INVALID_ENTRY", err.Error())
	}
	return &e, nil
}

// ToSignature normalizes the entry to its stored form.
// Strings are cut to their column widths and an unparsable date becomes null.
func (e *NessusEntry) ToSignature(lastUpdate time.Time) (*NessusSignature, error) {
	if err := ValidateID(e.ID); err != nil {
		return nil, err
	}
	var modified *time.Time
	if e.PluginModificationDate != "" {
		if d, err := time.Parse(PluginDateLayout, e.PluginModificationDate); err == nil {
			modified = &d
		}
	}
	return &NessusSignature{
		ID:                     e.ID,
		Name:                   truncate(e.PluginName, 1000),
		Description:            e.Description,
		RiskFactor:             RiskFactor(truncate(string(NormalizeRiskFactor(e.RiskFactor)), 20)),
		Synopsis:               e.Synopsis,
		Solution:               e.Solution,
		References:             e.SeeAlso,
		SeeAlso:                e.SeeAlso,
		CPE:                    e.CPE,
		Agent:                  e.Agent,
		CVE:                    EncodeList(e.CVE),
		XRef:                   EncodeList(e.XRef),
		CVSSBaseScore:          e.CVSSBaseScore,
		CVSSVector:             truncate(e.CVSSVector, 255),
		CVSS3BaseScore:         e.CVSS3BaseScore,
		CVSS3Vector:            truncate(e.CVSS3Vector, 255),
		VPRScore:               e.VPRScore,
		EPSSScore:              e.EPSSScore,
		ExploitabilityEase:     truncate(e.ExploitabilityEase, 255),
		ExploitCodeMaturity:    truncate(e.ExploitCodeMaturity, 50),
		FamilyName:             truncate(e.FamilyName, 255),
		PluginModificationDate: modified,
		LastUpdate:             batchTime(lastUpdate),
	}, nil
}
