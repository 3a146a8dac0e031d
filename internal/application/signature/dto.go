package signature

import (
	"time"

	"github.com/scg/portal/internal/domain/signature"
)

// SignatureListFilter filters a signature catalog
type SignatureListFilter struct {
	Search     string `form:"search"`
	ID         int    `form:"id" binding:"omitempty,min=1"`
	RiskFactor string `form:"risk_factor" binding:"omitempty,oneof=Critical High Medium Low Informational"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// SignatureRequest creates or replaces a signature.
// Nessus and Burp Suite fields share one request; fields of the other scanner are ignored.
type SignatureRequest struct {
	ID          int    `json:"id"`
	Name        string `json:"name" binding:"required,max=1000"`
	Description string `json:"description"`
	References  string `json:"references"`

	// Nessus
	RiskFactor             string   `json:"risk_factor" binding:"omitempty,oneof=Critical High Medium Low Informational"`
	Synopsis               string   `json:"synopsis"`
	Solution               string   `json:"solution"`
	SeeAlso                string   `json:"see_also"`
	CPE                    string   `json:"cpe"`
	Agent                  string   `json:"agent"`
	CVE                    []string `json:"cve"`
	XRef                   []string `json:"xref"`
	CVSSBaseScore          *float64 `json:"cvss_base_score" binding:"omitempty,min=0,max=10"`
	CVSSVector             string   `json:"cvss_vector" binding:"max=255"`
	CVSS3BaseScore         *float64 `json:"cvss3_base_score" binding:"omitempty,min=0,max=10"`
	CVSS3Vector            string   `json:"cvss3_vector" binding:"max=255"`
	VPRScore               *float64 `json:"vpr_score" binding:"omitempty,min=0,max=10"`
	EPSSScore              *float64 `json:"epss_score" binding:"omitempty,min=0,max=1"`
	ExploitabilityEase     string   `json:"exploitability_ease" binding:"max=255"`
	ExploitCodeMaturity    string   `json:"exploit_code_maturity" binding:"max=50"`
	FamilyName             string   `json:"family_name" binding:"max=255"`
	PluginModificationDate string   `json:"plugin_modification_date" binding:"omitempty,datetime=2006-01-02"`

	// Burp Suite
	Remediation                  string `json:"remediation"`
	VulnerabilityClassifications string `json:"vulnerability_classifications"`
	Retired                      bool   `json:"retired"`
}

// SignatureResponse represents a signature of either scanner
type SignatureResponse struct {
	ScannerType signature.ScannerType `json:"scanner_type"`
	ID          int                   `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	References  []string              `json:"references"`
	LastUpdate  time.Time             `json:"last_update"`

	RiskFactor             string     `json:"risk_factor,omitempty"`
	Synopsis               string     `json:"synopsis,omitempty"`
	Solution               string     `json:"solution,omitempty"`
	SeeAlso                string     `json:"see_also,omitempty"`
	CPE                    string     `json:"cpe,omitempty"`
	Agent                  string     `json:"agent,omitempty"`
	CVE                    []string   `json:"cve,omitempty"`
	XRef                   []string   `json:"xref,omitempty"`
	CVSSBaseScore          *float64   `json:"cvss_base_score,omitempty"`
	CVSSVector             string     `json:"cvss_vector,omitempty"`
	CVSS3BaseScore         *float64   `json:"cvss3_base_score,omitempty"`
	CVSS3Vector            string     `json:"cvss3_vector,omitempty"`
	VPRScore               *float64   `json:"vpr_score,omitempty"`
	EPSSScore              *float64   `json:"epss_score,omitempty"`
	ExploitabilityEase     string     `json:"exploitability_ease,omitempty"`
	ExploitCodeMaturity    string     `json:"exploit_code_maturity,omitempty"`
	FamilyName             string     `json:"family_name,omitempty"`
	PluginModificationDate *time.Time `json:"plugin_modification_date,omitempty"`

	Remediation                  string `json:"remediation,omitempty"`
	VulnerabilityClassifications string `json:"vulnerability_classifications,omitempty"`
	Retired                      bool   `json:"retired,omitempty"`
}

// ToNessusResponse converts a Nessus signature
func ToNessusResponse(s *signature.NessusSignature) SignatureResponse {
	return SignatureResponse{
		ScannerType:            signature.ScannerNessus,
		ID:                     s.ID,
		Name:                   s.Name,
		Description:            s.Description,
		References:             s.ReferenceList(),
		LastUpdate:             s.LastUpdate,
		RiskFactor:             string(s.RiskFactor),
		Synopsis:               s.Synopsis,
		Solution:               s.Solution,
		SeeAlso:                s.SeeAlso,
		CPE:                    s.CPE,
		Agent:                  s.Agent,
		CVE:                    s.CVEList(),
		XRef:                   s.XRefList(),
		CVSSBaseScore:          s.CVSSBaseScore,
		CVSSVector:             s.CVSSVector,
		CVSS3BaseScore:         s.CVSS3BaseScore,
		CVSS3Vector:            s.CVSS3Vector,
		VPRScore:               s.VPRScore,
		EPSSScore:              s.EPSSScore,
		ExploitabilityEase:     s.ExploitabilityEase,
		ExploitCodeMaturity:    s.ExploitCodeMaturity,
		FamilyName:             s.FamilyName,
		PluginModificationDate: s.PluginModificationDate,
	}
}

// ToBurpResponse converts a Burp Suite signature
func ToBurpResponse(s *signature.BurpSuiteSignature) SignatureResponse {
	return SignatureResponse{
		ScannerType:                  signature.ScannerBurpSuite,
		ID:                           s.ID,
		Name:                         s.Name,
		Description:                  s.Description,
		References:                   s.ReferenceList(),
		LastUpdate:                   s.LastUpdate,
		Remediation:                  s.Remediation,
		VulnerabilityClassifications: s.VulnerabilityClassifications,
		Retired:                      s.Retired,
	}
}

func (r *SignatureRequest) applyNessus(s *signature.NessusSignature) {
	s.Name = r.Name
	s.Description = r.Description
	s.References = r.References
	s.RiskFactor = signature.NormalizeRiskFactor(r.RiskFactor)
	s.Synopsis = r.Synopsis
	s.Solution = r.Solution
	s.SeeAlso = r.SeeAlso
	s.CPE = r.CPE
	s.Agent = r.Agent
	s.CVE = signature.EncodeList(r.CVE)
	s.XRef = signature.EncodeList(r.XRef)
	s.CVSSBaseScore = r.CVSSBaseScore
	s.CVSSVector = r.CVSSVector
	s.CVSS3BaseScore = r.CVSS3BaseScore
	s.CVSS3Vector = r.CVSS3Vector
	s.VPRScore = r.VPRScore
	s.EPSSScore = r.EPSSScore
	s.ExploitabilityEase = r.ExploitabilityEase
	s.ExploitCodeMaturity = r.ExploitCodeMaturity
	s.FamilyName = r.FamilyName
	s.PluginModificationDate = nil
	if d, err := time.Parse(time.DateOnly, r.PluginModificationDate); err == nil {
		s.PluginModificationDate = &d
	}
}

func (r *SignatureRequest) applyBurp(s *signature.BurpSuiteSignature) {
	s.Name = r.Name
	s.Description = r.Description
	s.References = r.References
	s.Remediation = r.Remediation
	s.VulnerabilityClassifications = r.VulnerabilityClassifications
	s.Retired = r.Retired
}
