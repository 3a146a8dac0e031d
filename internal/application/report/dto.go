package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/signature"
)

// ReportListFilter holds pagination for a service's report list
type ReportListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UploadInput carries a scanner upload. Data is the raw file content.
type UploadInput struct {
	ContractID uuid.UUID
	Name       string
	Filename   string
	Data       []byte
	UploadedBy uuid.UUID
}

// UploadForm is the multipart form of a report upload, without the file
type UploadForm struct {
	Name       string `form:"name" binding:"required,min=1,max=255"`
	ContractID string `form:"contract_id" binding:"required,uuid"`
}

// ReportResponse represents a report header in API responses
type ReportResponse struct {
	ID         uuid.UUID          `json:"id"`
	Name       string             `json:"name"`
	CustomerID uuid.UUID          `json:"customer_id"`
	ContractID *uuid.UUID         `json:"contract_id,omitempty"`
	ServiceID  uuid.UUID          `json:"service_id"`
	Date       string             `json:"date"`
	Kind       catalog.ReportKind `json:"kind"`
	Inventory  []string           `json:"inventory,omitempty"`
	Archived   bool               `json:"archived"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ToReportResponse converts a domain report to a response
func ToReportResponse(r *report.Report) ReportResponse {
	return ReportResponse{
		ID:         r.ID,
		Name:       r.Name,
		CustomerID: r.CustomerID,
		ContractID: r.ContractID,
		ServiceID:  r.ServiceID,
		Date:       r.Date.Format("2006-01-02"),
		Kind:       r.Kind,
		Inventory:  []string(r.Inventory),
		Archived:   r.SourceKey != "",
		CreatedAt:  r.CreatedAt,
	}
}

// UploadResponse is returned after a successful upload
type UploadResponse struct {
	Report       ReportResponse `json:"report"`
	FindingCount int            `json:"finding_count"`
	Warnings     []string       `json:"warnings"`
}

// NessusVulnerabilityResponse is a Nessus signature with its affected targets
type NessusVulnerabilityResponse struct {
	PluginID            int                   `json:"plugin_id"`
	Name                string                `json:"name"`
	RiskFactor          signature.RiskFactor  `json:"risk_factor"`
	Synopsis            string                `json:"synopsis"`
	Description         string                `json:"description"`
	Solution            string                `json:"solution"`
	SeeAlso             string                `json:"see_also,omitempty"`
	References          []string              `json:"references"`
	CVE                 []string              `json:"cve"`
	CVSSBaseScore       *float64              `json:"cvss_base_score,omitempty"`
	CVSS3BaseScore      *float64              `json:"cvss3_base_score,omitempty"`
	VPRScore            *float64              `json:"vpr_score,omitempty"`
	EPSSScore           *float64              `json:"epss_score,omitempty"`
	ExploitCodeMaturity string                `json:"exploit_code_maturity,omitempty"`
	Targets             []report.NessusTarget `json:"targets"`
}

// NessusRiskGroupResponse holds the vulnerabilities of one risk factor
type NessusRiskGroupResponse struct {
	RiskFactor      signature.RiskFactor          `json:"risk_factor"`
	Count           int                           `json:"count"`
	Vulnerabilities []NessusVulnerabilityResponse `json:"vulnerabilities"`
}

func toNessusGroups(groups []report.NessusRiskGroup) []NessusRiskGroupResponse {
	out := make([]NessusRiskGroupResponse, 0, len(groups))
	for _, g := range groups {
		resp := NessusRiskGroupResponse{
			RiskFactor:      g.RiskFactor,
			Vulnerabilities: make([]NessusVulnerabilityResponse, 0, len(g.Vulnerabilities)),
		}
		for _, v := range g.Vulnerabilities {
			sig := v.Signature
			resp.Vulnerabilities = append(resp.Vulnerabilities, NessusVulnerabilityResponse{
				PluginID:            sig.ID,
				Name:                sig.Name,
				RiskFactor:          sig.RiskFactor,
				Synopsis:            sig.Synopsis,
				Description:         sig.Description,
				Solution:            sig.Solution,
				SeeAlso:             sig.SeeAlso,
				References:          sig.ReferenceList(),
				CVE:                 sig.CVEList(),
				CVSSBaseScore:       sig.CVSSBaseScore,
				CVSS3BaseScore:      sig.CVSS3BaseScore,
				VPRScore:            sig.VPRScore,
				EPSSScore:           sig.EPSSScore,
				ExploitCodeMaturity: sig.ExploitCodeMaturity,
				Targets:             v.Targets,
			})
			resp.Count += len(v.Targets)
		}
		out = append(out, resp)
	}
	return out
}

// ReportDetailResponse is a report with its grouped findings.
// RiskGroups is set for Nessus reports, Issues for Burp reports.
type ReportDetailResponse struct {
	Report        ReportResponse                              `json:"report"`
	StatusSummary map[report.FindingStatus]report.StatusCount `json:"status_summary"`
	RiskGroups    []NessusRiskGroupResponse                   `json:"risk_groups,omitempty"`
	Issues        []report.BurpIssueGroup                     `json:"issues,omitempty"`
}

// BulkStatusRequest changes the status of one or more findings
type BulkStatusRequest struct {
	FindingID  string `json:"finding_id" binding:"omitempty,uuid"`
	Status     string `json:"status" binding:"required"`
	BulkType   string `json:"bulk_type"`
	RiskFactor string `json:"risk_factor"`
	Severity   string `json:"severity"`
}

// BulkStatusResponse reports the findings a bulk update changed
type BulkStatusResponse struct {
	Success         bool                    `json:"success"`
	NewStatus       report.FindingStatus    `json:"new_status"`
	UpdatedCount    int                     `json:"updated_count"`
	UpdatedFindings []report.UpdatedFinding `json:"updated_findings"`
}

// SelectableContract is a contract offered in the report selection
type SelectableContract struct {
	ID             uuid.UUID       `json:"id"`
	ContractNumber string          `json:"contract_number"`
	Status         contract.Status `json:"status"`
	StatusLabel    string          `json:"status_label"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
}

// SelectionResponse lists what a customer can browse reports for
type SelectionResponse struct {
	Contracts   []SelectableContract     `json:"contracts"`
	ReportTypes []report.ReportTypeGroup `json:"report_types"`
}

// ExportResult is a rendered report document
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportDocument is the printable summary of a report
type ReportDocument struct {
	Title       string
	ServiceName string
	ServiceCode string
	Report      ReportResponse
	GeneratedAt time.Time
	Summary     []report.StatusCount
	RiskGroups  []NessusRiskGroupResponse
	Issues      []report.BurpIssueGroup
}
