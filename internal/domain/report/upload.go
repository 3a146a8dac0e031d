package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/scg/portal/internal/domain/shared"
)

// ErrInvalidJSON is returned when an upload is not valid JSON
var ErrInvalidJSON = shared.NewDomainError("INVALID_JSON", "Invalid JSON file.")

var uploadDateLayouts = []string{"2006-01-02", "2006/01/02", "20060102", time.RFC3339}

// ParseUploadDate accepts the date formats produced by the converters
func ParseUploadDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range uploadDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, shared.NewDomainError("INVALID_DATE", fmt.Sprintf("Invalid report date: %q", s))
}

// NessusUpload is the JSON produced by the Nessus scan converter
type NessusUpload struct {
	Date        string        `json:"date"`
	ScanDate    string        `json:"scan_date,omitempty"`
	Inventory   []string      `json:"inventory"`
	AlertReport []NessusAlert `json:"alert_report"`
}

// NessusAlert is one plugin hit in an upload
type NessusAlert struct {
	PluginID       int    `json:"plugin_id"`
	TargetAffected string `json:"target_affected"`
	OS             string `json:"os"`
}

// DecodeNessusUpload parses and checks a Nessus upload
func DecodeNessusUpload(data []byte) (*NessusUpload, error) {
	var u NessusUpload
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, ErrInvalidJSON
	}
	if u.Date == "" && u.ScanDate == "" {
		return nil, shared.NewDomainError("INVALID_DATE", "Report date is missing")
	}
	return &u, nil
}

// ReportDate returns date, falling back to scan_date
func (u *NessusUpload) ReportDate() (time.Time, error) {
	if u.Date != "" {
		return ParseUploadDate(u.Date)
	}
	return ParseUploadDate(u.ScanDate)
}

// PluginIDs returns the distinct plugin IDs referenced by the alerts
func (u *NessusUpload) PluginIDs() []int {
	seen := make(map[int]bool, len(u.AlertReport))
	ids := make([]int, 0, len(u.AlertReport))
	for _, a := range u.AlertReport {
		if !seen[a.PluginID] {
			seen[a.PluginID] = true
			ids = append(ids, a.PluginID)
		}
	}
	return ids
}

// BurpUpload is the JSON produced by the Burp issue converter
type BurpUpload struct {
	ExportTime string      `json:"exportTime"`
	Issues     []BurpIssue `json:"issues"`
}

// BurpIssue groups the instances of one issue type on one host
type BurpIssue struct {
	Type      IssueType      `json:"type"`
	Name      string         `json:"name"`
	Host      string         `json:"host"`
	Instances []BurpInstance `json:"instances"`
}

// BurpInstance is one occurrence of an issue
type BurpInstance struct {
	Path        *string  `json:"path"`
	Location    *string  `json:"location"`
	Severity    *string  `json:"severity"`
	Confidence  *string  `json:"confidence"`
	IssueDetail *string  `json:"issueDetail"`
	Requests    []string `json:"requests"`
}

// MissingFields lists required instance fields that are absent or null
func (i BurpInstance) MissingFields() []string {
	var missing []string
	if i.Path == nil {
		missing = append(missing, "path")
	}
	if i.Location == nil {
		missing = append(missing, "location")
	}
	if i.Severity == nil {
		missing = append(missing, "severity")
	}
	if i.Confidence == nil {
		missing = append(missing, "confidence")
	}
	return missing
}

// DecodeBurpUpload parses a Burp upload and checks every instance.
// A single incomplete instance rejects the whole upload.
func DecodeBurpUpload(data []byte) (*BurpUpload, error) {
	var u BurpUpload
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, ErrInvalidJSON
	}
	for _, issue := range u.Issues {
		if _, err := issue.SignatureID(); err != nil {
			return nil, err
		}
		for _, inst := range issue.Instances {
			if missing := inst.MissingFields(); len(missing) > 0 {
				return nil, shared.NewDomainError("MISSING_FIELDS",
					fmt.Sprintf("Required fields %s are missing or null in the JSON data", strings.Join(missing, ", ")))
			}
		}
	}
	return &u, nil
}

// ReportDate parses exportTime
func (u *BurpUpload) ReportDate() (time.Time, error) {
	return ParseUploadDate(u.ExportTime)
}

// IssueType accepts the Burp issue type as a JSON string or number
type IssueType string

// UnmarshalJSON implements json.Unmarshaler
func (t *IssueType) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*t = IssueType(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = IssueType(s)
	return nil
}

// SignatureID converts the issue type to a signature ID
func (i BurpIssue) SignatureID() (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(string(i.Type)))
	if err != nil || id <= 0 {
		return 0, shared.NewDomainError("INVALID_ISSUE_TYPE", fmt.Sprintf("Invalid issue type: %q", i.Type))
	}
	return id, nil
}
