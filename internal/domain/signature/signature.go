package signature

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/scg/portal/internal/domain/shared"
)

// ScannerType selects the signature catalog
type ScannerType string

const (
	ScannerNessus    ScannerType = "nessus"
	ScannerBurpSuite ScannerType = "burpsuite"
)

// View names a signature operation reachable for every scanner
type View string

const (
	ViewList   View = "list"
	ViewDetail View = "detail"
	ViewCreate View = "create"
	ViewUpdate View = "update"
	ViewDelete View = "delete"
	ViewUpload View = "upload"
)

func (v View) valid() bool {
	switch v {
	case ViewList, ViewDetail, ViewCreate, ViewUpdate, ViewDelete, ViewUpload:
		return true
	}
	return false
}

// ParseScannerType accepts the scanner path segment in any case
func ParseScannerType(s string) (ScannerType, error) {
	return ParseScannerView(s, ViewList)
}

// ParseScannerView resolves the scanner of a signature operation.
// Both an unknown scanner and an unknown view yield UNSUPPORTED_SCANNER.
func ParseScannerView(s string, view View) (ScannerType, error) {
	if view.valid() {
		switch ScannerType(strings.ToLower(strings.TrimSpace(s))) {
		case ScannerNessus:
			return ScannerNessus, nil
		case ScannerBurpSuite:
			return ScannerBurpSuite, nil
		}
	}
	return "", shared.NewDomainError("UNSUPPORTED_SCANNER",
		fmt.Sprintf("Unsupported scanner type or view type: %s - %s", s, view))
}

// RiskFactor is the Nessus severity of a plugin
type RiskFactor string

const (
	RiskCritical      RiskFactor = "Critical"
	RiskHigh          RiskFactor = "High"
	RiskMedium        RiskFactor = "Medium"
	RiskLow           RiskFactor = "Low"
	RiskInformational RiskFactor = "Informational"
	RiskNone          RiskFactor = "None"
)

// RiskFactorOrder is the display order of risk groups
var RiskFactorOrder = []RiskFactor{RiskCritical, RiskHigh, RiskMedium, RiskLow, RiskInformational, RiskNone}

// Rank orders risk factors for display. Unknown values sort last.
func (r RiskFactor) Rank() int {
	for i, rf := range RiskFactorOrder {
		if rf == r {
			return i
		}
	}
	return len(RiskFactorOrder)
}

// IsValid reports whether the value is a storable risk factor
func (r RiskFactor) IsValid() bool {
	switch r {
	case RiskCritical, RiskHigh, RiskMedium, RiskLow, RiskInformational:
		return true
	}
	return false
}

// NormalizeRiskFactor maps the plugin feed's "None" to Informational
func NormalizeRiskFactor(s string) RiskFactor {
	if s == string(RiskNone) {
		return RiskInformational
	}
	return RiskFactor(s)
}

// ErrInvalidSignatureID is returned for non-positive signature IDs
var ErrInvalidSignatureID = shared.NewDomainError("INVALID_SIGNATURE_ID", "Signature ID must be a positive integer.")

// ValidateID checks a signature ID
func ValidateID(id int) error {
	if id <= 0 {
		return ErrInvalidSignatureID
	}
	return nil
}

// SplitReferences splits a whitespace separated reference field
func SplitReferences(s string) []string {
	return strings.Fields(s)
}

// ParseCVEList decodes a JSON list of identifiers, dropping quotes, spaces and empties.
// Invalid JSON yields an empty list.
func ParseCVEList(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return out
	}
	for _, item := range items {
		item = strings.NewReplacer(`"`, "", " ", "").Replace(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// EncodeList stores a list as a JSON array string
func EncodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// UploadResult counts the outcome of a bulk signature upload
type UploadResult struct {
	New     int `json:"new" yaml:"new"`
	Updated int `json:"updated" yaml:"updated"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Errors  int `json:"errors" yaml:"errors"`
}

// Add accumulates another result
func (r *UploadResult) Add(other UploadResult) {
	r.New += other.New
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Errors += other.Errors
}

// Total is the number of entries seen
func (r UploadResult) Total() int {
	return r.New + r.Updated + r.Skipped + r.Errors
}

func (r UploadResult) String() string {
	return fmt.Sprintf("Processed signatures. New: %d, Updated: %d, Skipped: %d, Errors: %d", r.New, r.Updated, r.Skipped, r.Errors)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func batchTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
