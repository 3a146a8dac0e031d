package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/signature"
)

// DisplayTimeLayout formats status change timestamps
const DisplayTimeLayout = "Jan 02, 2006, 03:04:05 PM"

// NotAvailable is shown for missing change data
const NotAvailable = "N/A"

// FormatChangedAt renders a change timestamp in loc, or N/A
func FormatChangedAt(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayTimeLayout)
}

// FormatChangedBy resolves the e-mail of the user who changed a finding, or N/A
func FormatChangedBy(by *uuid.UUID, emails map[uuid.UUID]string) string {
	if by == nil {
		return NotAvailable
	}
	if email, ok := emails[*by]; ok && email != "" {
		return email
	}
	return NotAvailable
}

// NessusTarget is one affected host of a grouped vulnerability
type NessusTarget struct {
	ID              uuid.UUID     `json:"id"`
	TargetAffected  string        `json:"target_affected"`
	OperatingSystem string        `json:"operating_system"`
	Status          FindingStatus `json:"status"`
	StatusLabel     string        `json:"status_label"`
	ChangedAt       string        `json:"changed_at"`
	ChangedBy       string        `json:"changed_by"`
}

// NessusVulnerability is a signature with every target it was found on
type NessusVulnerability struct {
	Signature *signature.NessusSignature
	Targets   []NessusTarget
}

// NessusRiskGroup holds the vulnerabilities of one risk factor
type NessusRiskGroup struct {
	RiskFactor      signature.RiskFactor
	Vulnerabilities []NessusVulnerability
}

// GroupNessusFindings groups findings by risk factor, then by signature.
// Groups follow RiskFactorOrder; signatures keep first-seen order.
func GroupNessusFindings(findings []NessusFinding, sigs map[int]*signature.NessusSignature, emails map[uuid.UUID]string, loc *time.Location) []NessusRiskGroup {
	type bucket struct {
		group   *NessusRiskGroup
		indexOf map[int]int
	}
	buckets := make(map[signature.RiskFactor]*bucket)
	var order []signature.RiskFactor

	for _, f := range findings {
		sig, ok := sigs[f.SignatureID]
		if !ok {
			continue
		}
		b, ok := buckets[sig.RiskFactor]
		if !ok {
			b = &bucket{group: &NessusRiskGroup{RiskFactor: sig.RiskFactor}, indexOf: make(map[int]int)}
			buckets[sig.RiskFactor] = b
			order = append(order, sig.RiskFactor)
		}
		idx, ok := b.indexOf[sig.ID]
		if !ok {
			b.group.Vulnerabilities = append(b.group.Vulnerabilities, NessusVulnerability{Signature: sig})
			idx = len(b.group.Vulnerabilities) - 1
			b.indexOf[sig.ID] = idx
		}
		v := &b.group.Vulnerabilities[idx]
		v.Targets = append(v.Targets, NessusTarget{
			ID:              f.ID,
			TargetAffected:  f.TargetAffected,
			OperatingSystem: f.OperatingSystem,
			Status:          f.Status,
			StatusLabel:     f.Status.Label(),
			ChangedAt:       FormatChangedAt(f.ChangedAt, loc),
			ChangedBy:       FormatChangedBy(f.ChangedBy, emails),
		})
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Rank() < order[j].Rank()
	})
	groups := make([]NessusRiskGroup, 0, len(order))
	for _, rf := range order {
		groups = append(groups, *buckets[rf].group)
	}
	return groups
}

// BurpSignatureFacts are the signature texts shown with an issue
type BurpSignatureFacts struct {
	Description                  string   `json:"description"`
	References                   []string `json:"references"`
	Remediation                  string   `json:"remediation"`
	VulnerabilityClassifications string   `json:"vulnerability_classifications"`
}

// BurpInstanceView is one instance of a grouped Burp issue
type BurpInstanceView struct {
	ID          uuid.UUID     `json:"id"`
	Path        string        `json:"path"`
	Location    string        `json:"location"`
	Severity    string        `json:"severity"`
	Confidence  string        `json:"confidence"`
	IssueDetail string        `json:"issue_detail"`
	Requests    []string      `json:"requests"`
	Status      FindingStatus `json:"status"`
	StatusLabel string        `json:"status_label"`
	ChangedAt   string        `json:"changed_at"`
	ChangedBy   string        `json:"changed_by"`
}

// BurpIssueGroup is a Burp signature with its instances
type BurpIssueGroup struct {
	Type           int                `json:"type"`
	Name           string             `json:"name"`
	Host           string             `json:"host"`
	Signature      BurpSignatureFacts `json:"signature"`
	Instances      []BurpInstanceView `json:"instances"`
	SeverityCounts map[string]int     `json:"severity_counts"`
}

// BurpSeverities are always present in severity counts
var BurpSeverities = []string{"High", "Medium", "Low", "Information"}

// GroupBurpFindings groups findings by signature in first-seen order.
// The host of a group is the host of its first finding.
func GroupBurpFindings(findings []BurpFinding, sigs map[int]*signature.BurpSuiteSignature, emails map[uuid.UUID]string, loc *time.Location) []BurpIssueGroup {
	indexOf := make(map[int]int)
	var groups []BurpIssueGroup

	for _, f := range findings {
		sig, ok := sigs[f.SignatureID]
		if !ok {
			continue
		}
		idx, ok := indexOf[sig.ID]
		if !ok {
			counts := make(map[string]int, len(BurpSeverities))
			for _, s := range BurpSeverities {
				counts[s] = 0
			}
			groups = append(groups, BurpIssueGroup{
				Type: sig.ID,
				Name: sig.Name,
				Host: f.Host,
				Signature: BurpSignatureFacts{
					Description:                  sig.Description,
					References:                   sig.ReferenceList(),
					Remediation:                  sig.Remediation,
					VulnerabilityClassifications: sig.VulnerabilityClassifications,
				},
				SeverityCounts: counts,
			})
			idx = len(groups) - 1
			indexOf[sig.ID] = idx
		}
		g := &groups[idx]
		g.Instances = append(g.Instances, BurpInstanceView{
			ID:          f.ID,
			Path:        f.Path,
			Location:    f.Location,
			Severity:    f.Severity,
			Confidence:  f.Confidence,
			IssueDetail: f.IssueDetail,
			Requests:    f.Requests,
			Status:      f.Status,
			StatusLabel: f.Status.Label(),
			ChangedAt:   FormatChangedAt(f.ChangedAt, loc),
			ChangedBy:   FormatChangedBy(f.ChangedBy, emails),
		})
		g.SeverityCounts[f.Severity]++
	}
	return groups
}
