package report

import (
	"github.com/scg/portal/internal/domain/shared"
)

// FindingStatus tracks remediation of a finding
type FindingStatus string

const (
	StatusNotStarted    FindingStatus = "not_started"
	StatusInReview      FindingStatus = "in_review"
	StatusMonitoring    FindingStatus = "monitoring"
	StatusMitigated     FindingStatus = "mitigated"
	StatusFixed         FindingStatus = "fixed"
	StatusRiskAccepted  FindingStatus = "risk_accepted"
	StatusNotApplicable FindingStatus = "not_applicable"
)

// FindingStatuses lists every status in display order
var FindingStatuses = []FindingStatus{
	StatusNotStarted,
	StatusInReview,
	StatusMonitoring,
	StatusMitigated,
	StatusFixed,
	StatusRiskAccepted,
	StatusNotApplicable,
}

var statusLabels = map[FindingStatus]string{
	StatusNotStarted:    "Not Started",
	StatusInReview:      "In Review",
	StatusMonitoring:    "Monitoring",
	StatusMitigated:     "Mitigated",
	StatusFixed:         "Fixed",
	StatusRiskAccepted:  "Risk Accepted",
	StatusNotApplicable: "Not Applicable",
}

// Label returns the display label
func (s FindingStatus) Label() string {
	return statusLabels[s]
}

// IsValid reports whether the status is known
func (s FindingStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ErrInvalidStatus is returned for unknown finding statuses
var ErrInvalidStatus = shared.NewDomainError("INVALID_STATUS", "Invalid status")

// ParseFindingStatus validates a status value
func ParseFindingStatus(s string) (FindingStatus, error) {
	st := FindingStatus(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// StatusCount is one entry of a status summary
type StatusCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// StatusSummary keeps only the statuses that occur
func StatusSummary(counts map[FindingStatus]int64) map[FindingStatus]StatusCount {
	out := make(map[FindingStatus]StatusCount)
	for _, st := range FindingStatuses {
		if n := counts[st]; n > 0 {
			out[st] = StatusCount{Label: st.Label(), Count: n}
		}
	}
	return out
}

// StatusCounts is the counts-only variant of StatusSummary
func StatusCounts(counts map[FindingStatus]int64) map[FindingStatus]int64 {
	out := make(map[FindingStatus]int64)
	for _, st := range FindingStatuses {
		if n := counts[st]; n > 0 {
			out[st] = n
		}
	}
	return out
}
