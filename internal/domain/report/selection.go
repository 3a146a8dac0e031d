package report

import (
	"sort"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
)

// SelectableService is a contracted service offered in the report selection
type SelectableService struct {
	ServiceID   uuid.UUID          `json:"service_id"`
	ServiceCode string             `json:"service_code"`
	Name        string             `json:"name"`
	Kind        catalog.ReportKind `json:"kind"`
	ReportCount int64              `json:"report_count"`
}

// ReportTypeGroup lists the selectable services of one report type
type ReportTypeGroup struct {
	ReportType string              `json:"report_type"`
	Services   []SelectableService `json:"services"`
}

// BuildSelection groups services by report type name.
// Services without a report type are listed under an empty name.
func BuildSelection(services []catalog.Service, counts map[uuid.UUID]int64) []ReportTypeGroup {
	byType := make(map[string][]SelectableService)
	seen := make(map[uuid.UUID]bool)
	for _, s := range services {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		name := ""
		if s.ReportType != nil {
			name = s.ReportType.Name
		}
		byType[name] = append(byType[name], SelectableService{
			ServiceID:   s.ID,
			ServiceCode: s.ServiceCode,
			Name:        s.Name,
			Kind:        s.ReportKind(),
			ReportCount: counts[s.ID],
		})
	}

	names := make([]string, 0, len(byType))
	for n := range byType {
		names = append(names, n)
	}
	sort.Strings(names)

	groups := make([]ReportTypeGroup, 0, len(names))
	for _, n := range names {
		svcs := byType[n]
		sort.Slice(svcs, func(i, j int) bool { return svcs[i].ServiceCode < svcs[j].ServiceCode })
		groups = append(groups, ReportTypeGroup{ReportType: n, Services: svcs})
	}
	return groups
}
