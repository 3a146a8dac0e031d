package scanner

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/scg/portal/internal/domain/signature"
)

type pluginListEntry struct {
	ID         json.Number       `json:"id"`
	FamilyName string            `json:"family_name"`
	Attributes []pluginAttribute `json:"attributes"`
}

type pluginAttribute struct {
	Name  string `json:"attribute_name"`
	Value string `json:"attribute_value"`
}

// ConvertNessusPlugins reads a Nessus plugin list export (plugins with
// name/value attribute pairs) into signature bulk upload entries.
// cve and xref attributes repeat and are collected into lists.
func ConvertNessusPlugins(r io.Reader) ([]signature.NessusEntry, error) {
	var plugins []pluginListEntry
	if err := json.NewDecoder(r).Decode(&plugins); err != nil {
		return nil, fmt.Errorf("failed to parse plugin list: %w", err)
	}

	entries := make([]signature.NessusEntry, 0, len(plugins))
	for i, p := range plugins {
		id, err := strconv.Atoi(p.ID.String())
		if err != nil {
			return nil, fmt.Errorf("plugin %d: invalid id %q", i, p.ID)
		}
		e := signature.NessusEntry{ID: id, FamilyName: p.FamilyName}
		for _, attr := range p.Attributes {
			applyAttribute(&e, attr)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func applyAttribute(e *signature.NessusEntry, attr pluginAttribute) {
	v := attr.Value
	switch attr.Name {
	case "cve":
		e.CVE = append(e.CVE, v)
	case "xref":
		e.XRef = append(e.XRef, v)
	case "plugin_name":
		e.PluginName = v
	case "risk_factor":
		e.RiskFactor = v
	case "description":
		e.Description = v
	case "synopsis":
		e.Synopsis = v
	case "solution":
		e.Solution = v
	case "see_also":
		e.SeeAlso = v
	case "cpe":
		e.CPE = v
	case "agent":
		e.Agent = v
	case "cvss_vector":
		e.CVSSVector = v
	case "cvss3_vector":
		e.CVSS3Vector = v
	case "cvss_base_score":
		e.CVSSBaseScore = score(v)
	case "cvss3_base_score":
		e.CVSS3BaseScore = score(v)
	case "vpr_score":
		e.VPRScore = score(v)
	case "epss_score":
		e.EPSSScore = score(v)
	case "exploitability_ease":
		e.ExploitabilityEase = v
	case "exploit_code_maturity":
		e.ExploitCodeMaturity = v
	case "plugin_modification_date":
		e.PluginModificationDate = v
	}
}

// score parses a numeric attribute; anything else is left unset
func score(v string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil
	}
	return &f
}
