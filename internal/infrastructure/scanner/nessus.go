package scanner

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/scg/portal/internal/domain/report"
)

// ErrMissingScanDate is returned when a scan has no severity_processed preference
var ErrMissingScanDate = errors.New("scan has no severity_processed preference")

type nessusClientData struct {
	XMLName     xml.Name           `xml:"NessusClientData_v2"`
	Preferences []nessusPreference `xml:"Policy>Preferences>ServerPreferences>preference"`
	Hosts       []nessusHost       `xml:"Report>ReportHost"`
}

type nessusPreference struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

type nessusHost struct {
	Name  string       `xml:"name,attr"`
	Tags  []nessusTag  `xml:"HostProperties>tag"`
	Items []nessusItem `xml:"ReportItem"`
}

type nessusTag struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type nessusItem struct {
	PluginID string `xml:"pluginID,attr"`
}

// ConvertNessusScan reads a .nessus scan export into an upload document:
// the scan date, the scanned targets and one alert per report item.
func ConvertNessusScan(r io.Reader) (*report.NessusUpload, error) {
	var data nessusClientData
	if err := xml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse Nessus XML: %w", err)
	}

	prefs := make(map[string]string, len(data.Preferences))
	for _, p := range data.Preferences {
		if _, seen := prefs[p.Name]; !seen {
			prefs[p.Name] = p.Value
		}
	}
	processed := strings.TrimSpace(prefs["severity_processed"])
	if len(processed) < 8 {
		return nil, ErrMissingScanDate
	}

	upload := &report.NessusUpload{
		Date:        processed[:4] + "-" + processed[4:6] + "-" + processed[6:8],
		Inventory:   strings.Split(strings.TrimSpace(prefs["TARGET"]), ","),
		AlertReport: []report.NessusAlert{},
	}
	for _, host := range data.Hosts {
		osName := host.operatingSystem()
		for _, item := range host.Items {
			pluginID, err := strconv.Atoi(strings.TrimSpace(item.PluginID))
			if err != nil {
				return nil, fmt.Errorf("host %s: invalid pluginID %q", host.Name, item.PluginID)
			}
			upload.AlertReport = append(upload.AlertReport, report.NessusAlert{
				PluginID:       pluginID,
				TargetAffected: host.Name,
				OS:             osName,
			})
		}
	}
	return upload, nil
}

// operatingSystem prefers the short "os" host tag over "operating-system"
func (h nessusHost) operatingSystem() string {
	fallback := ""
	for _, tag := range h.Tags {
		switch tag.Name {
		case "os":
			return tag.Value
		case "operating-system":
			if fallback == "" {
				fallback = tag.Value
			}
		}
	}
	if fallback == "" {
		return "N/A"
	}
	return fallback
}
