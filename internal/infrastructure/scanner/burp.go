// Package scanner converts raw scanner exports into the JSON documents
// accepted by the report upload and signature bulk upload endpoints.
package scanner

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/scg/portal/internal/domain/report"
)

// burpExportTimeLayout is the exportTime attribute format of a Burp issue export
const burpExportTimeLayout = "Mon Jan 2 15:04:05 MST 2006"

type burpExport struct {
	XMLName    xml.Name    `xml:"issues"`
	ExportTime string      `xml:"exportTime,attr"`
	Issues     []burpIssue `xml:"issue"`
}

type burpIssue struct {
	Type        *string  `xml:"type"`
	Name        *string  `xml:"name"`
	Host        *string  `xml:"host"`
	Path        *string  `xml:"path"`
	Location    *string  `xml:"location"`
	Severity    *string  `xml:"severity"`
	Confidence  *string  `xml:"confidence"`
	IssueDetail *string  `xml:"issueDetail"`
	Requests    []string `xml:"requestresponse>request"`
}

type burpKey struct {
	issueType, name, host string
}

// ConvertBurp reads a Burp Suite issue export and groups its issues by
// type, name and host. Element order is kept.
func ConvertBurp(r io.Reader) (*report.BurpUpload, error) {
	var export burpExport
	if err := xml.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("failed to parse Burp XML: %w", err)
	}

	upload := &report.BurpUpload{
		ExportTime: formatExportTime(export.ExportTime),
		Issues:     []report.BurpIssue{},
	}
	index := make(map[burpKey]int)
	for _, issue := range export.Issues {
		key := burpKey{deref(issue.Type), deref(issue.Name), deref(issue.Host)}
		i, ok := index[key]
		if !ok {
			i = len(upload.Issues)
			index[key] = i
			upload.Issues = append(upload.Issues, report.BurpIssue{
				Type:      report.IssueType(key.issueType),
				Name:      key.name,
				Host:      key.host,
				Instances: []report.BurpInstance{},
			})
		}
		upload.Issues[i].Instances = append(upload.Issues[i].Instances, report.BurpInstance{
			Path:        issue.Path,
			Location:    issue.Location,
			Severity:    issue.Severity,
			Confidence:  issue.Confidence,
			IssueDetail: issue.IssueDetail,
			Requests:    nonEmpty(issue.Requests),
		})
	}
	return upload, nil
}

// formatExportTime returns the date part of exportTime, or the value unchanged when it does not parse
func formatExportTime(s string) string {
	t, err := time.Parse(burpExportTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
