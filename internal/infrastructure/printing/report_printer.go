package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	appreport "github.com/scg/portal/internal/application/report"
	"github.com/scg/portal/internal/domain/report"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const footerTemplate = `<div style="font-size:8px;width:100%;text-align:center;color:#666;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// ReportPrinter renders report documents to PDF
type ReportPrinter struct {
	renderer PDFRenderer
	tmpl     *template.Template
	paper    Paper
	location *time.Location
	logger   *zap.Logger
}

// ReportPrinterOption configures ReportPrinter
type ReportPrinterOption func(*ReportPrinter)

// WithPaper sets the page size
func WithPaper(p Paper) ReportPrinterOption {
	return func(rp *ReportPrinter) { rp.paper = p }
}

// WithLocation sets the zone used for the generation timestamp
func WithLocation(loc *time.Location) ReportPrinterOption {
	return func(rp *ReportPrinter) { rp.location = loc }
}

// WithPrinterLogger sets the logger
func WithPrinterLogger(l *zap.Logger) ReportPrinterOption {
	return func(rp *ReportPrinter) { rp.logger = l }
}

// NewReportPrinter parses the embedded report template
func NewReportPrinter(renderer PDFRenderer, opts ...ReportPrinterOption) (*ReportPrinter, error) {
	tmpl, err := template.New("report.html.tmpl").Funcs(templateFuncs()).ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	rp := &ReportPrinter{
		renderer: renderer,
		tmpl:     tmpl,
		paper:    PaperA4,
		location: time.UTC,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(rp)
	}
	return rp, nil
}

// RenderHTML renders the document without converting it to PDF
func (p *ReportPrinter) RenderHTML(doc *appreport.ReportDocument) (string, error) {
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	doc.GeneratedAt = doc.GeneratedAt.In(p.location)

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, doc); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "report template failed", err)
	}
	return buf.String(), nil
}

// PrintReport implements appreport.ReportPrinter
func (p *ReportPrinter) PrintReport(ctx context.Context, doc *appreport.ReportDocument) ([]byte, error) {
	html, err := p.RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	res, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      doc.Title,
		Paper:      p.paper,
		FooterHTML: footerTemplate,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Report printed",
		zap.String("report_id", doc.Report.ID.String()),
		zap.Int("pages", res.PageCount))
	return res.PDFData, nil
}

func templateFuncs() template.FuncMap {
	title := cases.Title(language.English)
	return template.FuncMap{
		"join":  strings.Join,
		"title": func(s string) string { return title.String(strings.ToLower(s)) },
		"score": func(v *float64) string {
			if v == nil {
				return "n/a"
			}
			return fmt.Sprintf("%.1f", *v)
		},
		"datetime":   func(t time.Time) string { return t.Format("2006-01-02 15:04 MST") },
		"riskClass":  riskClass,
		"severities": func() []string { return report.BurpSeverities },
	}
}

func riskClass(level string) string {
	switch strings.ToLower(level) {
	case "critical":
		return "risk-critical"
	case "high":
		return "risk-high"
	case "medium":
		return "risk-medium"
	case "low":
		return "risk-low"
	}
	return "risk-info"
}

var _ appreport.ReportPrinter = (*ReportPrinter)(nil)
