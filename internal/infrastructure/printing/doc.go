// Package printing exports reports as PDF.
//
// ReportPrinter renders a report document into HTML with an embedded
// html/template and hands it to a PDFRenderer. ChromedpRenderer drives a
// headless Chrome, either started locally or reached through a remote
// DevTools URL:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{RemoteURL: "ws://chrome:9222"})
//	if err != nil {
//	    return err
//	}
//	defer renderer.Close()
//	printer := NewReportPrinter(renderer, WithPaper(PaperA4))
package printing
