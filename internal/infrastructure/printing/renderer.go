package printing

import (
	"bytes"
	"context"
	"time"
)

// Paper is an output page size
type Paper string

const (
	PaperA4     Paper = "A4"
	PaperLetter Paper = "LETTER"
)

// Dimensions returns width and height in millimeters
func (p Paper) Dimensions() (float64, float64) {
	if p == PaperLetter {
		return 215.9, 279.4
	}
	return 210, 297
}

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins are used when a request leaves margins unset
var DefaultMargins = Margins{Top: 15, Right: 12, Bottom: 15, Left: 12}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML      string
	Title     string
	Paper     Paper
	Landscape bool
	Margins   Margins
	// FooterHTML is a Chrome footer template; it may use the pageNumber and totalPages classes
	FooterHTML string
	// Timeout overrides the renderer default
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer renders HTML documents to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeInvalidHTML    = "INVALID_HTML"
	ErrCodeTemplateFailed = "TEMPLATE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// countPages counts page objects, excluding the page tree nodes
func countPages(pdf []byte) int {
	n := bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
	return max(n, 1)
}
