package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// RemoteURL of a running Chrome DevTools endpoint; empty launches a local headless Chrome
	RemoteURL      string
	DefaultTimeout time.Duration
	// NoSandbox is needed when Chrome runs as root inside a container
	NoSandbox       bool
	PrintBackground bool
	Logger          *zap.Logger
}

// ChromedpRenderer renders HTML to PDF using the Chrome DevTools Protocol.
// One allocator is shared; every render opens its own browser tab.
type ChromedpRenderer struct {
	config      ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates the allocator. Chrome itself starts on the first render.
func NewChromedpRenderer(cfg *ChromedpConfig) (*ChromedpRenderer, error) {
	if cfg == nil {
		cfg = &ChromedpConfig{}
	}
	r := &ChromedpRenderer{config: *cfg, logger: cfg.Logger}
	if r.config.DefaultTimeout <= 0 {
		r.config.DefaultTimeout = defaultChromeTimeout
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	if r.config.RemoteURL != "" {
		if !strings.HasPrefix(r.config.RemoteURL, "ws://") && !strings.HasPrefix(r.config.RemoteURL, "wss://") &&
			!strings.HasPrefix(r.config.RemoteURL, "http://") && !strings.HasPrefix(r.config.RemoteURL, "https://") {
			return nil, NewRenderError(ErrCodeRenderFailed, "invalid Chrome URL "+r.config.RemoteURL, nil)
		}
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return r, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r, nil
}

// Render converts an HTML document to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()
	// the tab must also stop when the caller's context ends
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	params := r.printParams(req)
	doc := wrapDocument(req)
	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	res := &RenderResult{PDFData: pdf, PageCount: countPages(pdf), RenderDuration: time.Since(start)}
	r.logger.Info("PDF rendered",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", res.PageCount),
		zap.Duration("duration", res.RenderDuration))
	return res, nil
}

// printParams maps a request to Chrome's print parameters (inches)
func (r *ChromedpRenderer) printParams(req *RenderRequest) *page.PrintToPDFParams {
	w, h := req.Paper.Dimensions()
	m := req.Margins
	if m == (Margins{}) {
		m = DefaultMargins
	}
	p := page.PrintToPDF().
		WithPaperWidth(mmToInches(w)).
		WithPaperHeight(mmToInches(h)).
		WithMarginTop(mmToInches(m.Top)).
		WithMarginRight(mmToInches(m.Right)).
		WithMarginBottom(mmToInches(m.Bottom)).
		WithMarginLeft(mmToInches(m.Left)).
		WithLandscape(req.Landscape).
		WithPrintBackground(r.config.PrintBackground)
	if req.FooterHTML != "" {
		p = p.WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(req.FooterHTML)
	}
	return p
}

// Close stops the allocator and any Chrome it started
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// wrapDocument completes an HTML fragment into a document
func wrapDocument(req *RenderRequest) string {
	lower := strings.ToLower(req.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return req.HTML
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if req.Title != "" {
		b.WriteString("<title>" + html.EscapeString(req.Title) + "</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(req.HTML)
	b.WriteString("</body></html>")
	return b.String()
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
