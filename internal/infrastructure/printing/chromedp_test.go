package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromedpRenderer_PrintParams(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{PrintBackground: true}}

	p := r.printParams(&RenderRequest{HTML: "<p>x</p>", Paper: PaperA4})
	assert.InDelta(t, 210/25.4, p.PaperWidth, 0.001)
	assert.InDelta(t, 297/25.4, p.PaperHeight, 0.001)
	assert.InDelta(t, DefaultMargins.Top/25.4, p.MarginTop, 0.001)
	assert.True(t, p.PrintBackground)
	assert.False(t, p.DisplayHeaderFooter)

	p = r.printParams(&RenderRequest{
		HTML:       "<p>x</p>",
		Paper:      PaperLetter,
		Landscape:  true,
		Margins:    Margins{Top: 25.4, Right: 25.4, Bottom: 25.4, Left: 25.4},
		FooterHTML: footerTemplate,
	})
	assert.InDelta(t, 8.5, p.PaperWidth, 0.001)
	assert.InDelta(t, 1.0, p.MarginLeft, 0.001)
	assert.True(t, p.Landscape)
	assert.True(t, p.DisplayHeaderFooter)
	assert.Equal(t, footerTemplate, p.FooterTemplate)
}

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Render(context.Background(), &RenderRequest{HTML: "  "})

	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)
}

func TestNewChromedpRenderer_RemoteURL(t *testing.T) {
	_, err := NewChromedpRenderer(&ChromedpConfig{RemoteURL: "chrome:9222"})
	require.Error(t, err)

	r, err := NewChromedpRenderer(&ChromedpConfig{RemoteURL: "ws://chrome:9222/devtools/browser"})
	require.NoError(t, err)
	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	require.NoError(t, r.Close())
}

func TestWrapDocument(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, wrapDocument(&RenderRequest{HTML: full}))

	doc := wrapDocument(&RenderRequest{HTML: "<p>x</p>", Title: "A & B"})
	assert.Contains(t, doc, "<title>A &amp; B</title>")
	assert.Contains(t, doc, "<body><p>x</p></body>")
}

func TestCountPages(t *testing.T) {
	pdf := []byte("/Type /Pages /Type /Page /Type /Page")
	assert.Equal(t, 2, countPages(pdf))
	assert.Equal(t, 1, countPages([]byte("%PDF")))
}
