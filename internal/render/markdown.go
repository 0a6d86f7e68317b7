package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// MarkdownRenderer renders prose through goldmark.
//
// The Typographer and Footnote extensions mirror the smart-punctuation and
// footnote behavior of classic literate-doc generators; fenced code blocks
// are native CommonMark. Raw HTML in comments is passed through.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer constructs the default prose renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Typographer, extension.Footnote),
			goldmark.WithRendererOptions(ghtml.WithUnsafe()),
		),
	}
}

// RenderProse converts Markdown prose into an HTML fragment.
func (r *MarkdownRenderer) RenderProse(prose string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(prose), &buf); err != nil {
		return "", fmt.Errorf("%w: markdown: %v", ErrRender, err)
	}
	return buf.String(), nil
}
