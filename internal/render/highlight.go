package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ChromaRenderer highlights code with chroma, emitting class-based HTML so
// the stylesheet controls appearance.
type ChromaRenderer struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// NewChromaRenderer constructs the default code renderer.
func NewChromaRenderer() *ChromaRenderer {
	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}
	return &ChromaRenderer{
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     style,
	}
}

// RenderCode highlights one section's code for the given language. Unknown
// languages fall back to an unstyled plain-text lexer rather than failing.
func (r *ChromaRenderer) RenderCode(code, languageID string) (string, error) {
	lexer := lexers.Get(languageID)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("%w: tokenise %s: %v", ErrRender, languageID, err)
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return "", fmt.Errorf("%w: highlight %s: %v", ErrRender, languageID, err)
	}
	return buf.String(), nil
}

// WriteCSS emits the class definitions used by the highlighted fragments, so
// the site layer can bundle them next to its own stylesheet.
func (r *ChromaRenderer) WriteCSS(w io.Writer) error {
	return r.formatter.WriteCSS(w, r.style)
}

// Renderer bundles the default prose and code renderers into a single
// SectionRenderer.
type Renderer struct {
	*MarkdownRenderer
	*ChromaRenderer
}

// NewRenderer constructs the default SectionRenderer.
func NewRenderer() *Renderer {
	return &Renderer{
		MarkdownRenderer: NewMarkdownRenderer(),
		ChromaRenderer:   NewChromaRenderer(),
	}
}
