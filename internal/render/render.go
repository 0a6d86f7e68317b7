// Package render defines the boundary between segmentation and the external
// prose/code renderers, together with the default implementations: goldmark
// for Markdown prose and chroma for syntax-highlighted code.
package render

import (
	"errors"
)

// ErrRender classifies failures reported by a renderer. Rendering errors are
// always fatal for the affected file; retrying is the renderer's own concern.
var ErrRender = errors.New("render failed")

// ProseRenderer turns the prose text of one section into an HTML fragment.
// Implementations must be pure transformations: no side effects beyond the
// returned fragment, and safe for concurrent use across files.
type ProseRenderer interface {
	RenderProse(prose string) (string, error)
}

// CodeRenderer turns the code text of one section into an HTML fragment.
// The language identifier comes from the resolved descriptor.
type CodeRenderer interface {
	RenderCode(code, languageID string) (string, error)
}

// SectionRenderer combines both halves of the rendering contract.
type SectionRenderer interface {
	ProseRenderer
	CodeRenderer
}
