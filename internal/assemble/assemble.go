// Package assemble recombines externally rendered HTML fragments with the
// raw sections they came from, preserving original order.
package assemble

import (
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/weave/internal/docmodel"
	"git.home.luguber.info/inful/weave/internal/render"
)

// ErrRenderMismatch is returned when the renderer hands back a different
// number of fragments than sections were submitted. This is a contract
// violation by the external renderer and always fatal for the file.
var ErrRenderMismatch = errors.New("rendered fragment count does not match section count")

// Attach pairs rendered prose and code fragments onto the document's
// sections, in order. Both slices must have exactly one fragment per section.
func Attach(doc *docmodel.Document, proseHTML, codeHTML []string) error {
	if len(proseHTML) != len(doc.Sections) {
		return fmt.Errorf("%w: %d prose fragments for %d sections", ErrRenderMismatch, len(proseHTML), len(doc.Sections))
	}
	if len(codeHTML) != len(doc.Sections) {
		return fmt.Errorf("%w: %d code fragments for %d sections", ErrRenderMismatch, len(codeHTML), len(doc.Sections))
	}
	for i, s := range doc.Sections {
		s.ProseHTML = proseHTML[i]
		s.CodeHTML = codeHTML[i]
	}
	return nil
}

// RenderDocument runs every section of the document through the renderer and
// attaches the results. Sections are rendered sequentially; parallelism
// lives at the file level, not inside one document.
func RenderDocument(doc *docmodel.Document, r render.SectionRenderer) error {
	proseHTML := make([]string, 0, len(doc.Sections))
	codeHTML := make([]string, 0, len(doc.Sections))

	for _, s := range doc.Sections {
		ph, err := r.RenderProse(strings.Join(s.Prose, "\n"))
		if err != nil {
			return fmt.Errorf("section %d: %w", s.Index, err)
		}
		ch, err := r.RenderCode(strings.Join(s.Code, "\n"), doc.Language)
		if err != nil {
			return fmt.Errorf("section %d: %w", s.Index, err)
		}
		proseHTML = append(proseHTML, ph)
		codeHTML = append(codeHTML, ch)
	}

	return Attach(doc, proseHTML, codeHTML)
}
