package site

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/weave/internal/docmodel"
)

//go:embed page.html.tmpl
var pageTemplateSource string

//go:embed assets/weave.css
var baseStylesheet []byte

const stylesheetName = "weave.css"

// Writer renders assembled documents into HTML files under the output root.
type Writer struct {
	opts   Options
	tmpl   *template.Template
	commit string
	now    func() time.Time
}

// NewWriter parses the page template and returns a writer for opts. The
// commit, when non-empty, is stamped into each page footer.
func NewWriter(opts Options, commit string) (*Writer, error) {
	tmpl, err := template.New("page").Parse(pageTemplateSource)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Writer{opts: opts, tmpl: tmpl, commit: commit, now: time.Now}, nil
}

// Destination computes where a source file's page will be written under
// this writer's output root.
func (w *Writer) Destination(source string) string {
	return Destination(source, w.opts)
}

// WriteAssets writes the shared stylesheet (layout plus highlighter classes)
// to the output root. Called once per batch, before any pages.
func (w *Writer) WriteAssets(highlightCSS func(io.Writer) error) error {
	if err := EnsureDirectory(w.opts.OutDir); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Write(baseStylesheet)
	if highlightCSS != nil {
		buf.WriteString("\n")
		if err := highlightCSS(&buf); err != nil {
			return fmt.Errorf("render highlight css: %w", err)
		}
	}

	path := filepath.Join(w.opts.OutDir, stylesheetName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}
	return nil
}

type sectionView struct {
	Index     int
	ProseHTML template.HTML
	CodeHTML  template.HTML
}

type pageData struct {
	Title      string
	Stylesheet string
	Sections   []sectionView
	Source     string
	Date       string
	Commit     string
}

// WritePage renders one document and writes its HTML file, returning the
// destination path. The page is rendered fully in memory first so a failed
// render never leaves partial output behind.
func (w *Writer) WritePage(doc *docmodel.Document) (string, error) {
	dest := Destination(doc.Source, w.opts)

	data := pageData{
		Title:      filepath.Base(doc.Source),
		Stylesheet: relativeStylesheet(dest, w.opts),
		Source:     doc.Source,
		Date:       w.now().UTC().Format("02 Jan 2006"),
		Commit:     w.commit,
	}
	for _, s := range doc.Sections {
		data.Sections = append(data.Sections, sectionView{
			Index:     s.Index,
			ProseHTML: template.HTML(s.ProseHTML), // #nosec G203 -- fragments come from our own renderers
			CodeHTML:  template.HTML(s.CodeHTML),  // #nosec G203
		})
	}

	var buf bytes.Buffer
	if err := w.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render page for %s: %w", doc.Source, err)
	}

	if err := EnsureDirectory(filepath.Dir(dest)); err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write page %s: %w", dest, err)
	}
	return dest, nil
}
