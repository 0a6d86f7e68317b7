package site

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/weave/internal/docmodel"
)

func TestDestination_Flat_StripsDirectoryAndExtension(t *testing.T) {
	got := Destination("lib/example.py", Options{OutDir: "docs"})
	require.Equal(t, filepath.Join("docs", "example.html"), got)
}

func TestDestination_PreservePaths_KeepsDirectoryStructure(t *testing.T) {
	got := Destination("lib/sub/example.py", Options{OutDir: "docs", PreservePaths: true})
	require.Equal(t, filepath.Join("docs", "lib", "sub", "example.html"), got)
}

func TestDestination_Underlines_FoldsExtensionIntoName(t *testing.T) {
	got := Destination("example.py", Options{OutDir: "docs", Underlines: true})
	require.Equal(t, filepath.Join("docs", "example_py.html"), got)
}

func TestDestination_AbsoluteSource_StaysInsideOutDir(t *testing.T) {
	got := Destination("/etc/passwd", Options{OutDir: "docs", PreservePaths: true})
	require.True(t, strings.HasPrefix(got, "docs"+string(os.PathSeparator)))
}

func TestRelativeStylesheet_NestedPage_WalksUp(t *testing.T) {
	opts := Options{OutDir: "docs", PreservePaths: true}
	dest := Destination("lib/sub/example.py", opts)
	require.Equal(t, "../../weave.css", relativeStylesheet(dest, opts))
}

func newTestWriter(t *testing.T, opts Options) *Writer {
	t.Helper()
	w, err := NewWriter(opts, "abcd1234")
	require.NoError(t, err)
	w.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return w
}

func TestWritePage_RendersSectionsSideBySide(t *testing.T) {
	out := t.TempDir()
	w := newTestWriter(t, Options{OutDir: out})

	doc := &docmodel.Document{
		Source:   "example.py",
		Language: "Python",
		Sections: []*docmodel.Section{
			{Index: 0, ProseHTML: "<h1>Example</h1>", CodeHTML: "<pre>x = 1</pre>"},
			{Index: 1, ProseHTML: "<p>more</p>", CodeHTML: "<pre>y = 2</pre>"},
		},
	}

	dest, err := w.WritePage(doc)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "example.html"), dest)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	page := string(content)
	require.Contains(t, page, `<tr id="section-0">`)
	require.Contains(t, page, "<h1>Example</h1>")
	require.Contains(t, page, "<pre>x = 1</pre>")
	require.Contains(t, page, "abcd1234")
	require.Contains(t, page, "14 Mar 2026")
	require.NotContains(t, page, "&lt;h1&gt;")
}

func TestWriteAssets_AppendsHighlightCSS(t *testing.T) {
	out := t.TempDir()
	w := newTestWriter(t, Options{OutDir: out})

	err := w.WriteAssets(func(dst io.Writer) error {
		_, werr := dst.Write([]byte(".chroma { color: red }"))
		return werr
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(out, "weave.css"))
	require.NoError(t, err)
	css := string(content)
	require.Contains(t, css, "td.docs")
	require.Contains(t, css, ".chroma { color: red }")
}

func TestWriteIndex_SortsAndLinksPages(t *testing.T) {
	out := t.TempDir()
	w := newTestWriter(t, Options{OutDir: out, Title: "My Project"})

	docA := &docmodel.Document{
		Source:   "b_tool.py",
		Sections: []*docmodel.Section{{Index: 0, ProseHTML: "<h1>The B Tool</h1>", CodeHTML: "<pre></pre>"}},
	}
	docB := &docmodel.Document{
		Source:   "a_helper.py",
		Sections: []*docmodel.Section{{Index: 0, ProseHTML: "<p>no heading here</p>", CodeHTML: "<pre></pre>"}},
	}

	destA, err := w.WritePage(docA)
	require.NoError(t, err)
	destB, err := w.WritePage(docB)
	require.NoError(t, err)

	err = w.WriteIndex([]Page{
		{Source: docA.Source, Destination: destA},
		{Source: docB.Source, Destination: destB},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	index := string(content)

	require.Contains(t, index, "My Project")
	// Prose heading wins for b_tool, file name fallback for a_helper.
	require.Contains(t, index, ">The B Tool</a>")
	require.Contains(t, index, ">A Helper</a>")
	// Sorted by source: a_helper before b_tool.
	require.Less(t, strings.Index(index, "a_helper"), strings.Index(index, "b_tool"))
}

func TestPageTitle_HeaderRowDoesNotShadowProseHeading(t *testing.T) {
	page := []byte(`<table>
<thead><tr><th class="docs"><h1>example.py</h1></th></tr></thead>
<tbody><tr><td class="docs"><h2>Real Title</h2></td><td class="code"></td></tr></tbody>
</table>`)
	require.Equal(t, "Real Title", firstProseHeading(page))
}

func TestFallbackTitle_UnderscoresBecomeSpaces(t *testing.T) {
	require.Equal(t, "Data Loader", fallbackTitle("lib/data_loader.py"))
}
