package site

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Page is one generated page, as recorded by the pipeline for the index.
type Page struct {
	Source      string
	Destination string
}

const indexTemplateSource = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.Stylesheet}}">
</head>
<body>
  <div id="container">
    <div id="background"></div>
    <table>
      <thead>
        <tr>
          <th class="docs"><h1>{{.Title}}</h1></th>
          <th class="code"></th>
        </tr>
      </thead>
    </table>
    <ul class="index-list">
      {{- range .Entries}}
      <li><a href="{{.Href}}">{{.Title}}</a> <code>{{.Source}}</code></li>
      {{- end}}
    </ul>
  </div>
</body>
</html>
`

type indexEntry struct {
	Href   string
	Title  string
	Source string
}

type indexData struct {
	Title      string
	Stylesheet string
	Entries    []indexEntry
}

var titleCaser = cases.Title(language.English)

// WriteIndex generates index.html at the output root, linking every page in
// pages sorted by source path. Each entry's title is the first prose heading
// found in the generated page, falling back to a title derived from the
// file name.
func (w *Writer) WriteIndex(pages []Page) error {
	tmpl, err := template.New("index").Parse(indexTemplateSource)
	if err != nil {
		return fmt.Errorf("parse index template: %w", err)
	}

	sorted := make([]Page, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Source < sorted[j].Source })

	data := indexData{
		Title:      w.opts.Title,
		Stylesheet: stylesheetName,
	}
	if data.Title == "" {
		data.Title = "Index"
	}
	for _, p := range sorted {
		title := pageTitle(p)
		href, err := filepath.Rel(w.opts.OutDir, p.Destination)
		if err != nil {
			href = filepath.Base(p.Destination)
		}
		data.Entries = append(data.Entries, indexEntry{
			Href:   filepath.ToSlash(href),
			Title:  title,
			Source: p.Source,
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render index: %w", err)
	}

	path := filepath.Join(w.opts.OutDir, "index.html")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// pageTitle extracts a human title for one generated page: the first heading
// inside a prose cell, or a title-cased form of the source file name.
func pageTitle(p Page) string {
	if content, err := os.ReadFile(p.Destination); err == nil {
		if t := firstProseHeading(content); t != "" {
			return t
		}
	}
	return fallbackTitle(p.Source)
}

// firstProseHeading returns the text of the first h1..h3 element inside a
// td.docs cell, so the page header row does not shadow prose headings.
func firstProseHeading(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	var walk func(n *html.Node, inDocsCell bool) string
	walk = func(n *html.Node, inDocsCell bool) string {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "td":
				inDocsCell = hasClass(n, "docs")
			case "h1", "h2", "h3":
				if inDocsCell {
					return strings.TrimSpace(textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := walk(c, inDocsCell); t != "" {
				return t
			}
		}
		return ""
	}
	return walk(doc, false)
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// fallbackTitle turns a source path into a display title: "lib/data_loader.py"
// becomes "Data Loader".
func fallbackTitle(source string) string {
	name := filepath.Base(source)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return titleCaser.String(name)
}
