// Package site turns rendered documents into the on-disk HTML site:
// destination paths, the page template, shared assets, and the index page.
package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options controls output layout.
type Options struct {
	// OutDir is the root of the generated site.
	OutDir string
	// PreservePaths keeps the source directory structure below OutDir
	// instead of flattening everything into it.
	PreservePaths bool
	// Underlines folds the original extension into the file name with
	// underscores (x.py -> x_py.html) so that x.py and x.css cannot
	// collide on x.html.
	Underlines bool
	// Title is the site title used on the index page.
	Title string
}

// Destination computes the output HTML path for an input source path.
// The result is always contained within OutDir.
func Destination(source string, opts Options) string {
	dir, file := filepath.Split(source)

	ext := filepath.Ext(file)
	name := strings.TrimSuffix(file, ext)
	if opts.Underlines {
		name = strings.ReplaceAll(name+ext, ".", "_")
	}

	if opts.PreservePaths {
		name = filepath.Join(dir, name)
	}

	dest := filepath.Join(opts.OutDir, name+".html")

	// ".." segments in the source could clean away the output root; force
	// it back onto the front so we never write outside it.
	if !strings.HasPrefix(dest, filepath.Clean(opts.OutDir)+string(os.PathSeparator)) {
		dest = filepath.Join(opts.OutDir, strings.TrimPrefix(dest, string(os.PathSeparator)))
	}
	return dest
}

// EnsureDirectory creates the directory (and parents) if needed.
func EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// relativeStylesheet computes the href from a page to the shared stylesheet
// at the output root.
func relativeStylesheet(dest string, opts Options) string {
	rel, err := filepath.Rel(filepath.Dir(dest), filepath.Join(opts.OutDir, stylesheetName))
	if err != nil {
		return stylesheetName
	}
	return filepath.ToSlash(rel)
}
