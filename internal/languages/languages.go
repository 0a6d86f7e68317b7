// Package languages maps file names to per-language comment syntax rules.
//
// The table is static data embedded at build time; a Registry is built once
// at startup and is read-only afterwards, so it is safe for unsynchronized
// concurrent reads across worker goroutines.
package languages

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var languagesYAML []byte

// ErrUnknownLanguage is returned when no registry entry matches a file and no
// explicit override was supplied.
var ErrUnknownLanguage = errors.New("unknown language")

// Descriptor holds the comment syntax rules for one language.
//
// A Descriptor is immutable after load. CodeOnly marks data formats with no
// comment syntax at all; segmentation of such files starts in code mode and
// produces a single code-only section.
type Descriptor struct {
	Name       string `yaml:"name"`
	Comment    string `yaml:"comment,omitempty"`
	BlockStart string `yaml:"block_start,omitempty"`
	BlockEnd   string `yaml:"block_end,omitempty"`
	CodeOnly   bool   `yaml:"code_only,omitempty"`
}

// HasBlock reports whether the language supports multi-line comment blocks.
func (d Descriptor) HasBlock() bool {
	return d.BlockStart != "" && d.BlockEnd != ""
}

// Registry resolves file names to language descriptors.
type Registry struct {
	byExt  map[string]Descriptor // keys start with "."
	byName map[string]Descriptor // exact basename entries (lowercased)
	byLang map[string]Descriptor // language name -> descriptor, for overrides
}

// Load builds the registry from the embedded language table.
func Load() (*Registry, error) {
	return load(languagesYAML)
}

func load(data []byte) (*Registry, error) {
	var table map[string]Descriptor
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse language table: %w", err)
	}

	r := &Registry{
		byExt:  make(map[string]Descriptor),
		byName: make(map[string]Descriptor),
		byLang: make(map[string]Descriptor),
	}
	for key, desc := range table {
		if desc.Name == "" {
			return nil, fmt.Errorf("language table entry %q has no name", key)
		}
		if strings.HasPrefix(key, ".") {
			r.byExt[strings.ToLower(key)] = desc
		} else {
			r.byName[strings.ToLower(key)] = desc
		}
		// First entry for a language name wins; aliases (.h -> c) are fine.
		if _, ok := r.byLang[desc.Name]; !ok {
			r.byLang[desc.Name] = desc
		}
	}
	return r, nil
}

// Resolve returns the descriptor for a file name. An explicit override (a
// language name such as "python") always wins regardless of extension.
// Without an override, exact basename entries take precedence, then the
// longest matching extension suffix (so compound extensions beat their
// shorter tails). Returns ErrUnknownLanguage when nothing matches.
func (r *Registry) Resolve(filename, override string) (Descriptor, error) {
	if override != "" {
		if desc, ok := r.byLang[strings.ToLower(override)]; ok {
			return desc, nil
		}
		return Descriptor{}, fmt.Errorf("%w: forced language %q", ErrUnknownLanguage, override)
	}

	base := strings.ToLower(filepath.Base(filename))
	if desc, ok := r.byName[base]; ok {
		return desc, nil
	}

	var (
		best    Descriptor
		bestLen = -1
	)
	for ext, desc := range r.byExt {
		if strings.HasSuffix(base, ext) && len(ext) > bestLen {
			best, bestLen = desc, len(ext)
		}
	}
	if bestLen < 0 {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownLanguage, filename)
	}
	return best, nil
}

// Names returns the distinct language names in the registry, for CLI listing.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byLang))
	for name := range r.byLang {
		names = append(names, name)
	}
	return names
}

// Entries returns the full extension/basename table, for CLI listing.
func (r *Registry) Entries() map[string]Descriptor {
	out := make(map[string]Descriptor, len(r.byExt)+len(r.byName))
	for k, v := range r.byExt {
		out[k] = v
	}
	for k, v := range r.byName {
		out[k] = v
	}
	return out
}
