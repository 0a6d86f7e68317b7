// Package segment splits raw source text into ordered (prose, code) sections
// using only the comment delimiters of a language descriptor.
//
// Segmentation is a single sequential pass over lines with no backtracking.
// It is lossless: every input line lands in exactly one run, in order, so a
// Document can always reproduce its source (see docmodel.SourceLines).
package segment

import (
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/weave/internal/docmodel"
	"git.home.luguber.info/inful/weave/internal/languages"
)

// ErrUnterminatedBlock is returned in strict mode when a block-comment start
// token has no matching end token before end of file.
var ErrUnterminatedBlock = errors.New("unterminated block comment")

// Options controls segmentation behavior.
type Options struct {
	// Lenient treats an unterminated block comment as prose running to end
	// of file instead of failing.
	Lenient bool
}

type mode int

const (
	modeProse mode = iota
	modeCode
)

// Segment splits source text into ordered sections according to the
// descriptor's comment rules.
func Segment(source string, desc languages.Descriptor, opts Options) ([]*docmodel.Section, error) {
	if source == "" {
		return nil, nil
	}
	return segmentLines(strings.Split(source, "\n"), desc, opts)
}

// Document segments source text and wraps the result with its file identity.
func Document(path, source string, desc languages.Descriptor, opts Options) (*docmodel.Document, error) {
	sections, err := Segment(source, desc, opts)
	if err != nil {
		return nil, err
	}
	return &docmodel.Document{
		Source:   path,
		Language: desc.Name,
		Sections: sections,
	}, nil
}

func segmentLines(lines []string, desc languages.Descriptor, opts Options) ([]*docmodel.Section, error) {
	var (
		sections  []*docmodel.Section
		cur       = &docmodel.Section{}
		inBlock   bool
		blockLine int
	)

	m := modeProse
	if desc.CodeOnly {
		m = modeCode
	}

	seal := func() {
		if !cur.Empty() {
			cur.Index = len(sections)
			sections = append(sections, cur)
			cur = &docmodel.Section{}
		}
	}

	appendProse := func(raw, text string) {
		if m == modeCode {
			// CODE -> PROSE: the accumulated code run is sealed and a fresh
			// section begins with this comment line.
			seal()
			m = modeProse
		}
		cur.ProseRaw = append(cur.ProseRaw, raw)
		cur.Prose = append(cur.Prose, text)
	}

	appendCode := func(raw string) {
		// PROSE -> CODE stays within the same section: prose-then-code is
		// one paired unit.
		m = modeCode
		cur.Code = append(cur.Code, raw)
	}

	for i, line := range lines {
		stripped := strings.TrimSpace(line)

		if inBlock {
			if strings.HasSuffix(stripped, desc.BlockEnd) {
				text := strings.TrimSuffix(stripped, desc.BlockEnd)
				appendProse(line, strings.TrimSpace(text))
				inBlock = false
			} else {
				appendProse(line, stripped)
			}
			continue
		}

		// Blank lines never force a transition; they join the open run.
		if stripped == "" {
			if m == modeProse {
				cur.ProseRaw = append(cur.ProseRaw, line)
				cur.Prose = append(cur.Prose, stripped)
			} else {
				cur.Code = append(cur.Code, line)
			}
			continue
		}

		// A first-line shebang is code: rendering it as prose would be
		// nonsense and dropping it would break losslessness.
		if i == 0 && strings.HasPrefix(line, "#!") {
			appendCode(line)
			continue
		}

		// Block delimiters are matched before the single-line token: for
		// languages like lua ("--" vs "--[[") the block opener would
		// otherwise be misread as a single-line comment.
		if desc.HasBlock() && strings.HasPrefix(stripped, desc.BlockStart) {
			inner := stripped[len(desc.BlockStart):]
			// When the start and end tokens coincide (e.g. coffee "###"),
			// a bare token line opens a block rather than closing itself.
			if idx := strings.Index(inner, desc.BlockEnd); idx >= 0 {
				// Closer on the same line. A pure comment line ("/* x */")
				// is a single prose line; trailing text after the closer
				// keeps the whole line in the code run, same as a mid-line
				// opener.
				if rest := strings.TrimSpace(inner[idx+len(desc.BlockEnd):]); rest == "" {
					appendProse(line, strings.TrimSpace(inner[:idx]))
				} else {
					appendCode(line)
				}
			} else {
				appendProse(line, strings.TrimSpace(inner))
				inBlock = true
				blockLine = i + 1
			}
			continue
		}

		if desc.Comment != "" && strings.HasPrefix(stripped, desc.Comment) {
			appendProse(line, stripCommentToken(stripped, desc.Comment))
			continue
		}

		appendCode(line)
	}

	if inBlock && !opts.Lenient {
		return nil, fmt.Errorf("%w: opened at line %d", ErrUnterminatedBlock, blockLine)
	}

	seal()
	return sections, nil
}

// stripCommentToken removes the single-line comment token and at most one
// following space, preserving any further indentation of the prose text.
func stripCommentToken(stripped, token string) string {
	text := strings.TrimPrefix(stripped, token)
	if strings.HasPrefix(text, " ") {
		text = text[1:]
	}
	return text
}
