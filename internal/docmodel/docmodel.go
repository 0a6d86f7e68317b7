// Package docmodel defines the section/document model produced by
// segmentation and consumed by rendering and assembly.
package docmodel

// Section is one paired unit of prose commentary and the code it documents.
//
// ProseRaw holds the comment lines exactly as they appeared in the source
// (delimiters included) so that a Document can reproduce its input; Prose
// holds the delimiter-stripped text handed to the prose renderer. Code lines
// are always raw. Sections are created by the segmenter and mutated only to
// attach rendered HTML during assembly; they are never reordered.
type Section struct {
	Index    int
	ProseRaw []string
	Prose    []string
	Code     []string

	ProseHTML string
	CodeHTML  string
}

// Empty reports whether the section accumulated neither prose nor code.
func (s *Section) Empty() bool {
	return len(s.ProseRaw) == 0 && len(s.Code) == 0
}

// Document is the ordered sequence of all Sections for one input file.
type Document struct {
	// Source is the input file path as given by the caller.
	Source string
	// Language is the resolved language name (highlighter identifier).
	Language string

	Sections []*Section
}

// SourceLines reconstructs the original file's line sequence from the raw
// prose and code runs of every section, in order. Segmentation is lossless:
// for any input this returns exactly the lines that were segmented.
func (d *Document) SourceLines() []string {
	var lines []string
	for _, s := range d.Sections {
		lines = append(lines, s.ProseRaw...)
		lines = append(lines, s.Code...)
	}
	return lines
}
