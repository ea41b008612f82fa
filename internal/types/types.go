package types

import (
	"fmt"
	"strings"
)

// Common system-wide constants
const (
	// Comment marker for the analyzed language (Python)
	DefaultCommentMarker = "#"

	// Line length limit used by the style recommender
	DefaultLineLengthLimit = 79
	// Rationale: PEP 8 maximum line length.

	// Similarity above which two lines are reported as duplicates
	DefaultSimilarityThreshold = 0.8

	// File size limit for batch analysis
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB per file
)

// Position is a 1-based line/column location in source text.
// Column counts bytes, matching the parser's reporting.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Line is a single physical line of a SourceText
type Line struct {
	Index   int    // 0-based index into the line sequence
	Content string // line text without the trailing line break
}

// SourceText is an immutable ordered sequence of lines derived by splitting on "\n".
// Blank lines are retained; a trailing newline yields a final empty line.
type SourceText struct {
	raw   string
	lines []Line
}

// NewSourceText splits raw text into lines
func NewSourceText(raw string) SourceText {
	parts := strings.Split(raw, "\n")
	lines := make([]Line, len(parts))
	for i, p := range parts {
		lines[i] = Line{Index: i, Content: p}
	}
	return SourceText{raw: raw, lines: lines}
}

// Raw returns the original text
func (s SourceText) Raw() string {
	return s.raw
}

// Len returns the number of lines
func (s SourceText) Len() int {
	return len(s.lines)
}

// Line returns the line at a 0-based index.
// Out-of-range indices return an empty line.
func (s SourceText) Line(i int) Line {
	if i < 0 || i >= len(s.lines) {
		return Line{Index: i}
	}
	return s.lines[i]
}

// Contents returns a fresh slice of line contents; callers may modify it
func (s SourceText) Contents() []string {
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.Content
	}
	return out
}

// IsCommentLine reports whether the whitespace-stripped line starts with marker
func IsCommentLine(line, marker string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), marker)
}

// DuplicatePair identifies two similar lines by 0-based index, I < J
type DuplicatePair struct {
	I          int     `json:"i"`
	J          int     `json:"j"`
	Similarity float64 `json:"similarity"`
}

// DisplayLines returns the pair as 1-based line numbers
func (d DuplicatePair) DisplayLines() (int, int) {
	return d.I + 1, d.J + 1
}
