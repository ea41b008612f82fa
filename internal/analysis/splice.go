package analysis

import "strings"

// Edit inserts Text as a new line before line Line (0-based) of the working copy
// as it stands when the edit is applied. Line past the end appends.
type Edit struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// AppliedEdit records where an edit landed in the working copy
type AppliedEdit struct {
	Edit
	At int `json:"at"` // 0-based line index in the working copy after the insertion
}

// EditList accumulates edits to replay over a copy of an immutable original text
type EditList struct {
	edits []Edit
}

// Insert queues an insertion before line of the working copy
func (el *EditList) Insert(line int, text string) {
	el.edits = append(el.edits, Edit{Line: line, Text: text})
}

// Len returns the number of queued edits
func (el *EditList) Len() int {
	return len(el.edits)
}

// Edits returns a copy of the queued edits in insertion order
func (el *EditList) Edits() []Edit {
	out := make([]Edit, len(el.edits))
	copy(out, el.edits)
	return out
}

// Apply replays the edits in insertion order over a copy of original.
// Each edit is positioned against the working copy left by the earlier ones,
// so a line number taken from the original lands above its line once
// earlier insertions have shifted the text down.
func (el *EditList) Apply(original []string) ([]string, []AppliedEdit) {
	working := make([]string, len(original), len(original)+len(el.edits))
	copy(working, original)

	applied := make([]AppliedEdit, 0, len(el.edits))
	for _, e := range el.edits {
		at := clampLine(e.Line, len(working))
		working = append(working, "")
		copy(working[at+1:], working[at:])
		working[at] = e.Text
		applied = append(applied, AppliedEdit{Edit: e, At: at})
	}
	return working, applied
}

// ApplyText is Apply over text split on "\n", joined back with "\n"
func (el *EditList) ApplyText(text string) (string, []AppliedEdit) {
	lines, applied := el.Apply(strings.Split(text, "\n"))
	return strings.Join(lines, "\n"), applied
}

func clampLine(line, n int) int {
	switch {
	case line < 0:
		return 0
	case line > n:
		return n
	default:
		return line
	}
}
