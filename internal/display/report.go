package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/types"
)

const (
	NoNamingViolation = "No naming convention violation identified"
	NoRepeatedCode    = "No repeated code found."
)

// Reporter is the single place analysis results become user-facing text
type Reporter struct {
	w       io.Writer
	summary bool
}

// NewReporter creates a text reporter; summary adds the score tables after each report
func NewReporter(w io.Writer, summary bool) *Reporter {
	return &Reporter{w: w, summary: summary}
}

// Recommendations prints each style recommendation under its own heading
func (r *Reporter) Recommendations(recs []string) {
	for _, rec := range recs {
		fmt.Fprintln(r.w, "Recommended coding style: ")
		fmt.Fprintln(r.w, rec)
	}
}

// Report prints a full result: recommendations, scores, modified code,
// the first naming violation, score ranking, repeated lines and summaries.
func (r *Reporter) Report(res *analysis.Result) {
	if res.Path != "" {
		fmt.Fprintf(r.w, "==> %s <==\n", res.Path)
	}
	if res.Style != nil {
		r.Recommendations(res.Style.Recommendations)
	}

	fmt.Fprintln(r.w, "Code Complexity Score:", res.ComplexityScore)
	fmt.Fprintln(r.w, "Code Quality Score:", res.QualityScore)
	fmt.Fprintln(r.w, "Average Function Length:", FormatAverage(res.AverageFunctionLength, res.FunctionCount))

	if res.Style != nil {
		fmt.Fprintln(r.w, "Modified Code:")
		fmt.Fprintln(r.w, res.Style.ModifiedText)
	}

	fmt.Fprintln(r.w, "Naming convention violation identified: ")
	if res.Naming != nil && len(res.Naming.Violations) > 0 {
		fmt.Fprintln(r.w, res.Naming.Violations[0])
	} else {
		fmt.Fprintln(r.w, NoNamingViolation)
	}

	summary := Summarize(res.QualityScore)
	fmt.Fprintln(r.w, "Sorted Scores:", pyInts(summary.SortedScores))

	// nil means detection was disabled
	if res.Duplicates != nil {
		r.RepeatedCode(res.Duplicates)
	}

	if r.summary {
		r.Summary(summary)
	}
}

// RepeatedCode prints duplicate line pairs as 1-based line numbers
func (r *Reporter) RepeatedCode(pairs []types.DuplicatePair) {
	if len(pairs) == 0 {
		fmt.Fprintln(r.w, NoRepeatedCode)
		return
	}
	fmt.Fprintln(r.w, "Repeated Code:")
	for _, d := range pairs {
		i, j := d.DisplayLines()
		fmt.Fprintf(r.w, "lines %d and %d\n", i, j)
	}
}

// SyntaxFailure prints the fixed syntax failure banner followed by the error
func (r *Reporter) SyntaxFailure(err error) {
	fmt.Fprintln(r.w, "Invalid syntax in the provided code.")
	fmt.Fprintln(r.w, err)
}

// WriteJSON writes v as indented JSON followed by a newline
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatAverage renders "0" when there are no functions, otherwise a float
// with at least one decimal ("2.0", "1.5")
func FormatAverage(avg float64, functions int) string {
	if functions == 0 {
		return "0"
	}
	return pyFloat(avg)
}

func pyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func pyInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pyStrings(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + v + "'"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pySet(values []string) string {
	if len(values) == 0 {
		return "set()"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + v + "'"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
