package display

import (
	"fmt"
	"sort"
	"strings"
)

// Fixed demonstration data ranked alongside the quality score
var (
	referenceScores = []int{20, 10, 15, 5}
	sampleNames     = []string{"A", "B", "C", "D", "E"}
	uniqueSamples   = []string{"F", "G", "H"}
)

// Summary holds the score ranking tables derived from a quality score
type Summary struct {
	SortedScores []int    `json:"sorted_scores"`
	Mean         float64  `json:"mean"`
	Max          int      `json:"max"`
	Min          int      `json:"min"`
	SampleNames  []string `json:"sample_names"`
	UpperNames   []string `json:"upper_names"`
	Union        []string `json:"union"`
	Intersection []string `json:"intersection"`
	Difference   []string `json:"difference"`
}

// Summarize ranks quality against the reference scores, descending, and
// pairs the ranking with sample names A to E
func Summarize(quality int) Summary {
	scores := append([]int{quality}, referenceScores...)
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))

	total := 0
	for _, s := range scores {
		total += s
	}

	upper := make([]string, len(sampleNames))
	for i, n := range sampleNames {
		upper[i] = strings.ToUpper(n)
	}

	union, intersection, difference := setOps(sampleNames, uniqueSamples)
	return Summary{
		SortedScores: scores,
		Mean:         float64(total) / float64(len(scores)),
		Max:          scores[0],
		Min:          scores[len(scores)-1],
		SampleNames:  append([]string{}, sampleNames...),
		UpperNames:   upper,
		Union:        union,
		Intersection: intersection,
		Difference:   difference,
	}
}

// setOps returns a∪b, a∩b and a∖b, each sorted
func setOps(a, b []string) (union, intersection, difference []string) {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		seen[s] = true
		union = append(union, s)
		if inB[s] {
			intersection = append(intersection, s)
		} else {
			difference = append(difference, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			union = append(union, s)
		}
	}
	sort.Strings(union)
	sort.Strings(intersection)
	sort.Strings(difference)
	return union, intersection, difference
}

// Summary prints the statistics, name tables and set operations
func (r *Reporter) Summary(s Summary) {
	fmt.Fprintln(r.w, "Mean Score:", pyFloat(s.Mean))
	fmt.Fprintln(r.w, "Max Score:", s.Max)
	fmt.Fprintln(r.w, "Min Score:", s.Min)

	fmt.Fprintln(r.w, "Sample Names (Upper):", pyStrings(s.UpperNames))

	scoreDict := make([]string, len(s.SampleNames))
	names := make([]string, len(s.SampleNames))
	scores := make([]string, len(s.SampleNames))
	for i, name := range s.SampleNames {
		scoreDict[i] = fmt.Sprintf("'%s': %d", name, s.SortedScores[i])
		names[i] = fmt.Sprintf("%d: '%s'", i, name)
		scores[i] = fmt.Sprintf("%d: %d", i, s.SortedScores[i])
	}
	fmt.Fprintf(r.w, "Score Dictionary: {%s}\n", strings.Join(scoreDict, ", "))
	fmt.Fprintf(r.w, "DataFrame as Dictionary: {'Code Sample': {%s}, 'Quality Score': {%s}}\n",
		strings.Join(names, ", "), strings.Join(scores, ", "))

	fmt.Fprintln(r.w, "Union Set:", pySet(s.Union))
	fmt.Fprintln(r.w, "Intersection Set:", pySet(s.Intersection))
	fmt.Fprintln(r.w, "Difference Set:", pySet(s.Difference))
}
