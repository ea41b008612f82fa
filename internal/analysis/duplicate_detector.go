package analysis

import (
	"strings"

	"github.com/standardbeagle/codeqa/internal/debug"
	"github.com/standardbeagle/codeqa/internal/types"
)

// DuplicateDetector finds pairs of similar lines with an exhaustive pairwise scan.
// Lines are compared raw: no whitespace or case normalization, blank lines included.
type DuplicateDetector struct {
	similarityThreshold float64 // pairs strictly above this are reported
	metric              SimilarityMetric
}

// NewDuplicateDetector creates a detector with the default 0.8 threshold and Ratcliff/Obershelp similarity
func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{
		similarityThreshold: types.DefaultSimilarityThreshold,
		metric:              RatcliffObershelp{},
	}
}

// NewDuplicateDetectorWith creates a detector with a custom threshold and metric
func NewDuplicateDetectorWith(threshold float64, metric SimilarityMetric) *DuplicateDetector {
	dd := NewDuplicateDetector()
	if threshold > 0 {
		dd.similarityThreshold = threshold
	}
	if metric != nil {
		dd.metric = metric
	}
	return dd
}

// Threshold returns the configured similarity threshold
func (dd *DuplicateDetector) Threshold() float64 {
	return dd.similarityThreshold
}

// Algorithm returns the name of the similarity metric
func (dd *DuplicateDetector) Algorithm() string {
	return dd.metric.Name()
}

// Detect returns every pair (i, j), i < j, whose similarity exceeds the threshold,
// ordered by i then j
func (dd *DuplicateDetector) Detect(text string) []types.DuplicatePair {
	lines := strings.Split(text, "\n")
	pairs := []types.DuplicatePair{}

	for i := 0; i < len(lines); i++ {
		for j := i + 1; j < len(lines); j++ {
			similarity := dd.metric.Similarity(lines[i], lines[j])
			if similarity > dd.similarityThreshold {
				pairs = append(pairs, types.DuplicatePair{I: i, J: j, Similarity: similarity})
			}
		}
	}

	debug.LogAnalysis("duplicates: %d lines, %d pairs (%s > %.2f)\n",
		len(lines), len(pairs), dd.metric.Name(), dd.similarityThreshold)
	return pairs
}
