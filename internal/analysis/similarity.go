package analysis

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/pmezard/go-difflib/difflib"
)

// Similarity algorithm names accepted by NewSimilarityMetric
const (
	AlgorithmRatcliffObershelp = "ratcliff-obershelp"
	AlgorithmLevenshtein       = "levenshtein"
	AlgorithmJaroWinkler       = "jaro-winkler"
	AlgorithmCosine            = "cosine"
	AlgorithmJaccard           = "jaccard"
	AlgorithmSorensenDice      = "sorensen-dice"
	AlgorithmLCS               = "lcs"
)

// SimilarityAlgorithms lists every supported algorithm name
var SimilarityAlgorithms = []string{
	AlgorithmRatcliffObershelp,
	AlgorithmLevenshtein,
	AlgorithmJaroWinkler,
	AlgorithmCosine,
	AlgorithmJaccard,
	AlgorithmSorensenDice,
	AlgorithmLCS,
}

// NewSimilarityMetric returns the metric for an algorithm name ("" selects Ratcliff/Obershelp)
func NewSimilarityMetric(algorithm string) (SimilarityMetric, error) {
	switch strings.ToLower(algorithm) {
	case "", AlgorithmRatcliffObershelp:
		return RatcliffObershelp{}, nil
	case AlgorithmLevenshtein:
		return edlibMetric{name: AlgorithmLevenshtein, algo: edlib.Levenshtein}, nil
	case AlgorithmJaroWinkler:
		return edlibMetric{name: AlgorithmJaroWinkler, algo: edlib.JaroWinkler}, nil
	case AlgorithmCosine:
		return edlibMetric{name: AlgorithmCosine, algo: edlib.Cosine}, nil
	case AlgorithmJaccard:
		return edlibMetric{name: AlgorithmJaccard, algo: edlib.Jaccard}, nil
	case AlgorithmSorensenDice:
		return edlibMetric{name: AlgorithmSorensenDice, algo: edlib.SorensenDice}, nil
	case AlgorithmLCS:
		return edlibMetric{name: AlgorithmLCS, algo: edlib.Lcs}, nil
	default:
		return nil, fmt.Errorf("unknown similarity algorithm %q", algorithm)
	}
}

// RatcliffObershelp is difflib's SequenceMatcher ratio over code points:
// 2*M/T where M is the total size of the matching blocks found by recursive
// longest-common-substring search and T the combined length.
// Two empty strings have ratio 1.0. Strings of 200 or more code points get
// difflib's automatic junk heuristic.
type RatcliffObershelp struct{}

// Name returns the algorithm name
func (RatcliffObershelp) Name() string {
	return AlgorithmRatcliffObershelp
}

// Similarity returns the matcher ratio of a and b
func (RatcliffObershelp) Similarity(a, b string) float64 {
	return difflib.NewMatcher(codePoints(a), codePoints(b)).Ratio()
}

func codePoints(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "")
}

// edlibMetric adapts go-edlib's normalized similarities
type edlibMetric struct {
	name string
	algo edlib.Algorithm
}

func (m edlibMetric) Name() string {
	return m.name
}

func (m edlibMetric) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	score, err := edlib.StringsSimilarity(a, b, m.algo)
	if err != nil || score < 0 {
		return 0.0
	}
	return float64(score)
}
