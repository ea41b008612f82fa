package analysis

import (
	"github.com/standardbeagle/codeqa/internal/syntax"
)

// TreeParser builds a fresh syntax tree from source text
type TreeParser interface {
	// Parse returns a new tree, or a *errors.SyntaxError when text is not valid Python
	Parse(text string) (*syntax.Tree, error)
}

// ArtifactBuilder turns the current version of a tree into a build artifact
type ArtifactBuilder func(tree *syntax.Tree) *syntax.Artifact

// SimilarityMetric scores two strings between 0.0 (nothing shared) and 1.0 (identical)
type SimilarityMetric interface {
	Similarity(a, b string) float64
	Name() string
}
