package analysis

import (
	"github.com/standardbeagle/codeqa/internal/syntax"
)

// FunctionLengths returns the immediate body statement count of every
// FunctionDef in walk order. Async functions and lambdas are not FunctionDefs.
func FunctionLengths(tree *syntax.Tree) []int {
	var lengths []int
	tree.Walk(func(id syntax.NodeID, n syntax.Node) bool {
		if n.Kind == syntax.KindFunctionDef {
			lengths = append(lengths, len(n.Body))
		}
		return true
	})
	return lengths
}

// AverageFunctionLength returns the mean body length of all FunctionDefs, or 0.0 if there are none
func AverageFunctionLength(tree *syntax.Tree) float64 {
	lengths := FunctionLengths(tree)
	if len(lengths) == 0 {
		return 0.0
	}
	total := 0
	for _, l := range lengths {
		total += l
	}
	return float64(total) / float64(len(lengths))
}
