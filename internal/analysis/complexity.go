package analysis

import (
	"strings"

	"github.com/standardbeagle/codeqa/internal/types"
)

// PenaltyRule subtracts Penalty from the quality score once when Pattern occurs in the text
type PenaltyRule struct {
	Pattern string `json:"pattern"`
	Penalty int    `json:"penalty"`
}

// DefaultPenaltyRules are the fixed substring penalties
var DefaultPenaltyRules = []PenaltyRule{
	{Pattern: "goto", Penalty: 10},
	{Pattern: "magic_number", Penalty: 5},
}

// ComplexityScorer counts comment lines
type ComplexityScorer struct {
	marker string
}

// NewComplexityScorer creates a scorer for the given comment marker ("#" when empty)
func NewComplexityScorer(marker string) *ComplexityScorer {
	if marker == "" {
		marker = types.DefaultCommentMarker
	}
	return &ComplexityScorer{marker: marker}
}

// Score returns the number of lines whose stripped form starts with the comment marker
func (cs *ComplexityScorer) Score(text string) int {
	score := 0
	for _, line := range strings.Split(text, "\n") {
		if types.IsCommentLine(line, cs.marker) {
			score++
		}
	}
	return score
}

// QualityScorer combines the complexity score with substring penalties.
// Matching is a raw substring test over the whole text, not token-aware:
// "goto" inside an identifier, string or comment still counts.
type QualityScorer struct {
	complexity *ComplexityScorer
	rules      []PenaltyRule
}

// NewQualityScorer creates a quality scorer; nil rules selects DefaultPenaltyRules
func NewQualityScorer(complexity *ComplexityScorer, rules []PenaltyRule) *QualityScorer {
	if complexity == nil {
		complexity = NewComplexityScorer("")
	}
	if rules == nil {
		rules = DefaultPenaltyRules
	}
	return &QualityScorer{complexity: complexity, rules: rules}
}

// Score returns the complexity score minus each matching rule's penalty, applied at most once
func (qs *QualityScorer) Score(text string) int {
	score := qs.complexity.Score(text)
	for _, rule := range qs.rules {
		if rule.Pattern != "" && strings.Contains(text, rule.Pattern) {
			score -= rule.Penalty
		}
	}
	return score
}
