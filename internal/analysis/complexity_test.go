package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplexityScorer_Score(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"no comments", "x = 1\ny = 2", 0},
		{"comment lines", "# one\nx = 1\n    # two\n", 2},
		{"trailing comment does not count", "x = 1  # note", 0},
		{"shebang counts", "#!/usr/bin/env python\nprint(1)", 1},
		{"hash inside string", "s = '#'", 0},
	}

	scorer := NewComplexityScorer("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.Score(tt.text))
		})
	}
}

func TestComplexityScorer_CustomMarker(t *testing.T) {
	scorer := NewComplexityScorer("//")
	assert.Equal(t, 1, scorer.Score("// note\n# not a comment here"))
}

func TestQualityScorer_Score(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"comments only", "# a\n# b", 2},
		{"goto penalty", "# a\ngoto_label = 1", 1 - 10},
		{"magic number penalty", "magic_number = 42", -5},
		{"both penalties", "goto = magic_number", -15},
		{"penalty applied once", "goto goto goto", -10},
		{"inside a comment still counts", "# goto somewhere", 1 - 10},
		{"inside an identifier still counts", "no_goto_here = True", -10},
	}

	scorer := NewQualityScorer(NewComplexityScorer(""), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.Score(tt.text))
		})
	}
}

func TestQualityScorer_CustomRules(t *testing.T) {
	scorer := NewQualityScorer(nil, []PenaltyRule{
		{Pattern: "eval(", Penalty: 20},
		{Pattern: "", Penalty: 100},
	})

	assert.Equal(t, -20, scorer.Score("eval(input())"))
	assert.Equal(t, 0, scorer.Score("goto"), "default rules are replaced, empty patterns ignored")
}

func TestScorers_Idempotent(t *testing.T) {
	text := "# header\ngoto = magic_number\n# footer"
	complexity := NewComplexityScorer("")
	quality := NewQualityScorer(complexity, nil)

	assert.Equal(t, complexity.Score(text), complexity.Score(text))
	assert.Equal(t, quality.Score(text), quality.Score(text))
	assert.Equal(t, 2, complexity.Score(text))
	assert.Equal(t, -13, quality.Score(text))
}
