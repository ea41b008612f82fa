package analysis

import (
	"fmt"
	"unicode/utf8"

	"github.com/standardbeagle/codeqa/internal/debug"
	"github.com/standardbeagle/codeqa/internal/syntax"
	"github.com/standardbeagle/codeqa/internal/types"
)

const (
	// NoRecommendations replaces an empty recommendation list
	NoRecommendations = "No coding style recommendations found."
	// NoModifications replaces the working copy when nothing was recommended
	NoModifications = "No modified actions applied"

	DefaultPlaceholder        = "# Add comments here"
	DefaultContinuationMarker = "\\"
)

// StyleOptions configures the style recommender
type StyleOptions struct {
	CommentMarker      string
	LineLengthLimit    int
	Placeholder        string
	ContinuationMarker string
}

// DefaultStyleOptions returns the fixed defaults
func DefaultStyleOptions() StyleOptions {
	return StyleOptions{
		CommentMarker:      types.DefaultCommentMarker,
		LineLengthLimit:    types.DefaultLineLengthLimit,
		Placeholder:        DefaultPlaceholder,
		ContinuationMarker: DefaultContinuationMarker,
	}
}

// StyleReport holds recommendations and the annotated working copy.
// When nothing was recommended both fields hold the fixed sentinels.
type StyleReport struct {
	Recommendations []string      `json:"recommendations"`
	ModifiedText    string        `json:"modified_text"`
	Edits           []AppliedEdit `json:"edits,omitempty"`
}

// HasFindings reports whether any real recommendation was produced
func (sr *StyleReport) HasFindings() bool {
	return len(sr.Edits) > 0
}

// StyleRecommender flags missing docstrings and overlong lines and splices markers into a copy of the text.
// It never prints; the display layer owns output.
type StyleRecommender struct {
	parser TreeParser
	opts   StyleOptions
}

// NewStyleRecommender creates a recommender that parses its own private tree with parser
func NewStyleRecommender(parser TreeParser, opts StyleOptions) *StyleRecommender {
	def := DefaultStyleOptions()
	if opts.CommentMarker == "" {
		opts.CommentMarker = def.CommentMarker
	}
	if opts.LineLengthLimit <= 0 {
		opts.LineLengthLimit = def.LineLengthLimit
	}
	if opts.Placeholder == "" {
		opts.Placeholder = def.Placeholder
	}
	if opts.ContinuationMarker == "" {
		opts.ContinuationMarker = def.ContinuationMarker
	}
	return &StyleRecommender{parser: parser, opts: opts}
}

// Recommend parses text independently and returns its recommendations.
// A syntax error aborts with the parser's *errors.SyntaxError.
func (sr *StyleRecommender) Recommend(text string) (*StyleReport, error) {
	tree, err := sr.parser.Parse(text)
	if err != nil {
		return nil, err
	}

	source := types.NewSourceText(text)
	var recs []string
	var edits EditList

	tree.Walk(func(id syntax.NodeID, n syntax.Node) bool {
		if n.HasDocstring() {
			return true
		}

		var msg string
		var line int // 0-based target line
		switch n.Kind {
		case syntax.KindModule:
			msg = "Consider adding comments here."
			line = 0
		case syntax.KindFunctionDef:
			msg = fmt.Sprintf("Consider adding comments to function '%s'.", n.Name)
			line = firstBodyLine(n)
		case syntax.KindClassDef:
			msg = fmt.Sprintf("Consider adding comments to class '%s'.", n.Name)
			line = firstBodyLine(n)
		default:
			return true
		}

		if types.IsCommentLine(source.Line(line).Content, sr.opts.CommentMarker) {
			return true
		}
		recs = append(recs, msg)
		edits.Insert(line, sr.opts.Placeholder)
		return true
	})

	for i := 0; i < source.Len(); i++ {
		if utf8.RuneCountInString(source.Line(i).Content) > sr.opts.LineLengthLimit {
			recs = append(recs, fmt.Sprintf(
				"Consider splitting line %d as it exceeds the line length limit of %d characters.",
				i+1, sr.opts.LineLengthLimit))
			edits.Insert(i, sr.opts.ContinuationMarker)
		}
	}

	if len(recs) == 0 {
		return &StyleReport{
			Recommendations: []string{NoRecommendations},
			ModifiedText:    NoModifications,
		}, nil
	}

	modified, applied := edits.ApplyText(text)
	debug.LogAnalysis("style: %d recommendations, %d edits\n", len(recs), len(applied))
	return &StyleReport{
		Recommendations: recs,
		ModifiedText:    modified,
		Edits:           applied,
	}, nil
}

// firstBodyLine returns the 0-based line of a definition's first body statement
func firstBodyLine(n syntax.Node) int {
	if len(n.Body) == 0 {
		return n.Pos.Line - 1
	}
	return n.Body[0].Pos.Line - 1
}
