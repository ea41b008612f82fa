package analysis

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/standardbeagle/codeqa/internal/debug"
	qaerrors "github.com/standardbeagle/codeqa/internal/errors"
	"github.com/standardbeagle/codeqa/internal/syntax"
	"github.com/standardbeagle/codeqa/internal/types"
)

// Options configures an Analyzer. Zero values select the fixed defaults.
type Options struct {
	Style               StyleOptions
	PenaltyRules        []PenaltyRule
	SimilarityThreshold float64
	SimilarityAlgorithm string
	DetectDuplicates    bool
	MaxFileSize         int64
}

// DefaultOptions returns the fixed defaults with duplicate detection enabled
func DefaultOptions() Options {
	return Options{
		Style:               DefaultStyleOptions(),
		PenaltyRules:        DefaultPenaltyRules,
		SimilarityThreshold: types.DefaultSimilarityThreshold,
		SimilarityAlgorithm: AlgorithmRatcliffObershelp,
		DetectDuplicates:    true,
		MaxFileSize:         types.DefaultMaxFileSize,
	}
}

// Result is the merged report of one analysis request
type Result struct {
	Path                  string                `json:"path,omitempty"`
	ComplexityScore       int                   `json:"complexity_score"`
	QualityScore          int                   `json:"quality_score"`
	AverageFunctionLength float64               `json:"average_function_length"`
	FunctionCount         int                   `json:"function_count"`
	Naming                *NamingReport         `json:"naming"`
	Style                 *StyleReport          `json:"style"`
	Duplicates            []types.DuplicatePair `json:"duplicates,omitempty"`
	Duration              time.Duration         `json:"-"`
}

// Analyzer runs every component over one text per request.
// Requests share no state; an Analyzer may serve concurrent callers
// as long as its TreeParser does.
type Analyzer struct {
	parser     TreeParser
	complexity *ComplexityScorer
	quality    *QualityScorer
	naming     *NamingChecker
	style      *StyleRecommender
	duplicates *DuplicateDetector
	detectDups bool
	maxSize    int64
}

// NewAnalyzer wires the components from opts
func NewAnalyzer(parser TreeParser, opts Options) (*Analyzer, error) {
	if parser == nil {
		return nil, errors.New("analyzer requires a parser")
	}
	metric, err := NewSimilarityMetric(opts.SimilarityAlgorithm)
	if err != nil {
		return nil, err
	}

	complexity := NewComplexityScorer(opts.Style.CommentMarker)
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = types.DefaultMaxFileSize
	}

	return &Analyzer{
		parser:     parser,
		complexity: complexity,
		quality:    NewQualityScorer(complexity, opts.PenaltyRules),
		naming:     NewNamingChecker(syntax.Build),
		style:      NewStyleRecommender(parser, opts.Style),
		duplicates: NewDuplicateDetectorWith(opts.SimilarityThreshold, metric),
		detectDups: opts.DetectDuplicates,
		maxSize:    maxSize,
	}, nil
}

// Analyze runs all components over text.
// A *errors.SyntaxError from either parse aborts the whole request.
func (a *Analyzer) Analyze(text string) (*Result, error) {
	start := time.Now()
	result := &Result{
		ComplexityScore: a.complexity.Score(text),
		QualityScore:    a.quality.Score(text),
	}

	tree, err := a.parser.Parse(text)
	if err != nil {
		return nil, err
	}

	// The naming checker renames nodes of tree in place. Structural metrics
	// read a snapshot taken before that, so they never observe renamed nodes.
	snapshot := tree.Clone()
	result.FunctionCount = len(FunctionLengths(snapshot))
	result.AverageFunctionLength = AverageFunctionLength(snapshot)
	result.Naming = a.naming.Check(tree)

	// The style recommender parses its own tree
	style, err := a.style.Recommend(text)
	if err != nil {
		return nil, err
	}
	result.Style = style

	if a.detectDups {
		result.Duplicates = a.duplicates.Detect(text)
	}

	result.Duration = time.Since(start)
	debug.LogAnalysis("analyzed %d bytes in %v: complexity=%d quality=%d functions=%d\n",
		len(text), result.Duration, result.ComplexityScore, result.QualityScore, result.FunctionCount)
	return result, nil
}

// AnalyzeFile reads path and analyzes its contents.
// Syntax errors carry the path.
func (a *Analyzer) AnalyzeFile(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, qaerrors.NewFileError("stat", path, err)
	}
	if info.IsDir() {
		return nil, qaerrors.NewFileError("read", path, fmt.Errorf("is a directory"))
	}
	if info.Size() > a.maxSize {
		return nil, qaerrors.NewFileTooLargeError(path, info.Size(), a.maxSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, qaerrors.NewFileError("read", path, err)
	}

	result, err := a.Analyze(string(content))
	if err != nil {
		var se *qaerrors.SyntaxError
		if errors.As(err, &se) {
			return nil, se.WithPath(path)
		}
		return nil, qaerrors.NewAnalysisError(path, err)
	}
	result.Path = path
	return result, nil
}

// Duplicates runs only the duplicate detector; it needs no parse
func (a *Analyzer) Duplicates(text string) []types.DuplicatePair {
	return a.duplicates.Detect(text)
}
