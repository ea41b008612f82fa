package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/types"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config file names searched in the home and project directories
const (
	KDLFileName       = ".codeqa.kdl"
	PyprojectFileName = "pyproject.toml"
)

type Config struct {
	Version     int
	Project     Project
	Analysis    Analysis
	Duplicates  Duplicates
	Output      Output
	Performance Performance
	Watch       Watch
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

type Analysis struct {
	CommentMarker      string
	LineLengthLimit    int
	Placeholder        string // inserted before undocumented bodies
	ContinuationMarker string // inserted before overlong lines
	Penalties          []Penalty
}

// Penalty subtracts Points from the quality score when Pattern occurs in the text
type Penalty struct {
	Pattern string
	Points  int
}

type Duplicates struct {
	Enabled   bool
	Threshold float64 // pairs strictly above are reported
	Algorithm string
}

type Output struct {
	Format  string // "text" or "json"
	Summary bool   // print the summary tables after the report
}

type Performance struct {
	MaxWorkers  int   // 0 = auto-detect (NumCPU)
	MaxFileSize int64 // bytes
}

type Watch struct {
	DebounceMs int
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot layers configuration: defaults, ~/.codeqa.kdl, the project
// .codeqa.kdl (or path when given), then [tool.codeqa] from pyproject.toml.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}
	if abs, err := filepath.Abs(searchDir); err == nil {
		searchDir = abs
	}

	// Step 1: global base config
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != searchDir {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: project config, or the explicit file
	var projectConfig *Config
	var err error
	if path != "" {
		projectConfig, err = LoadKDLFile(path, searchDir)
	} else {
		projectConfig, err = LoadKDL(searchDir)
	}
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		baseConfig.Project.Root = searchDir
		cfg = baseConfig
	default:
		cfg = Default(searchDir)
	}

	// Step 3: pyproject.toml overrides
	if err := ApplyPyproject(cfg, cfg.Project.Root); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration rooted at root
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{
			Root: root,
			Name: filepath.Base(root),
		},
		Analysis: Analysis{
			CommentMarker:      types.DefaultCommentMarker,
			LineLengthLimit:    types.DefaultLineLengthLimit,
			Placeholder:        analysis.DefaultPlaceholder,
			ContinuationMarker: analysis.DefaultContinuationMarker,
			Penalties:          defaultPenalties(),
		},
		Duplicates: Duplicates{
			Enabled:   true,
			Threshold: types.DefaultSimilarityThreshold,
			Algorithm: analysis.AlgorithmRatcliffObershelp,
		},
		Output: Output{
			Format:  FormatText,
			Summary: true,
		},
		Performance: Performance{
			MaxWorkers:  runtime.NumCPU(),
			MaxFileSize: types.DefaultMaxFileSize,
		},
		Watch: Watch{
			DebounceMs: 300,
		},
		Include: []string{"**/*.py"},
		Exclude: []string{
			"**/.git/**",
			"**/__pycache__/**",
			"**/.venv/**",
			"**/venv/**",
			"**/.tox/**",
			"**/node_modules/**",
			"**/build/**",
			"**/dist/**",
		},
	}
}

func defaultPenalties() []Penalty {
	out := make([]Penalty, len(analysis.DefaultPenaltyRules))
	for i, r := range analysis.DefaultPenaltyRules {
		out[i] = Penalty{Pattern: r.Pattern, Points: r.Penalty}
	}
	return out
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// DeduplicatePatterns removes duplicate patterns, keeping first occurrences in order
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// ShouldAnalyze reports whether a path relative to the project root passes
// the include and exclude globs. Exclusions win.
func (c *Config) ShouldAnalyze(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return false
		}
	}
	if len(c.Include) == 0 {
		return true
	}
	for _, pattern := range c.Include {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// ShouldSkipDir reports whether a directory relative to the project root is
// excluded. Exclude patterns also match with their trailing "/**" removed so a
// walk can prune the directory itself.
func (c *Config) ShouldSkipDir(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	if relPath == "." || relPath == "" {
		return false
	}
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(strings.TrimSuffix(pattern, "/**"), relPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// AnalyzerOptions converts the analysis sections into analyzer options
func (c *Config) AnalyzerOptions() analysis.Options {
	rules := make([]analysis.PenaltyRule, len(c.Analysis.Penalties))
	for i, p := range c.Analysis.Penalties {
		rules[i] = analysis.PenaltyRule{Pattern: p.Pattern, Penalty: p.Points}
	}
	return analysis.Options{
		Style: analysis.StyleOptions{
			CommentMarker:      c.Analysis.CommentMarker,
			LineLengthLimit:    c.Analysis.LineLengthLimit,
			Placeholder:        c.Analysis.Placeholder,
			ContinuationMarker: c.Analysis.ContinuationMarker,
		},
		PenaltyRules:        rules,
		SimilarityThreshold: c.Duplicates.Threshold,
		SimilarityAlgorithm: c.Duplicates.Algorithm,
		DetectDuplicates:    c.Duplicates.Enabled,
		MaxFileSize:         c.Performance.MaxFileSize,
	}
}
