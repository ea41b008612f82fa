package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/codeqa/internal/debug"
)

// pyprojectSection is the [tool.codeqa] table of pyproject.toml
type pyprojectSection struct {
	CommentMarker       *string        `toml:"comment-marker"`
	LineLength          *int           `toml:"line-length"`
	Placeholder         *string        `toml:"placeholder"`
	ContinuationMarker  *string        `toml:"continuation-marker"`
	Penalties           map[string]int `toml:"penalties"`
	Duplicates          *bool          `toml:"duplicates"`
	SimilarityThreshold *float64       `toml:"similarity-threshold"`
	SimilarityAlgorithm *string        `toml:"similarity-algorithm"`
	Format              *string        `toml:"format"`
	Summary             *bool          `toml:"summary"`
	MaxWorkers          *int           `toml:"max-workers"`
	Include             []string       `toml:"include"`
	Exclude             []string       `toml:"exclude"`
	ExtendExclude       []string       `toml:"extend-exclude"`
}

type pyprojectFile struct {
	Tool struct {
		Codeqa *pyprojectSection `toml:"codeqa"`
	} `toml:"tool"`
}

// ApplyPyproject overrides cfg with the [tool.codeqa] table of dir/pyproject.toml.
// A missing file or table leaves cfg unchanged.
func ApplyPyproject(cfg *Config, dir string) error {
	path := filepath.Join(dir, PyprojectFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file pyprojectFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if file.Tool.Codeqa == nil {
		return nil
	}

	file.Tool.Codeqa.apply(cfg)
	debug.LogConfig("applied [tool.codeqa] from %s\n", path)
	return nil
}

func (s *pyprojectSection) apply(cfg *Config) {
	if s.CommentMarker != nil {
		cfg.Analysis.CommentMarker = *s.CommentMarker
	}
	if s.LineLength != nil {
		cfg.Analysis.LineLengthLimit = *s.LineLength
	}
	if s.Placeholder != nil {
		cfg.Analysis.Placeholder = *s.Placeholder
	}
	if s.ContinuationMarker != nil {
		cfg.Analysis.ContinuationMarker = *s.ContinuationMarker
	}
	if s.Penalties != nil {
		patterns := make([]string, 0, len(s.Penalties))
		for pattern := range s.Penalties {
			patterns = append(patterns, pattern)
		}
		sort.Strings(patterns)

		cfg.Analysis.Penalties = make([]Penalty, 0, len(patterns))
		for _, pattern := range patterns {
			cfg.Analysis.Penalties = append(cfg.Analysis.Penalties, Penalty{Pattern: pattern, Points: s.Penalties[pattern]})
		}
	}
	if s.Duplicates != nil {
		cfg.Duplicates.Enabled = *s.Duplicates
	}
	if s.SimilarityThreshold != nil {
		cfg.Duplicates.Threshold = *s.SimilarityThreshold
	}
	if s.SimilarityAlgorithm != nil {
		cfg.Duplicates.Algorithm = *s.SimilarityAlgorithm
	}
	if s.Format != nil {
		cfg.Output.Format = *s.Format
	}
	if s.Summary != nil {
		cfg.Output.Summary = *s.Summary
	}
	if s.MaxWorkers != nil {
		cfg.Performance.MaxWorkers = *s.MaxWorkers
	}
	if s.Include != nil {
		cfg.Include = s.Include
	}
	if s.Exclude != nil {
		cfg.Exclude = s.Exclude
	}
	if len(s.ExtendExclude) > 0 {
		cfg.Exclude = DeduplicatePatterns(append(append([]string{}, cfg.Exclude...), s.ExtendExclude...))
	}
}
