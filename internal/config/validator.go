package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/codeqa/internal/analysis"
	qaerrors "github.com/standardbeagle/codeqa/internal/errors"
)

// Validate checks bounds and fills smart defaults for zero values.
// It returns a *errors.ConfigError naming the offending field.
func (c *Config) Validate() error {
	if c.Project.Root == "" {
		return qaerrors.NewConfigError("project.root", "", errors.New("project root cannot be empty"))
	}

	if c.Analysis.CommentMarker == "" {
		return qaerrors.NewConfigError("analysis.comment_marker", "", errors.New("comment marker cannot be empty"))
	}
	if c.Analysis.LineLengthLimit <= 0 {
		return qaerrors.NewConfigError("analysis.line_length_limit", fmt.Sprint(c.Analysis.LineLengthLimit),
			errors.New("line length limit must be positive"))
	}
	for _, p := range c.Analysis.Penalties {
		if p.Pattern == "" {
			return qaerrors.NewConfigError("analysis.penalty", fmt.Sprint(p.Points), errors.New("penalty pattern cannot be empty"))
		}
	}

	if c.Duplicates.Threshold <= 0 || c.Duplicates.Threshold > 1 {
		return qaerrors.NewConfigError("duplicates.threshold", fmt.Sprint(c.Duplicates.Threshold),
			errors.New("threshold must be in (0, 1]"))
	}
	if _, err := analysis.NewSimilarityMetric(c.Duplicates.Algorithm); err != nil {
		return qaerrors.NewConfigError("duplicates.algorithm", c.Duplicates.Algorithm,
			fmt.Errorf("%w (known: %s)", err, strings.Join(analysis.SimilarityAlgorithms, ", ")))
	}

	switch c.Output.Format {
	case FormatText, FormatJSON:
	case "":
		c.Output.Format = FormatText
	default:
		return qaerrors.NewConfigError("output.format", c.Output.Format, errors.New("format must be text or json"))
	}

	if c.Performance.MaxWorkers < 0 {
		return qaerrors.NewConfigError("performance.max_workers", fmt.Sprint(c.Performance.MaxWorkers),
			errors.New("max workers cannot be negative"))
	}
	if c.Performance.MaxWorkers == 0 {
		c.Performance.MaxWorkers = runtime.NumCPU()
	}
	if c.Performance.MaxFileSize <= 0 {
		return qaerrors.NewConfigError("performance.max_file_size", fmt.Sprint(c.Performance.MaxFileSize),
			errors.New("max file size must be positive"))
	}

	if c.Watch.DebounceMs < 0 {
		return qaerrors.NewConfigError("watch.debounce_ms", fmt.Sprint(c.Watch.DebounceMs),
			errors.New("debounce cannot be negative"))
	}

	for _, pattern := range append(append([]string{}, c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return qaerrors.NewConfigError("include/exclude", pattern, errors.New("invalid glob pattern"))
		}
	}
	return nil
}
