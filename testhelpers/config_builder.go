package testhelpers

import (
	"github.com/standardbeagle/codeqa/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(projectPath).
//		WithExclusions("**/generated/**").
//		WithDebounceMs(20).
//		Build()
type TestConfigBuilder struct {
	cfg *config.Config
}

// NewTestConfigBuilder starts from the built-in defaults rooted at projectRoot,
// with a single worker, a short debounce and no summary tables
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	cfg := config.Default(projectRoot)
	cfg.Project.Name = "test-project"
	cfg.Performance.MaxWorkers = 1
	cfg.Watch.DebounceMs = 10
	cfg.Output.Summary = false
	return &TestConfigBuilder{cfg: cfg}
}

// WithExclusions adds additional exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.cfg.Exclude = append(b.cfg.Exclude, patterns...)
	return b
}

// WithIncludePatterns sets the include patterns (replaces defaults)
func (b *TestConfigBuilder) WithIncludePatterns(patterns ...string) *TestConfigBuilder {
	b.cfg.Include = patterns
	return b
}

// WithDebounceMs sets the watch debounce
func (b *TestConfigBuilder) WithDebounceMs(ms int) *TestConfigBuilder {
	b.cfg.Watch.DebounceMs = ms
	return b
}

// WithWorkers sets the batch parallelism
func (b *TestConfigBuilder) WithWorkers(n int) *TestConfigBuilder {
	b.cfg.Performance.MaxWorkers = n
	return b
}

// WithJSON selects JSON output
func (b *TestConfigBuilder) WithJSON() *TestConfigBuilder {
	b.cfg.Output.Format = config.FormatJSON
	return b
}

// Build returns the config. It panics if the settings do not validate.
func (b *TestConfigBuilder) Build() *config.Config {
	if err := b.cfg.Validate(); err != nil {
		panic(err)
	}
	return b.cfg
}
