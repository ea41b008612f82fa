package config

import (
	"errors"
	"testing"

	qaerrors "github.com/standardbeagle/codeqa/internal/errors"
)

func TestValidate_Defaults(t *testing.T) {
	cfg := Default("/test/root")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate_SetsSmartDefaults(t *testing.T) {
	cfg := Default("/test/root")
	cfg.Performance.MaxWorkers = 0
	cfg.Output.Format = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Performance.MaxWorkers == 0 {
		t.Errorf("MaxWorkers should have been set to CPU count")
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("Format should default to text, got %q", cfg.Output.Format)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty root", func(c *Config) { c.Project.Root = "" }, "project.root"},
		{"empty comment marker", func(c *Config) { c.Analysis.CommentMarker = "" }, "analysis.comment_marker"},
		{"zero line limit", func(c *Config) { c.Analysis.LineLengthLimit = 0 }, "analysis.line_length_limit"},
		{"empty penalty pattern", func(c *Config) { c.Analysis.Penalties = []Penalty{{Points: 3}} }, "analysis.penalty"},
		{"zero threshold", func(c *Config) { c.Duplicates.Threshold = 0 }, "duplicates.threshold"},
		{"threshold above one", func(c *Config) { c.Duplicates.Threshold = 1.5 }, "duplicates.threshold"},
		{"unknown algorithm", func(c *Config) { c.Duplicates.Algorithm = "soundex" }, "duplicates.algorithm"},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"negative workers", func(c *Config) { c.Performance.MaxWorkers = -1 }, "performance.max_workers"},
		{"zero file size", func(c *Config) { c.Performance.MaxFileSize = 0 }, "performance.max_file_size"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, "watch.debounce_ms"},
		{"bad glob", func(c *Config) { c.Exclude = []string{"[unclosed"} }, "include/exclude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/test/root")
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var ce *qaerrors.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestValidate_ThresholdOfOneAllowed(t *testing.T) {
	cfg := Default("/test/root")
	cfg.Duplicates.Threshold = 1.0
	if err := cfg.Validate(); err != nil {
		t.Errorf("threshold 1.0 should validate: %v", err)
	}
}
