package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("", "/project")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/project", cfg.Project.Root)
	assert.Equal(t, "#", cfg.Analysis.CommentMarker)
	assert.Equal(t, 79, cfg.Analysis.LineLengthLimit)
	assert.Equal(t, "# Add comments here", cfg.Analysis.Placeholder)
	assert.Equal(t, `\`, cfg.Analysis.ContinuationMarker)
	assert.Equal(t, []Penalty{{"goto", 10}, {"magic_number", 5}}, cfg.Analysis.Penalties)
	assert.True(t, cfg.Duplicates.Enabled)
	assert.Equal(t, 0.8, cfg.Duplicates.Threshold)
	assert.Equal(t, "ratcliff-obershelp", cfg.Duplicates.Algorithm)
	assert.Equal(t, FormatText, cfg.Output.Format)
	assert.Equal(t, 300, cfg.Watch.DebounceMs)
	assert.Equal(t, []string{"**/*.py"}, cfg.Include)
}

func TestParseKDL_AnalysisBlock(t *testing.T) {
	kdlContent := `
analysis {
    comment_marker "//"
    line_length_limit 99
    placeholder "# TODO: describe"
    continuation_marker "# continued"
    penalty "eval(" 20
    penalty "exec(" 15
}
`
	cfg, err := parseKDL(kdlContent, "/project")
	require.NoError(t, err)

	assert.Equal(t, "//", cfg.Analysis.CommentMarker)
	assert.Equal(t, 99, cfg.Analysis.LineLengthLimit)
	assert.Equal(t, "# TODO: describe", cfg.Analysis.Placeholder)
	assert.Equal(t, "# continued", cfg.Analysis.ContinuationMarker)
	assert.Equal(t, []Penalty{{"eval(", 20}, {"exec(", 15}}, cfg.Analysis.Penalties)
}

func TestParseKDL_NoPenalties(t *testing.T) {
	cfg, err := parseKDL("analysis {\n    no_penalties\n}\n", "/project")
	require.NoError(t, err)
	assert.NotNil(t, cfg.Analysis.Penalties)
	assert.Empty(t, cfg.Analysis.Penalties)
}

func TestParseKDL_Sections(t *testing.T) {
	kdlContent := `
project {
    root "src"
    name "demo"
}

duplicates {
    enabled false
    threshold 0.9
    algorithm "jaro-winkler"
}

output {
    format "json"
    summary false
}

performance {
    max_workers 3
    max_file_size "2MB"
}

watch {
    debounce_ms 50
}

include {
    "src/**/*.py"
}

exclude {
    "**/migrations/**"
}
`
	cfg, err := parseKDL(kdlContent, "/project")
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.Project.Root)
	assert.Equal(t, "demo", cfg.Project.Name)
	assert.False(t, cfg.Duplicates.Enabled)
	assert.Equal(t, 0.9, cfg.Duplicates.Threshold)
	assert.Equal(t, "jaro-winkler", cfg.Duplicates.Algorithm)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.False(t, cfg.Output.Summary)
	assert.Equal(t, 3, cfg.Performance.MaxWorkers)
	assert.Equal(t, int64(2*1024*1024), cfg.Performance.MaxFileSize)
	assert.Equal(t, 50, cfg.Watch.DebounceMs)
	assert.Equal(t, []string{"src/**/*.py"}, cfg.Include)
	assert.Equal(t, []string{"**/migrations/**"}, cfg.Exclude)
}

func TestParseKDL_InvalidDocument(t *testing.T) {
	_, err := parseKDL("analysis {", "/project")
	assert.Error(t, err)
}

func TestLoadKDL_Missing(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDL_RelativeRoot(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, KDLFileName), []byte("project {\n    root \"lib\"\n}\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, "lib"), cfg.Project.Root)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"512", 512},
		{"10B", 10},
		{"4KB", 4 * 1024},
		{"2mb", 2 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseSize("lots")
	assert.Error(t, err)
}
