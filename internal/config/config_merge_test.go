package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfigs_ExclusionsMerge(t *testing.T) {
	base := &Config{Exclude: []string{"**/.venv/**", "**/vendor/**"}}
	project := &Config{Exclude: []string{"**/migrations/**", "**/vendor/**"}}

	merged := mergeConfigs(base, project)

	assert.Equal(t, []string{"**/.venv/**", "**/vendor/**", "**/migrations/**"}, merged.Exclude)
}

func TestMergeConfigs_InclusionsProjectOverride(t *testing.T) {
	base := &Config{Include: []string{"**/*.py"}}
	project := &Config{Include: []string{"app/**/*.py"}}

	assert.Equal(t, []string{"app/**/*.py"}, mergeConfigs(base, project).Include)
}

func TestMergeConfigs_InclusionsUseBaseIfProjectEmpty(t *testing.T) {
	base := &Config{Include: []string{"**/*.pyi"}}
	project := &Config{}

	assert.Equal(t, []string{"**/*.pyi"}, mergeConfigs(base, project).Include)
}

func TestMergeConfigs_ProjectSettingsTakePrecedence(t *testing.T) {
	base := Default("/base")
	base.Analysis.LineLengthLimit = 120
	project := Default("/project")
	project.Analysis.LineLengthLimit = 100

	merged := mergeConfigs(base, project)
	assert.Equal(t, 100, merged.Analysis.LineLengthLimit)
	assert.Equal(t, "/project", merged.Project.Root)
}

func TestLoadWithRoot_MergesGlobalAndProjectConfigs(t *testing.T) {
	tmpHome := t.TempDir()
	tmpProject := t.TempDir()

	globalConfig := `
exclude {
    "**/.venv/**"
}

analysis {
    line_length_limit 120
}
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpHome, KDLFileName), []byte(globalConfig), 0644))

	projectConfig := `
project {
    name "test-project"
}

exclude {
    "**/migrations/**"
}

analysis {
    line_length_limit 100
}
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpProject, KDLFileName), []byte(projectConfig), 0644))

	t.Setenv("HOME", tmpHome)

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Contains(t, cfg.Exclude, "**/.venv/**", "Should include global exclusion")
	assert.Contains(t, cfg.Exclude, "**/migrations/**", "Should include project exclusion")
	assert.Equal(t, 100, cfg.Analysis.LineLengthLimit, "Project settings should override global")
	assert.Equal(t, "test-project", cfg.Project.Name)
}

func TestLoadWithRoot_GlobalConfigOnly(t *testing.T) {
	tmpHome := t.TempDir()
	tmpProject := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpHome, KDLFileName),
		[]byte("duplicates {\n    threshold 0.95\n}\n"), 0644))
	t.Setenv("HOME", tmpHome)

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)

	abs, err := filepath.Abs(tmpProject)
	require.NoError(t, err)
	assert.Equal(t, 0.95, cfg.Duplicates.Threshold)
	assert.Equal(t, abs, cfg.Project.Root)
}

func TestLoadWithRoot_DefaultConfigFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tmpProject := t.TempDir()

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)

	abs, err := filepath.Abs(tmpProject)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.Project.Root)
	assert.Equal(t, 79, cfg.Analysis.LineLengthLimit)
	assert.Greater(t, cfg.Performance.MaxWorkers, 0)
}

func TestLoadWithRoot_ExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tmpProject := t.TempDir()
	custom := filepath.Join(t.TempDir(), "custom.kdl")
	require.NoError(t, os.WriteFile(custom, []byte("output {\n    format \"json\"\n}\n"), 0644))

	cfg, err := LoadWithRoot(custom, tmpProject)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Output.Format)

	_, err = LoadWithRoot(filepath.Join(tmpProject, "missing.kdl"), tmpProject)
	assert.Error(t, err)
}

func TestLoadWithRoot_InvalidConfigRejected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tmpProject := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpProject, KDLFileName),
		[]byte("duplicates {\n    algorithm \"soundex\"\n}\n"), 0644))

	_, err := LoadWithRoot("", tmpProject)
	assert.Error(t, err)
}

func TestShouldAnalyze(t *testing.T) {
	cfg := Default("/project")

	assert.True(t, cfg.ShouldAnalyze("main.py"))
	assert.True(t, cfg.ShouldAnalyze("pkg/sub/module.py"))
	assert.False(t, cfg.ShouldAnalyze("README.md"))
	assert.False(t, cfg.ShouldAnalyze(".venv/lib/site.py"))
	assert.False(t, cfg.ShouldAnalyze("pkg/__pycache__/module.py"))

	cfg.Include = nil
	assert.True(t, cfg.ShouldAnalyze("README.md"), "no include patterns means everything not excluded")
}

func TestShouldSkipDir(t *testing.T) {
	cfg := Default("/project")

	assert.False(t, cfg.ShouldSkipDir("."))
	assert.False(t, cfg.ShouldSkipDir("pkg"))
	assert.True(t, cfg.ShouldSkipDir(".git"))
	assert.True(t, cfg.ShouldSkipDir("pkg/__pycache__"))
	assert.True(t, cfg.ShouldSkipDir(".venv"))
	assert.True(t, cfg.ShouldSkipDir("frontend/node_modules"))
}

func TestAnalyzerOptions(t *testing.T) {
	cfg := Default("/project")
	cfg.Analysis.Penalties = []Penalty{{Pattern: "eval(", Points: 20}}
	cfg.Duplicates.Enabled = false

	opts := cfg.AnalyzerOptions()
	require.Len(t, opts.PenaltyRules, 1)
	assert.Equal(t, "eval(", opts.PenaltyRules[0].Pattern)
	assert.Equal(t, 20, opts.PenaltyRules[0].Penalty)
	assert.Equal(t, 79, opts.Style.LineLengthLimit)
	assert.Equal(t, 0.8, opts.SimilarityThreshold)
	assert.False(t, opts.DetectDuplicates)
}
