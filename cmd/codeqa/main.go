package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/config"
	"github.com/standardbeagle/codeqa/internal/debug"
	"github.com/standardbeagle/codeqa/internal/display"
	qaerrors "github.com/standardbeagle/codeqa/internal/errors"
	"github.com/standardbeagle/codeqa/internal/parser"
	"github.com/standardbeagle/codeqa/internal/version"
)

// Exit statuses
const (
	exitFailure = 1 // syntax failure or any failed file
	exitUsage   = 2
)

// errFailed ends the process with exitFailure after the failure was already reported
var errFailed = cli.Exit("", exitFailure)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root != "" {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		root = absRoot
	}

	cfg, err := config.LoadWithRoot(c.String("config"), root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.Bool("json") {
		cfg.Output.Format = config.FormatJSON
	}
	if c.Bool("no-summary") {
		cfg.Output.Summary = false
	}
	if c.Bool("no-duplicates") {
		cfg.Duplicates.Enabled = false
	}
	if c.IsSet("threshold") {
		cfg.Duplicates.Threshold = c.Float64("threshold")
	}
	if c.IsSet("algorithm") {
		cfg.Duplicates.Algorithm = c.String("algorithm")
	}
	if c.IsSet("line-length") {
		cfg.Analysis.LineLengthLimit = c.Int("line-length")
	}
	if c.IsSet("workers") {
		cfg.Performance.MaxWorkers = c.Int("workers")
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Exclude = config.DeduplicatePatterns(append(cfg.Exclude, excludes...))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAnalyzer creates a parser and an analyzer configured from cfg.
// The returned cleanup closes the parser.
func newAnalyzer(cfg *config.Config) (*analysis.Analyzer, func(), error) {
	p, err := parser.New()
	if err != nil {
		return nil, nil, err
	}
	analyzer, err := analysis.NewAnalyzer(p, cfg.AnalyzerOptions())
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return analyzer, p.Close, nil
}

// writeResult prints one analysis result in the configured format
func writeResult(w io.Writer, cfg *config.Config, res *analysis.Result) error {
	if cfg.Output.Format == config.FormatJSON {
		return display.WriteJSON(w, res)
	}
	display.NewReporter(w, cfg.Output.Summary).Report(res)
	return nil
}

// writeFailure reports an analysis error. Syntax failures use the fixed banner.
func writeFailure(w io.Writer, cfg *config.Config, path string, err error) error {
	if cfg.Output.Format == config.FormatJSON {
		out := map[string]interface{}{"error": err.Error()}
		if path != "" {
			out["path"] = path
		}
		if errType := qaerrors.TypeOf(err); errType != "" {
			out["error_type"] = string(errType)
		}
		var se *qaerrors.SyntaxError
		if errors.As(err, &se) {
			out["line"] = se.Line
			out["column"] = se.Column
		}
		return display.WriteJSON(w, out)
	}

	if path != "" {
		fmt.Fprintf(w, "==> %s <==\n", path)
	}
	if qaerrors.IsSyntaxError(err) {
		display.NewReporter(w, false).SyntaxFailure(err)
		return nil
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Config file path (default: <root>/" + config.KDLFileName + ")",
	},
	&cli.StringFlag{
		Name:    "root",
		Aliases: []string{"r"},
		Usage:   "Project root directory (overrides config)",
	},
	&cli.BoolFlag{
		Name:    "json",
		Aliases: []string{"j"},
		Usage:   "Output as JSON",
	},
	&cli.BoolFlag{
		Name:  "no-summary",
		Usage: "Omit the score summary tables after each report",
	},
	&cli.BoolFlag{
		Name:  "no-duplicates",
		Usage: "Skip repeated line detection",
	},
	&cli.Float64Flag{
		Name:  "threshold",
		Usage: "Similarity above which two lines are reported as repeated",
	},
	&cli.StringFlag{
		Name:  "algorithm",
		Usage: "Line similarity algorithm (ratcliff-obershelp, levenshtein, jaro-winkler, cosine, jaccard, sorensen-dice, lcs)",
	},
	&cli.IntFlag{
		Name:  "line-length",
		Usage: "Line length limit for style recommendations",
	},
	&cli.IntFlag{
		Name:    "workers",
		Aliases: []string{"w"},
		Usage:   "Maximum files analyzed in parallel",
	},
	&cli.StringSliceFlag{
		Name:  "include",
		Usage: "Include files matching glob patterns (e.g., --include 'src/**/*.py')",
	},
	&cli.StringSliceFlag{
		Name:  "exclude",
		Usage: "Exclude files matching glob patterns (e.g., --exclude '**/migrations/**')",
	},
	&cli.BoolFlag{
		Name:  "debug-log",
		Usage: "With DEBUG=1, write debug output to a file in the temp directory instead of stderr (the only output the mcp command allows)",
	},
}

// setupDebugOutput routes debug logging when DEBUG or the build flag enables it
func setupDebugOutput(c *cli.Context) error {
	if !debug.IsDebugEnabled() {
		return nil
	}
	if c.Bool("debug-log") {
		path, err := debug.InitDebugLogFile()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "Debug log: %s\n", path)
		return nil
	}
	debug.SetDebugOutput(c.App.ErrWriter)
	return nil
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "codeqa",
		Usage:                  "Code quality analysis for Python source",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Reader:                 stdin,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags:                  globalFlags,
		Before:                 setupDebugOutput,
		After:                  func(*cli.Context) error { return debug.CloseDebugLog() },
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Aliases:   []string{"a"},
				Usage:     "Analyze Python files, directories or glob patterns ('-' reads stdin)",
				ArgsUsage: "[path|glob|-]...",
				Action:    analyzeCommand,
			},
			{
				Name:      "duplicates",
				Aliases:   []string{"dup"},
				Usage:     "Report repeated lines in files or stdin",
				ArgsUsage: "[file|-]...",
				Action:    duplicatesCommand,
			},
			{
				Name:      "watch",
				Usage:     "Re-analyze Python files as they change",
				ArgsUsage: "[dir]",
				Action:    watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Start MCP server on stdio",
				Action: mcpCommand,
			},
		},
		Action: promptCommand,
	}
}

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(exitFailure)
	}
}
