package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/config"
	"github.com/standardbeagle/codeqa/internal/debug"
	"github.com/standardbeagle/codeqa/internal/display"
	qaerrors "github.com/standardbeagle/codeqa/internal/errors"
	"github.com/standardbeagle/codeqa/pkg/pathutil"
)

// stdinPath is the argument that reads source text from standard input
const stdinPath = "-"

// collectFiles expands arguments into an ordered, duplicate-free file list.
// Directories are walked with the include and exclude globs; explicit files are
// always kept; other arguments are expanded as doublestar globs.
// No arguments means the project root.
func collectFiles(cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{cfg.Project.Root}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		if arg == stdinPath {
			add(arg)
			continue
		}

		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			found, err := walkDir(cfg, arg)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		case err == nil:
			add(arg)
		default:
			matches, globErr := doublestar.FilepathGlob(arg)
			if globErr != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", arg, globErr)
			}
			if len(matches) == 0 {
				return nil, qaerrors.NewFileError("stat", arg, err)
			}
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && !info.IsDir() {
					add(m)
				}
			}
		}
	}
	return files, nil
}

// walkDir lists analyzable files below dir in lexical order
func walkDir(cfg *config.Config, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.LogAnalysis("skipping %s: %v\n", path, err)
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			if cfg.ShouldSkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if cfg.ShouldAnalyze(rel) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// analyzeFiles analyzes each file independently with at most workers in flight.
// results and errs are indexed like files.
func analyzeFiles(ctx context.Context, analyzer *analysis.Analyzer, files []string, stdin io.Reader, workers int) ([]*analysis.Result, []error) {
	results := make([]*analysis.Result, len(files))
	errs := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			if file == stdinPath {
				results[i], errs[i] = analyzeReader(analyzer, stdin)
				return nil
			}
			results[i], errs[i] = analyzer.AnalyzeFile(file)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

func analyzeReader(analyzer *analysis.Analyzer, r io.Reader) (*analysis.Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, qaerrors.NewFileError("read", stdinPath, err)
	}
	res, err := analyzer.Analyze(string(content))
	if err != nil {
		return nil, err
	}
	res.Path = stdinPath
	return res, nil
}

// analyzeCommand analyzes every file named on the command line and prints
// the reports in argument order. Any failed file makes the exit status 1.
func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	files, err := collectFiles(cfg, c.Args().Slice())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(c.App.ErrWriter, "No Python files found")
		return nil
	}

	analyzer, cleanup, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	debug.LogAnalysis("analyzing %d files with %d workers\n", len(files), cfg.Performance.MaxWorkers)
	results, errs := analyzeFiles(c.Context, analyzer, files, c.App.Reader, cfg.Performance.MaxWorkers)
	results = pathutil.ToRelativeResults(results, cfg.Project.Root)

	if err := writeBatch(c.App.Writer, cfg, files, results, errs); err != nil {
		return err
	}
	if qaerrors.NewMultiError(errs).ErrorOrNil() != nil {
		return errFailed
	}
	return nil
}

// batchEntry is one file of a JSON batch report
type batchEntry struct {
	Path   string           `json:"path"`
	Result *analysis.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func writeBatch(w io.Writer, cfg *config.Config, files []string, results []*analysis.Result, errs []error) error {
	if cfg.Output.Format == config.FormatJSON {
		entries := make([]batchEntry, len(files))
		for i, f := range files {
			entries[i] = batchEntry{Path: pathutil.ToRelative(f, cfg.Project.Root), Result: results[i]}
			if errs[i] != nil {
				entries[i].Error = errs[i].Error()
			}
		}
		return display.WriteJSON(w, entries)
	}

	for i, f := range files {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if errs[i] != nil {
			if err := writeFailure(w, cfg, pathutil.ToRelative(f, cfg.Project.Root), errs[i]); err != nil {
				return err
			}
			continue
		}
		if err := writeResult(w, cfg, results[i]); err != nil {
			return err
		}
	}
	return nil
}
