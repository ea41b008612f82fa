package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/config"
	"github.com/standardbeagle/codeqa/internal/debug"
	"github.com/standardbeagle/codeqa/internal/watch"
	"github.com/standardbeagle/codeqa/pkg/pathutil"
)

// watchCommand re-analyzes changed files until interrupted
func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	root := cfg.Project.Root
	if c.NArg() > 0 {
		root = pathutil.ToAbsolute(c.Args().First(), "")
		cfg.Project.Root = root
	}

	analyzer, cleanup, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(c.App.ErrWriter, "Watching %s (Ctrl+C to stop)\n", root)
	return runWatch(ctx, cfg, analyzer, root, c.App.Writer)
}

// runWatch prints a report for every debounced change below root until ctx is done
func runWatch(ctx context.Context, cfg *config.Config, analyzer *analysis.Analyzer, root string, out io.Writer) error {
	watcher, err := watch.NewFileWatcher(cfg)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	var mu sync.Mutex
	watcher.OnChange(func(path string, event watch.EventType) {
		mu.Lock()
		defer mu.Unlock()

		shown := pathutil.ToRelative(path, root)
		if event == watch.EventRemove {
			fmt.Fprintf(out, "==> %s <== removed\n", shown)
			return
		}

		res, err := analyzer.AnalyzeFile(path)
		if err != nil {
			if werr := writeFailure(out, cfg, shown, err); werr != nil {
				debug.LogWatch("failed to write report for %s: %v\n", path, werr)
			}
			return
		}
		res.Path = shown
		if err := writeResult(out, cfg, res); err != nil {
			debug.LogWatch("failed to write report for %s: %v\n", path, err)
		}
	})
	watcher.SetProgressCallbacks(
		func(count int) { debug.LogWatch("re-analyzing %d changed files\n", count) },
		func(count int, d time.Duration) { debug.LogWatch("re-analyzed %d files in %v\n", count, d) },
	)

	if err := watcher.Start(root); err != nil {
		_ = watcher.Stop()
		return err
	}

	<-ctx.Done()
	return watcher.Stop()
}
