package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codeqa/internal/config"
	"github.com/standardbeagle/codeqa/internal/debug"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// FileWatcher monitors a project tree and reports changed source files after a quiet period
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	config    *config.Config
	root      string
	debouncer *eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	onChange func(path string, event EventType)

	// Progress tracking callbacks
	onBatchStart func(count int)
	onBatchEnd   func(count int, duration time.Duration)

	// content digest of each path as last delivered
	digests  map[string]uint64
	digestMu sync.Mutex

	eventsProcessed int64
	unchanged       int64
	errorCount      int64
	lastEventTime   time.Time
	statsMu         sync.RWMutex
}

// NewFileWatcher creates a watcher using the include/exclude globs and debounce of cfg
func NewFileWatcher(cfg *config.Config) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FileWatcher{
		watcher: watcher,
		config:  cfg,
		ctx:     ctx,
		cancel:  cancel,
	}
	fw.debouncer = newEventDebouncer(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, fw)
	return fw, nil
}

// OnChange sets the callback invoked once per debounced path.
// Removals are delivered first, then writes and renames, then creates.
// A path whose content is byte-identical to its last delivery is skipped.
func (fw *FileWatcher) OnChange(fn func(path string, event EventType)) {
	fw.onChange = fn
}

// SetProgressCallbacks sets callbacks for batch processing progress
func (fw *FileWatcher) SetProgressCallbacks(onBatchStart func(count int), onBatchEnd func(count int, duration time.Duration)) {
	fw.onBatchStart = onBatchStart
	fw.onBatchEnd = onBatchEnd
}

// Start begins watching root and every non-excluded directory below it
func (fw *FileWatcher) Start(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	fw.root = abs

	debug.LogWatch("Starting file watcher for directory: %s\n", abs)
	if err := fw.addWatches(abs); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", abs, err)
	}

	fw.wg.Add(1)
	go fw.processEvents()

	debug.LogWatch("File watcher started successfully\n")
	return nil
}

// Stop stops the watcher and waits for its goroutines. Pending events are dropped.
func (fw *FileWatcher) Stop() error {
	var closeErr error
	fw.stopOnce.Do(func() {
		fw.cancel()
		fw.debouncer.stop()
		closeErr = fw.watcher.Close()
		fw.wg.Wait()
		debug.LogWatch("File watcher stopped\n")
	})
	return closeErr
}

// addWatches recursively adds watches to all relevant directories
func (fw *FileWatcher) addWatches(root string) error {
	// Track visited directories to prevent infinite loops from symlink cycles
	visitedDirs := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if !info.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if fw.shouldIgnoreDirectory(path) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			debug.LogWatch("Warning: failed to add watch for %s: %v\n", path, err)
		}
		return nil
	})
}

func (fw *FileWatcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(fw.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// shouldIgnoreDirectory reports directories outside the root or excluded by config
func (fw *FileWatcher) shouldIgnoreDirectory(path string) bool {
	rel, ok := fw.relative(path)
	if !ok {
		return true
	}
	return fw.config.ShouldSkipDir(rel)
}

// shouldProcessPath checks a file path against the include and exclude globs
func (fw *FileWatcher) shouldProcessPath(path string) bool {
	rel, ok := fw.relative(path)
	if !ok {
		return false
	}
	return fw.config.ShouldAnalyze(rel)
}

// processEvents processes file system events from fsnotify
func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.incrementStats(0, 1)
			debug.LogWatch("File watcher error: %v\n", err)
		}
	}
}

// handleEvent handles a single file system event
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("received event %v for path %s\n", event.Op, path)

	info, err := os.Stat(path)
	if err != nil {
		// File might have been deleted
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && fw.shouldProcessPath(path) {
			fw.debouncer.addEvent(path, EventRemove)
		}
		return
	}

	if info.IsDir() {
		// New directories need their own watch
		if event.Op&fsnotify.Create != 0 && !fw.shouldIgnoreDirectory(path) {
			if err := fw.addWatches(path); err != nil {
				debug.LogWatch("Warning: failed to add watch for new directory %s: %v\n", path, err)
			}
		}
		return
	}

	if info.Size() > fw.config.Performance.MaxFileSize {
		debug.LogWatch("skipping oversized file %s (%d bytes)\n", path, info.Size())
		return
	}
	if !fw.shouldProcessPath(path) {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = EventCreate
	case event.Op&fsnotify.Write != 0:
		eventType = EventWrite
	case event.Op&fsnotify.Rename != 0:
		eventType = EventRename
	default:
		return // Ignore chmod
	}

	fw.debouncer.addEvent(path, eventType)
}

// eventDebouncer batches file events until the tree has been quiet for the debounce period
type eventDebouncer struct {
	events   map[string]EventType
	mutex    sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	stopped  bool
	fw       *FileWatcher
}

func newEventDebouncer(debounce time.Duration, fw *FileWatcher) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]EventType),
		debounce: debounce,
		fw:       fw,
	}
}

// addEvent records the latest event for path and restarts the quiet period
func (d *eventDebouncer) addEvent(path string, eventType EventType) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	// A create followed by writes is still a create
	if prev, ok := d.events[path]; !ok || prev != EventCreate || eventType == EventRemove {
		d.events[path] = eventType
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// flush delivers all accumulated events
func (d *eventDebouncer) flush() {
	d.mutex.Lock()
	if d.stopped {
		d.mutex.Unlock()
		return
	}
	events := d.events
	d.events = make(map[string]EventType)
	d.mutex.Unlock()

	if len(events) == 0 {
		return
	}

	fw := d.fw
	debug.LogWatch("Processing %d debounced file events\n", len(events))
	if fw.onBatchStart != nil {
		fw.onBatchStart(len(events))
	}
	batchStart := time.Now()

	var creates, removes, changes []string
	for path, eventType := range events {
		switch eventType {
		case EventCreate:
			creates = append(creates, path)
		case EventRemove:
			removes = append(removes, path)
		default:
			changes = append(changes, path)
		}
	}
	sort.Strings(creates)
	sort.Strings(removes)
	sort.Strings(changes)

	deliver := func(paths []string) {
		for _, path := range paths {
			if events[path] == EventRemove {
				fw.forget(path)
			} else if fw.sameContent(path) {
				fw.statsMu.Lock()
				fw.unchanged++
				fw.statsMu.Unlock()
				continue
			}
			if fw.onChange != nil {
				fw.onChange(path, events[path])
			}
			fw.incrementStats(1, 0)
		}
	}
	deliver(removes)
	deliver(changes)
	deliver(creates)

	if fw.onBatchEnd != nil {
		fw.onBatchEnd(len(events), time.Since(batchStart))
	}
}

// sameContent reports whether path still holds the content last delivered
// and records its current digest otherwise. Unreadable files count as changed.
func (fw *FileWatcher) sameContent(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	sum := xxhash.Sum64(content)

	fw.digestMu.Lock()
	defer fw.digestMu.Unlock()
	if prev, ok := fw.digests[path]; ok && prev == sum {
		return true
	}
	if fw.digests == nil {
		fw.digests = make(map[string]uint64)
	}
	fw.digests[path] = sum
	return false
}

func (fw *FileWatcher) forget(path string) {
	fw.digestMu.Lock()
	defer fw.digestMu.Unlock()
	delete(fw.digests, path)
}

// incrementStats updates watch mode statistics
func (fw *FileWatcher) incrementStats(events int64, errors int64) {
	fw.statsMu.Lock()
	defer fw.statsMu.Unlock()

	fw.eventsProcessed += events
	fw.errorCount += errors
	fw.lastEventTime = time.Now()
}

// GetStats returns current watch mode statistics
func (fw *FileWatcher) GetStats() Stats {
	fw.statsMu.RLock()
	defer fw.statsMu.RUnlock()

	return Stats{
		EventsProcessed: fw.eventsProcessed,
		Unchanged:       fw.unchanged,
		ErrorCount:      fw.errorCount,
		LastEventTime:   fw.lastEventTime,
		IsActive:        fw.ctx.Err() == nil,
	}
}

// Stats contains statistics about file watching operations
type Stats struct {
	EventsProcessed int64
	Unchanged       int64 // changes dropped because the content was identical
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}
