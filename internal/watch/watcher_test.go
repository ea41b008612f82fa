package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/codeqa/testhelpers"
)

type recorder struct {
	mu     sync.Mutex
	events map[string]EventType
	ch     chan string
}

func newRecorder() *recorder {
	return &recorder{events: make(map[string]EventType), ch: make(chan string, 16)}
}

func (r *recorder) record(path string, event EventType) {
	r.mu.Lock()
	r.events[path] = event
	r.mu.Unlock()
	r.ch <- path
}

func (r *recorder) wait(t *testing.T, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-r.ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event on %s", want)
		}
	}
}

func newTestWatcher(t *testing.T, root string) *FileWatcher {
	t.Helper()
	cfg := testhelpers.NewTestConfigBuilder(root).WithDebounceMs(20).Build()

	fw, err := NewFileWatcher(cfg)
	require.NoError(t, err)
	return fw
}

func TestFileWatcher_ReportsChangedPythonFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	fw := newTestWatcher(t, root)
	rec := newRecorder()
	fw.OnChange(rec.record)

	require.NoError(t, fw.Start(root))

	path := filepath.Join(root, "module.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
	rec.wait(t, path)

	require.NoError(t, fw.Stop())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Contains(t, rec.events, path)
	assert.GreaterOrEqual(t, fw.GetStats().EventsProcessed, int64(1))
	assert.False(t, fw.GetStats().IsActive)
}

func TestFileWatcher_SkipsIdenticalContent(t *testing.T) {
	testhelpers.VerifyNoLeaks(t)

	root := t.TempDir()
	fw := newTestWatcher(t, root)
	rec := newRecorder()
	fw.OnChange(rec.record)
	require.NoError(t, fw.Start(root))
	t.Cleanup(func() { _ = fw.Stop() })

	path := filepath.Join(root, "module.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
	rec.wait(t, path)

	// Rewriting the same bytes is not a change
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
	testhelpers.WaitFor(t, func() bool { return fw.GetStats().Unchanged >= 1 }, 5*time.Second)

	require.NoError(t, os.WriteFile(path, []byte("x = 2\n"), 0o644))
	rec.wait(t, path)
	testhelpers.WaitFor(t, func() bool { return fw.GetStats().EventsProcessed == 2 }, 5*time.Second)
}

func TestSameContent(t *testing.T) {
	fw := &FileWatcher{}
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	assert.False(t, fw.sameContent(path), "first sighting is a change")
	assert.True(t, fw.sameContent(path))

	require.NoError(t, os.WriteFile(path, []byte("a = 2\n"), 0o644))
	assert.False(t, fw.sameContent(path))

	fw.forget(path)
	assert.False(t, fw.sameContent(path), "a removed path starts over")
	assert.False(t, fw.sameContent(filepath.Join(t.TempDir(), "missing.py")))
}

func TestFileWatcher_NewDirectoriesAreWatched(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	fw := newTestWatcher(t, root)
	rec := newRecorder()
	fw.OnChange(rec.record)
	require.NoError(t, fw.Start(root))
	defer fw.Stop()

	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher a moment to register the new directory
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "inner.py")
	require.NoError(t, os.WriteFile(path, []byte("y = 2\n"), 0o644))
	rec.wait(t, path)
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	fw := newTestWatcher(t, root)
	require.NoError(t, fw.Start(root))

	require.NoError(t, fw.Stop())
	assert.NotPanics(t, func() { _ = fw.Stop() })
}

func TestFileWatcher_Filters(t *testing.T) {
	root := t.TempDir()
	fw := newTestWatcher(t, root)
	defer fw.Stop()
	fw.root = root

	assert.True(t, fw.shouldProcessPath(filepath.Join(root, "app.py")))
	assert.True(t, fw.shouldProcessPath(filepath.Join(root, "pkg", "sub", "mod.py")))
	assert.False(t, fw.shouldProcessPath(filepath.Join(root, "README.md")))
	assert.False(t, fw.shouldProcessPath(filepath.Join(root, ".venv", "lib", "site.py")))
	assert.False(t, fw.shouldProcessPath(filepath.Join(filepath.Dir(root), "outside.py")))

	assert.False(t, fw.shouldIgnoreDirectory(root))
	assert.False(t, fw.shouldIgnoreDirectory(filepath.Join(root, "pkg")))
	assert.True(t, fw.shouldIgnoreDirectory(filepath.Join(root, ".git")))
	assert.True(t, fw.shouldIgnoreDirectory(filepath.Join(root, "pkg", "__pycache__")))
}

func TestEventDebouncer_CoalescesEvents(t *testing.T) {
	fw := &FileWatcher{}
	var mu sync.Mutex
	var delivered []string
	var kinds []EventType
	done := make(chan struct{})

	fw.onChange = func(path string, event EventType) {
		mu.Lock()
		delivered = append(delivered, path)
		kinds = append(kinds, event)
		mu.Unlock()
	}
	fw.onBatchEnd = func(count int, _ time.Duration) {
		assert.Equal(t, 3, count)
		close(done)
	}

	d := newEventDebouncer(10*time.Millisecond, fw)
	d.addEvent("b.py", EventCreate)
	d.addEvent("b.py", EventWrite)
	d.addEvent("a.py", EventWrite)
	d.addEvent("c.py", EventWrite)
	d.addEvent("c.py", EventRemove)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("debouncer never flushed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"c.py", "a.py", "b.py"}, delivered)
	assert.Equal(t, []EventType{EventRemove, EventWrite, EventCreate}, kinds)
}

func TestEventDebouncer_StopDropsPending(t *testing.T) {
	fw := &FileWatcher{}
	called := make(chan struct{}, 1)
	fw.onChange = func(string, EventType) { called <- struct{}{} }

	d := newEventDebouncer(10*time.Millisecond, fw)
	d.addEvent("a.py", EventWrite)
	d.stop()
	d.addEvent("b.py", EventWrite)

	select {
	case <-called:
		t.Fatal("stopped debouncer delivered an event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "create", EventCreate.String())
	assert.Equal(t, "write", EventWrite.String())
	assert.Equal(t, "remove", EventRemove.String())
	assert.Equal(t, "rename", EventRename.String())
	assert.Equal(t, "unknown", EventType(42).String())
}
