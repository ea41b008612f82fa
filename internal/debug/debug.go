// Package debug is opt-in diagnostic logging for codeqa internals.
// Report text is written by the display layer, never through here.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug turns logging on at build time:
// go build -ldflags "-X github.com/standardbeagle/codeqa/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set by the mcp command. Stdio then carries the protocol,
// so only a log file may receive output.
var MCPMode = false

const logDirName = "codeqa-debug-logs"

var (
	mu      sync.Mutex
	output  io.Writer // nil discards
	logFile *os.File
)

// SetMCPMode marks stdio as reserved for the MCP protocol
func SetMCPMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	MCPMode = enabled
}

// SetDebugOutput sets the destination for log lines; nil discards them
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// InitDebugLogFile sends log lines to a new timestamped file under the temp dir
// and returns its path. A previously opened log file is closed.
func InitDebugLogFile() (string, error) {
	dir := filepath.Join(os.TempDir(), logDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("debug-%s-%d.log", time.Now().Format("2006-01-02T150405"), os.Getpid()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	output = f
	return path, nil
}

// CloseDebugLog closes the log file opened by InitDebugLogFile, if any
func CloseDebugLog() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	output = nil
	return err
}

// IsDebugEnabled reports whether the build flag or DEBUG=1/true asks for logging
func IsDebugEnabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

// Log writes one component-tagged line when logging is enabled and has somewhere to go
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if output == nil || (MCPMode && logFile == nil) {
		return
	}
	fmt.Fprintf(output, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

func LogAnalysis(format string, args ...interface{}) { Log("ANALYSIS", format, args...) }

func LogParse(format string, args ...interface{}) { Log("PARSE", format, args...) }

func LogConfig(format string, args ...interface{}) { Log("CONFIG", format, args...) }

func LogWatch(format string, args ...interface{}) { Log("WATCH", format, args...) }

// LogMCP is silent in MCP mode unless a log file is open
func LogMCP(format string, args ...interface{}) { Log("MCP", format, args...) }
