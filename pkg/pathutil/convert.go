// Package pathutil converts between the absolute paths used while analyzing
// and the root-relative paths shown to users.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/codeqa/internal/analysis"
)

// ToRelative converts an absolute path to one relative to rootDir.
// Relative paths and paths outside rootDir are returned unchanged.
//
// Examples:
//   - ToRelative("/home/user/project/pkg/app.py", "/home/user/project") → "pkg/app.py"
//   - ToRelative("/other/app.py", "/home/user/project") → "/other/app.py"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// ToAbsolute resolves path against rootDir; absolute paths are only cleaned
func ToAbsolute(path, rootDir string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if rootDir == "" {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return filepath.Clean(path)
	}
	return filepath.Join(rootDir, path)
}

// ToRelativeResults returns copies of results whose paths are relative to rootDir.
// The originals are not modified.
func ToRelativeResults(results []*analysis.Result, rootDir string) []*analysis.Result {
	if len(results) == 0 {
		return results
	}

	converted := make([]*analysis.Result, len(results))
	for i, r := range results {
		if r == nil {
			continue
		}
		c := *r
		c.Path = ToRelative(c.Path, rootDir)
		converted[i] = &c
	}
	return converted
}
