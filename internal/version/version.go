// Package version reports what build of codeqa is running.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Version is the release version of codeqa
const Version = "0.1.0"

// Release metadata, overridden with -ldflags "-X .../version.GitCommit=...".
var (
	GitCommit = ""
	BuildDate = ""
)

// FullInfo is the server_version string reported by the MCP info tool
func FullInfo() string {
	commit, date := GitCommit, BuildDate
	if commit == "" {
		commit = vcsSetting("vcs.revision", "unknown")
	}
	if date == "" {
		date = vcsSetting("vcs.time", "development")
	}
	return fmt.Sprintf("codeqa %s (commit: %s, built: %s)", Version, commit, date)
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID fingerprints the binary for `info {"tool": "version"}`, so an agent
// can tell whether the MCP server it talks to was rebuilt since its last session.
func BuildID() string {
	buildIDOnce.Do(func() {
		buildID = computeBuildID()
	})
	return buildID
}

func computeBuildID() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}

	h := xxhash.New()
	for _, s := range []string{info.GoVersion, info.Main.Path, info.Main.Version, GitCommit} {
		_, _ = h.WriteString(s)
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" || s.Key == "vcs.modified" {
			_, _ = h.WriteString(s.Key + "=" + s.Value)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func vcsSetting(key, fallback string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}
	for _, s := range info.Settings {
		if s.Key == key && s.Value != "" {
			return s.Value
		}
	}
	return fallback
}
