package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/standardbeagle/codeqa/internal/debug"
	"github.com/standardbeagle/codeqa/internal/syntax"
)

// identifierPattern is ASCII-only. A valid parse already guarantees Python's
// identifier grammar, so only non-ASCII identifiers (e.g. "café") fail it.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// NamingReport is the outcome of one naming check
type NamingReport struct {
	Violations []string         `json:"violations"`
	Artifact   *syntax.Artifact `json:"-"` // last build after a rename, nil if nothing was renamed
}

// NamingChecker flags non-conforming function and variable names and lowercases them in place
type NamingChecker struct {
	build ArtifactBuilder
}

// NewNamingChecker creates a checker; nil build selects syntax.Build
func NewNamingChecker(build ArtifactBuilder) *NamingChecker {
	if build == nil {
		build = syntax.Build
	}
	return &NamingChecker{build: build}
}

// Check walks tree in pre-order and renames offending nodes on tree itself.
// Every rename is followed by a full rebuild that replaces the previous artifact.
// Running Check twice on the same tree reports nothing the second time.
func (nc *NamingChecker) Check(tree *syntax.Tree) *NamingReport {
	report := &NamingReport{Violations: []string{}}

	tree.Walk(func(id syntax.NodeID, n syntax.Node) bool {
		switch n.Kind {
		case syntax.KindFunctionDef:
			if hasUpper(n.Name) {
				report.Violations = append(report.Violations,
					fmt.Sprintf("Function name '%s' should be in lowercase.", n.Name))
				nc.rename(tree, id, report)
			}
		case syntax.KindName:
			switch {
			case isUpperIdentifier(n.Name):
				report.Violations = append(report.Violations,
					fmt.Sprintf("Variable name '%s' should not be in uppercase.", n.Name))
				nc.rename(tree, id, report)
			case !identifierPattern.MatchString(n.Name):
				report.Violations = append(report.Violations,
					fmt.Sprintf("Variable name '%s' does not follow naming conventions.", n.Name))
			}
		}
		return true
	})

	debug.LogAnalysis("naming: %d violations, tree version %d\n", len(report.Violations), tree.Version())
	return report
}

func (nc *NamingChecker) rename(tree *syntax.Tree, id syntax.NodeID, report *NamingReport) {
	tree.Rename(id, strings.ToLower(tree.Node(id).Name))
	report.Artifact = nc.build(tree)
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return true
		}
	}
	return false
}

// isUpperIdentifier reports whether s has at least one cased letter and all of them are uppercase
func isUpperIdentifier(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}
