package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/codeqa/internal/debug"
)

// LoadKDL loads .codeqa.kdl from dir; it returns nil, nil when there is none
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, KDLFileName)
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadKDLFile(kdlPath, dir)
}

// LoadKDLFile loads a KDL config file. A relative project root in the file
// resolves against dir.
func LoadKDLFile(path, dir string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	cfg, err := parseKDL(string(content), absDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(absDir, cfg.Project.Root))
	}
	debug.LogConfig("loaded %s (root %s)\n", path, cfg.Project.Root)
	return cfg, nil
}

// parseKDL applies a KDL document on top of the defaults for root
func parseKDL(content string, root string) (*Config, error) {
	cfg := Default(root)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children { // project { root "." name "foo" }
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "analysis":
			parseAnalysis(cfg, n)
		case "duplicates":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Duplicates.Enabled = b
					}
				case "threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Duplicates.Threshold = v
					}
				case "algorithm":
					if s, ok := firstStringArg(cn); ok {
						cfg.Duplicates.Algorithm = s
					}
				}
			}
		case "output":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "format":
					if s, ok := firstStringArg(cn); ok {
						cfg.Output.Format = s
					}
				case "summary":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Output.Summary = b
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.MaxWorkers = v
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Performance.MaxFileSize = sz
						}
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "include":
			// Replaces the default include pattern
			cfg.Include = collectStringArgs(n)
		case "exclude":
			// Replaces the default exclusions
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

// parseAnalysis reads the analysis block. Any penalty entry replaces the default penalties.
//
//	analysis {
//	    line_length_limit 99
//	    penalty "goto" 10
//	}
func parseAnalysis(cfg *Config, n *document.Node) {
	var penalties []Penalty
	sawPenalty := false
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "comment_marker":
			if s, ok := firstStringArg(cn); ok {
				cfg.Analysis.CommentMarker = s
			}
		case "line_length_limit":
			if v, ok := firstIntArg(cn); ok {
				cfg.Analysis.LineLengthLimit = v
			}
		case "placeholder":
			if s, ok := firstStringArg(cn); ok {
				cfg.Analysis.Placeholder = s
			}
		case "continuation_marker":
			if s, ok := firstStringArg(cn); ok {
				cfg.Analysis.ContinuationMarker = s
			}
		case "penalty":
			sawPenalty = true
			if p, ok := penaltyArgs(cn); ok {
				penalties = append(penalties, p)
			}
		case "no_penalties":
			sawPenalty = true
		}
	}
	if sawPenalty {
		if penalties == nil {
			penalties = []Penalty{}
		}
		cfg.Analysis.Penalties = penalties
	}
}

func penaltyArgs(n *document.Node) (Penalty, bool) {
	if len(n.Arguments) < 2 {
		return Penalty{}, false
	}
	pattern, ok := n.Arguments[0].Value.(string)
	if !ok {
		return Penalty{}, false
	}
	switch v := n.Arguments[1].Value.(type) {
	case int64:
		return Penalty{Pattern: pattern, Points: int(v)}, true
	case float64:
		return Penalty{Pattern: pattern, Points: int(v)}, true
	}
	return Penalty{}, false
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		debug.LogConfig("invalid float value for '%s', got %T\n", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

// collectStringArgs reads inline arguments, or child nodes for block format like exclude { "pattern" }
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// In KDL block format, strings are child nodes where the node name is the string value
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
