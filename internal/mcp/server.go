package mcp

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/cache"
	"github.com/standardbeagle/codeqa/internal/config"
	qadebug "github.com/standardbeagle/codeqa/internal/debug"
	"github.com/standardbeagle/codeqa/internal/version"
)

// ServerName is the MCP implementation name
const ServerName = "codeqa-mcp-server"

// Server exposes the analyzer as MCP tools over stdio
type Server struct {
	analyzer *analysis.Analyzer
	cfg      *config.Config
	dups     *cache.DuplicateCache
	server   *mcp.Server
}

// NewServer creates an MCP server around analyzer. cfg supplies the defaults
// for per-call duplicate detection settings.
func NewServer(analyzer *analysis.Analyzer, cfg *config.Config) (*Server, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("mcp server requires an analyzer")
	}
	if cfg == nil {
		return nil, fmt.Errorf("mcp server requires a config")
	}

	s := &Server{
		analyzer: analyzer,
		cfg:      cfg,
		dups:     cache.New(cache.DefaultConfig()),
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Describe the available tools, or one tool in detail. Use {\"tool\": \"version\"} for build info.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name to describe (analyze_code, find_duplicates, version)",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name: "analyze_code",
		Description: "Analyze Python source: comment-based complexity and quality scores, average function length, " +
			"naming convention violations, style recommendations with an annotated copy, and repeated lines.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"code": {
					Type:        "string",
					Description: "Python source code to analyze",
				},
				"duplicates": {
					Type:        "boolean",
					Description: "Include repeated line pairs (default true)",
				},
			},
			Required: []string{"code"},
		},
	}, s.handleAnalyzeCode)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_duplicates",
		Description: "Find pairs of lines whose similarity exceeds a threshold. No parsing; any text works.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"code": {
					Type:        "string",
					Description: "Text to scan line by line",
				},
				"threshold": {
					Type:        "number",
					Description: "Report pairs strictly above this similarity (default 0.8)",
				},
				"algorithm": {
					Type:        "string",
					Description: "Similarity algorithm: ratcliff-obershelp (default), levenshtein, jaro-winkler, cosine, jaccard, sorensen-dice, lcs",
				},
			},
			Required: []string{"code"},
		},
	}, s.handleFindDuplicates)
}

// recoverFromPanic turns a handler panic into an error response
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			qadebug.LogMCP("PANIC RECOVERED in %s: %v\n%s\n", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()
	return handler()
}

// Start serves MCP over stdio until ctx is cancelled or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	qadebug.LogMCP("Starting MCP server with stdio transport\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close stops background cache cleanup
func (s *Server) Close() {
	s.dups.Close()
}

// Connect serves a single session on transport; used for in-process clients
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}
