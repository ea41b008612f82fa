package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/debug"
	"github.com/standardbeagle/codeqa/internal/types"
	"github.com/standardbeagle/codeqa/internal/version"
)

// InfoParams are the arguments of the info tool
type InfoParams struct {
	Tool string `json:"tool,omitempty"`
}

// AnalyzeCodeParams are the arguments of the analyze_code tool
type AnalyzeCodeParams struct {
	Code       string `json:"code"`
	Duplicates *bool  `json:"duplicates,omitempty"`
}

// FindDuplicatesParams are the arguments of the find_duplicates tool
type FindDuplicatesParams struct {
	Code      string   `json:"code"`
	Threshold *float64 `json:"threshold,omitempty"`
	Algorithm string   `json:"algorithm,omitempty"`
}

// DuplicateLine is one reported pair with 1-based line numbers
type DuplicateLine struct {
	LineA      int     `json:"line_a"`
	LineB      int     `json:"line_b"`
	Similarity float64 `json:"similarity"`
}

// DuplicatesResponse is the find_duplicates result
type DuplicatesResponse struct {
	Algorithm string          `json:"algorithm"`
	Threshold float64         `json:"threshold"`
	Count     int             `json:"count"`
	Pairs     []DuplicateLine `json:"pairs"`
}

func unmarshalArgs(req *mcp.CallToolRequest, v interface{}) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InfoParams
	if err := unmarshalArgs(req, &params); err != nil {
		return createErrorResponse("info", fmt.Errorf("invalid parameters: %w", err))
	}

	switch strings.ToLower(strings.TrimSpace(params.Tool)) {
	case "":
		return createJSONResponse(map[string]interface{}{
			"server":  ServerName,
			"version": version.Version,
			"tools": map[string]string{
				"analyze_code":    "Scores, average function length, naming violations, style recommendations and repeated lines for Python source",
				"find_duplicates": "Pairs of similar lines with a configurable threshold and algorithm",
				"info":            "This overview, or details for one tool",
			},
		})
	case "version":
		return createJSONResponse(map[string]interface{}{
			"server_name":    ServerName,
			"server_version": version.FullInfo(),
			"build_id":       version.BuildID(),
			"go_version":     runtime.Version(),
			"platform":       runtime.GOOS + "/" + runtime.GOARCH,
			"cache":          s.dups.Stats(),
		})
	case "analyze_code":
		return createJSONResponse(map[string]interface{}{
			"name":    "analyze_code",
			"example": getOperationHelp("analyze_code"),
			"config": map[string]interface{}{
				"line_length_limit": s.cfg.Analysis.LineLengthLimit,
				"comment_marker":    s.cfg.Analysis.CommentMarker,
				"penalties":         s.cfg.Analysis.Penalties,
			},
			"errors": "Invalid Python returns isError with error_type \"syntax\", line and column",
		})
	case "find_duplicates":
		return createJSONResponse(map[string]interface{}{
			"name":       "find_duplicates",
			"example":    getOperationHelp("find_duplicates"),
			"algorithms": analysis.SimilarityAlgorithms,
			"threshold":  s.cfg.Duplicates.Threshold,
			"algorithm":  s.cfg.Duplicates.Algorithm,
		})
	default:
		return createErrorResponse("info", fmt.Errorf("unknown tool: %s", params.Tool))
	}
}

func (s *Server) handleAnalyzeCode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("analyze_code", func() (*mcp.CallToolResult, error) {
		var params AnalyzeCodeParams
		if err := unmarshalArgs(req, &params); err != nil {
			return createErrorResponse("analyze_code", fmt.Errorf("invalid parameters: %w", err))
		}
		if strings.TrimSpace(params.Code) == "" {
			return createErrorResponse("analyze_code", fmt.Errorf("code is required"))
		}

		result, err := s.analyzer.Analyze(params.Code)
		if err != nil {
			debug.LogMCP("analyze_code failed: %v\n", err)
			return createErrorResponse("analyze_code", err)
		}
		if params.Duplicates != nil && !*params.Duplicates {
			result.Duplicates = nil
		}
		return createJSONResponse(result)
	})
}

func (s *Server) handleFindDuplicates(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("find_duplicates", func() (*mcp.CallToolResult, error) {
		var params FindDuplicatesParams
		if err := unmarshalArgs(req, &params); err != nil {
			return createErrorResponse("find_duplicates", fmt.Errorf("invalid parameters: %w", err))
		}

		threshold := s.cfg.Duplicates.Threshold
		if params.Threshold != nil {
			threshold = *params.Threshold
		}
		if threshold <= 0 || threshold > 1 {
			return createErrorResponse("find_duplicates", fmt.Errorf("threshold must be in (0, 1], got %v", threshold))
		}

		algorithm := s.cfg.Duplicates.Algorithm
		if params.Algorithm != "" {
			algorithm = params.Algorithm
		}
		metric, err := analysis.NewSimilarityMetric(algorithm)
		if err != nil {
			return createErrorResponse("find_duplicates", err)
		}

		detector := analysis.NewDuplicateDetectorWith(threshold, metric)
		// agents often resubmit the same snippet after unrelated edits
		return createJSONResponse(duplicatesResponse(s.dups.Detect(detector, params.Code), metric.Name(), threshold))
	})
}

func duplicatesResponse(pairs []types.DuplicatePair, algorithm string, threshold float64) DuplicatesResponse {
	resp := DuplicatesResponse{
		Algorithm: algorithm,
		Threshold: threshold,
		Count:     len(pairs),
		Pairs:     make([]DuplicateLine, len(pairs)),
	}
	for i, p := range pairs {
		a, b := p.DisplayLines()
		resp.Pairs[i] = DuplicateLine{LineA: a, LineB: b, Similarity: p.Similarity}
	}
	return resp
}
