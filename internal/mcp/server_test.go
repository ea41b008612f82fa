package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/config"
	"github.com/standardbeagle/codeqa/internal/parser"
	"github.com/standardbeagle/codeqa/internal/version"
)

const sampleCode = `class Helper:
    def DoWork(self):
        return 1

def process(items):
    # loop over items
    total = 0
    for item in items:
        total += item
    return total
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p, err := parser.New()
	require.NoError(t, err)
	t.Cleanup(p.Close)

	cfg := config.Default(t.TempDir())
	analyzer, err := analysis.NewAnalyzer(p, cfg.AnalyzerOptions())
	require.NoError(t, err)

	s, err := NewServer(analyzer, cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func callRequest(t *testing.T, args interface{}) *mcp.CallToolRequest {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}}
}

// decodeResult unmarshals the single text content of a tool result
func decodeResult(t *testing.T, result *mcp.CallToolResult, v interface{}) {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, config.Default("."))
	assert.Error(t, err)

	s := newTestServer(t)
	_, err = NewServer(s.analyzer, nil)
	assert.Error(t, err)
}

func TestAnalyzeCode(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleAnalyzeCode(context.Background(), callRequest(t, AnalyzeCodeParams{Code: sampleCode}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var got struct {
		ComplexityScore       int     `json:"complexity_score"`
		QualityScore          int     `json:"quality_score"`
		AverageFunctionLength float64 `json:"average_function_length"`
		FunctionCount         int     `json:"function_count"`
		Naming                struct {
			Violations []string `json:"violations"`
		} `json:"naming"`
		Style struct {
			Recommendations []string `json:"recommendations"`
			ModifiedText    string   `json:"modified_text"`
		} `json:"style"`
	}
	decodeResult(t, result, &got)

	assert.Equal(t, 1, got.ComplexityScore)
	assert.Equal(t, 1, got.QualityScore)
	assert.Equal(t, 2, got.FunctionCount)
	assert.InDelta(t, 2.0, got.AverageFunctionLength, 0.001)
	assert.Contains(t, got.Naming.Violations, "Function name 'DoWork' should be in lowercase.")
	assert.NotEmpty(t, got.Style.Recommendations)
	assert.NotEmpty(t, got.Style.ModifiedText)
}

func TestAnalyzeCode_SyntaxError(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleAnalyzeCode(context.Background(), callRequest(t, AnalyzeCodeParams{Code: "def f(:\n    pass\n"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	var got map[string]interface{}
	decodeResult(t, result, &got)
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "analyze_code", got["operation"])
	assert.Equal(t, "syntax", got["error_type"])
	assert.EqualValues(t, 1, got["line"])
	assert.NotEmpty(t, got["help"])
}

func TestAnalyzeCode_EmptyCode(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleAnalyzeCode(context.Background(), callRequest(t, AnalyzeCodeParams{Code: "   "}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestAnalyzeCode_DuplicatesToggle(t *testing.T) {
	s := newTestServer(t)
	code := "x = 1\nx = 1\n"

	result, err := s.handleAnalyzeCode(context.Background(), callRequest(t, AnalyzeCodeParams{Code: code}))
	require.NoError(t, err)
	var withDups map[string]interface{}
	decodeResult(t, result, &withDups)
	assert.Contains(t, withDups, "duplicates")

	off := false
	result, err = s.handleAnalyzeCode(context.Background(), callRequest(t, AnalyzeCodeParams{Code: code, Duplicates: &off}))
	require.NoError(t, err)
	var withoutDups map[string]interface{}
	decodeResult(t, result, &withoutDups)
	assert.NotContains(t, withoutDups, "duplicates")
}

func TestFindDuplicates_ReusesCachedPairs(t *testing.T) {
	s := newTestServer(t)
	code := "total = a + b\ntotal = a + c\nprint(total)"

	first, err := s.handleFindDuplicates(context.Background(), callRequest(t, FindDuplicatesParams{Code: code}))
	require.NoError(t, err)
	second, err := s.handleFindDuplicates(context.Background(), callRequest(t, FindDuplicatesParams{Code: code}))
	require.NoError(t, err)

	var a, b DuplicatesResponse
	decodeResult(t, first, &a)
	decodeResult(t, second, &b)
	assert.Equal(t, a, b)

	stats := s.dups.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Entries)

	// a different threshold is a different entry
	strict := 0.99
	_, err = s.handleFindDuplicates(context.Background(), callRequest(t, FindDuplicatesParams{Code: code, Threshold: &strict}))
	require.NoError(t, err)
	assert.Equal(t, 2, s.dups.Stats().Entries)
}

func TestAnalyzeCode_FreshResultPerCall(t *testing.T) {
	s := newTestServer(t)
	code := "def Foo():\n    x = 1\n"

	first, err := s.handleAnalyzeCode(context.Background(), callRequest(t, AnalyzeCodeParams{Code: code}))
	require.NoError(t, err)
	second, err := s.handleAnalyzeCode(context.Background(), callRequest(t, AnalyzeCodeParams{Code: code}))
	require.NoError(t, err)

	var a, b map[string]interface{}
	decodeResult(t, first, &a)
	decodeResult(t, second, &b)
	assert.Equal(t, a, b)
	assert.Zero(t, s.dups.Stats().TotalRequests, "analyze_code does not go through the duplicate cache")
}

func TestFindDuplicates(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleFindDuplicates(context.Background(), callRequest(t, FindDuplicatesParams{
		Code: "total = a + b\ntotal = a + c\nprint(total)",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var got DuplicatesResponse
	decodeResult(t, result, &got)
	assert.Equal(t, analysis.AlgorithmRatcliffObershelp, got.Algorithm)
	assert.InDelta(t, 0.8, got.Threshold, 0.0001)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, 1, got.Pairs[0].LineA)
	assert.Equal(t, 2, got.Pairs[0].LineB)
	assert.Greater(t, got.Pairs[0].Similarity, 0.8)
}

func TestFindDuplicates_NoPairs(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleFindDuplicates(context.Background(), callRequest(t, FindDuplicatesParams{Code: "alpha\nzzz"}))
	require.NoError(t, err)

	var got DuplicatesResponse
	decodeResult(t, result, &got)
	assert.Equal(t, 0, got.Count)
	assert.NotNil(t, got.Pairs)
}

func TestFindDuplicates_Overrides(t *testing.T) {
	s := newTestServer(t)
	threshold := 0.5

	result, err := s.handleFindDuplicates(context.Background(), callRequest(t, FindDuplicatesParams{
		Code:      "kitten\nsitting",
		Threshold: &threshold,
		Algorithm: analysis.AlgorithmLevenshtein,
	}))
	require.NoError(t, err)

	var got DuplicatesResponse
	decodeResult(t, result, &got)
	assert.Equal(t, analysis.AlgorithmLevenshtein, got.Algorithm)
	assert.Equal(t, 1, got.Count)
}

func TestFindDuplicates_InvalidInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		params FindDuplicatesParams
	}{
		{"unknown algorithm", FindDuplicatesParams{Code: "a\nb", Algorithm: "soundex"}},
		{"zero threshold", FindDuplicatesParams{Code: "a\nb", Threshold: new(float64)}},
		{"threshold above one", func() FindDuplicatesParams {
			v := 1.5
			return FindDuplicatesParams{Code: "a\nb", Threshold: &v}
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleFindDuplicates(context.Background(), callRequest(t, tt.params))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestInfo(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleInfo(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{}})
	require.NoError(t, err)
	var overview map[string]interface{}
	decodeResult(t, result, &overview)
	assert.Equal(t, ServerName, overview["server"])
	assert.Contains(t, overview["tools"], "analyze_code")

	result, err = s.handleInfo(context.Background(), callRequest(t, InfoParams{Tool: "version"}))
	require.NoError(t, err)
	var ver map[string]interface{}
	decodeResult(t, result, &ver)
	assert.Contains(t, ver["server_version"], "codeqa "+version.Version)
	assert.NotEmpty(t, ver["build_id"])
	assert.Contains(t, ver, "cache")

	result, err = s.handleInfo(context.Background(), callRequest(t, InfoParams{Tool: "find_duplicates"}))
	require.NoError(t, err)
	var dup map[string]interface{}
	decodeResult(t, result, &dup)
	assert.Len(t, dup["algorithms"], len(analysis.SimilarityAlgorithms))

	result, err = s.handleInfo(context.Background(), callRequest(t, InfoParams{Tool: "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestRecoverFromPanic(t *testing.T) {
	s := newTestServer(t)

	result, err := s.recoverFromPanic("analyze_code", func() (*mcp.CallToolResult, error) {
		panic("boom")
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	var got map[string]interface{}
	decodeResult(t, result, &got)
	assert.Contains(t, got["error"], "boom")
}

func TestServer_InMemorySession(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.Connect(ctx, serverTransport)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, expected := range []string{"info", "analyze_code", "find_duplicates"} {
		assert.True(t, names[expected], "expected tool %q", expected)
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "analyze_code",
		Arguments: map[string]any{"code": sampleCode},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
}
