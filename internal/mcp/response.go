package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	qaerrors "github.com/standardbeagle/codeqa/internal/errors"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse creates a standardized error response for MCP tools.
// Tool errors are reported inside the result with IsError set, not as protocol errors,
// so the client model can see them and correct its input.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}

	if errType := qaerrors.TypeOf(err); errType != "" {
		errorData["error_type"] = string(errType)
	}
	var se *qaerrors.SyntaxError
	if errors.As(err, &se) {
		errorData["line"] = se.Line
		errorData["column"] = se.Column
		if se.Text != "" {
			errorData["text"] = se.Text
		}
	}

	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// getOperationHelp returns a short usage hint for a tool
func getOperationHelp(operation string) string {
	switch operation {
	case "analyze_code":
		return `Use: {"code": "def f():\n    return 1\n"}`
	case "find_duplicates":
		return `Use: {"code": "a = 1\na = 1", "threshold": 0.8, "algorithm": "ratcliff-obershelp"}`
	case "info":
		return `Use: {} or {"tool": "analyze_code"}`
	default:
		return ""
	}
}
