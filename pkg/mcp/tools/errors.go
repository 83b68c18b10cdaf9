package tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorResponse represents a structured error in tool results.
// Errors are returned as tool results flagged IsError so the calling model
// sees the code and message instead of a transport-level failure.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for errors the caller can fix (invalid parameters, malformed
// summaries, unknown columns). System failures are still returned as Go errors.
//
// Example:
//
//	if raw == "" {
//	    return NewErrorResult("invalid_parameters", "parameter 'summary' cannot be empty"), nil
//	}
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return newErrorResult(ErrorResponse{Error: true, Code: code, Message: message})
}

// NewErrorResultWithDetails creates an error result with additional context.
//
// Example:
//
//	return NewErrorResultWithDetails(
//	    "invalid_parameters",
//	    `parameter 'overrides' has an invalid type for column "plan"`,
//	    map[string]any{"column": "plan", "valid_types": models.LogicalTypeOptions},
//	), nil
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	return newErrorResult(ErrorResponse{Error: true, Code: code, Message: message, Details: details})
}

func newErrorResult(resp ErrorResponse) *mcp.CallToolResult {
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}
