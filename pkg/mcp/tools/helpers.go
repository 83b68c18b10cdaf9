package tools

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hayderhassan/InsightSphere/pkg/models"
)

// trimString removes leading and trailing whitespace from a string.
// This is a common helper used across MCP tool parameter validation.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// getOptionalString extracts an optional string argument from the request.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	val, ok := req.GetArguments()[key].(string)
	if !ok {
		return ""
	}
	return val
}

// extractStringArray reads an optional array of strings. Some clients send
// arrays as JSON-encoded strings, so both forms are accepted.
func extractStringArray(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		if trimString(s) == "" {
			return nil, nil
		}
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("parameter '%s' must be an array of strings", key)
		}
		return out, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter '%s' must be an array of strings, got %T", key, raw)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("parameter '%s' must be an array of strings. Element at index %d is %T, not string", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// extractOverrides reads an optional column-to-type object. Like arrays, the
// object may arrive JSON-encoded. Type names are validated by the service.
func extractOverrides(args map[string]any, key string) (models.TypeOverrides, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		if trimString(s) == "" {
			return nil, nil
		}
		var out models.TypeOverrides
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("parameter '%s' must be an object of column name to logical type", key)
		}
		return out, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parameter '%s' must be an object of column name to logical type, got %T", key, raw)
	}
	out := make(models.TypeOverrides, len(obj))
	for name, v := range obj {
		t, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("parameter '%s' has a non-string type for column %q", key, name)
		}
		out[name] = models.LogicalType(trimString(t))
	}
	return out, nil
}

// invalidTypeResult reports the first override with an unknown logical type,
// in column name order, or nil when all are valid.
func invalidTypeResult(key string, overrides models.TypeOverrides) *mcp.CallToolResult {
	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		t := overrides[name]
		if models.IsValidLogicalType(t) {
			continue
		}
		return NewErrorResultWithDetails(
			"invalid_parameters",
			fmt.Sprintf("parameter '%s' has invalid logical type %q for column %q", key, t, name),
			map[string]any{
				"parameter":   key,
				"column":      name,
				"valid_types": models.LogicalTypeOptions,
			},
		)
	}
	return nil
}
