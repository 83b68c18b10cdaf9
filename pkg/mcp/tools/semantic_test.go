package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

const churnSummary = `{
	"row_count": 100,
	"column_count": 4,
	"columns": {
		"id": {"type": "numeric"},
		"signup_date": {"type": "datetime"},
		"churned": {"type": "categorical", "value_counts": [{"value": "Yes", "count": 30}, {"value": "No", "count": 70}]},
		"monthly_spend": {"type": "numeric", "histogram": [{"bin": "0-10", "count": 40}]}
	}
}`

// stubSemanticService serves the dataset-backed tools. Stateless calls go
// to the real service.
type stubSemanticService struct {
	services.SemanticService
	columns  *services.ColumnsView
	insights *services.InsightsView
	err      error
	lastID   uuid.UUID
}

func newStubSemanticService() *stubSemanticService {
	return &stubSemanticService{SemanticService: services.NewSemanticService(nil, nil, zap.NewNop())}
}

func (s *stubSemanticService) GetColumns(_ context.Context, id uuid.UUID, _ models.TypeOverrides) (*services.ColumnsView, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.columns, nil
}

func (s *stubSemanticService) GetInsights(_ context.Context, id uuid.UUID) (*services.InsightsView, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.insights, nil
}

func newSemanticTestServer(svc services.SemanticService) *server.MCPServer {
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterSemanticTools(mcpServer, &SemanticToolDeps{SemanticService: svc, Logger: zap.NewNop()})
	return mcpServer
}

type toolCallResponse struct {
	Result struct {
		IsError bool `json:"isError"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func sendToolCall(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolCallResponse {
	t.Helper()
	params := map[string]any{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	request, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": "tools/call", "params": params})
	require.NoError(t, err)

	resultBytes, err := json.Marshal(s.HandleMessage(context.Background(), request))
	require.NoError(t, err)

	var response toolCallResponse
	require.NoError(t, json.Unmarshal(resultBytes, &response))
	return response
}

// callTool invokes a tool and returns its text content and isError flag. The
// call itself must not fail at the JSON-RPC level.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) (string, bool) {
	t.Helper()
	response := sendToolCall(t, s, name, args)
	require.Nil(t, response.Error, "unexpected JSON-RPC error")
	require.NotEmpty(t, response.Result.Content)
	return response.Result.Content[0].Text, response.Result.IsError
}

func decodeToolError(t *testing.T, text string) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.True(t, resp.Error)
	return resp
}

func TestDeriveColumnTypesTool(t *testing.T) {
	s := newSemanticTestServer(newStubSemanticService())

	text, isError := callTool(t, s, "derive_column_types", map[string]any{"summary": churnSummary})
	require.False(t, isError, text)

	var got deriveColumnTypesResponse
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, int64(100), got.RowCount)
	require.Len(t, got.Columns, 4)
	assert.Equal(t, []string{"id", "signup_date", "churned", "monthly_spend"}, models.Names(got.Columns))

	assert.True(t, got.Columns[0].IsIDLike)
	assert.Equal(t, models.LogicalTypeDatetime, got.Columns[1].LogicalType)
	assert.Equal(t, models.LogicalTypeBoolean, got.Columns[2].LogicalType)
	assert.True(t, got.Columns[2].IsBinaryLike)
	assert.Equal(t, models.LogicalTypeNumeric, got.Columns[3].LogicalType)
}

func TestDeriveColumnTypesTool_InvalidSummary(t *testing.T) {
	tests := []struct {
		name     string
		summary  string
		wantCode string
	}{
		{"empty", "  ", "invalid_parameters"},
		{"not json", "{row_count: 1", "invalid_summary"},
		{"wrong shape", `{"row_count": "many"}`, "invalid_summary"},
	}

	s := newSemanticTestServer(newStubSemanticService())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError := callTool(t, s, "derive_column_types", map[string]any{"summary": tt.summary})
			require.True(t, isError)
			assert.Equal(t, tt.wantCode, decodeToolError(t, text).Code)
		})
	}
}

func TestDeriveColumnTypesTool_MissingSummary(t *testing.T) {
	s := newSemanticTestServer(newStubSemanticService())

	response := sendToolCall(t, s, "derive_column_types", map[string]any{})

	assert.NotNil(t, response.Error, "missing required argument is a protocol error")
}

func TestSelectSemanticCandidatesTool(t *testing.T) {
	s := newSemanticTestServer(newStubSemanticService())

	text, isError := callTool(t, s, "select_semantic_candidates", map[string]any{"summary": churnSummary})
	require.False(t, isError, text)

	var got services.AnalyzeResult
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, []string{"churned"}, models.Names(got.Candidates.TargetCandidates))
	assert.Equal(t, []string{"monthly_spend"}, models.Names(got.Candidates.MetricCandidates))
	assert.Equal(t, []string{"signup_date"}, models.Names(got.Candidates.TimeCandidates))
	assert.Empty(t, got.OtherMetrics)
}

func TestSelectSemanticCandidatesTool_Overrides(t *testing.T) {
	tests := []struct {
		name        string
		overrides   any
		selected    any
		wantMetrics []string
		wantOthers  []string
	}{
		{
			name:        "object overrides",
			overrides:   map[string]any{"monthly_spend": "text"},
			selected:    []any{"monthly_spend"},
			wantMetrics: []string{},
			wantOthers:  []string{"monthly_spend"},
		},
		{
			name:        "stringified overrides",
			overrides:   `{"signup_date":"numeric"}`,
			selected:    `["monthly_spend"]`,
			wantMetrics: []string{"signup_date", "monthly_spend"},
			wantOthers:  []string{},
		},
	}

	s := newSemanticTestServer(newStubSemanticService())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError := callTool(t, s, "select_semantic_candidates", map[string]any{
				"summary":          churnSummary,
				"overrides":        tt.overrides,
				"selected_metrics": tt.selected,
			})
			require.False(t, isError, text)

			var got services.AnalyzeResult
			require.NoError(t, json.Unmarshal([]byte(text), &got))
			assert.Equal(t, tt.wantMetrics, models.Names(got.Candidates.MetricCandidates))
			assert.Equal(t, tt.wantOthers, got.OtherMetrics)
		})
	}
}

func TestSelectSemanticCandidatesTool_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		wantCode string
	}{
		{"unknown column", map[string]any{"summary": churnSummary, "overrides": map[string]any{"plan": "text"}}, "invalid_selection"},
		{"invalid type", map[string]any{"summary": churnSummary, "overrides": map[string]any{"churned": "money"}}, "invalid_parameters"},
		{"overrides not an object", map[string]any{"summary": churnSummary, "overrides": []any{"a"}}, "invalid_parameters"},
		{"metrics not strings", map[string]any{"summary": churnSummary, "selected_metrics": []any{1.0}}, "invalid_parameters"},
	}

	s := newSemanticTestServer(newStubSemanticService())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError := callTool(t, s, "select_semantic_candidates", tt.args)
			require.True(t, isError)
			assert.Equal(t, tt.wantCode, decodeToolError(t, text).Code)
		})
	}
}

func TestBuildSemanticConfigTool(t *testing.T) {
	s := newSemanticTestServer(newStubSemanticService())

	text, isError := callTool(t, s, "build_semantic_config", map[string]any{
		"summary":        churnSummary,
		"target_column":  "churned",
		"metric_columns": []any{"monthly_spend", "monthly_spend"},
		"time_column":    " ",
		"column_types":   map[string]any{"id": "text"},
	})
	require.False(t, isError, text)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, "churned", got["target_column"])
	assert.Nil(t, got["time_column"])
	assert.Equal(t, []any{"monthly_spend"}, got["metric_columns"])
	assert.Equal(t, map[string]any{
		"id":            "text",
		"signup_date":   "datetime",
		"churned":       "boolean",
		"monthly_spend": "numeric",
	}, got["column_types"])
}

func TestBuildSemanticConfigTool_UnknownColumns(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		wantField string
	}{
		{"target", map[string]any{"target_column": "plan"}, "target_column"},
		{"time", map[string]any{"time_column": "created"}, "time_column"},
		{"metric", map[string]any{"metric_columns": []any{"revenue"}}, "metric_columns"},
		{"column types", map[string]any{"column_types": map[string]any{"plan": "text"}}, "column_types"},
	}

	s := newSemanticTestServer(newStubSemanticService())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args["summary"] = churnSummary
			text, isError := callTool(t, s, "build_semantic_config", tt.args)
			require.True(t, isError)

			resp := decodeToolError(t, text)
			assert.Equal(t, "invalid_selection", resp.Code)
			assert.Contains(t, resp.Message, tt.wantField)
		})
	}
}

func TestGetDatasetColumnsTool(t *testing.T) {
	id := uuid.New()
	svc := newStubSemanticService()
	svc.columns = &services.ColumnsView{DatasetID: id, RowCount: 7}
	s := newSemanticTestServer(svc)

	text, isError := callTool(t, s, "get_dataset_columns", map[string]any{"dataset_id": id.String()})
	require.False(t, isError, text)
	assert.Equal(t, id, svc.lastID)

	var got services.ColumnsView
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, int64(7), got.RowCount)
}

func TestDatasetTools_Errors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		err      error
		wantCode string
	}{
		{"invalid id", "not-a-uuid", nil, "invalid_parameters"},
		{"not found", uuid.NewString(), fmt.Errorf("dataset: %w", apperrors.ErrNotFound), "dataset_not_found"},
		{"not ready", uuid.NewString(), fmt.Errorf("%w: no summary", apperrors.ErrAnalysisNotReady), "analysis_not_ready"},
	}

	for _, tool := range []string{"get_dataset_columns", "get_dataset_insights"} {
		for _, tt := range tests {
			t.Run(tool+"/"+tt.name, func(t *testing.T) {
				svc := newStubSemanticService()
				svc.err = tt.err
				s := newSemanticTestServer(svc)

				text, isError := callTool(t, s, tool, map[string]any{"dataset_id": tt.id})
				require.True(t, isError)
				assert.Equal(t, tt.wantCode, decodeToolError(t, text).Code)
			})
		}
	}
}

func TestGetDatasetInsightsTool_SystemErrorIsProtocolError(t *testing.T) {
	svc := newStubSemanticService()
	svc.err = errors.New("connection refused")
	s := newSemanticTestServer(svc)

	response := sendToolCall(t, s, "get_dataset_insights", map[string]any{"dataset_id": uuid.NewString()})

	assert.NotNil(t, response.Error)
}
