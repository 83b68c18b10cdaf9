// Package tools provides MCP tool implementations for InsightSphere.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

// SemanticToolDeps contains dependencies for the semantic tools.
type SemanticToolDeps struct {
	SemanticService services.SemanticService
	Logger          *zap.Logger
}

// RegisterSemanticTools registers the column semantics MCP tools.
func RegisterSemanticTools(s *server.MCPServer, deps *SemanticToolDeps) {
	registerDeriveColumnTypesTool(s, deps)
	registerSelectCandidatesTool(s, deps)
	registerBuildSemanticConfigTool(s, deps)
	registerGetDatasetColumnsTool(s, deps)
	registerGetDatasetInsightsTool(s, deps)
}

type deriveColumnTypesResponse struct {
	RowCount int64               `json:"row_count"`
	Columns  []models.ColumnMeta `json:"columns"`
}

var summaryParam = mcp.WithString(
	"summary",
	mcp.Required(),
	mcp.Description("Dataset summary JSON as produced by the analysis backend: row_count, column_count and a columns object keyed by column name"),
)

var overridesParam = mcp.WithObject(
	"overrides",
	mcp.Description("Optional logical type overrides keyed by column name. Types: numeric, categorical, boolean, datetime, text, unknown"),
)

func registerDeriveColumnTypesTool(s *server.MCPServer, deps *SemanticToolDeps) {
	tool := mcp.NewTool(
		"derive_column_types",
		mcp.WithDescription(
			"Derive the logical type of every column in a dataset summary. "+
				"Returns each column's raw_type, logical_type and the is_binary_like, is_id_like and is_time_like hints in summary order.",
		),
		summaryParam,
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, errResult, err := requireSummary(req)
		if errResult != nil || err != nil {
			return errResult, err
		}

		analysis, err := deps.SemanticService.Analyze(summary, nil, nil)
		if err != nil {
			return semanticErrorResult(err)
		}
		return jsonResult(deriveColumnTypesResponse{RowCount: summary.RowCount, Columns: analysis.Columns})
	})
}

func registerSelectCandidatesTool(s *server.MCPServer, deps *SemanticToolDeps) {
	tool := mcp.NewTool(
		"select_semantic_candidates",
		mcp.WithDescription(
			"List the columns eligible as the target, as metrics and as the time axis for a dataset summary. "+
				"Overrides change a column's logical type before selection. "+
				"Selected metrics that are no longer metric candidates are returned in other_metrics.",
		),
		summaryParam,
		overridesParam,
		mcp.WithArray(
			"selected_metrics",
			mcp.Description("Optional metric columns already chosen by the user"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, errResult, err := requireSummary(req)
		if errResult != nil || err != nil {
			return errResult, err
		}

		args := req.GetArguments()
		overrides, err := extractOverrides(args, "overrides")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if result := invalidTypeResult("overrides", overrides); result != nil {
			return result, nil
		}
		selected, err := extractStringArray(args, "selected_metrics")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		analysis, err := deps.SemanticService.Analyze(summary, overrides, selected)
		if err != nil {
			return semanticErrorResult(err)
		}
		return jsonResult(analysis)
	})
}

func registerBuildSemanticConfigTool(s *server.MCPServer, deps *SemanticToolDeps) {
	tool := mcp.NewTool(
		"build_semantic_config",
		mcp.WithDescription(
			"Validate a role selection against a dataset summary and return the semantic config that would be saved. "+
				"column_types in the result records the effective type of every column. Nothing is persisted.",
		),
		summaryParam,
		mcp.WithString("target_column", mcp.Description("Optional target column")),
		mcp.WithArray(
			"metric_columns",
			mcp.Description("Optional metric columns. Duplicates are dropped."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("time_column", mcp.Description("Optional time column")),
		mcp.WithObject(
			"column_types",
			mcp.Description("Optional logical type overrides keyed by column name"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, errResult, err := requireSummary(req)
		if errResult != nil || err != nil {
			return errResult, err
		}

		args := req.GetArguments()
		columnTypes, err := extractOverrides(args, "column_types")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if result := invalidTypeResult("column_types", columnTypes); result != nil {
			return result, nil
		}
		metrics, err := extractStringArray(args, "metric_columns")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		cfg, err := deps.SemanticService.PreviewConfig(summary, services.SaveConfigRequest{
			TargetColumn:  optionalString(getOptionalString(req, "target_column")),
			MetricColumns: metrics,
			TimeColumn:    optionalString(getOptionalString(req, "time_column")),
			ColumnTypes:   columnTypes,
		})
		if err != nil {
			return semanticErrorResult(err)
		}
		return jsonResult(cfg)
	})
}

func registerGetDatasetColumnsTool(s *server.MCPServer, deps *SemanticToolDeps) {
	tool := mcp.NewTool(
		"get_dataset_columns",
		mcp.WithDescription(
			"Get the column semantics of a stored dataset with its saved config applied. "+
				"Fails with analysis_not_ready until the dataset's analysis has produced columns.",
		),
		mcp.WithString("dataset_id", mcp.Required(), mcp.Description("Dataset UUID")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		datasetID, errResult, err := requireDatasetID(req)
		if errResult != nil || err != nil {
			return errResult, err
		}

		view, err := deps.SemanticService.GetColumns(ctx, datasetID, nil)
		if err != nil {
			deps.Logger.Debug("get_dataset_columns failed",
				zap.String("dataset_id", datasetID.String()),
				zap.Error(err))
			return semanticErrorResult(err)
		}
		return jsonResult(view)
	})
}

func registerGetDatasetInsightsTool(s *server.MCPServer, deps *SemanticToolDeps) {
	tool := mcp.NewTool(
		"get_dataset_insights",
		mcp.WithDescription(
			"Get the chart specs for a stored dataset built from its saved semantic config and aggregates.",
		),
		mcp.WithString("dataset_id", mcp.Required(), mcp.Description("Dataset UUID")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		datasetID, errResult, err := requireDatasetID(req)
		if errResult != nil || err != nil {
			return errResult, err
		}

		view, err := deps.SemanticService.GetInsights(ctx, datasetID)
		if err != nil {
			return semanticErrorResult(err)
		}
		return jsonResult(view)
	})
}

// requireSummary reads and decodes the summary argument. A malformed summary
// is returned as an error result.
func requireSummary(req mcp.CallToolRequest) (*models.DatasetSummary, *mcp.CallToolResult, error) {
	raw, err := req.RequireString("summary")
	if err != nil {
		return nil, nil, err
	}
	raw = trimString(raw)
	if raw == "" {
		return nil, NewErrorResult("invalid_parameters", "parameter 'summary' cannot be empty"), nil
	}
	summary, err := models.ParseDatasetSummary([]byte(raw))
	if err != nil {
		return nil, NewErrorResult("invalid_summary", fmt.Sprintf("summary is not valid JSON: %v", err)), nil
	}
	return summary, nil, nil
}

func requireDatasetID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult, error) {
	raw, err := req.RequireString("dataset_id")
	if err != nil {
		return uuid.Nil, nil, err
	}
	id, err := uuid.Parse(trimString(raw))
	if err != nil {
		return uuid.Nil, NewErrorResult("invalid_parameters", fmt.Sprintf("parameter 'dataset_id' is not a valid UUID: %q", raw)), nil
	}
	return id, nil, nil
}

// semanticErrorResult turns expected service failures into error results.
// Anything else is a system failure and is returned as a Go error.
func semanticErrorResult(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidSelection):
		return NewErrorResult("invalid_selection", err.Error()), nil
	case errors.Is(err, apperrors.ErrNotFound):
		return NewErrorResult("dataset_not_found", err.Error()), nil
	case errors.Is(err, apperrors.ErrAnalysisNotReady):
		return NewErrorResult("analysis_not_ready", err.Error()), nil
	default:
		return nil, err
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func optionalString(s string) *string {
	s = trimString(s)
	if s == "" {
		return nil
	}
	return &s
}
