package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/repositories"
	"github.com/hayderhassan/InsightSphere/pkg/semantic"
)

// ColumnsView is a dataset's columns with their derived semantics and the
// candidates for each role under the active overrides.
type ColumnsView struct {
	DatasetID  uuid.UUID                 `json:"dataset_id"`
	RowCount   int64                     `json:"row_count"`
	Columns    []models.ColumnMeta       `json:"columns"`
	Overrides  models.TypeOverrides      `json:"overrides"`
	Candidates models.SemanticCandidates `json:"candidates"`

	// SavedConfig is nil when no config has been saved yet.
	SavedConfig *models.SemanticConfig `json:"saved_config"`

	// OtherMetrics are saved metrics that are no longer metric candidates.
	OtherMetrics []string `json:"other_metrics"`
}

// AnalyzeResult is the stateless analysis of a summary.
type AnalyzeResult struct {
	Columns      []models.ColumnMeta       `json:"columns"`
	Candidates   models.SemanticCandidates `json:"candidates"`
	OtherMetrics []string                  `json:"other_metrics"`
}

// SaveConfigRequest is a user's semantic selection for a dataset.
type SaveConfigRequest struct {
	TargetColumn  *string              `json:"target_column"`
	MetricColumns []string             `json:"metric_columns"`
	TimeColumn    *string              `json:"time_column"`
	ColumnTypes   models.TypeOverrides `json:"column_types"`
}

// InsightsView is a dataset summary with its semantic config attached and
// the charts it supports.
type InsightsView struct {
	DatasetID     uuid.UUID                  `json:"dataset_id"`
	Summary       *models.DatasetSummary     `json:"summary_json"`
	Charts        []semantic.ChartSpec       `json:"charts"`
	BooleanLabels *semantic.BooleanLabelPair `json:"boolean_labels,omitempty"`
}

// SemanticService derives column semantics for datasets and persists the
// user's semantic configuration.
type SemanticService interface {
	// GetColumns returns the dataset's column semantics. Overrides from the
	// saved config are applied first, then the given overrides on top.
	GetColumns(ctx context.Context, datasetID uuid.UUID, overrides models.TypeOverrides) (*ColumnsView, error)

	// SaveConfig validates the selection against the dataset's columns and persists it.
	SaveConfig(ctx context.Context, datasetID uuid.UUID, req SaveConfigRequest) (*models.DatasetSemanticConfig, error)

	// GetConfig returns the saved config, or ErrNotFound.
	GetConfig(ctx context.Context, datasetID uuid.UUID) (*models.DatasetSemanticConfig, error)

	// GetInsights returns chart specs for the dataset's saved config.
	GetInsights(ctx context.Context, datasetID uuid.UUID) (*InsightsView, error)

	// Analyze derives semantics for a summary without touching storage.
	Analyze(summary *models.DatasetSummary, overrides models.TypeOverrides, selectedMetrics []string) (*AnalyzeResult, error)

	// PreviewConfig validates a selection against a summary and returns the
	// config SaveConfig would persist, without touching storage.
	PreviewConfig(summary *models.DatasetSummary, req SaveConfigRequest) (*models.SemanticConfig, error)
}

type semanticService struct {
	datasets repositories.DatasetRepository
	configs  repositories.SemanticConfigRepository
	logger   *zap.Logger
}

// NewSemanticService creates a new semantic service.
func NewSemanticService(
	datasets repositories.DatasetRepository,
	configs repositories.SemanticConfigRepository,
	logger *zap.Logger,
) SemanticService {
	return &semanticService{
		datasets: datasets,
		configs:  configs,
		logger:   logger.Named("semantic"),
	}
}

// readySummary loads the dataset's summary, failing with ErrAnalysisNotReady
// until the analysis has produced at least one column.
func (s *semanticService) readySummary(ctx context.Context, datasetID uuid.UUID) (*models.DatasetSummary, error) {
	dataset, err := s.datasets.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if !dataset.Analysis.Ready() {
		status := "none"
		if dataset.Analysis != nil {
			status = string(dataset.Analysis.Status)
		}
		return nil, fmt.Errorf("%w: dataset %s has no column summary yet (analysis status %s)",
			apperrors.ErrAnalysisNotReady, datasetID, status)
	}
	return dataset.Analysis.Summary, nil
}

// savedConfig returns the saved config or nil when none exists.
func (s *semanticService) savedConfig(ctx context.Context, datasetID uuid.UUID) (*models.SemanticConfig, error) {
	saved, err := s.configs.Get(ctx, datasetID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &saved.Config, nil
}

func (s *semanticService) GetColumns(ctx context.Context, datasetID uuid.UUID, overrides models.TypeOverrides) (*ColumnsView, error) {
	summary, err := s.readySummary(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	saved, err := s.savedConfig(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	columns := semantic.BuildColumnsMeta(summary)
	if err := validateOverrides(columns, overrides); err != nil {
		return nil, err
	}

	active := semantic.SeedOverrides(columns, saved)
	for name, t := range overrides {
		active[name] = t
	}
	candidates := semantic.SelectCandidates(columns, active)

	return &ColumnsView{
		DatasetID:    datasetID,
		RowCount:     summary.RowCount,
		Columns:      columns,
		Overrides:    active,
		Candidates:   candidates,
		SavedConfig:  saved,
		OtherMetrics: semantic.ResolveOtherMetrics(columns, candidates.MetricCandidates, saved.Metrics()),
	}, nil
}

func (s *semanticService) SaveConfig(ctx context.Context, datasetID uuid.UUID, req SaveConfigRequest) (*models.DatasetSemanticConfig, error) {
	summary, err := s.readySummary(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.PreviewConfig(summary, req)
	if err != nil {
		return nil, err
	}
	saved, err := s.configs.Upsert(ctx, datasetID, *cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Semantic config saved",
		zap.String("dataset_id", datasetID.String()),
		zap.String("target_column", cfg.Target()),
		zap.String("time_column", cfg.Time()),
		zap.Strings("metric_columns", cfg.Metrics()),
		zap.Int("overrides", len(req.ColumnTypes)))
	return saved, nil
}

func (s *semanticService) GetConfig(ctx context.Context, datasetID uuid.UUID) (*models.DatasetSemanticConfig, error) {
	return s.configs.Get(ctx, datasetID)
}

func (s *semanticService) GetInsights(ctx context.Context, datasetID uuid.UUID) (*InsightsView, error) {
	summary, err := s.readySummary(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	saved, err := s.savedConfig(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	attached := *summary
	attached.SemanticConfig = saved

	view := &InsightsView{
		DatasetID: datasetID,
		Summary:   &attached,
		Charts:    semantic.BuildInsightChartSpecs(&attached),
	}
	if target := saved.Target(); target != "" && saved.ColumnTypes[target] == models.LogicalTypeBoolean {
		labels := semantic.BooleanLabels(target)
		view.BooleanLabels = &labels
	}
	return view, nil
}

func (s *semanticService) Analyze(summary *models.DatasetSummary, overrides models.TypeOverrides, selectedMetrics []string) (*AnalyzeResult, error) {
	columns := semantic.BuildColumnsMeta(summary)
	if err := validateOverrides(columns, overrides); err != nil {
		return nil, err
	}
	candidates := semantic.SelectCandidates(columns, overrides)
	return &AnalyzeResult{
		Columns:      columns,
		Candidates:   candidates,
		OtherMetrics: semantic.ResolveOtherMetrics(columns, candidates.MetricCandidates, selectedMetrics),
	}, nil
}

func (s *semanticService) PreviewConfig(summary *models.DatasetSummary, req SaveConfigRequest) (*models.SemanticConfig, error) {
	columns := semantic.BuildColumnsMeta(summary)
	sel := models.Selection{
		Target:  deref(req.TargetColumn),
		Metrics: req.MetricColumns,
		Time:    deref(req.TimeColumn),
	}
	if err := validateOverrides(columns, req.ColumnTypes); err != nil {
		return nil, err
	}
	if err := validateSelection(columns, sel); err != nil {
		return nil, err
	}
	cfg := semantic.BuildSemanticConfig(columns, req.ColumnTypes, sel)
	return &cfg, nil
}

// validateOverrides checks that every override names a known column and a
// valid logical type. Problems are reported in column order.
func validateOverrides(columns []models.ColumnMeta, overrides models.TypeOverrides) error {
	if len(overrides) == 0 {
		return nil
	}
	known := models.Names(columns)
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: column_types: unknown column %q", apperrors.ErrInvalidSelection, name)
		}
		if t := overrides[name]; !models.IsValidLogicalType(t) {
			return fmt.Errorf("%w: column_types: invalid logical type %q for column %q", apperrors.ErrInvalidSelection, t, name)
		}
	}
	return nil
}

// validateSelection checks that every selected role names a known column.
func validateSelection(columns []models.ColumnMeta, sel models.Selection) error {
	known := models.Names(columns)
	if sel.Target != "" && !slices.Contains(known, sel.Target) {
		return fmt.Errorf("%w: target_column: unknown column %q", apperrors.ErrInvalidSelection, sel.Target)
	}
	if sel.Time != "" && !slices.Contains(known, sel.Time) {
		return fmt.Errorf("%w: time_column: unknown column %q", apperrors.ErrInvalidSelection, sel.Time)
	}
	for _, m := range sel.Metrics {
		if !slices.Contains(known, m) {
			return fmt.Errorf("%w: metric_columns: unknown column %q", apperrors.ErrInvalidSelection, m)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ SemanticService = (*semanticService)(nil)
