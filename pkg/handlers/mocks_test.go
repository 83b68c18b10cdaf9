package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

// mockDatasetService is a configurable DatasetService for handler tests.
type mockDatasetService struct {
	datasets   []*models.Dataset
	dataset    *models.Dataset
	err        error
	lastCreate services.CreateDatasetRequest
	lastReport services.ReportAnalysisRequest
}

func (m *mockDatasetService) Create(_ context.Context, req services.CreateDatasetRequest) (*models.Dataset, error) {
	m.lastCreate = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Dataset{ID: uuid.New(), Name: req.Name, OriginalFile: req.OriginalFile, UploadedAt: time.Now()}, nil
}

func (m *mockDatasetService) Get(_ context.Context, id uuid.UUID) (*models.Dataset, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.dataset != nil {
		return m.dataset, nil
	}
	return &models.Dataset{ID: id, Name: "Test Dataset"}, nil
}

func (m *mockDatasetService) List(context.Context) ([]*models.Dataset, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.datasets, nil
}

func (m *mockDatasetService) Delete(context.Context, uuid.UUID) error {
	return m.err
}

func (m *mockDatasetService) ReportAnalysis(_ context.Context, id uuid.UUID, req services.ReportAnalysisRequest) (*models.Dataset, error) {
	m.lastReport = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Dataset{
		ID:       id,
		Name:     "Test Dataset",
		Analysis: &models.AnalysisResult{Status: req.Status, Summary: req.Summary},
	}, nil
}

// mockSemanticService is a configurable SemanticService for handler tests.
type mockSemanticService struct {
	columns       *services.ColumnsView
	saved         *models.DatasetSemanticConfig
	insights      *services.InsightsView
	err           error
	lastOverrides models.TypeOverrides
	lastSave      services.SaveConfigRequest
}

func (m *mockSemanticService) GetColumns(_ context.Context, id uuid.UUID, overrides models.TypeOverrides) (*services.ColumnsView, error) {
	m.lastOverrides = overrides
	if m.err != nil {
		return nil, m.err
	}
	if m.columns != nil {
		return m.columns, nil
	}
	return &services.ColumnsView{DatasetID: id}, nil
}

func (m *mockSemanticService) SaveConfig(_ context.Context, id uuid.UUID, req services.SaveConfigRequest) (*models.DatasetSemanticConfig, error) {
	m.lastSave = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.DatasetSemanticConfig{
		DatasetID: id,
		Config: models.SemanticConfig{
			TargetColumn:  req.TargetColumn,
			MetricColumns: req.MetricColumns,
			TimeColumn:    req.TimeColumn,
		},
	}, nil
}

func (m *mockSemanticService) GetConfig(_ context.Context, id uuid.UUID) (*models.DatasetSemanticConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.saved == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.saved, nil
}

func (m *mockSemanticService) GetInsights(_ context.Context, id uuid.UUID) (*services.InsightsView, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.insights != nil {
		return m.insights, nil
	}
	return &services.InsightsView{DatasetID: id}, nil
}

// Analyze delegates to the real service; it touches no storage.
func (m *mockSemanticService) Analyze(summary *models.DatasetSummary, overrides models.TypeOverrides, selected []string) (*services.AnalyzeResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return services.NewSemanticService(nil, nil, zap.NewNop()).Analyze(summary, overrides, selected)
}

func (m *mockSemanticService) PreviewConfig(summary *models.DatasetSummary, req services.SaveConfigRequest) (*models.SemanticConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	return services.NewSemanticService(nil, nil, zap.NewNop()).PreviewConfig(summary, req)
}

var (
	_ services.DatasetService  = (*mockDatasetService)(nil)
	_ services.SemanticService = (*mockSemanticService)(nil)
)
