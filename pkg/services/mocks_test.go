package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/models"
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

func mustParseSummary(t *testing.T, raw string) *models.DatasetSummary {
	t.Helper()
	summary, err := models.ParseDatasetSummary([]byte(raw))
	require.NoError(t, err)
	return summary
}

// mockDatasetRepo is an in-memory DatasetRepository.
type mockDatasetRepo struct {
	datasets  map[uuid.UUID]*models.Dataset
	createErr error
	getErr    error
	upsertErr error
}

func newMockDatasetRepo() *mockDatasetRepo {
	return &mockDatasetRepo{datasets: make(map[uuid.UUID]*models.Dataset)}
}

// addReady stores a dataset with a completed analysis of the given summary.
func (m *mockDatasetRepo) addReady(t *testing.T, raw string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	m.datasets[id] = &models.Dataset{
		ID:         id,
		Name:       "churn",
		UploadedAt: time.Now(),
		Analysis: &models.AnalysisResult{
			Status:  models.AnalysisStatusCompleted,
			Summary: mustParseSummary(t, raw),
		},
	}
	return id
}

func (m *mockDatasetRepo) Create(_ context.Context, dataset *models.Dataset) error {
	if m.createErr != nil {
		return m.createErr
	}
	dataset.ID = uuid.New()
	if dataset.UploadedAt.IsZero() {
		dataset.UploadedAt = time.Now()
	}
	copied := *dataset
	m.datasets[dataset.ID] = &copied
	return nil
}

func (m *mockDatasetRepo) Get(_ context.Context, id uuid.UUID) (*models.Dataset, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	dataset, ok := m.datasets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *dataset
	return &copied, nil
}

func (m *mockDatasetRepo) List(_ context.Context) ([]*models.Dataset, error) {
	list := make([]*models.Dataset, 0, len(m.datasets))
	for _, d := range m.datasets {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UploadedAt.After(list[j].UploadedAt) })
	return list, nil
}

func (m *mockDatasetRepo) UpsertAnalysis(_ context.Context, datasetID uuid.UUID, analysis *models.AnalysisResult) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	dataset, ok := m.datasets[datasetID]
	if !ok {
		return apperrors.ErrNotFound
	}
	copied := *analysis
	copied.CreatedAt = time.Now()
	dataset.Analysis = &copied
	return nil
}

func (m *mockDatasetRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.datasets[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.datasets, id)
	return nil
}

// mockSemanticConfigRepo is an in-memory SemanticConfigRepository.
type mockSemanticConfigRepo struct {
	configs   map[uuid.UUID]*models.DatasetSemanticConfig
	upserts   int
	getErr    error
	upsertErr error
}

func newMockSemanticConfigRepo() *mockSemanticConfigRepo {
	return &mockSemanticConfigRepo{configs: make(map[uuid.UUID]*models.DatasetSemanticConfig)}
}

func (m *mockSemanticConfigRepo) Upsert(_ context.Context, datasetID uuid.UUID, cfg models.SemanticConfig) (*models.DatasetSemanticConfig, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.upserts++
	now := time.Now()
	saved := &models.DatasetSemanticConfig{DatasetID: datasetID, Config: cfg, CreatedAt: now, UpdatedAt: now}
	if existing, ok := m.configs[datasetID]; ok {
		saved.CreatedAt = existing.CreatedAt
	}
	m.configs[datasetID] = saved
	return saved, nil
}

func (m *mockSemanticConfigRepo) Get(_ context.Context, datasetID uuid.UUID) (*models.DatasetSemanticConfig, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	saved, ok := m.configs[datasetID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *saved
	return &copied, nil
}

func (m *mockSemanticConfigRepo) Delete(_ context.Context, datasetID uuid.UUID) error {
	if _, ok := m.configs[datasetID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.configs, datasetID)
	return nil
}

func strPtr(s string) *string {
	return &s
}
