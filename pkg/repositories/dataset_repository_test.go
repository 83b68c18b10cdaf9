//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/testhelpers"
)

// datasetTestContext holds test dependencies for dataset repository tests.
type datasetTestContext struct {
	t          *testing.T
	engineDB   *testhelpers.EngineDB
	repo       DatasetRepository
	configRepo SemanticConfigRepository
}

// setupDatasetTest initializes the test context with the shared testcontainer
// and empties the dataset tables.
func setupDatasetTest(t *testing.T) *datasetTestContext {
	engineDB := testhelpers.GetEngineDB(t)
	engineDB.Truncate(t, "datasets")
	return &datasetTestContext{
		t:          t,
		engineDB:   engineDB,
		repo:       NewDatasetRepository(engineDB.DB),
		configRepo: NewSemanticConfigRepository(engineDB.DB),
	}
}

func (tc *datasetTestContext) createDataset(ctx context.Context, name string, uploadedAt time.Time) *models.Dataset {
	tc.t.Helper()
	dataset := &models.Dataset{Name: name, OriginalFile: name + ".csv", UploadedAt: uploadedAt}
	require.NoError(tc.t, tc.repo.Create(ctx, dataset))
	return dataset
}

const orderedSummary = `{
	"row_count": 2,
	"columns": {
		"zeta": {"type": "numeric"},
		"alpha": {"type": "categorical", "value_counts": [{"value": "Yes", "count": 1}, {"value": "No", "count": 1}]},
		"mid": {"type": "datetime"}
	}
}`

func TestDatasetRepository_CreateAndGet(t *testing.T) {
	tc := setupDatasetTest(t)
	ctx := context.Background()

	created := tc.createDataset(ctx, "churn", time.Time{})
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.UploadedAt.IsZero())

	got, err := tc.repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "churn", got.Name)
	assert.Equal(t, "churn.csv", got.OriginalFile)
	assert.Nil(t, got.Analysis)
}

func TestDatasetRepository_GetNotFound(t *testing.T) {
	tc := setupDatasetTest(t)

	_, err := tc.repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDatasetRepository_ListNewestFirst(t *testing.T) {
	tc := setupDatasetTest(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	tc.createDataset(ctx, "old", base)
	tc.createDataset(ctx, "new", base.Add(30*time.Minute))

	list, err := tc.repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Name)
	assert.Equal(t, "old", list[1].Name)
}

func TestDatasetRepository_UpsertAnalysisKeepsColumnOrder(t *testing.T) {
	tc := setupDatasetTest(t)
	ctx := context.Background()
	dataset := tc.createDataset(ctx, "ordered", time.Time{})

	require.NoError(t, tc.repo.UpsertAnalysis(ctx, dataset.ID, &models.AnalysisResult{Status: models.AnalysisStatusRunning}))

	summary, err := models.ParseDatasetSummary([]byte(orderedSummary))
	require.NoError(t, err)
	require.NoError(t, tc.repo.UpsertAnalysis(ctx, dataset.ID, &models.AnalysisResult{
		Status:  models.AnalysisStatusCompleted,
		Summary: summary,
	}))

	got, err := tc.repo.Get(ctx, dataset.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, models.AnalysisStatusCompleted, got.Analysis.Status)
	assert.True(t, got.Analysis.Ready())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, got.Analysis.Summary.ColumnNames())
}

func TestDatasetRepository_UpsertAnalysisFailed(t *testing.T) {
	tc := setupDatasetTest(t)
	ctx := context.Background()
	dataset := tc.createDataset(ctx, "broken", time.Time{})

	msg := "could not parse CSV"
	require.NoError(t, tc.repo.UpsertAnalysis(ctx, dataset.ID, &models.AnalysisResult{
		Status:       models.AnalysisStatusFailed,
		ErrorMessage: &msg,
	}))

	got, err := tc.repo.Get(ctx, dataset.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Analysis.ErrorMessage)
	assert.Equal(t, msg, *got.Analysis.ErrorMessage)
	assert.Nil(t, got.Analysis.Summary)
	assert.False(t, got.Analysis.Ready())
}

func TestDatasetRepository_UpsertAnalysisUnknownDataset(t *testing.T) {
	tc := setupDatasetTest(t)

	err := tc.repo.UpsertAnalysis(context.Background(), uuid.New(), &models.AnalysisResult{Status: models.AnalysisStatusPending})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDatasetRepository_DeleteCascades(t *testing.T) {
	tc := setupDatasetTest(t)
	ctx := context.Background()
	dataset := tc.createDataset(ctx, "temp", time.Time{})

	target := "alpha"
	_, err := tc.configRepo.Upsert(ctx, dataset.ID, models.SemanticConfig{TargetColumn: &target})
	require.NoError(t, err)

	require.NoError(t, tc.repo.Delete(ctx, dataset.ID))

	_, err = tc.repo.Get(ctx, dataset.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = tc.configRepo.Get(ctx, dataset.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, tc.repo.Delete(ctx, dataset.ID), apperrors.ErrNotFound)
}

func TestSemanticConfigRepository_UpsertAndGet(t *testing.T) {
	tc := setupDatasetTest(t)
	ctx := context.Background()
	dataset := tc.createDataset(ctx, "cfg", time.Time{})

	_, err := tc.configRepo.Get(ctx, dataset.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	target := "churned"
	first, err := tc.configRepo.Upsert(ctx, dataset.ID, models.SemanticConfig{
		TargetColumn:  &target,
		MetricColumns: []string{"spend", "visits"},
		ColumnTypes:   map[string]models.LogicalType{"churned": models.LogicalTypeBoolean},
	})
	require.NoError(t, err)

	got, err := tc.configRepo.Get(ctx, dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, "churned", got.Config.Target())
	assert.Nil(t, got.Config.TimeColumn)
	assert.Equal(t, []string{"spend", "visits"}, got.Config.MetricColumns)
	assert.Equal(t, models.LogicalTypeBoolean, got.Config.ColumnTypes["churned"])

	timeCol := "signup_date"
	second, err := tc.configRepo.Upsert(ctx, dataset.ID, models.SemanticConfig{TimeColumn: &timeCol})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())

	got, err = tc.configRepo.Get(ctx, dataset.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Config.TargetColumn)
	assert.Equal(t, "signup_date", got.Config.Time())
	assert.Equal(t, []string{}, got.Config.MetricColumns)
	assert.Empty(t, got.Config.ColumnTypes)
}

func TestSemanticConfigRepository_UpsertUnknownDataset(t *testing.T) {
	tc := setupDatasetTest(t)

	_, err := tc.configRepo.Upsert(context.Background(), uuid.New(), models.SemanticConfig{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
