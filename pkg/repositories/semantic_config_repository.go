package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/database"
	"github.com/hayderhassan/InsightSphere/pkg/models"
)

// SemanticConfigRepository defines the interface for semantic config data access.
// A dataset has at most one config.
type SemanticConfigRepository interface {
	Upsert(ctx context.Context, datasetID uuid.UUID, cfg models.SemanticConfig) (*models.DatasetSemanticConfig, error)
	Get(ctx context.Context, datasetID uuid.UUID) (*models.DatasetSemanticConfig, error)
	Delete(ctx context.Context, datasetID uuid.UUID) error
}

type semanticConfigRepository struct {
	db *database.DB
}

// NewSemanticConfigRepository creates a new semantic config repository.
func NewSemanticConfigRepository(db *database.DB) SemanticConfigRepository {
	return &semanticConfigRepository{db: db}
}

// Upsert creates or replaces the config of a dataset.
// Returns ErrNotFound when the dataset does not exist.
func (r *semanticConfigRepository) Upsert(ctx context.Context, datasetID uuid.UUID, cfg models.SemanticConfig) (*models.DatasetSemanticConfig, error) {
	metrics, err := json.Marshal(cfg.Metrics())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metric columns: %w", err)
	}
	columnTypes := cfg.ColumnTypes
	if columnTypes == nil {
		columnTypes = map[string]models.LogicalType{}
	}
	types, err := json.Marshal(columnTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal column types: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO dataset_semantic_configs
			(dataset_id, target_column, time_column, metric_columns, column_types, created_at, updated_at)
		SELECT $1::uuid, $2::text, $3::text, $4::jsonb, $5::jsonb, $6::timestamptz, $6::timestamptz
		WHERE EXISTS (SELECT 1 FROM datasets WHERE id = $1)
		ON CONFLICT (dataset_id) DO UPDATE
		SET target_column = EXCLUDED.target_column,
		    time_column = EXCLUDED.time_column,
		    metric_columns = EXCLUDED.metric_columns,
		    column_types = EXCLUDED.column_types,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`

	saved := &models.DatasetSemanticConfig{DatasetID: datasetID, Config: cfg}
	err = r.db.QueryRow(ctx, query, datasetID, cfg.TargetColumn, cfg.TimeColumn, metrics, types, now).
		Scan(&saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to upsert semantic config: %w", err)
	}

	saved.Config.MetricColumns = cfg.Metrics()
	saved.Config.ColumnTypes = columnTypes
	return saved, nil
}

// Get retrieves the config of a dataset, or ErrNotFound when none has been saved.
func (r *semanticConfigRepository) Get(ctx context.Context, datasetID uuid.UUID) (*models.DatasetSemanticConfig, error) {
	query := `
		SELECT dataset_id, target_column, time_column, metric_columns, column_types, created_at, updated_at
		FROM dataset_semantic_configs
		WHERE dataset_id = $1`

	var (
		saved   models.DatasetSemanticConfig
		metrics []byte
		types   []byte
	)
	err := r.db.QueryRow(ctx, query, datasetID).Scan(
		&saved.DatasetID,
		&saved.Config.TargetColumn,
		&saved.Config.TimeColumn,
		&metrics,
		&types,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get semantic config: %w", err)
	}

	if err := json.Unmarshal(metrics, &saved.Config.MetricColumns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metric columns: %w", err)
	}
	if err := json.Unmarshal(types, &saved.Config.ColumnTypes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal column types: %w", err)
	}

	return &saved, nil
}

// Delete removes the config of a dataset.
func (r *semanticConfigRepository) Delete(ctx context.Context, datasetID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM dataset_semantic_configs WHERE dataset_id = $1`, datasetID)
	if err != nil {
		return fmt.Errorf("failed to delete semantic config: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure semanticConfigRepository implements SemanticConfigRepository at compile time.
var _ SemanticConfigRepository = (*semanticConfigRepository)(nil)
