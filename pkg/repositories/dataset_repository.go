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

// DatasetRepository defines the interface for dataset and analysis data access.
type DatasetRepository interface {
	Create(ctx context.Context, dataset *models.Dataset) error
	Get(ctx context.Context, id uuid.UUID) (*models.Dataset, error)
	List(ctx context.Context) ([]*models.Dataset, error)
	UpsertAnalysis(ctx context.Context, datasetID uuid.UUID, analysis *models.AnalysisResult) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// datasetRepository implements DatasetRepository using PostgreSQL.
type datasetRepository struct {
	db *database.DB
}

// NewDatasetRepository creates a new dataset repository.
func NewDatasetRepository(db *database.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

const datasetSelect = `
	SELECT d.id, d.name, d.original_file, d.uploaded_at,
	       a.status, a.summary_json, a.error_message, a.created_at
	FROM datasets d
	LEFT JOIN analysis_results a ON a.dataset_id = d.id`

// Create inserts a new dataset. ID and UploadedAt are filled in when zero.
func (r *datasetRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	if dataset.ID == uuid.Nil {
		dataset.ID = uuid.New()
	}
	if dataset.UploadedAt.IsZero() {
		dataset.UploadedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO datasets (id, name, original_file, uploaded_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.Exec(ctx, query, dataset.ID, dataset.Name, dataset.OriginalFile, dataset.UploadedAt); err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	return nil
}

// Get retrieves a dataset with its latest analysis.
func (r *datasetRepository) Get(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	row := r.db.QueryRow(ctx, datasetSelect+` WHERE d.id = $1`, id)

	dataset, err := scanDataset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	return dataset, nil
}

// List returns all datasets, newest upload first.
func (r *datasetRepository) List(ctx context.Context) ([]*models.Dataset, error) {
	rows, err := r.db.Query(ctx, datasetSelect+` ORDER BY d.uploaded_at DESC, d.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]*models.Dataset, 0)
	for rows.Next() {
		dataset, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, dataset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate datasets: %w", err)
	}

	return datasets, nil
}

// UpsertAnalysis records the latest analysis result for a dataset.
func (r *datasetRepository) UpsertAnalysis(ctx context.Context, datasetID uuid.UUID, analysis *models.AnalysisResult) error {
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}

	var summary []byte
	if analysis.Summary != nil {
		var err error
		if summary, err = json.Marshal(analysis.Summary); err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
	}

	query := `
		INSERT INTO analysis_results (dataset_id, status, summary_json, error_message, created_at)
		SELECT $1::uuid, $2::text, $3::json, $4::text, $5::timestamptz
		WHERE EXISTS (SELECT 1 FROM datasets WHERE id = $1)
		ON CONFLICT (dataset_id) DO UPDATE
		SET status = EXCLUDED.status,
		    summary_json = EXCLUDED.summary_json,
		    error_message = EXCLUDED.error_message,
		    created_at = EXCLUDED.created_at`

	result, err := r.db.Exec(ctx, query, datasetID, string(analysis.Status), summary, analysis.ErrorMessage, analysis.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert analysis: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a dataset. Its analysis and semantic config go with it via CASCADE.
func (r *datasetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanDataset(row pgx.Row) (*models.Dataset, error) {
	var (
		dataset   models.Dataset
		status    *string
		summary   []byte
		errMsg    *string
		createdAt *time.Time
	)

	if err := row.Scan(
		&dataset.ID,
		&dataset.Name,
		&dataset.OriginalFile,
		&dataset.UploadedAt,
		&status,
		&summary,
		&errMsg,
		&createdAt,
	); err != nil {
		return nil, err
	}

	if status == nil {
		return &dataset, nil
	}

	analysis := &models.AnalysisResult{
		Status:       models.AnalysisStatus(*status),
		ErrorMessage: errMsg,
	}
	if createdAt != nil {
		analysis.CreatedAt = *createdAt
	}
	if len(summary) > 0 {
		parsed, err := models.ParseDatasetSummary(summary)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		analysis.Summary = parsed
	}
	dataset.Analysis = analysis

	return &dataset, nil
}

// Ensure datasetRepository implements DatasetRepository at compile time.
var _ DatasetRepository = (*datasetRepository)(nil)
