package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/repositories"
)

// CreateDatasetRequest registers a dataset whose file has been uploaded elsewhere.
type CreateDatasetRequest struct {
	Name         string `json:"name"`
	OriginalFile string `json:"original_file"`
}

// ReportAnalysisRequest is what the analysis pipeline sends when its state changes.
type ReportAnalysisRequest struct {
	Status       models.AnalysisStatus  `json:"status"`
	Summary      *models.DatasetSummary `json:"summary_json,omitempty"`
	ErrorMessage *string                `json:"error_message,omitempty"`
}

// DatasetService manages dataset records and their analysis results.
type DatasetService interface {
	Create(ctx context.Context, req CreateDatasetRequest) (*models.Dataset, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Dataset, error)
	List(ctx context.Context) ([]*models.Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ReportAnalysis records the analysis pipeline's latest result for a dataset.
	ReportAnalysis(ctx context.Context, id uuid.UUID, req ReportAnalysisRequest) (*models.Dataset, error)
}

type datasetService struct {
	repo   repositories.DatasetRepository
	logger *zap.Logger
}

// NewDatasetService creates a new dataset service.
func NewDatasetService(repo repositories.DatasetRepository, logger *zap.Logger) DatasetService {
	return &datasetService{
		repo:   repo,
		logger: logger.Named("datasets"),
	}
}

func (s *datasetService) Create(ctx context.Context, req CreateDatasetRequest) (*models.Dataset, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrInvalidInput)
	}

	dataset := &models.Dataset{
		Name:         name,
		OriginalFile: strings.TrimSpace(req.OriginalFile),
	}
	if err := s.repo.Create(ctx, dataset); err != nil {
		return nil, err
	}

	s.logger.Info("Dataset registered",
		zap.String("dataset_id", dataset.ID.String()),
		zap.String("name", dataset.Name))
	return dataset, nil
}

func (s *datasetService) Get(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	return s.repo.Get(ctx, id)
}

func (s *datasetService) List(ctx context.Context) ([]*models.Dataset, error) {
	return s.repo.List(ctx)
}

func (s *datasetService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Dataset deleted", zap.String("dataset_id", id.String()))
	return nil
}

func (s *datasetService) ReportAnalysis(ctx context.Context, id uuid.UUID, req ReportAnalysisRequest) (*models.Dataset, error) {
	if !models.IsValidAnalysisStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown analysis status %q", apperrors.ErrInvalidInput, req.Status)
	}
	if req.Status == models.AnalysisStatusCompleted && req.Summary == nil {
		return nil, fmt.Errorf("%w: a completed analysis must include summary_json", apperrors.ErrInvalidInput)
	}

	analysis := &models.AnalysisResult{
		Status:       req.Status,
		Summary:      req.Summary,
		ErrorMessage: req.ErrorMessage,
	}
	if err := s.repo.UpsertAnalysis(ctx, id, analysis); err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("dataset_id", id.String()),
		zap.String("status", string(req.Status)),
	}
	if req.Summary.HasColumns() {
		fields = append(fields, zap.Int("columns", req.Summary.Columns.Len()))
	}
	if req.Status == models.AnalysisStatusFailed {
		s.logger.Warn("Dataset analysis failed", fields...)
	} else {
		s.logger.Info("Dataset analysis updated", fields...)
	}

	return s.repo.Get(ctx, id)
}

var _ DatasetService = (*datasetService)(nil)
