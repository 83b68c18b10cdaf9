package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus is the lifecycle state of a dataset's backend analysis.
type AnalysisStatus string

const (
	AnalysisStatusPending   AnalysisStatus = "PENDING"
	AnalysisStatusRunning   AnalysisStatus = "RUNNING"
	AnalysisStatusCompleted AnalysisStatus = "COMPLETED"
	AnalysisStatusFailed    AnalysisStatus = "FAILED"
)

// ValidAnalysisStatuses lists every analysis status.
var ValidAnalysisStatuses = []AnalysisStatus{
	AnalysisStatusPending,
	AnalysisStatusRunning,
	AnalysisStatusCompleted,
	AnalysisStatusFailed,
}

// IsValidAnalysisStatus checks if the given status is valid.
func IsValidAnalysisStatus(s AnalysisStatus) bool {
	return slices.Contains(ValidAnalysisStatuses, s)
}

// Dataset is an uploaded tabular file registered with the engine.
type Dataset struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	OriginalFile string          `json:"original_file"`
	UploadedAt   time.Time       `json:"uploaded_at"`
	Analysis     *AnalysisResult `json:"analysis,omitempty"`
}

// AnalysisResult is the latest analysis reported for a dataset.
// Summary is populated once the backend has produced one.
type AnalysisResult struct {
	Status       AnalysisStatus  `json:"status"`
	Summary      *DatasetSummary `json:"summary_json,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

// Ready reports whether the analysis has produced a summary with columns.
func (a *AnalysisResult) Ready() bool {
	return a != nil && a.Summary.HasColumns()
}
