package models

// UploadStage is the progress state shown while a dataset is uploaded and analysed.
type UploadStage string

const (
	UploadStageIdle       UploadStage = "idle"
	UploadStageUploading  UploadStage = "uploading"
	UploadStageProcessing UploadStage = "processing"
	UploadStageDone       UploadStage = "done"
	UploadStageError      UploadStage = "error"
)

// Label returns the status line for the stage. Unknown stages read as idle.
func (s UploadStage) Label() string {
	switch s {
	case UploadStageUploading:
		return "Uploading CSV file..."
	case UploadStageProcessing:
		return "Processing dataset and running backend analysis..."
	case UploadStageDone:
		return "Upload complete. Review the backend column types and answer a few quick questions."
	case UploadStageError:
		return "There was a problem uploading or processing your dataset."
	default:
		return "Waiting to upload."
	}
}

// StageForStatus maps an analysis status to the upload stage it corresponds to.
func StageForStatus(status AnalysisStatus) UploadStage {
	switch status {
	case AnalysisStatusPending, AnalysisStatusRunning:
		return UploadStageProcessing
	case AnalysisStatusCompleted:
		return UploadStageDone
	case AnalysisStatusFailed:
		return UploadStageError
	default:
		return UploadStageIdle
	}
}
