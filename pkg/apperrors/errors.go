package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidSelection = errors.New("invalid semantic selection")
	ErrAnalysisNotReady = errors.New("analysis not ready")
	ErrSessionExpired   = errors.New("edit session expired")
)
