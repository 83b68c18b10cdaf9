package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

// DatasetResponse is a dataset as returned by the API. Stage is the upload
// progress derived from the analysis status.
type DatasetResponse struct {
	*models.Dataset
	Stage      models.UploadStage `json:"stage"`
	StageLabel string             `json:"stage_label"`
}

// ListDatasetsResponse wraps the dataset list.
type ListDatasetsResponse struct {
	Datasets []DatasetResponse `json:"datasets"`
}

func toDatasetResponse(d *models.Dataset) DatasetResponse {
	stage := models.UploadStageIdle
	if d.Analysis != nil {
		stage = models.StageForStatus(d.Analysis.Status)
	}
	return DatasetResponse{Dataset: d, Stage: stage, StageLabel: stage.Label()}
}

// DatasetsHandler handles dataset record HTTP requests.
type DatasetsHandler struct {
	datasetService services.DatasetService
	logger         *zap.Logger
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(datasetService services.DatasetService, logger *zap.Logger) *DatasetsHandler {
	return &DatasetsHandler{
		datasetService: datasetService,
		logger:         logger,
	}
}

// RegisterRoutes registers the datasets handler's routes on the given mux.
func (h *DatasetsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasets", h.List)
	mux.HandleFunc("POST /api/datasets", h.Create)
	mux.HandleFunc("GET /api/datasets/{id}", h.Get)
	mux.HandleFunc("DELETE /api/datasets/{id}", h.Delete)
	mux.HandleFunc("PUT /api/datasets/{id}/analysis", h.ReportAnalysis)
}

// List handles GET /api/datasets
// Returns all datasets, newest first.
func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.datasetService.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to list datasets", h.logger)
		return
	}

	data := ListDatasetsResponse{Datasets: make([]DatasetResponse, len(datasets))}
	for i, d := range datasets {
		data.Datasets[i] = toDatasetResponse(d)
	}
	writeData(w, http.StatusOK, data, h.logger)
}

// Create handles POST /api/datasets
func (h *DatasetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDatasetRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	dataset, err := h.datasetService.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Failed to create dataset", h.logger)
		return
	}
	writeData(w, http.StatusCreated, toDatasetResponse(dataset), h.logger)
}

// Get handles GET /api/datasets/{id}
func (h *DatasetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	dataset, err := h.datasetService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get dataset", h.logger)
		return
	}
	writeData(w, http.StatusOK, toDatasetResponse(dataset), h.logger)
}

// Delete handles DELETE /api/datasets/{id}
func (h *DatasetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.datasetService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete dataset", h.logger)
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Dataset deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ReportAnalysis handles PUT /api/datasets/{id}/analysis
// Called by the analysis pipeline as a dataset moves through its stages.
func (h *DatasetsHandler) ReportAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.ReportAnalysisRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	dataset, err := h.datasetService.ReportAnalysis(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err, "Failed to record analysis", h.logger)
		return
	}
	writeData(w, http.StatusOK, toDatasetResponse(dataset), h.logger)
}
