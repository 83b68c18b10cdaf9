package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

// AnalyzeRequest is the body of POST /api/semantic/analyze.
type AnalyzeRequest struct {
	Summary         *models.DatasetSummary `json:"summary"`
	Overrides       models.TypeOverrides   `json:"overrides"`
	SelectedMetrics []string               `json:"selected_metrics"`
}

// LogicalTypeOption is one entry of the column type picker.
type LogicalTypeOption struct {
	Value models.LogicalType `json:"value"`
	Label string             `json:"label"`
}

// SemanticHandler handles column semantics, semantic config and insight requests.
type SemanticHandler struct {
	semanticService services.SemanticService
	logger          *zap.Logger
}

// NewSemanticHandler creates a new semantic handler.
func NewSemanticHandler(semanticService services.SemanticService, logger *zap.Logger) *SemanticHandler {
	return &SemanticHandler{
		semanticService: semanticService,
		logger:          logger,
	}
}

// RegisterRoutes registers the semantic handler's routes on the given mux.
func (h *SemanticHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasets/{id}/columns", h.GetColumns)
	mux.HandleFunc("GET /api/datasets/{id}/semantic-config", h.GetConfig)
	mux.HandleFunc("POST /api/datasets/{id}/semantic-config", h.SaveConfig)
	mux.HandleFunc("GET /api/datasets/{id}/insights", h.GetInsights)
	mux.HandleFunc("POST /api/semantic/analyze", h.Analyze)
	mux.HandleFunc("GET /api/semantic/logical-types", h.LogicalTypes)
}

// GetColumns handles GET /api/datasets/{id}/columns
// Accepts repeated ?override=column:type to preview type changes.
func (h *SemanticHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}
	overrides, err := ParseOverrides(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_override", err.Error(), h.logger)
		return
	}

	view, err := h.semanticService.GetColumns(r.Context(), id, overrides)
	if err != nil {
		writeServiceError(w, err, "Failed to get dataset columns", h.logger)
		return
	}
	writeData(w, http.StatusOK, view, h.logger)
}

// GetConfig handles GET /api/datasets/{id}/semantic-config
func (h *SemanticHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	saved, err := h.semanticService.GetConfig(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get semantic config", h.logger)
		return
	}
	writeData(w, http.StatusOK, saved, h.logger)
}

// SaveConfig handles POST /api/datasets/{id}/semantic-config
func (h *SemanticHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.SaveConfigRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	saved, err := h.semanticService.SaveConfig(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err, "Failed to save semantic config", h.logger)
		return
	}
	writeData(w, http.StatusOK, saved, h.logger)
}

// GetInsights handles GET /api/datasets/{id}/insights
func (h *SemanticHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.semanticService.GetInsights(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to build insights", h.logger)
		return
	}
	writeData(w, http.StatusOK, view, h.logger)
}

// Analyze handles POST /api/semantic/analyze
// Derives column semantics for a summary supplied in the body. Nothing is stored.
func (h *SemanticHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.semanticService.Analyze(req.Summary, req.Overrides, req.SelectedMetrics)
	if err != nil {
		writeServiceError(w, err, "Failed to analyze summary", h.logger)
		return
	}
	writeData(w, http.StatusOK, result, h.logger)
}

// LogicalTypes handles GET /api/semantic/logical-types
func (h *SemanticHandler) LogicalTypes(w http.ResponseWriter, r *http.Request) {
	options := make([]LogicalTypeOption, len(models.LogicalTypeOptions))
	for i, t := range models.LogicalTypeOptions {
		options[i] = LogicalTypeOption{Value: t, Label: t.Label()}
	}
	writeData(w, http.StatusOK, options, h.logger)
}
