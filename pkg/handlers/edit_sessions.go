package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

// OpenEditSessionRequest is the body of POST /api/datasets/{id}/edit-sessions.
type OpenEditSessionRequest struct {
	Mode services.EditMode `json:"mode"`
}

// UpdateEditSessionRequest is the body of PATCH /api/edit-sessions/{sid}.
// Changes are applied in field order. If any change fails, the session is
// left as it was.
type UpdateEditSessionRequest struct {
	SetOverrides   models.TypeOverrides `json:"set_overrides,omitempty"`
	ClearOverrides []string             `json:"clear_overrides,omitempty"`
	Target         *string              `json:"target,omitempty"`
	Time           *string              `json:"time,omitempty"`
	ToggleMetrics  []string             `json:"toggle_metrics,omitempty"`
}

// EditSessionsHandler handles semantic edit session requests.
type EditSessionsHandler struct {
	store  services.EditSessionStore
	logger *zap.Logger
}

// NewEditSessionsHandler creates a new edit sessions handler.
func NewEditSessionsHandler(store services.EditSessionStore, logger *zap.Logger) *EditSessionsHandler {
	return &EditSessionsHandler{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers the edit sessions handler's routes on the given mux.
func (h *EditSessionsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/datasets/{id}/edit-sessions", h.Open)
	mux.HandleFunc("GET /api/edit-sessions/{sid}", h.Get)
	mux.HandleFunc("PATCH /api/edit-sessions/{sid}", h.Update)
	mux.HandleFunc("DELETE /api/edit-sessions/{sid}", h.Cancel)
	mux.HandleFunc("POST /api/edit-sessions/{sid}/commit", h.Commit)
}

// Open handles POST /api/datasets/{id}/edit-sessions
// An empty body opens a full session.
func (h *EditSessionsHandler) Open(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	req := OpenEditSessionRequest{Mode: services.EditModeFull}
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req, h.logger) {
			return
		}
		if req.Mode == "" {
			req.Mode = services.EditModeFull
		}
	}

	view, err := h.store.Open(r.Context(), datasetID, req.Mode)
	if err != nil {
		writeServiceError(w, err, "Failed to open edit session", h.logger)
		return
	}
	writeData(w, http.StatusCreated, view, h.logger)
}

// Get handles GET /api/edit-sessions/{sid}
func (h *EditSessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.store.Get(sid)
	if err != nil {
		writeServiceError(w, err, "Failed to get edit session", h.logger)
		return
	}
	writeData(w, http.StatusOK, view, h.logger)
}

// Update handles PATCH /api/edit-sessions/{sid}
func (h *EditSessionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateEditSessionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	view, err := h.store.Apply(sid, services.EditSessionPatch{
		SetOverrides:   req.SetOverrides,
		ClearOverrides: req.ClearOverrides,
		Target:         req.Target,
		Time:           req.Time,
		ToggleMetrics:  req.ToggleMetrics,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to update edit session", h.logger)
		return
	}
	writeData(w, http.StatusOK, view, h.logger)
}

// Cancel handles DELETE /api/edit-sessions/{sid}
func (h *EditSessionsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.store.Cancel(sid); err != nil {
		writeServiceError(w, err, "Failed to cancel edit session", h.logger)
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Edit session discarded"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Commit handles POST /api/edit-sessions/{sid}/commit
func (h *EditSessionsHandler) Commit(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	saved, err := h.store.Commit(r.Context(), sid)
	if err != nil {
		writeServiceError(w, err, "Failed to commit edit session", h.logger)
		return
	}
	writeData(w, http.StatusOK, saved, h.logger)
}
