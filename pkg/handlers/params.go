package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/models"
)

// ParseDatasetID extracts and validates the dataset ID from the request path.
// Returns the parsed UUID and true on success, or uuid.Nil and false on error
// (after writing an error response).
// Expects path parameter: id
func ParseDatasetID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "id", "invalid_dataset_id", "Invalid dataset ID format", logger)
}

// ParseSessionID extracts and validates the edit session ID from the request path.
// Expects path parameter: sid
func ParseSessionID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "sid", "invalid_session_id", "Invalid edit session ID format", logger)
}

// parseUUID is the internal helper that does the actual parsing work.
func parseUUID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue(pathParam)
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// ParseOverrides reads repeated ?override=column:type query parameters.
// The type follows the last ':' so column names may contain ':'.
// Type validity is checked by the service; only the shape is checked here.
func ParseOverrides(r *http.Request) (models.TypeOverrides, error) {
	values := r.URL.Query()["override"]
	if len(values) == 0 {
		return nil, nil
	}
	overrides := make(models.TypeOverrides, len(values))
	for _, v := range values {
		i := strings.LastIndex(v, ":")
		if i < 0 {
			return nil, fmt.Errorf("override %q must have the form column:type", v)
		}
		column := strings.TrimSpace(v[:i])
		logicalType := strings.TrimSpace(v[i+1:])
		if column == "" || logicalType == "" {
			return nil, fmt.Errorf("override %q must have the form column:type", v)
		}
		overrides[column] = models.LogicalType(logicalType)
	}
	return overrides, nil
}
