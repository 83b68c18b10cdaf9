package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SemanticConfig is the persisted semantic interpretation of a dataset.
// TargetColumn and TimeColumn serialise as null when unset; MetricColumns
// and ColumnTypes are never null.
type SemanticConfig struct {
	TargetColumn  *string                `json:"target_column"`
	MetricColumns []string               `json:"metric_columns"`
	TimeColumn    *string                `json:"time_column"`
	ColumnTypes   map[string]LogicalType `json:"column_types"`
}

// MarshalJSON keeps empty collections as [] and {} rather than null.
func (c SemanticConfig) MarshalJSON() ([]byte, error) {
	type alias SemanticConfig
	out := alias(c)
	if out.MetricColumns == nil {
		out.MetricColumns = []string{}
	}
	if out.ColumnTypes == nil {
		out.ColumnTypes = map[string]LogicalType{}
	}
	return json.Marshal(out)
}

// Target returns the target column name or "" when unset.
func (c *SemanticConfig) Target() string {
	if c == nil || c.TargetColumn == nil {
		return ""
	}
	return *c.TargetColumn
}

// Time returns the time column name or "" when unset.
func (c *SemanticConfig) Time() string {
	if c == nil || c.TimeColumn == nil {
		return ""
	}
	return *c.TimeColumn
}

// Metrics returns the metric column names (never nil).
func (c *SemanticConfig) Metrics() []string {
	if c == nil || c.MetricColumns == nil {
		return []string{}
	}
	return c.MetricColumns
}

// Selection is the user's choice of columns for each semantic role.
// Empty Target or Time means no selection.
type Selection struct {
	Target  string   `json:"target,omitempty"`
	Metrics []string `json:"metrics"`
	Time    string   `json:"time,omitempty"`
}

// SelectionFromConfig extracts the role selection from a saved config.
func SelectionFromConfig(c *SemanticConfig) Selection {
	return Selection{
		Target:  c.Target(),
		Metrics: append([]string{}, c.Metrics()...),
		Time:    c.Time(),
	}
}

// DatasetSemanticConfig is a SemanticConfig as stored for a dataset.
type DatasetSemanticConfig struct {
	DatasetID uuid.UUID      `json:"dataset_id"`
	Config    SemanticConfig `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
