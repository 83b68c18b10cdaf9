package models

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/hayderhassan/InsightSphere/pkg/jsonutil"
)

// HistogramBin is one bucket of a numeric column histogram.
type HistogramBin struct {
	Bin   string `json:"bin"`
	Count int64  `json:"count"`
}

// ValueCount is one entry of a column's value-frequency table.
// Value is always carried as a string; the analysis backend may emit
// numbers or booleans for it, which are normalised on decode.
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// UnmarshalJSON accepts string, number, boolean or null values. Counts may
// be numbers or numeric strings.
func (v *ValueCount) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value json.RawMessage `json:"value"`
		Count json.RawMessage `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.Value = jsonutil.FlexibleStringValue(raw.Value)
	v.Count, _ = jsonutil.FlexibleInt64(raw.Count)
	return nil
}

// UnmarshalJSON accepts numeric or string bin labels.
func (b *HistogramBin) UnmarshalJSON(data []byte) error {
	var raw struct {
		Bin   json.RawMessage `json:"bin"`
		Count json.RawMessage `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Bin = jsonutil.FlexibleStringValue(raw.Bin)
	b.Count, _ = jsonutil.FlexibleInt64(raw.Count)
	return nil
}

// ColumnSummary is the per-column portion of the analysis backend's summary.
// Every field is optional.
type ColumnSummary struct {
	Type        DeclaredType    `json:"type,omitempty"`
	Describe    json.RawMessage `json:"describe,omitempty"`
	Histogram   []HistogramBin  `json:"histogram,omitempty"`
	ValueCounts []ValueCount    `json:"value_counts,omitempty"`
}

// ColumnSummaries maps column name to summary, preserving the order the
// columns appeared in the source JSON object.
type ColumnSummaries = orderedmap.OrderedMap[string, ColumnSummary]

// NewColumnSummaries returns an empty ordered column map.
func NewColumnSummaries() *ColumnSummaries {
	return orderedmap.New[string, ColumnSummary]()
}

// DatasetSummary is the statistical summary produced by the analysis backend
// for one dataset. SemanticConfig and SemanticAggregates are attached by the
// API layer when serving insights.
type DatasetSummary struct {
	RowCount           int64               `json:"row_count,omitempty"`
	ColumnCount        int64               `json:"column_count,omitempty"`
	MissingValues      map[string]int64    `json:"missing_values,omitempty"`
	Columns            *ColumnSummaries    `json:"columns,omitempty"`
	SemanticConfig     *SemanticConfig     `json:"semantic_config,omitempty"`
	SemanticAggregates *SemanticAggregates `json:"semantic_aggregates,omitempty"`
}

// HasColumns reports whether the summary carries at least one column.
// The analysis is considered ready for semantic review only when it does.
func (s *DatasetSummary) HasColumns() bool {
	return s != nil && s.Columns != nil && s.Columns.Len() > 0
}

// Column looks up a column summary by name.
func (s *DatasetSummary) Column(name string) (ColumnSummary, bool) {
	if s == nil || s.Columns == nil {
		return ColumnSummary{}, false
	}
	return s.Columns.Get(name)
}

// ColumnNames returns column names in summary order.
func (s *DatasetSummary) ColumnNames() []string {
	names := []string{}
	if s == nil || s.Columns == nil {
		return names
	}
	for pair := s.Columns.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// ParseDatasetSummary decodes a summary JSON document.
func ParseDatasetSummary(data []byte) (*DatasetSummary, error) {
	var summary DatasetSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
