package models

// ColumnMeta is the per-column semantic descriptor derived from a ColumnSummary.
//
// RawType is the backend-declared type (DeclaredTypeOther when absent).
// IsBinaryLike, IsIDLike and IsTimeLike are structural hints that feed
// candidate selection; they are computed once and never recomputed from
// type overrides.
type ColumnMeta struct {
	Name         string       `json:"name"`
	RawType      DeclaredType `json:"raw_type"`
	LogicalType  LogicalType  `json:"logical_type"`
	IsBinaryLike bool         `json:"is_binary_like"`
	IsIDLike     bool         `json:"is_id_like"`
	IsTimeLike   bool         `json:"is_time_like"`
}

// TypeOverrides maps column name to a user-chosen logical type.
// Columns absent from the map keep their derived type.
type TypeOverrides map[string]LogicalType

// Clone returns a copy of the overrides. A nil receiver yields an empty map.
func (o TypeOverrides) Clone() TypeOverrides {
	out := make(TypeOverrides, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// SemanticCandidates holds the columns eligible for each semantic role.
// A column may appear in several lists. Lists follow input column order.
type SemanticCandidates struct {
	TargetCandidates []ColumnMeta `json:"target_candidates"`
	MetricCandidates []ColumnMeta `json:"metric_candidates"`
	TimeCandidates   []ColumnMeta `json:"time_candidates"`
}

// Names returns the column names of a candidate list.
func Names(cols []ColumnMeta) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names
}
