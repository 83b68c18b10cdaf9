package semantic

import (
	"slices"

	"github.com/hayderhassan/InsightSphere/pkg/models"
)

// SelectCandidates partitions columns into target, metric and time candidates
// using each column's effective type.
//
//   - target: not ID-like, and boolean, binary-like or categorical
//   - metric: numeric and not ID-like
//   - time: datetime, or a time-like name
//
// A column can land in several lists. Each list keeps input order and is
// never nil.
func SelectCandidates(columns []models.ColumnMeta, overrides models.TypeOverrides) models.SemanticCandidates {
	result := models.SemanticCandidates{
		TargetCandidates: make([]models.ColumnMeta, 0),
		MetricCandidates: make([]models.ColumnMeta, 0),
		TimeCandidates:   make([]models.ColumnMeta, 0),
	}

	for _, col := range columns {
		effective := EffectiveType(col, overrides)

		if isTargetCandidate(col, effective) {
			result.TargetCandidates = append(result.TargetCandidates, col)
		}
		if effective == models.LogicalTypeNumeric && !col.IsIDLike {
			result.MetricCandidates = append(result.MetricCandidates, col)
		}
		if effective == models.LogicalTypeDatetime || col.IsTimeLike {
			result.TimeCandidates = append(result.TimeCandidates, col)
		}
	}

	return result
}

func isTargetCandidate(col models.ColumnMeta, effective models.LogicalType) bool {
	if col.IsIDLike {
		return false
	}
	return effective == models.LogicalTypeBoolean ||
		col.IsBinaryLike ||
		effective == models.LogicalTypeCategorical
}

// ResolveOtherMetrics returns the selected metric names that exist in the
// dataset but are not currently metric candidates, in selection order.
func ResolveOtherMetrics(all []models.ColumnMeta, candidates []models.ColumnMeta, selected []string) []string {
	known := models.Names(all)
	eligible := models.Names(candidates)

	others := make([]string, 0)
	for _, name := range selected {
		if !slices.Contains(known, name) || slices.Contains(eligible, name) {
			continue
		}
		if slices.Contains(others, name) {
			continue
		}
		others = append(others, name)
	}
	return others
}
