package semantic

import (
	"slices"

	"github.com/hayderhassan/InsightSphere/pkg/models"
)

// BuildSemanticConfig assembles the persisted config from the current columns,
// overrides and role selection. ColumnTypes records the effective type of
// every column. Duplicate metrics are dropped, keeping the first occurrence.
func BuildSemanticConfig(columns []models.ColumnMeta, overrides models.TypeOverrides, sel models.Selection) models.SemanticConfig {
	cfg := models.SemanticConfig{
		TargetColumn:  optional(sel.Target),
		MetricColumns: dedupe(sel.Metrics),
		TimeColumn:    optional(sel.Time),
		ColumnTypes:   make(map[string]models.LogicalType, len(columns)),
	}
	for _, col := range columns {
		cfg.ColumnTypes[col.Name] = EffectiveType(col, overrides)
	}
	return cfg
}

// SeedOverrides turns a saved config's column types back into overrides so an
// edit surface opens with the types the user last saved. Entries for unknown
// columns or with invalid types are skipped.
func SeedOverrides(columns []models.ColumnMeta, saved *models.SemanticConfig) models.TypeOverrides {
	overrides := make(models.TypeOverrides)
	if saved == nil {
		return overrides
	}
	for _, col := range columns {
		t, ok := saved.ColumnTypes[col.Name]
		if !ok || !models.IsValidLogicalType(t) {
			continue
		}
		overrides[col.Name] = t
	}
	return overrides
}

func optional(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
