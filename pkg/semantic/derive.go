// Package semantic maps a backend column summary onto logical types and
// selects the columns eligible for each semantic role (target, metric, time).
//
// Every function in this package is pure and total: degenerate input yields
// unknown types and empty lists, never an error.
package semantic

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/hayderhassan/InsightSphere/pkg/models"
)

// booleanPairs are the two-value vocabularies treated as binary outcomes.
var booleanPairs = [][2]string{
	{"true", "false"},
	{"t", "f"},
	{"yes", "no"},
	{"y", "n"},
	{"1", "0"},
	{"on", "off"},
	{"male", "female"},
	{"m", "f"},
	{"pass", "fail"},
	{"positive", "negative"},
	{"active", "inactive"},
	{"enabled", "disabled"},
	{"success", "error"},
}

var timeKeywords = []string{
	"date",
	"time",
	"timestamp",
	"created_at",
	"updated_at",
	"dt",
	"datetime",
	"duration",
	"elapsed",
	"seconds",
	"secs",
	"minutes",
	"mins",
	"hours",
	"days",
	"days_since",
	"age",
}

// fold case-folds s. A fresh Caser is used per call since Casers hold state.
func fold(s string) string {
	return cases.Fold().String(s)
}

// DeriveColumnMeta computes the semantic descriptor of one column.
func DeriveColumnMeta(name string, col models.ColumnSummary) models.ColumnMeta {
	rawType := col.Type.OrOther()

	logicalType := models.LogicalTypeUnknown
	binaryLike := false

	switch {
	case rawType == models.DeclaredTypeBoolean:
		logicalType = models.LogicalTypeBoolean
		binaryLike = true
	case hasBinaryValues(col.ValueCounts) &&
		(rawType == models.DeclaredTypeNumeric || rawType == models.DeclaredTypeCategorical):
		logicalType = models.LogicalTypeBoolean
		binaryLike = true
	case rawType == models.DeclaredTypeNumeric:
		logicalType = models.LogicalTypeNumeric
	case rawType == models.DeclaredTypeCategorical:
		logicalType = models.LogicalTypeCategorical
	case rawType == models.DeclaredTypeDatetime:
		logicalType = models.LogicalTypeDatetime
	}

	return models.ColumnMeta{
		Name:         name,
		RawType:      rawType,
		LogicalType:  logicalType,
		IsBinaryLike: binaryLike,
		IsIDLike:     looksLikeID(name),
		IsTimeLike:   logicalType == models.LogicalTypeDatetime || looksLikeTimeName(name),
	}
}

// hasBinaryValues reports whether the distinct normalised values form exactly
// one of the known boolean pairs.
func hasBinaryValues(counts []models.ValueCount) bool {
	distinct := make(map[string]struct{}, 2)
	for _, vc := range counts {
		distinct[normalizeToken(vc.Value)] = struct{}{}
		if len(distinct) > 2 {
			return false
		}
	}
	if len(distinct) != 2 {
		return false
	}
	for _, pair := range booleanPairs {
		_, first := distinct[pair[0]]
		_, second := distinct[pair[1]]
		if first && second {
			return true
		}
	}
	return false
}

func normalizeToken(val string) string {
	return strings.TrimSpace(fold(val))
}

// looksLikeID matches names such as "id", "user_id", "customerid" and
// anything containing "uuid". The bare "id" suffix also matches words like
// "paid" or "valid".
func looksLikeID(name string) bool {
	lower := fold(name)
	return lower == "id" ||
		strings.HasSuffix(lower, "_id") ||
		strings.HasSuffix(lower, "id") ||
		strings.Contains(lower, "uuid")
}

func looksLikeTimeName(name string) bool {
	lower := fold(name)
	for _, kw := range timeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// BuildColumnsMeta derives ColumnMeta for every column of the summary, in
// summary order. The result is never nil.
func BuildColumnsMeta(summary *models.DatasetSummary) []models.ColumnMeta {
	if !summary.HasColumns() {
		return []models.ColumnMeta{}
	}
	columns := make([]models.ColumnMeta, 0, summary.Columns.Len())
	for pair := summary.Columns.Oldest(); pair != nil; pair = pair.Next() {
		columns = append(columns, DeriveColumnMeta(pair.Key, pair.Value))
	}
	return columns
}

// EffectiveType returns the override for the column if one exists, otherwise
// its derived logical type. A nil overrides map is allowed.
func EffectiveType(col models.ColumnMeta, overrides models.TypeOverrides) models.LogicalType {
	if t, ok := overrides[col.Name]; ok {
		return t
	}
	return col.LogicalType
}
