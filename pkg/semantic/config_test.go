package semantic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayderhassan/InsightSphere/pkg/models"
)

func TestBuildSemanticConfig_EmptySelection(t *testing.T) {
	cols := BuildColumnsMeta(mustParseSummary(t, churnSummary))

	cfg := BuildSemanticConfig(cols, nil, models.Selection{})

	assert.Nil(t, cfg.TargetColumn)
	assert.Nil(t, cfg.TimeColumn)
	assert.NotNil(t, cfg.MetricColumns)
	assert.Len(t, cfg.ColumnTypes, 4)

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"target_column":null`)
	assert.Contains(t, string(data), `"time_column":null`)
	assert.Contains(t, string(data), `"metric_columns":[]`)
}

func TestBuildSemanticConfig_OverridesAndDuplicates(t *testing.T) {
	cols := BuildColumnsMeta(mustParseSummary(t, churnSummary))
	overrides := models.TypeOverrides{"id": models.LogicalTypeText}

	cfg := BuildSemanticConfig(cols, overrides, models.Selection{
		Metrics: []string{"monthly_spend", "id", "monthly_spend", ""},
	})

	assert.Equal(t, []string{"monthly_spend", "id"}, cfg.MetricColumns)
	assert.Equal(t, models.LogicalTypeText, cfg.ColumnTypes["id"])
	assert.Equal(t, models.LogicalTypeBoolean, cfg.ColumnTypes["churned"])
}

func TestSeedOverrides(t *testing.T) {
	cols := BuildColumnsMeta(mustParseSummary(t, churnSummary))

	t.Run("nil saved config", func(t *testing.T) {
		got := SeedOverrides(cols, nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("valid types seeded, others skipped", func(t *testing.T) {
		saved := &models.SemanticConfig{
			ColumnTypes: map[string]models.LogicalType{
				"id":            models.LogicalTypeText,
				"monthly_spend": models.LogicalTypeNumeric,
				"churned":       models.LogicalType("flag"),
				"removed_col":   models.LogicalTypeNumeric,
			},
		}

		got := SeedOverrides(cols, saved)

		assert.Equal(t, models.TypeOverrides{
			"id":            models.LogicalTypeText,
			"monthly_spend": models.LogicalTypeNumeric,
		}, got)
	})

	t.Run("seeded overrides reproduce saved candidates", func(t *testing.T) {
		saved := BuildSemanticConfig(cols, models.TypeOverrides{"monthly_spend": models.LogicalTypeCategorical}, models.Selection{})

		got := SelectCandidates(cols, SeedOverrides(cols, &saved))

		assert.Empty(t, got.MetricCandidates)
		assert.Equal(t, []string{"churned", "monthly_spend"}, models.Names(got.TargetCandidates))
	})
}
