package semantic

import (
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/hayderhassan/InsightSphere/pkg/models"
)

// ChartKind is the chart family a spec renders as.
type ChartKind string

const (
	ChartKindBar  ChartKind = "bar"
	ChartKindLine ChartKind = "line"
)

// ChartSeries is one plotted value column of a chart.
type ChartSeries struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ChartSpec describes a chart for a renderer. Data holds one of the
// aggregate row slices from models.
type ChartSpec struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Kind        ChartKind     `json:"kind"`
	Data        any           `json:"data"`
	XKey        string        `json:"x_key"`
	Series      []ChartSeries `json:"series"`
}

// BuildInsightChartSpecs shapes the summary's semantic config and aggregates
// into chart specs: the outcome distribution, each metric by target, and
// each metric over time.
func BuildInsightChartSpecs(summary *models.DatasetSummary) []ChartSpec {
	specs := make([]ChartSpec, 0)
	if summary == nil {
		return specs
	}

	cfg := summary.SemanticConfig
	aggregates := summary.SemanticAggregates
	if aggregates == nil {
		aggregates = &models.SemanticAggregates{}
	}
	target := cfg.Target()

	distribution := aggregates.TargetDistribution
	if len(distribution) == 0 {
		distribution = targetDistributionFallback(summary, target)
	}
	if target != "" && len(distribution) > 0 {
		specs = append(specs, ChartSpec{
			ID:          "target-distribution",
			Title:       "Outcome distribution",
			Description: "How often each outcome occurs in this dataset.",
			Kind:        ChartKindBar,
			Data:        distribution,
			XKey:        "target",
			Series:      []ChartSeries{{Key: "count", Label: "Rows"}},
		})
	}

	if target != "" && aggregates.MetricsByTarget != nil {
		for _, metric := range metricOrder(cfg.Metrics(), aggregates.MetricsByTarget) {
			rows, _ := aggregates.MetricsByTarget.Get(metric)
			if len(rows) == 0 {
				continue
			}
			specs = append(specs, ChartSpec{
				ID:          "metric-by-target-" + metric,
				Title:       fmt.Sprintf("%s by %s", metric, target),
				Description: "Average value for each outcome.",
				Kind:        ChartKindBar,
				Data:        rows,
				XKey:        "target",
				Series:      []ChartSeries{{Key: "mean", Label: "Mean " + metric}},
			})
		}
	}

	if cfg.Time() != "" && aggregates.MetricsOverTime != nil {
		for _, metric := range metricOrder(cfg.Metrics(), aggregates.MetricsOverTime) {
			rows, _ := aggregates.MetricsOverTime.Get(metric)
			if len(rows) == 0 {
				continue
			}
			specs = append(specs, ChartSpec{
				ID:          "metric-over-time-" + metric,
				Title:       metric + " over time",
				Description: fmt.Sprintf("Average %s per time bucket.", metric),
				Kind:        ChartKindLine,
				Data:        rows,
				XKey:        "bucket",
				Series:      []ChartSeries{{Key: "mean", Label: "Mean " + metric}},
			})
		}
	}

	return specs
}

// targetDistributionFallback builds distribution rows from the target
// column's value counts when the backend sent no aggregates.
func targetDistributionFallback(summary *models.DatasetSummary, target string) []models.TargetDistributionRow {
	if target == "" {
		return nil
	}
	col, ok := summary.Column(target)
	if !ok || len(col.ValueCounts) == 0 {
		return nil
	}

	total := summary.RowCount
	if total <= 0 {
		for _, vc := range col.ValueCounts {
			total += vc.Count
		}
	}
	if total <= 0 {
		return nil
	}

	rows := make([]models.TargetDistributionRow, 0, len(col.ValueCounts))
	for _, vc := range col.ValueCounts {
		rows = append(rows, models.TargetDistributionRow{
			Target: vc.Value,
			Count:  vc.Count,
			Pct:    float64(vc.Count) / float64(total) * 100,
		})
	}
	return rows
}

// metricOrder lists the configured metrics present in rows first, then the
// remaining keys sorted by name.
func metricOrder[R any](configured []string, rows *orderedmap.OrderedMap[string, []R]) []string {
	order := make([]string, 0, rows.Len())
	for _, m := range configured {
		if _, ok := rows.Get(m); ok && !slices.Contains(order, m) {
			order = append(order, m)
		}
	}
	rest := make([]string, 0)
	for pair := rows.Oldest(); pair != nil; pair = pair.Next() {
		if !slices.Contains(order, pair.Key) {
			rest = append(rest, pair.Key)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}
