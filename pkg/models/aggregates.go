package models

import orderedmap "github.com/wk8/go-ordered-map/v2"

// SemanticAggregates are the chart-ready aggregates the analysis backend
// computes once a semantic config is saved. The engine only shapes them.
type SemanticAggregates struct {
	TargetDistribution []TargetDistributionRow `json:"target_distribution,omitempty"`

	// Keyed by metric column name, in backend order.
	MetricsByTarget *orderedmap.OrderedMap[string, []MetricByTargetRow] `json:"metrics_by_target,omitempty"`
	MetricsOverTime *orderedmap.OrderedMap[string, []MetricOverTimeRow] `json:"metrics_over_time,omitempty"`
}

// TargetDistributionRow is the share of rows holding one target value.
type TargetDistributionRow struct {
	Target string  `json:"target"`
	Count  int64   `json:"count"`
	Pct    float64 `json:"pct"`
}

// MetricByTargetRow summarises one metric for one target value.
type MetricByTargetRow struct {
	Target string   `json:"target"`
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Count  int64    `json:"count"`
}

// MetricOverTimeRow summarises one metric for one time bucket.
type MetricOverTimeRow struct {
	Bucket string   `json:"bucket"`
	Mean   *float64 `json:"mean"`
	Count  int64    `json:"count"`
}
