package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

const churnSummary = `{
	"row_count": 100,
	"column_count": 4,
	"columns": {
		"id": {"type": "numeric"},
		"signup_date": {"type": "datetime"},
		"churned": {"type": "categorical", "value_counts": [{"value": "Yes", "count": 30}, {"value": "No", "count": 70}]},
		"monthly_spend": {"type": "numeric", "histogram": [{"bin": "0-10", "count": 40}]}
	}
}`

func writeSummary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, os.WriteFile(path, []byte(churnSummary), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestColumnsCmd(t *testing.T) {
	out, err := run(t, "", "columns", "--summary", writeSummary(t))
	require.NoError(t, err)

	var got columnsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(100), got.RowCount)
	assert.Equal(t, []string{"id", "signup_date", "churned", "monthly_spend"}, models.Names(got.Columns))
	assert.Equal(t, models.LogicalTypeBoolean, got.Columns[2].LogicalType)
}

func TestColumnsCmd_Stdin(t *testing.T) {
	out, err := run(t, churnSummary, "columns", "-s", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"monthly_spend"`)
}

func TestCandidatesCmd(t *testing.T) {
	path := writeSummary(t)

	tests := []struct {
		name        string
		args        []string
		wantMetrics []string
		wantOthers  []string
	}{
		{
			name:        "derived types",
			args:        nil,
			wantMetrics: []string{"monthly_spend"},
			wantOthers:  []string{},
		},
		{
			name:        "override removes metric",
			args:        []string{"--override", "monthly_spend=text", "--metric", "monthly_spend"},
			wantMetrics: []string{},
			wantOthers:  []string{"monthly_spend"},
		},
		{
			name:        "override adds metric",
			args:        []string{"--override", "signup_date = numeric"},
			wantMetrics: []string{"signup_date", "monthly_spend"},
			wantOthers:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", append([]string{"candidates", "--summary", path}, tt.args...)...)
			require.NoError(t, err)

			var got services.AnalyzeResult
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, []string{"churned"}, models.Names(got.Candidates.TargetCandidates))
			assert.Equal(t, tt.wantMetrics, models.Names(got.Candidates.MetricCandidates))
			assert.Equal(t, tt.wantOthers, got.OtherMetrics)
		})
	}
}

func TestConfigCmd(t *testing.T) {
	out, err := run(t, "", "config", "--summary", writeSummary(t),
		"--target", "churned", "--metric", "monthly_spend,monthly_spend", "--time", "signup_date")
	require.NoError(t, err)

	var got models.SemanticConfig
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "churned", got.Target())
	assert.Equal(t, "signup_date", got.Time())
	assert.Equal(t, []string{"monthly_spend"}, got.MetricColumns)
	assert.Len(t, got.ColumnTypes, 4)
}

func TestConfigCmd_YAML(t *testing.T) {
	out, err := run(t, "", "config", "--summary", writeSummary(t), "--target", "churned", "-o", "yaml")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "target_column: churned\n"), out)
	assert.Contains(t, out, "metric_columns: []\n")
	assert.Contains(t, out, "time_column: null\n")

	var got struct {
		ColumnTypes map[string]string `yaml:"column_types"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "boolean", got.ColumnTypes["churned"])
}

func TestCommands_Errors(t *testing.T) {
	path := writeSummary(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
		is      error
	}{
		{"missing summary flag", []string{"columns"}, "summary", nil},
		{"missing file", []string{"columns", "--summary", filepath.Join(t.TempDir(), "nope.json")}, "failed to read summary", nil},
		{"bad override", []string{"candidates", "--summary", path, "--override", "plan"}, "expected column=type", nil},
		{"unknown override column", []string{"candidates", "--summary", path, "--override", "plan=text"}, "unknown column", apperrors.ErrInvalidSelection},
		{"unknown target", []string{"config", "--summary", path, "--target", "plan"}, "target_column", apperrors.ErrInvalidSelection},
		{"bad output", []string{"columns", "--summary", path, "-o", "xml"}, "unsupported --output", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestCommands_InvalidSummaryJSON(t *testing.T) {
	_, err := run(t, "{not json", "columns", "--summary", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse summary")
}
