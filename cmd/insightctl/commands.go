package main

import (
	"github.com/spf13/cobra"

	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

type columnsOutput struct {
	RowCount int64               `json:"row_count"`
	Columns  []models.ColumnMeta `json:"columns"`
}

func newColumnsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Print the derived semantics of every column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := opts.readSummary(cmd)
			if err != nil {
				return err
			}
			analysis, err := opts.service(cmd).Analyze(summary, nil, nil)
			if err != nil {
				return err
			}
			return opts.write(cmd, columnsOutput{RowCount: summary.RowCount, Columns: analysis.Columns})
		},
	}
}

func newCandidatesCmd(opts *options) *cobra.Command {
	var metrics []string

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Print the target, metric and time candidates",
		Long: `Print the columns eligible for each semantic role under the given overrides.
Metrics passed with --metric that are no longer candidates are listed
under other_metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := opts.readSummary(cmd)
			if err != nil {
				return err
			}
			overrides, err := opts.typeOverrides()
			if err != nil {
				return err
			}
			analysis, err := opts.service(cmd).Analyze(summary, overrides, metrics)
			if err != nil {
				return err
			}
			return opts.write(cmd, analysis)
		},
	}
	cmd.Flags().StringSliceVar(&metrics, "metric", nil, "selected metric column (repeatable)")
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	var (
		target  string
		metrics []string
		timeCol string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the semantic config a selection would save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := opts.readSummary(cmd)
			if err != nil {
				return err
			}
			overrides, err := opts.typeOverrides()
			if err != nil {
				return err
			}
			req := services.SaveConfigRequest{
				MetricColumns: metrics,
				ColumnTypes:   overrides,
			}
			if target != "" {
				req.TargetColumn = &target
			}
			if timeCol != "" {
				req.TimeColumn = &timeCol
			}
			cfg, err := opts.service(cmd).PreviewConfig(summary, req)
			if err != nil {
				return err
			}
			return opts.write(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "target column")
	cmd.Flags().StringSliceVar(&metrics, "metric", nil, "metric column (repeatable)")
	cmd.Flags().StringVar(&timeCol, "time", "", "time column")
	return cmd
}
