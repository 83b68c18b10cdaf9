package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/services"
)

// options are the flags shared by every subcommand.
type options struct {
	summaryPath string
	overrides   []string
	output      string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "insightctl",
		Short: "Inspect column semantics of a dataset summary",
		Long: `insightctl reads a dataset summary produced by the analysis backend and
prints derived column types, role candidates or the semantic config a
selection would save. Nothing is persisted.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.summaryPath, "summary", "s", "", "summary JSON file, or - for stdin")
	root.PersistentFlags().StringArrayVar(&opts.overrides, "override", nil, "logical type override as column=type (repeatable)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	_ = root.MarkPersistentFlagRequired("summary")

	root.AddCommand(
		newColumnsCmd(opts),
		newCandidatesCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func (o *options) logger(cmd *cobra.Command) *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to build logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// service returns a semantic service with no storage behind it. Only the
// stateless operations are used.
func (o *options) service(cmd *cobra.Command) services.SemanticService {
	return services.NewSemanticService(nil, nil, o.logger(cmd))
}

func (o *options) readSummary(cmd *cobra.Command) (*models.DatasetSummary, error) {
	var (
		data []byte
		err  error
	)
	if o.summaryPath == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(o.summaryPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	summary, err := models.ParseDatasetSummary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary %s: %w", o.summaryPath, err)
	}
	return summary, nil
}

func (o *options) typeOverrides() (models.TypeOverrides, error) {
	if len(o.overrides) == 0 {
		return nil, nil
	}
	overrides := make(models.TypeOverrides, len(o.overrides))
	for _, raw := range o.overrides {
		name, typ, ok := strings.Cut(raw, "=")
		name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("invalid --override %q: expected column=type", raw)
		}
		overrides[name] = models.LogicalType(typ)
	}
	return overrides, nil
}

func (o *options) write(cmd *cobra.Command, v any) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		return writeYAML(cmd.OutOrStdout(), v)
	default:
		return fmt.Errorf("unsupported --output %q: expected json or yaml", o.output)
	}
}

// writeYAML renders v with the field names and order of its JSON encoding.
func writeYAML(w io.Writer, v any) error {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(jsonBytes, &node); err != nil {
		return fmt.Errorf("failed to convert output to yaml: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// blockStyle clears the flow and quoting styles JSON input carries. Empty
// collections stay in flow style so they render as [] and {}.
func blockStyle(n *yaml.Node) {
	if len(n.Content) > 0 || n.Kind == yaml.ScalarNode {
		n.Style = 0
	}
	for _, child := range n.Content {
		blockStyle(child)
	}
}
