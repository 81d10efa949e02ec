package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/settle/internal/logging"
	"github.com/aretw0/settle/pkg/observability"
	"github.com/aretw0/settle/pkg/runner"
	"github.com/aretw0/settle/pkg/scenario"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run a scenario and report every update",
	Long: `Loads a YAML or JSON scenario, applies its steps in order and prints a report.
The command fails when any step or listener failed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions{}
		opts.json, _ = cmd.Flags().GetBool("json")
		opts.metrics, _ = cmd.Flags().GetBool("metrics")
		opts.noState, _ = cmd.Flags().GetBool("no-state")
		opts.stopOnError, _ = cmd.Flags().GetBool("stop-on-error")
		opts.logLevel, _ = cmd.Flags().GetString("log-level")
		return runScenario(args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Report as JSON lines (logs become JSON too)")
	runCmd.Flags().Bool("metrics", false, "Print collected metrics to stderr after the run")
	runCmd.Flags().Bool("no-state", false, "Do not print the final state")
	runCmd.Flags().Bool("stop-on-error", false, "Stop at the first step whose update failed")
}

type runOptions struct {
	json        bool
	metrics     bool
	noState     bool
	stopOnError bool
	logLevel    string
}

func runScenario(path string, opts runOptions, stdout, stderr io.Writer) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := logging.NewWithWriter(stderr, level, opts.json)

	doc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	var handler runner.Handler
	if opts.json {
		handler = runner.NewJSONHandler(stdout)
	} else {
		handler = runner.NewTextHandler(stdout, runner.WithShowState(!opts.noState))
	}

	runOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithStopOnError(opts.stopOnError),
	}

	reg := prometheus.NewRegistry()
	if opts.metrics {
		m, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}
		runOpts = append(runOpts, runner.WithHooks(m.Hooks()))
	}

	sum, err := runner.Run(doc, handler, runOpts...)
	if err != nil {
		return err
	}

	if opts.metrics {
		if err := printMetrics(stderr, reg); err != nil {
			return err
		}
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d steps failed", sum.Failed, sum.Steps)
	}
	return nil
}

// printMetrics writes one line per series: counters with their value,
// histograms with their sample count and sum.
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName() + labelString(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	s := "{"
	for i, l := range labels {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return s + "}"
}
