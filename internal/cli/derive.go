package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/semmeta/internal/engine"
	"github.com/roach88/semmeta/internal/ir"
	"github.com/roach88/semmeta/internal/itemgraph"
	"github.com/roach88/semmeta/internal/metrics"
	"github.com/roach88/semmeta/internal/store"
)

// DeriveOptions holds flags for the derive command.
type DeriveOptions struct {
	*RootOptions
	Changes bool   // print every emitted change
	Metrics bool   // print metric samples
	Source  string // engine source id (default: random UUIDv7)
}

// DeriveResult is the output of a derive run.
type DeriveResult struct {
	Graph      string           `json:"graph"`
	Source     string           `json:"source"`
	Items      int              `json:"items"`
	Records    []ir.Metadata    `json:"records"`
	Digest     string           `json:"digest"`
	Changes    []ir.Change      `json:"changes,omitempty"`
	Cycles     int              `json:"cycles"`
	Metrics    []metrics.Sample `json:"metrics,omitempty"`
	JournalRun string           `json:"journal_run,omitempty"`
	JournalSeq int64            `json:"journal_seq,omitempty"`
}

// NewDeriveCommand creates the derive command.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeriveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "derive <graph.yaml>",
		Short: "Derive semantic metadata for an item graph",
		Long: `Load an item graph and feed every item through the engine event loop.

Prints the resulting semantic records and a digest of the whole set. With
--journal, every emitted change is appended to a SQLite journal under a new
run id; "semmeta journal --replay" folds the run back into the same records.

Examples:
  semmeta derive house.yaml
  semmeta derive house.yaml --changes
  semmeta derive house.yaml --journal semmeta.db --source house
  semmeta derive house.yaml --format json --metrics`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Changes, "changes", false, "print every emitted change")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print change and cycle metrics")
	cmd.Flags().StringVar(&opts.Source, "source", "", "source id stamped on changes (default random UUIDv7)")
	cmd.Flags().StringVar(&rootOpts.Journal, "journal", "", "append changes to this SQLite journal")

	return cmd
}

func runDerive(ctx context.Context, opts *DeriveOptions, graphPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()

	graph, err := itemgraph.LoadFile(graphPath)
	if err != nil {
		_ = formatter.Error(ErrCodeGraphFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load item graph", err)
	}

	registry, err := loadRegistry(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBuildFailed, err.Error(), nil)
		return err
	}

	recorder := engine.NewRecorder(nil)
	result := DeriveResult{Graph: graphPath, Items: graph.Len()}

	var (
		reg *prometheus.Registry
		m   *metrics.Metrics
	)
	if opts.Metrics {
		reg = prometheus.NewRegistry()
		if m, err = metrics.New(reg); err != nil {
			return WrapExitError(ExitCommandError, "failed to register metrics", err)
		}
	}

	engineOpts := []engine.EngineOption{
		engine.WithLogger(logger),
		engine.WithListener(recorder),
		engine.WithCycleHook(func(rerr *engine.RuntimeError) {
			result.Cycles++
			if m != nil {
				m.CycleHook(rerr)
			}
		}),
	}
	if opts.Source != "" {
		engineOpts = append(engineOpts, engine.WithSource(opts.Source))
	}
	if m != nil {
		engineOpts = append(engineOpts, engine.WithListener(m))
	}

	var journal *store.Journal
	if opts.Journal != "" {
		st, err := store.Open(opts.Journal)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer st.Close()

		journal, err = store.NewJournal(ctx, st, store.WithJournalLogger(logger))
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		engineOpts = append(engineOpts, engine.WithListener(journal))
	}

	eng := engine.New(graph, registry, engineOpts...)
	result.Source = eng.Source()

	for _, item := range graph.All() {
		eng.Enqueue(engine.AddedEvent(item))
	}
	eng.Stop()
	if err := eng.Run(ctx); err != nil {
		return WrapExitError(ExitCommandError, "engine stopped", err)
	}

	if journal != nil {
		if err := journal.Err(); err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "journal write failed", err)
		}
		result.JournalRun = journal.Run()
		result.JournalSeq = journal.Seq()
	}

	result.Records = eng.GetAll()
	if result.Digest, err = ir.RecordSetHash(result.Records); err != nil {
		return WrapExitError(ExitCommandError, "failed to digest records", err)
	}
	if opts.Changes {
		result.Changes = recorder.Changes()
	}
	if reg != nil {
		if result.Metrics, err = metrics.Snapshot(reg); err != nil {
			return WrapExitError(ExitCommandError, "failed to gather metrics", err)
		}
	}

	if opts.Format == "json" {
		return formatter.JSON(result)
	}
	return outputDeriveText(formatter, result)
}

func outputDeriveText(formatter *OutputFormatter, result DeriveResult) error {
	w := formatter.Writer

	if len(result.Changes) > 0 {
		fmt.Fprintln(w, headerColor.Sprint("Changes"))
		for _, c := range result.Changes {
			writeChange(w, c)
		}
		fmt.Fprintln(w)
	}

	writeRecords(w, result.Records)

	if len(result.Metrics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerColor.Sprint("Metrics"))
		for _, s := range result.Metrics {
			fmt.Fprintf(w, "  %s%s %g\n", s.Name, formatLabels(s.Labels), s.Value)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d record(s) from %d item(s)", okMark(), len(result.Records), result.Items)
	if result.Cycles > 0 {
		fmt.Fprintf(w, ", %s", failColor.Sprintf("%d cycle(s)", result.Cycles))
	}
	if result.JournalSeq > 0 {
		fmt.Fprintf(w, ", journal run %s at seq %d", result.JournalRun, result.JournalSeq)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimColor.Sprintf("digest %s", result.Digest))
	return nil
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	return "{" + formatConfiguration(labels) + "}"
}
