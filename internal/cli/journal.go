package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/semmeta/internal/ir"
	"github.com/roach88/semmeta/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Item   string
	Since  int64
	Replay bool
	Until  int64
	Run    string
}

// JournalResult is the output of the journal command. Changes is set in
// listing mode; Records and Digest in replay mode.
type JournalResult struct {
	Path    string                `json:"path"`
	LastSeq int64                 `json:"last_seq"`
	Counts  map[ir.ChangeKind]int `json:"counts"`
	Runs    []store.RunInfo       `json:"runs"`
	Changes []ir.Change           `json:"changes,omitempty"`
	Records []ir.Metadata         `json:"records,omitempty"`
	Digest  string                `json:"digest,omitempty"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal [db]",
		Short: "Inspect a change journal",
		Long: `List the changes recorded in a SQLite change journal, or replay them
into the record set they produce.

Every derive run writes under its own run id. Replay folds one run: the run
that wrote the last change at or before --until, or the run named by --run.

The database defaults to the "journal" config value.

Examples:
  semmeta journal semmeta.db
  semmeta journal semmeta.db --item Door1
  semmeta journal semmeta.db --since 10
  semmeta journal semmeta.db --replay --until 42
  semmeta journal semmeta.db --replay --run 0192f3c4-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.Journal
			if len(args) == 1 {
				path = args[0]
			}
			return runJournal(cmd.Context(), opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Item, "item", "", "only list changes for this item")
	cmd.Flags().Int64Var(&opts.Since, "since", 0, "only list changes after this seq")
	cmd.Flags().BoolVar(&opts.Replay, "replay", false, "fold the journal into its final record set")
	cmd.Flags().Int64Var(&opts.Until, "until", 0, "with --replay, stop at this seq (0 = all)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "with --replay, fold this run instead of the latest")

	return cmd
}

func runJournal(ctx context.Context, opts *JournalOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if path == "" {
		msg := "no journal database given"
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if opts.Item != "" && opts.Since > 0 {
		msg := "--item and --since cannot be combined"
		_ = formatter.Error(ErrCodeGeneric, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if opts.Run != "" && !opts.Replay {
		msg := "--run requires --replay"
		_ = formatter.Error(ErrCodeGeneric, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "journal not found", err)
		}
	}

	st, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	result, err := readJournal(ctx, st, opts)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	result.Path = path

	if opts.Format == "json" {
		return formatter.JSON(result)
	}

	w := formatter.Writer
	if opts.Replay {
		writeRecords(w, result.Records)
		fmt.Fprintln(w, dimColor.Sprintf("digest %s", result.Digest))
	} else if len(result.Changes) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("No changes."))
	} else {
		for _, c := range result.Changes {
			writeChange(w, c)
		}
	}
	fmt.Fprintf(w, "\nlast seq %d: %d added, %d updated, %d removed\n",
		result.LastSeq,
		result.Counts[ir.ChangeAdded],
		result.Counts[ir.ChangeUpdated],
		result.Counts[ir.ChangeRemoved])
	for _, r := range result.Runs {
		fmt.Fprintf(w, "  run %s (%s): seq %d-%d, %d change(s)\n", r.Run, r.Source, r.FirstSeq, r.LastSeq, r.Changes)
	}
	return nil
}

func readJournal(ctx context.Context, st *store.Store, opts *JournalOptions) (*JournalResult, error) {
	result := &JournalResult{}

	var err error
	if result.LastSeq, err = st.LastSeq(ctx); err != nil {
		return nil, err
	}
	if result.Counts, err = st.CountChanges(ctx); err != nil {
		return nil, err
	}
	if result.Runs, err = st.Runs(ctx); err != nil {
		return nil, err
	}

	switch {
	case opts.Replay && opts.Run != "":
		if !slices.ContainsFunc(result.Runs, func(r store.RunInfo) bool { return r.Run == opts.Run }) {
			return nil, fmt.Errorf("no run %q in journal", opts.Run)
		}
		if result.Records, err = st.ReplayRun(ctx, opts.Run, opts.Until); err != nil {
			return nil, err
		}
	case opts.Replay:
		if result.Records, err = st.ReplayUntil(ctx, opts.Until); err != nil {
			return nil, err
		}
	case opts.Item != "":
		if result.Changes, err = st.ReadItemChanges(ctx, opts.Item); err != nil {
			return nil, err
		}
	default:
		if result.Changes, err = st.ReadChangesSince(ctx, opts.Since); err != nil {
			return nil, err
		}
	}

	if opts.Replay {
		if result.Digest, err = ir.RecordSetHash(result.Records); err != nil {
			return nil, err
		}
	}
	return result, nil
}
