package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Taxonomy   string // directory of CUE files extending the default taxonomy
	Journal    string // default journal database

	// Logger is built in PersistentPreRunE from the config log level,
	// or debug with --verbose. Logs go to stderr.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the semmeta CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "semmeta",
		Short: "semmeta - semantic metadata for item graphs",
		Long: `Derive semantic metadata records for the items and groups of an item graph.

Each tagged item gets a <Category>_<Tag> record with relations such as
hasLocation, isPartOf and isPointOf, kept current as the graph changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfig(opts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./semmeta.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.Taxonomy, "taxonomy", "", "directory of CUE tag files extending the default taxonomy")

	// Add subcommands
	cmd.AddCommand(NewDeriveCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTagsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}

// applyConfig merges the config file into options not set by flags, then
// validates the format and builds the logger.
func applyConfig(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := LoadConfig(opts.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") && cfg.Format != "" {
		opts.Format = cfg.Format
	}
	if !flags.Changed("taxonomy") && cfg.Taxonomy != "" {
		opts.Taxonomy = cfg.Taxonomy
	}
	if opts.Journal == "" {
		opts.Journal = cfg.Journal
	}

	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	level, err := cfg.Level()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return nil
}

// logger returns the configured logger, or slog.Default before
// PersistentPreRunE has run (subcommands executed directly in tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
