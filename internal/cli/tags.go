package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/semmeta/internal/ir"
	"github.com/roach88/semmeta/internal/tags"
)

// TagsOptions holds flags for the tags command.
type TagsOptions struct {
	*RootOptions
	Category string
}

// NewTagsCommand creates the tags command.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TagsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the semantic tag taxonomy",
		Long: `List every registered semantic tag with its UID, label and synonyms.

The embedded default taxonomy is always loaded; --taxonomy adds the tags
declared in a directory of CUE files.

Examples:
  semmeta tags
  semmeta tags --category Point
  semmeta tags --taxonomy ./taxonomy --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTags(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "only list tags of this category (Location|Equipment|Point|Property)")

	return cmd
}

func runTags(opts *TagsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Category != "" && !ir.IsCategory(opts.Category) {
		msg := fmt.Sprintf("unknown category %q: must be one of %v", opts.Category, ir.Categories)
		_ = formatter.Error(ErrCodeGeneric, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	registry, err := loadRegistry(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeBuildFailed, err.Error(), nil)
		return err
	}

	selected := []tags.Tag{}
	for _, t := range registry.All() {
		if opts.Category == "" || t.Category == ir.Category(opts.Category) {
			selected = append(selected, t)
		}
	}

	if opts.Format == "json" {
		return formatter.JSON(selected)
	}

	writeTags(formatter.Writer, selected)
	fmt.Fprintf(formatter.Writer, "\n%d tag(s)\n", len(selected))
	return nil
}
