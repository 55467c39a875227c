package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ApplyOptions holds the parsed flags for "pontis apply".
type ApplyOptions struct {
	Package string
	From    string
	To      string
	Repo    string
	OldDir  string
	NewDir  string
	Catalog string
	Hints   string
	DryRun  bool
}

// ApplyRunFunc is the handler signature for the apply command.
type ApplyRunFunc func(ctx context.Context, opts ApplyOptions) error

// NewApplyCmd creates the "apply" subcommand.
func NewApplyCmd(runFunc ApplyRunFunc) *cobra.Command {
	var opts ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply generated codemods to a repository",
		Long:  "Generate transformations for a package upgrade and rewrite the affected files. With --dry-run, unified diffs are emitted instead of edits.",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDir(opts.Repo, "--repo"); err != nil {
				return err
			}
			if (opts.OldDir == "") != (opts.NewDir == "") {
				return fmt.Errorf("--old and --new must be given together")
			}
			if opts.Catalog == "" {
				return fmt.Errorf("--catalog is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Package, "package", "", "Package name to upgrade (required)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Target version (required)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Current version (default: read from the repo manifest)")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Path to the consumer repository (required)")
	cmd.Flags().StringVar(&opts.OldDir, "old", "", "Local declaration set for the current version")
	cmd.Flags().StringVar(&opts.NewDir, "new", "", "Local declaration set for the target version")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "Path to the rewrite-rule catalog (required)")
	cmd.Flags().StringVar(&opts.Hints, "hints", "", "Path to a rename hints file")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show diffs without applying edits")

	cmd.MarkFlagRequired("package")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("repo")
	cmd.MarkFlagRequired("catalog")

	return cmd
}
