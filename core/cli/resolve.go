package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ResolveOptions holds the parsed flags for "pontis resolve".
type ResolveOptions struct {
	Manifest string
	Repo     string
}

// ResolveRunFunc is the handler signature for the resolve command.
type ResolveRunFunc func(ctx context.Context, opts ResolveOptions) error

// NewResolveCmd creates the "resolve" subcommand.
func NewResolveCmd(runFunc ResolveRunFunc) *cobra.Command {
	var opts ResolveOptions

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Detect dependency version conflicts",
		Long:  "Run range intersection over a dependency manifest and emit the resolution proposal as JSON.",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Manifest == "" && opts.Repo == "" {
				return fmt.Errorf("one of --manifest or --repo is required")
			}
			if opts.Repo != "" {
				return requireDir(opts.Repo, "--repo")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "Path to a dependency manifest")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Path to a repository containing pontis.yaml or go.mod")

	return cmd
}
