package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// PlanOptions holds the parsed flags for "pontis plan".
type PlanOptions struct {
	Package       string
	From          string
	To            string
	Repo          string
	OldDir        string
	NewDir        string
	Corpus        string
	CorpusTimeout time.Duration
	Catalog       string
	Hints         string
	Weights       string
}

// PlanRunFunc is the handler signature for the plan command.
type PlanRunFunc func(ctx context.Context, opts PlanOptions) error

// NewPlanCmd creates the "plan" subcommand.
func NewPlanCmd(runFunc PlanRunFunc) *cobra.Command {
	var opts PlanOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Produce a phased migration plan for a package upgrade",
		Long:  "Diff two package versions, classify the changes, resolve dependency conflicts, generate codemods, and emit the phased migration plan as JSON.",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validatePlanFlags(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Package, "package", "", "Package name to upgrade (required)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Target version (required)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Current version (default: read from the repo manifest)")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Path to the consumer repository (required)")
	cmd.Flags().StringVar(&opts.OldDir, "old", "", "Local declaration set for the current version (skips registry fetch)")
	cmd.Flags().StringVar(&opts.NewDir, "new", "", "Local declaration set for the target version (skips registry fetch)")
	cmd.Flags().StringVar(&opts.Corpus, "corpus", "", "Consumer corpus directory for prevalence scoring")
	cmd.Flags().DurationVar(&opts.CorpusTimeout, "corpus-timeout", 30*time.Second, "Corpus scan budget; on expiry prevalence degrades to the default weight")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "Path to the rewrite-rule catalog")
	cmd.Flags().StringVar(&opts.Hints, "hints", "", "Path to a rename hints file")
	cmd.Flags().StringVar(&opts.Weights, "weights", "", "Path to a scoring weights file")

	cmd.MarkFlagRequired("package")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("repo")

	return cmd
}

func validatePlanFlags(opts PlanOptions) error {
	if err := requireDir(opts.Repo, "--repo"); err != nil {
		return err
	}
	// Local surfaces come in pairs; mixing one local dir with one registry
	// fetch invites version mismatches.
	if (opts.OldDir == "") != (opts.NewDir == "") {
		return fmt.Errorf("--old and --new must be given together")
	}
	if opts.OldDir != "" {
		if err := requireDir(opts.OldDir, "--old"); err != nil {
			return err
		}
		if err := requireDir(opts.NewDir, "--new"); err != nil {
			return err
		}
	}
	if opts.Corpus != "" {
		return requireDir(opts.Corpus, "--corpus")
	}
	return nil
}
