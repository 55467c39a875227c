package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// DiffOptions holds the parsed flags for "pontis diff".
type DiffOptions struct {
	Package    string
	OldDir     string
	NewDir     string
	OldVersion string
	NewVersion string
	Hints      string
}

// DiffRunFunc is the handler signature for the diff command. It is injected
// by the wiring layer (cmd/pontis/main.go).
type DiffRunFunc func(ctx context.Context, opts DiffOptions) error

// NewDiffCmd creates the "diff" subcommand.
func NewDiffCmd(runFunc DiffRunFunc) *cobra.Command {
	var opts DiffOptions

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Diff two extracted API surfaces",
		Long:  "Diff two declaration sets and emit the structural change list as JSON.",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDir(opts.OldDir, "--old"); err != nil {
				return err
			}
			return requireDir(opts.NewDir, "--new")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Package, "package", "", "Package name (required)")
	cmd.Flags().StringVar(&opts.OldDir, "old", "", "Path to the old declaration set (required)")
	cmd.Flags().StringVar(&opts.NewDir, "new", "", "Path to the new declaration set (required)")
	cmd.Flags().StringVar(&opts.OldVersion, "old-version", "", "Version label for the old surface")
	cmd.Flags().StringVar(&opts.NewVersion, "new-version", "", "Version label for the new surface")
	cmd.Flags().StringVar(&opts.Hints, "hints", "", "Path to a rename hints file")

	cmd.MarkFlagRequired("package")
	cmd.MarkFlagRequired("old")
	cmd.MarkFlagRequired("new")

	return cmd
}

// requireDir validates that a flag points at an existing directory.
func requireDir(path, flag string) error {
	if path == "" {
		return fmt.Errorf("%s is required", flag)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s path does not exist: %s", flag, path)
		}
		return fmt.Errorf("cannot access %s path: %w", flag, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s path is not a directory: %s", flag, path)
	}
	return nil
}
