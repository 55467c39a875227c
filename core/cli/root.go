package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level pontis command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pontis",
		Short: "Cross-version API compatibility and migration planner",
		Long:  "Pontis compares two versions of a component library's public surface, classifies breaking changes, resolves dependency conflicts, and plans the migration.",
	}

	cmd.Version = version

	return cmd
}
