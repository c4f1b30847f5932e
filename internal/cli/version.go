package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/procwick/internal/metrics"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := metrics.BuildInfo()
			revision := info["vcs_revision"]
			if revision == "" {
				revision = "unknown"
			}
			if info["vcs_modified"] == "true" {
				revision += "-dirty"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "procwick %s (%s)\n", revision, info["go_version"])
			return nil
		},
	}
}
