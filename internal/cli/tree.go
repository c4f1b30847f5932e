package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/procwick/internal/config"
	"github.com/Paintersrp/procwick/internal/proctree"
)

func newTreeCmd() *cobra.Command {
	var byDepth bool
	cmd := &cobra.Command{
		Use:   "tree <pid>",
		Short: "Print the order in which a process tree would be terminated",
		Long:  "Walks the live process tree under pid and prints the kill order without sending any signal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := strconv.Atoi(args[0])
			if err != nil || pid <= 0 {
				return fmt.Errorf("%w: %q", config.ErrInvalidTarget, args[0])
			}

			tree, err := proctree.Build(cmd.Context(), newPlatform(), pid)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			order := tree.KillOrder()
			if byDepth {
				order = tree.DepthOrder()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tPID\tPPID\tDEPTH")
			for idx, member := range order {
				ppid := "-"
				if node, ok := tree.Node(member); ok && member != tree.Root {
					ppid = strconv.Itoa(node.PPID)
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", idx+1, member, ppid, tree.Depth(member))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&byDepth, "by-depth", false, "order by depth instead of post-order")
	return cmd
}
