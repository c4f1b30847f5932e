package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/procwick/internal/config"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with watchdog configuration files",
	}
	cmd.AddCommand(newConfigLintCmd(opts))
	return cmd
}

func newConfigLintCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Validate a watchdog configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no config file given; pass a path or --config")
			}

			cfg, err := config.Load(path)
			if err == nil {
				cfg.ApplyDefaults()
				err = cfg.Validate()
				if err != nil {
					err = fmt.Errorf("%s: %w", path, err)
				}
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", path)
			return nil
		},
	}
	return cmd
}
