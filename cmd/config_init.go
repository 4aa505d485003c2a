package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sbin/internal/config"
	"github.com/zjrosen/sbin/internal/paths"
)

var configInitCmd = &cobra.Command{
	Use:   "config:init [path]",
	Short: "Print or write a starter config file",
	Long: `Print a commented starter configuration to stdout, or write it to path.
An existing file is never overwritten.

Examples:
  sbin config:init > .sbin/config.yaml
  sbin config:init ~/.config/sbin/config.yaml`,
	Args: cobra.MaximumNArgs(1),
	// Skips config validation so a broken config can be replaced.
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initLogging(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultConfigTemplate())
			return err
		}
		path := paths.ExpandHome(args[0])
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configInitCmd)
}
