package cmd

import (
	"github.com/spf13/cobra"

	registry "github.com/zjrosen/sbin/internal/domain/registry"
	"github.com/zjrosen/sbin/internal/presentation"
)

var regListAll bool

var registryListCmd = &cobra.Command{
	Use:   "registry:list",
	Short: "List all registered commands as JSON",
	Long: `List all registered commands as JSON, in catalog order.

Each record carries the command name, description, command line, parsed
pipeline stages, tags and the catalog it came from. Use --tag to select a
deployment subset (repeatable) or --all to ignore tag selection.

Examples:
  # List all registered commands
  sbin registry:list

  # Only untagged commands and commands tagged linux
  sbin registry:list --tag linux

  # Parse specific fields with jq
  sbin registry:list | jq '.[].name'
  sbin registry:list | jq '.[] | select(.stages | length > 1)'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadRegistry("")
		if err != nil {
			return err
		}

		var entries []*registry.Entry
		if regListAll {
			entries = svc.All().List()
		} else {
			entries = svc.List()
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		return formatter.FormatEntries(presentation.FromEntries(entries))
	},
}

func init() {
	registryListCmd.Flags().BoolVar(&regListAll, "all", false, "Include commands excluded by tag selection")
	rootCmd.AddCommand(registryListCmd)
}
