package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zjrosen/sbin/internal/presentation"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "List registered commands, or describe one",
	Long: `Without arguments, list every registered command with its description, one
per line, in catalog order. With a command name, show its pipeline.

Examples:
  sbin help
  sbin help who
  sbin help registry:list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHelp,
}

var defaultHelpFunc func(*cobra.Command, []string)

func init() {
	defaultHelpFunc = rootCmd.HelpFunc()
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.SetHelpFunc(helpFunc)
}

// runHelp lists entries or shows one entry. Built-in command names show
// their cobra help.
func runHelp(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		root := cmd.Root()
		if sub, _, err := root.Find(args); err == nil && sub != root {
			return sub.Help()
		}
	}

	svc, err := loadRegistry("")
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return presentation.RenderHelp(out, svc.List(), terminalWidth(out))
	}

	entry, err := svc.Lookup(args[0])
	if err != nil {
		return err
	}
	return presentation.RenderEntry(out, entry)
}

// helpFunc renders --help for the root command as usage, registered
// commands, built-in commands and flags. Subcommands keep cobra's help.
func helpFunc(cmd *cobra.Command, args []string) {
	if cmd != rootCmd {
		defaultHelpFunc(cmd, args)
		return
	}
	out := cmd.OutOrStdout()

	// --help returns before cobra runs the initializers.
	initConfig()

	fmt.Fprintf(out, "%s\n\nUsage:\n  %s\n\n", strings.TrimSpace(cmd.Long), cmd.UseLine())

	// A broken catalog is reported inline.
	if svc, err := loadRegistry(""); err != nil {
		fmt.Fprintf(out, "Commands:\n  (unavailable: %v)\n\n", err)
	} else {
		fmt.Fprintln(out, "Commands:")
		var b strings.Builder
		_ = presentation.RenderHelp(&b, svc.List(), max(terminalWidth(out)-2, 0))
		for _, line := range strings.SplitAfter(b.String(), "\n") {
			if line != "" {
				fmt.Fprint(out, "  "+line)
			}
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Built-in commands:")
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() || sub == helpCmd {
			fmt.Fprintf(out, "  %-15s %s\n", sub.Name(), sub.Short)
		}
	}
	fmt.Fprintf(out, "\nFlags:\n%s", cmd.LocalFlags().FlagUsages())
}

// terminalWidth returns the width of w when it is a terminal, otherwise 0
// so that output is never wrapped for pipes and files.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
