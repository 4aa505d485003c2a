package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sbin/internal/log"
	"github.com/zjrosen/sbin/internal/presentation"
	"github.com/zjrosen/sbin/internal/pubsub"
	appreg "github.com/zjrosen/sbin/internal/registry/application"
	"github.com/zjrosen/sbin/internal/resolver"
	"github.com/zjrosen/sbin/internal/watcher"
)

var (
	regCheckWatch bool
	regCheckJSON  bool
)

// errCheckFailed is returned when some stage program cannot be resolved.
var errCheckFailed = errors.New("registry check failed")

var registryCheckCmd = &cobra.Command{
	Use:   "registry:check [catalog]",
	Short: "Validate catalogs and the programs they reference",
	Long: `Load the built-in catalog and the user catalog, then check that the program
of every pipeline stage can be found: relative paths such as ebin/who against
the work dir, bare names on PATH.

A catalog argument replaces the configured user catalog. With --watch the
check re-runs whenever the user catalog changes, until interrupted.

Examples:
  sbin registry:check
  sbin registry:check ./commands.yaml
  sbin registry:check --watch
  sbin registry:check --json | jq '.[].program'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegistryCheck,
}

func init() {
	registryCheckCmd.Flags().BoolVarP(&regCheckWatch, "watch", "w", false, "Re-run the check when the catalog file changes")
	registryCheckCmd.Flags().BoolVar(&regCheckJSON, "json", false, "Print problems as JSON")
	rootCmd.AddCommand(registryCheckCmd)
}

func runRegistryCheck(cmd *cobra.Command, args []string) error {
	var catalogPath string
	if len(args) == 1 {
		catalogPath = args[0]
	}

	res, _, err := newResolver()
	if err != nil {
		return err
	}
	if !regCheckWatch {
		return checkRegistry(cmd.Context(), cmd.OutOrStdout(), catalogPath, res)
	}
	return watchRegistry(cmd, catalogPath, res)
}

// checkRegistry loads the catalogs and reports unresolvable stage programs.
func checkRegistry(ctx context.Context, out io.Writer, catalogPath string, res *resolver.Resolver) error {
	svc, err := loadRegistry(catalogPath)
	if err != nil {
		return err
	}
	problems, err := appreg.CheckPrograms(ctx, svc, res)
	if err != nil {
		return err
	}

	switch {
	case regCheckJSON:
		dtos := make([]presentation.ProblemDTO, len(problems))
		for i, p := range problems {
			dtos[i] = presentation.ProblemDTO{Entry: p.Entry, Stage: p.Stage, Program: p.Program, Error: p.Err.Error()}
		}
		if err := presentation.NewFormatter(out).FormatProblems(dtos); err != nil {
			return err
		}
	case len(problems) == 0:
		fmt.Fprintf(out, "ok: %d commands from %s\n", len(svc.Names()), strings.Join(svc.Sources(), ", "))
	default:
		for _, p := range problems {
			fmt.Fprintln(out, p.String())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %d unresolvable program(s)", errCheckFailed, len(problems))
	}
	return nil
}

func watchRegistry(cmd *cobra.Command, catalogPath string, res *resolver.Resolver) error {
	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	target := appreg.ConfiguredUserCatalog(cfg.Catalog).Path
	if catalogPath != "" {
		target = appreg.ConfiguredUserCatalog(catalogPath).Path
	}
	if target == "" {
		return errors.New("no catalog file to watch")
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.DefaultConfig(target))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()
	events, err := w.Start(ctx)
	if err != nil {
		return err
	}

	report := func() {
		if err := checkRegistry(ctx, out, catalogPath, res); err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}
	report()
	fmt.Fprintf(errOut, "watching %s\n", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			log.Debug(log.CatWatcher, "Catalog changed", "path", ev.Payload, "event", ev.Type)
			if ev.Type == pubsub.DeletedEvent {
				fmt.Fprintf(errOut, "%s removed\n", ev.Payload)
			}
			res.Flush(ctx)
			report()
		}
	}
}
