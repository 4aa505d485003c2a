package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	registry "github.com/zjrosen/sbin/internal/domain/registry"
	"github.com/zjrosen/sbin/internal/log"
	"github.com/zjrosen/sbin/internal/pubsub"
	appreg "github.com/zjrosen/sbin/internal/registry/application"
	"github.com/zjrosen/sbin/internal/ui/picker"
	"github.com/zjrosen/sbin/internal/watcher"
)

var pickQuery string

var pickCmd = &cobra.Command{
	Use:   "pick [args...]",
	Short: "Choose a command interactively and run it",
	Long: `Open a fuzzy finder over the registered commands. Type to filter, use the
arrow keys to move, enter to run the highlighted command with args, and esc
to leave without running anything.

The list reloads when the user catalog changes while the picker is open.`,
	Args: cobra.ArbitraryArgs,
	RunE: runPick,
}

func init() {
	pickCmd.Flags().StringVarP(&pickQuery, "query", "q", "", "Initial filter text")
	pickCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	svc, err := loadRegistry("")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	reloads := pubsub.NewBroker[[]*registry.Entry]()
	defer reloads.Close()
	opts := []picker.Option{
		picker.WithQuery(pickQuery),
		picker.WithListener(pubsub.NewListener[[]*registry.Entry](ctx, reloads)),
	}
	if stop := watchCatalog(ctx, reloads); stop != nil {
		defer stop()
	}

	// The picker draws on stderr so stdout only carries the pipeline's output.
	// Input falls back to the tty when stdin is piped, leaving the pipe for
	// the chosen pipeline.
	p := tea.NewProgram(
		picker.New(svc.List(), opts...),
		tea.WithContext(ctx),
		tea.WithOutput(cmd.ErrOrStderr()),
	)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running picker: %w", err)
	}

	entry, ok := final.(picker.Model).Chosen()
	if !ok {
		return nil
	}

	d, shutdown, err := newDispatcher(cmd)
	if err != nil {
		return err
	}
	defer shutdown()
	_, err = d.Run(cmd.Context(), entry, args)
	return err
}

// watchCatalog republishes the registry on reloads whenever the user catalog
// changes. It returns nil when there is nothing to watch.
func watchCatalog(ctx context.Context, reloads *pubsub.Broker[[]*registry.Entry]) func() {
	path := appreg.ConfiguredUserCatalog(cfg.Catalog).Path
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Catalog watcher unavailable", err, "path", path)
		return nil
	}
	events, err := w.Start(ctx)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Catalog watcher unavailable", err, "path", path)
		_ = w.Stop()
		return nil
	}

	go func() {
		for range events {
			svc, err := loadRegistry("")
			if err != nil {
				log.ErrorErr(log.CatRegistry, "Catalog reload failed", err, "path", path)
				continue
			}
			reloads.Publish(pubsub.UpdatedEvent, svc.List())
		}
	}()
	return func() { _ = w.Stop() }
}
