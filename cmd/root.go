package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/sbin/internal/catalog"
	"github.com/zjrosen/sbin/internal/config"
	"github.com/zjrosen/sbin/internal/dispatch"
	"github.com/zjrosen/sbin/internal/flags"
	"github.com/zjrosen/sbin/internal/log"
	"github.com/zjrosen/sbin/internal/paths"
	appreg "github.com/zjrosen/sbin/internal/registry/application"
	"github.com/zjrosen/sbin/internal/resolver"
	"github.com/zjrosen/sbin/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	configErr error
)

// reservedNames are built-in commands that catalog entries cannot shadow.
// Built-in commands containing ':' need no entry here because ':' is not
// allowed in catalog names.
var reservedNames = []string{"help", "pick", "completion"}

var rootCmd = &cobra.Command{
	Use:   "sbin <command> [args...]",
	Short: "Run registered command pipelines",
	Long: `sbin looks up a command by name and runs the shell pipeline registered for
it. Extra arguments are passed to the last program of the pipeline and sbin
exits with the pipeline's exit code.

Commands come from the built-in catalog and, when present, from
~/.config/sbin/commands.yaml (see the catalog config key).

Run 'sbin help' to list the registered commands.`,
	Version:           version,
	Args:              cobra.ArbitraryArgs,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runRoot,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.sbin/config.yaml or ~/.config/sbin/config.yaml)")
	pf.BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log and echo it to stderr (SBIN_DEBUG writes the log only)")
	pf.Bool("dry-run", false, "print pipelines instead of running them")
	pf.StringP("work-dir", "C", "", "directory pipelines run in and relative programs resolve against")
	pf.Duration("timeout", 0, "kill pipelines that run longer than this (exit code 124)")
	pf.StringArrayP("tag", "t", nil, "only register untagged commands and commands with this tag (repeatable)")

	bindFlags()

	// Everything after the command name belongs to the pipeline.
	rootCmd.Flags().SetInterspersed(false)
}

// bindFlags lets command line flags override their config keys.
func bindFlags() {
	pf := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("dry_run", pf.Lookup("dry-run"))
	_ = viper.BindPFlag("work_dir", pf.Lookup("work-dir"))
	_ = viper.BindPFlag("timeout", pf.Lookup("timeout"))
	_ = viper.BindPFlag("tags", pf.Lookup("tag"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("catalog", defaults.Catalog)
	viper.SetDefault("tags", defaults.Tags)
	viper.SetDefault("work_dir", defaults.WorkDir)
	viper.SetDefault("timeout", defaults.Timeout)
	viper.SetDefault("dry_run", defaults.DryRun)
	viper.SetDefault("resolver_cache_ttl", defaults.ResolverCacheTTL)
	viper.SetDefault("flags", defaults.Flags)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	viper.SetEnvPrefix("SBIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .sbin/config.yaml (current directory)
		// 2. ~/.config/sbin/config.yaml (user config)
		if _, err := os.Stat(paths.LocalConfigFile); err == nil {
			viper.SetConfigFile(paths.LocalConfigFile)
		} else {
			viper.AddConfigPath(paths.ConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file anywhere is fine; the defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
			return
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		configErr = fmt.Errorf("decoding config: %w", err)
	}
}

// setup enables debug logging and validates the loaded configuration
// before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	if err := initLogging(cmd); err != nil {
		return err
	}
	if configErr != nil {
		return configErr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log.Debug(log.CatConfig, "Config loaded", "file", viper.ConfigFileUsed(), "tags", cfg.Tags, "work_dir", cfg.WorkDir)
	return nil
}

var closeLog = func() {}

// initLogging starts the debug log for --debug or SBIN_DEBUG. The --debug
// flag also echoes the log to stderr, except under pick, which draws there.
func initLogging(cmd *cobra.Command) error {
	if !debugFlag && os.Getenv("SBIN_DEBUG") == "" {
		return nil
	}
	logPath := os.Getenv("SBIN_LOG")
	if logPath == "" {
		logPath = paths.DefaultDebugLog()
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	closeLog = cleanup
	if debugFlag && cmd.Name() != "pick" {
		wait := log.Mirror(cmd.ErrOrStderr())
		closeLog = func() {
			cleanup()
			wait()
		}
	}
	log.Info(log.CatConfig, "sbin starting", "version", version, "logPath", logPath)
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runHelp(cmd, nil)
	}

	svc, err := loadRegistry("")
	if err != nil {
		return err
	}
	entry, err := svc.Lookup(args[0])
	if err != nil {
		return err
	}

	d, shutdown, err := newDispatcher(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	_, err = d.Run(cmd.Context(), entry, args[1:])
	return err
}

// loadRegistry builds the registry from the built-in catalog and the user
// catalog. A non-empty userCatalog replaces the configured one.
func loadRegistry(userCatalog string) (*appreg.RegistryService, error) {
	if configErr != nil {
		return nil, configErr
	}
	user := appreg.ConfiguredUserCatalog(cfg.Catalog)
	if userCatalog != "" {
		user = appreg.ConfiguredUserCatalog(userCatalog)
	}
	return appreg.NewRegistryService(appreg.Options{
		BuiltinFS:   catalog.FS(),
		BuiltinPath: catalog.FileName,
		User:        user,
		Strict:      flags.New(cfg.Flags).Enabled(flags.FlagStrictRegistry),
		Tags:        cfg.Tags,
		Reserved:    reservedNames,
	})
}

// newResolver returns a program resolver for the configured work dir.
func newResolver() (*resolver.Resolver, string, error) {
	workDir, err := paths.ResolveWorkDir(cfg.WorkDir)
	if err != nil {
		return nil, "", err
	}
	return resolver.New(workDir, resolver.WithTTL(cfg.ResolverCacheTTL)), workDir, nil
}

// newDispatcher wires a dispatcher to cmd's streams and the configuration.
// The returned function flushes and stops tracing.
func newDispatcher(cmd *cobra.Command) (*dispatch.Dispatcher, func(), error) {
	res, workDir, err := newResolver()
	if err != nil {
		return nil, nil, err
	}

	tc := cfg.Tracing
	if tc.FilePath == "" {
		tc.FilePath = paths.DefaultTracesFile()
	} else {
		tc.FilePath = paths.ExpandHome(tc.FilePath)
	}
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}

	fl := flags.New(cfg.Flags)
	d := dispatch.New(
		dispatch.WithStreams(dispatch.Streams{
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}),
		dispatch.WithWorkDir(workDir),
		dispatch.WithTimeout(cfg.Timeout),
		dispatch.WithPipefail(fl.Enabled(flags.FlagPipefail)),
		dispatch.WithDryRun(cfg.DryRun),
		dispatch.WithTracer(provider.Tracer()),
		dispatch.WithResolver(res),
	)

	shutdown := func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatDispatch, "Tracing shutdown failed", err)
		}
	}
	return d, shutdown, nil
}

// Execute runs the root command and prints its error to stderr. A pipeline
// that exited non-zero on its own stays quiet like a shell; stages that could
// not start were already reported by the dispatcher.
func Execute(ctx context.Context) error {
	defer func() { closeLog() }()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	stderr := rootCmd.ErrOrStderr()
	var pipelineErr *dispatch.PipelineExecutionError
	switch {
	case !errors.As(err, &pipelineErr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
	case errors.Is(pipelineErr, context.DeadlineExceeded):
		fmt.Fprintf(stderr, "sbin: %s: timed out\n", pipelineErr.Entry)
	case pipelineErr.Interrupted():
		fmt.Fprintf(stderr, "sbin: %s: cancelled\n", pipelineErr.Entry)
	}
	return err
}

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var pipelineErr *dispatch.PipelineExecutionError
	if errors.As(err, &pipelineErr) {
		return pipelineErr.ExitCode()
	}
	return 1
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
