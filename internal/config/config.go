// Package config provides configuration types and defaults for sbin.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/sbin/internal/flags"
	"github.com/zjrosen/sbin/internal/log"
	"github.com/zjrosen/sbin/internal/tracing"
)

// Config holds all configuration options for sbin.
type Config struct {
	// Catalog is an extra commands file layered over the built-in catalog.
	// Empty means ~/.config/sbin/commands.yaml when that file exists.
	Catalog string `mapstructure:"catalog"`

	// Tags restricts the registry to untagged entries plus entries carrying
	// one of these tags.
	Tags []string `mapstructure:"tags"`

	// WorkDir is where relative programs such as ebin/who are resolved and
	// where pipelines run. Empty means the current directory.
	WorkDir string `mapstructure:"work_dir"`

	// Timeout bounds a whole pipeline run. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`

	DryRun bool `mapstructure:"dry_run"`

	// ResolverCacheTTL is how long program lookups are remembered.
	ResolverCacheTTL time.Duration `mapstructure:"resolver_cache_ttl"`

	Flags   map[string]bool `mapstructure:"flags"`
	Tracing tracing.Config  `mapstructure:"tracing"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = "" // derived from the config dir at runtime
	return Config{
		ResolverCacheTTL: 5 * time.Minute,
		Flags: map[string]bool{
			flags.FlagPipefail:       false,
			flags.FlagStrictRegistry: false,
		},
		Tracing: tc,
	}
}

// Validate checks cfg for values sbin cannot run with. All problems are
// reported together.
func Validate(cfg Config) error {
	var errs []error

	for i, tag := range cfg.Tags {
		if strings.TrimSpace(tag) == "" || strings.ContainsAny(tag, " \t") {
			errs = append(errs, fmt.Errorf("tags[%d]: invalid tag %q", i, tag))
		}
	}
	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout))
	}
	if cfg.ResolverCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("resolver_cache_ttl must not be negative, got %s", cfg.ResolverCacheTTL))
	}
	if cfg.WorkDir != "" {
		if info, err := os.Stat(cfg.WorkDir); err != nil {
			errs = append(errs, fmt.Errorf("work_dir: %w", err))
		} else if !info.IsDir() {
			errs = append(errs, fmt.Errorf("work_dir %q is not a directory", cfg.WorkDir))
		}
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		errs = append(errs, err)
	}

	if unknown := flags.New(cfg.Flags).Unknown(); len(unknown) > 0 {
		log.Warn(log.CatConfig, "Ignoring unknown feature flags", "flags", strings.Join(unknown, ","))
	}
	return errors.Join(errs...)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}
	if !tracing.ValidExporter(tc.Exporter) {
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
	}
	if tc.Enabled && tc.Exporter == tracing.ExporterOTLP && tc.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# sbin configuration

# Extra commands file layered over the built-in catalog. Entries with the same
# name replace built-in ones unless flags.strict-registry is set.
# Default: ~/.config/sbin/commands.yaml when it exists.
# catalog: ~/.config/sbin/commands.yaml

# Only register untagged commands and commands carrying one of these tags.
# tags: [linux]

# Directory relative programs (ebin/who) resolve against and pipelines run in.
# Default: the current directory.
# work_dir: /opt/sbin

# Kill a pipeline that runs longer than this (exit code 124). 0 disables.
timeout: 0s

# Print pipelines instead of running them.
dry_run: false

# How long program lookups on PATH are cached.
resolver_cache_ttl: 5m

# Feature flags
flags:
  pipefail: false         # exit code is the rightmost failing stage, not the last
  strict-registry: false  # duplicate command names are an error

# Tracing of pipeline runs
# tracing:
#   enabled: false                 # default: false
#   exporter: file                 # none, file, stdout, otlp (default: file)
#   file_path: ~/.config/sbin/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0               # 0.0-1.0
`
}

// WriteDefaultConfig writes DefaultConfigTemplate to configPath, creating
// parent directories. An existing file is left untouched and reported as
// an error.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // G304: path comes from the user
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config file %s already exists", configPath)
		}
		return fmt.Errorf("creating config file: %w", err)
	}
	if _, err := f.WriteString(DefaultConfigTemplate()); err != nil {
		_ = f.Close()
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
