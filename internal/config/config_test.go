package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/sbin/internal/flags"
	"github.com/zjrosen/sbin/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Empty(t, cfg.Catalog)
	require.Empty(t, cfg.Tags)
	require.Zero(t, cfg.Timeout)
	require.False(t, cfg.DryRun)
	require.Equal(t, 5*time.Minute, cfg.ResolverCacheTTL)
	require.Equal(t, map[string]bool{flags.FlagPipefail: false, flags.FlagStrictRegistry: false}, cfg.Flags)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, tracing.ExporterFile, cfg.Tracing.Exporter)
	require.Empty(t, cfg.Tracing.FilePath)
	require.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid tags", func(c *Config) { c.Tags = []string{"linux", "ops"} }, ""},
		{"blank tag", func(c *Config) { c.Tags = []string{"linux", " "} }, "tags[1]"},
		{"tag with space", func(c *Config) { c.Tags = []string{"two words"} }, "invalid tag"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout must not be negative"},
		{"negative ttl", func(c *Config) { c.ResolverCacheTTL = -time.Second }, "resolver_cache_ttl"},
		{"work dir exists", func(c *Config) { c.WorkDir = t.TempDir() }, ""},
		{"work dir missing", func(c *Config) { c.WorkDir = filepath.Join(t.TempDir(), "nope") }, "work_dir"},
		{"work dir is a file", func(c *Config) { c.WorkDir = file }, "not a directory"},
		{"bad exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }, "tracing.exporter"},
		{"bad sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "sample_rate"},
		{"otlp without endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = tracing.ExporterOTLP
			c.Tracing.OTLPEndpoint = ""
		}, "otlp_endpoint"},
		{"unknown flag only warns", func(c *Config) { c.Flags = map[string]bool{"turbo": true} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Timeout = -1
	cfg.Tracing.Exporter = "jaeger"

	err := Validate(cfg)
	require.ErrorContains(t, err, "timeout")
	require.ErrorContains(t, err, "tracing.exporter")
}

func TestDefaultConfigTemplate_IsValidYAML(t *testing.T) {
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))

	require.Equal(t, "0s", parsed["timeout"])
	require.Equal(t, false, parsed["dry_run"])
	require.Equal(t, "5m", parsed["resolver_cache_ttl"])
	require.Equal(t, map[string]any{"pipefail": false, "strict-registry": false}, parsed["flags"])
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	err = WriteDefaultConfig(path)
	require.ErrorContains(t, err, "already exists")
}
