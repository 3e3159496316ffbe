// Package commands implements the leapbind subcommands.
package commands

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbind/internal/cli/config"
	"github.com/leapstack-labs/leapbind/internal/cli/output"
	"github.com/leapstack-labs/leapbind/internal/loader"
	"github.com/leapstack-labs/leapbind/pkg/catalog"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Catalog  *catalog.RootCatalog
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with the catalog snapshot
// described by the configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cc := NewCommandContextWithoutCatalog(cmd)

	cat, err := loader.Snapshot(cmd.Context(), cc.Cfg.Project(), cc.Cfg.Concurrency, cc.Logger)
	if err != nil {
		return nil, err
	}
	cc.Catalog = cat
	return cc, nil
}

// NewCommandContextWithoutCatalog creates a CommandContext without loading
// a catalog. Useful for commands that don't bind.
func NewCommandContextWithoutCatalog(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	concurrency := config.DefaultConcurrency
	if v, err := strconv.Atoi(os.Getenv(config.EnvPrefix + "CONCURRENCY")); err == nil {
		concurrency = v
	}

	return &config.Config{
		Catalog:       os.Getenv(config.EnvPrefix + "CATALOG"),
		OutputFormat:  getEnvOrDefault(config.EnvPrefix+"OUTPUT", config.DefaultOutput),
		LogLevel:      getEnvOrDefault(config.EnvPrefix+"LOG_LEVEL", config.DefaultLogLevel),
		Verbose:       os.Getenv(config.EnvPrefix+"VERBOSE") == "true",
		Concurrency:   concurrency,
		WatchDebounce: config.DefaultWatchDebounce,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
