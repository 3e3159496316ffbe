// Package config provides configuration management for the leapbind CLI.
//
// This package extends the shared configuration types from internal/config
// with CLI-specific fields. The shared TargetConfig is re-exported here via
// a type alias for convenience.
package config

import (
	"time"

	sharedcfg "github.com/leapstack-labs/leapbind/internal/config"
)

// TargetConfig is an alias for the shared target configuration.
// This allows CLI code to use config.TargetConfig without importing internal/config.
type TargetConfig = sharedcfg.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	Catalog       string               `koanf:"catalog"`
	Target        *TargetConfig        `koanf:"target"`
	Tables        []string             `koanf:"tables"`
	OutputFormat  string               `koanf:"output"`
	Verbose       bool                 `koanf:"verbose"`
	LogLevel      string               `koanf:"log_level"`
	Concurrency   int                  `koanf:"concurrency"`
	WatchDebounce time.Duration        `koanf:"watch_debounce"`
	Environment   string               `koanf:"environment"`
	Environments  map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Catalog string        `koanf:"catalog"`
	Target  *TargetConfig `koanf:"target"`
}

// Project returns the subset of the configuration the catalog loader needs.
func (c *Config) Project() *sharedcfg.ProjectConfig {
	return &sharedcfg.ProjectConfig{
		Catalog: c.Catalog,
		Target:  c.Target,
		Tables:  c.Tables,
	}
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultOutput        = sharedcfg.DefaultOutput
	DefaultLogLevel      = sharedcfg.DefaultLogLevel
	DefaultConcurrency   = sharedcfg.DefaultConcurrency
	DefaultWatchDebounce = sharedcfg.DefaultWatchDebounce
	EnvPrefix            = "LEAPBIND_"
)
