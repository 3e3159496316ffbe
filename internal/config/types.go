// Package config provides shared configuration types for leapbind.
// This package is decoupled from CLI concerns so the catalog loader and
// tests can read a project configuration without cobra.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/adapter"
)

// TargetConfig holds the database target whose catalog is introspected.
type TargetConfig struct {
	Type string `koanf:"type"` // duckdb, postgres, sqlite

	// File-based databases (DuckDB, SQLite)
	Database string `koanf:"database"` // file path or database name

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Schema to introspect.
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, settings)
	Params map[string]any `koanf:"params"`
}

// IsFileBased reports whether Database names a file rather than a server database.
func (t *TargetConfig) IsFileBased() bool {
	switch strings.ToLower(t.Type) {
	case "duckdb", "sqlite":
		return true
	default:
		return false
	}
}

// AdapterConfig converts the target into the configuration adapters accept.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	cfg := adapter.Config{
		Type:     strings.ToLower(t.Type),
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
	if t.IsFileBased() {
		cfg.Path = t.Database
	} else {
		cfg.Database = t.Database
	}
	return cfg
}

// Validate checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	if _, ok := adapter.Lookup(t.Type); !ok {
		return &UnknownTargetError{
			Type:      t.Type,
			Available: adapter.Names(),
		}
	}

	return nil
}

// UnknownTargetError is returned when target.type names no registered adapter.
type UnknownTargetError struct {
	Type      string
	Available []string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target type %q\nAvailable adapters: %s\nHint: Check your target.type in leapbind.yaml",
		e.Type, strings.Join(e.Available, ", "))
}

// Unwrap lets errors.Is match adapter.ErrUnknownType.
func (e *UnknownTargetError) Unwrap() error { return adapter.ErrUnknownType }

// ValidateTarget validates t, treating nil as "no target configured".
func ValidateTarget(t *TargetConfig) error {
	if t == nil {
		return nil
	}
	return t.Validate()
}

// DefaultSchemaForType returns the default schema for a database type.
// It asks the registered adapter; unknown types fall back to "main".
func DefaultSchemaForType(dbType string) string {
	if factory, ok := adapter.Lookup(dbType); ok {
		if schema := factory(nil).DefaultSchema(); schema != "" {
			return schema
		}
	}
	return "main"
}

// ProjectConfig holds the configuration needed to build a catalog snapshot.
// This is a subset of the full CLI Config.
type ProjectConfig struct {
	// Catalog is a YAML catalog file; it takes precedence over Target.
	Catalog string        `koanf:"catalog"`
	Target  *TargetConfig `koanf:"target"`
	// Tables restricts introspection to these table names.
	Tables []string `koanf:"tables"`
}
