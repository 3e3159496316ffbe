package config

import "time"

// Default configuration values.
const (
	DefaultTargetType    = "duckdb"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel      = "warn"
	DefaultConcurrency   = 4
	DefaultWatchDebounce = 200 * time.Millisecond
	DefaultPostgresPort  = 5432
)

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}

	if t.Type == "" {
		t.Type = DefaultTargetType
	}

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	if t.Type == "postgres" {
		if t.Port == 0 {
			t.Port = DefaultPostgresPort
		}
	}
}
