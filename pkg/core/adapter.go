package core

import "context"

// Adapter defines the interface that all database adapters must implement.
// leapbind only reads metadata through it; it never executes user statements.
type Adapter interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, cfg AdapterConfig) error

	// Close closes the database connection.
	Close() error

	// ListTables returns the tables of a schema.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// GetTableMetadata retrieves metadata for a table in a schema.
	GetTableMetadata(ctx context.Context, schema, table string) (*TableMetadata, error)

	// DefaultSchema is used when the configuration names none.
	DefaultSchema() string
}

// AdapterConfig holds configuration for connecting to a database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string

	// Params holds adapter-specific settings such as DuckDB extensions.
	Params map[string]any
}

// Column represents a column in a database table.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Position   int
}

// TableMetadata holds metadata about a database table.
type TableMetadata struct {
	Schema  string
	Name    string
	Columns []Column
}
