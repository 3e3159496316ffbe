// Package duckdb provides a DuckDB catalog adapter for leapbind.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// DefaultSchema is DuckDB's default schema.
const DefaultSchema = "main"

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a new DuckDB adapter instance.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{BaseSQLAdapter: adapter.NewBase(logger)}
}

// DefaultSchema returns "main".
func (a *Adapter) DefaultSchema() string {
	return DefaultSchema
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.params = params

	for _, stmt := range setupStatements(params) {
		a.Logger.Debug("duckdb setup", "sql", stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			a.DB = nil
			return fmt.Errorf("duckdb setup %q: %w", stmt, err)
		}
	}

	a.Logger.Debug("connected to duckdb", "path", path)
	return nil
}

// setupStatements renders the LOAD, SET and ATTACH statements for params
// in a stable order.
func setupStatements(p *Params) []string {
	var stmts []string
	for _, ext := range p.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		stmts = append(stmts, "INSTALL "+ext, "LOAD "+ext)
	}

	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stmts = append(stmts, fmt.Sprintf("SET %s = '%s'", k, escapeLiteral(p.Settings[k])))
	}

	aliases := make([]string, 0, len(p.Attach))
	for alias := range p.Attach {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		stmts = append(stmts, fmt.Sprintf("ATTACH '%s' AS %s (READ_ONLY)", escapeLiteral(p.Attach[alias]), alias))
	}
	return stmts
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// ListTables returns the tables and views of schema.
func (a *Adapter) ListTables(ctx context.Context, schema string) ([]string, error) {
	return a.ListTablesCommon(ctx, schema, adapter.QuestionPlaceholder)
}

// GetTableMetadata retrieves metadata for a table.
func (a *Adapter) GetTableMetadata(ctx context.Context, schema, table string) (*adapter.Metadata, error) {
	return a.GetTableMetadataCommon(ctx, schema, table, adapter.QuestionPlaceholder)
}

// Ensure Adapter implements adapter.Adapter interface.
var _ adapter.Adapter = (*Adapter)(nil)
