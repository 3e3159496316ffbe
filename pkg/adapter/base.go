package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

// ErrNotConnected is returned when an adapter is used before Connect.
var ErrNotConnected = errors.New("database connection not established")

// Placeholder formats the n-th (1-based) bind parameter of a query.
type Placeholder func(n int) string

// Placeholder styles used by the bundled drivers.
var (
	QuestionPlaceholder Placeholder = func(int) string { return "?" }
	DollarPlaceholder   Placeholder = func(n int) string { return "$" + strconv.Itoa(n) }
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed it in concrete adapters to get Close and the information_schema
// queries.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// NewBase returns a BaseSQLAdapter with a non-nil logger.
func NewBase(logger *slog.Logger) BaseSQLAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return BaseSQLAdapter{Logger: logger}
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB == nil {
		return nil
	}
	b.logger().Debug("closing database connection")
	return b.DB.Close()
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ListTablesCommon lists the tables and views of schema from
// information_schema.tables.
func (b *BaseSQLAdapter) ListTablesCommon(ctx context.Context, schema string, ph Placeholder) ([]string, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	//nolint:gosec // placeholders are ? or $N
	query := fmt.Sprintf(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = %s AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name
	`, ph(1))

	rows, err := b.DB.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// GetTableMetadataCommon describes a table from information_schema.columns
// and marks primary-key columns from the table constraints.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, schema, table string, ph Placeholder) (*Metadata, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	//nolint:gosec // placeholders are ? or $N
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, ph(1), ph(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s not found", schema, table)
	}

	keys, err := b.primaryKeys(ctx, schema, table, ph)
	if err != nil {
		// Not every engine exposes key_column_usage.
		b.logger().Debug("primary key lookup failed", "table", schema+"."+table, "error", err)
	}
	for i := range columns {
		if keys[columns[i].Name] {
			columns[i].PrimaryKey = true
			columns[i].Nullable = false
		}
	}

	return &Metadata{Schema: schema, Name: table, Columns: columns}, nil
}

func (b *BaseSQLAdapter) primaryKeys(ctx context.Context, schema, table string, ph Placeholder) (map[string]bool, error) {
	//nolint:gosec // placeholders are ? or $N
	query := fmt.Sprintf(`
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = %s AND tc.table_name = %s
	`, ph(1), ph(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	keys := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		keys[name] = true
	}
	return keys, rows.Err()
}
