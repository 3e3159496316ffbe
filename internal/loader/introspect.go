package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapbind/pkg/adapter"
	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/types"
)

// IntrospectOptions controls Introspect.
type IntrospectOptions struct {
	// Schema is the database schema to read. Empty means the adapter default.
	Schema string
	// IntoSchema is the catalog schema the tables are registered in.
	// Empty means catalog.DefaultSchemaName so unqualified names resolve.
	IntoSchema string
	// Tables restricts introspection to these names. Empty means all.
	Tables []string
	// Concurrency bounds the number of metadata queries in flight.
	Concurrency int
}

// Introspect reads table metadata through a connected adapter and adds the
// tables to cat. Tables are added in name order so ids are stable across runs.
// Column types the binder does not model are loaded as STRING.
func Introspect(ctx context.Context, a adapter.Adapter, cat *catalog.RootCatalog, opts IntrospectOptions, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	schema := opts.Schema
	if schema == "" {
		schema = a.DefaultSchema()
	}
	into := opts.IntoSchema
	if into == "" {
		into = catalog.DefaultSchemaName
	}

	names, err := a.ListTables(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to list tables in %s: %w", schema, err)
	}
	names = filterTables(names, opts.Tables)

	metas := make([]*adapter.Metadata, len(names))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, name := range names {
		g.Go(func() error {
			meta, err := a.GetTableMetadata(gctx, schema, name)
			if err != nil {
				return fmt.Errorf("failed to describe %s.%s: %w", schema, name, err)
			}
			metas[i] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(metas, func(i, j int) bool { return foldIdent(metas[i].Name) < foldIdent(metas[j].Name) })

	cat.AddSchema(into)
	for _, meta := range metas {
		descs := make([]catalog.ColumnDesc, 0, len(meta.Columns))
		for _, col := range meta.Columns {
			descs = append(descs, introspectedColumn(col, meta.Name, logger))
		}
		name := foldIdent(meta.Name)
		if _, err := cat.AddTable(into, name, descs); err != nil {
			return err
		}
		logger.Debug("introspected table", "schema", into, "table", name, "columns", len(descs))
	}
	return nil
}

func introspectedColumn(col adapter.Column, table string, logger *slog.Logger) catalog.ColumnDesc {
	dt, err := types.ParseTypeString(col.Type)
	if err != nil {
		logger.Warn("unsupported column type, using STRING", "table", table, "column", col.Name, "type", col.Type)
		dt = types.String.Nullable()
	}
	dt = dt.WithNullability(col.Nullable && !col.PrimaryKey)
	return catalog.NewColumnDesc(foldIdent(col.Name), dt, col.PrimaryKey)
}

// filterTables keeps the names listed in only, compared case-insensitively.
func filterTables(names, only []string) []string {
	if len(only) == 0 {
		return names
	}
	want := make(map[string]bool, len(only))
	for _, n := range only {
		want[foldIdent(n)] = true
	}
	var out []string
	for _, n := range names {
		if want[foldIdent(n)] {
			out = append(out, n)
		}
	}
	return out
}
