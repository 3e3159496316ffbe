// Package binder resolves parsed statements against a catalog.
//
// Binding replaces every table and column name with catalog identifiers,
// resolves SELECT-list aliases and type-checks expressions. The result is a
// bound statement tree for the planner. A Binder is not safe for concurrent
// use; create one per goroutine and share the catalog between them.
package binder

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
)

// Binder binds one statement at a time.
type Binder struct {
	catalog catalog.Reader
	logger  *slog.Logger

	// context is the active scope; upperContexts holds the enclosing ones,
	// innermost last.
	context       *bindContext
	upperContexts []*bindContext
	// baseTableRefs lists every physical table touched by the current bind.
	baseTableRefs []string
	inAggregate   bool
}

// New creates a binder over cat.
func New(cat catalog.Reader) *Binder {
	return NewWithLogger(cat, nil)
}

// NewWithLogger creates a binder that traces binding at debug level.
func NewWithLogger(cat catalog.Reader, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Binder{
		catalog: cat,
		logger:  logger,
		context: newBindContext(),
	}
}

// Bind resolves stmt. The first error aborts binding and is returned unchanged.
func (b *Binder) Bind(stmt core.Stmt) (BoundStatement, error) {
	b.context = newBindContext()
	b.upperContexts = nil
	b.baseTableRefs = nil
	b.inAggregate = false

	bound, err := b.bindStatement(stmt)
	if err != nil {
		b.logger.Debug("bind failed", "error", err)
		return nil, err
	}
	if len(b.upperContexts) != 0 {
		panic(errors.AssertionFailedf("binder: %d contexts left on stack", len(b.upperContexts)))
	}
	b.logger.Debug("bound statement", "kind", bound.Kind(), "tables", b.baseTableRefs)
	return bound, nil
}

// BaseTableRefs returns the physical tables referenced by the last bind, as
// schema.table, in the order they were resolved.
func (b *Binder) BaseTableRefs() []string {
	out := make([]string, len(b.baseTableRefs))
	copy(out, b.baseTableRefs)
	return out
}

func (b *Binder) bindStatement(stmt core.Stmt) (BoundStatement, error) {
	switch s := stmt.(type) {
	case *core.CreateTableStmt:
		return b.bindCreateTable(s)
	case *core.DropStmt:
		return b.bindDrop(s)
	case *core.InsertStmt:
		return b.bindInsert(s)
	case *core.DeleteStmt:
		return b.bindDelete(s)
	case *core.CopyStmt:
		return b.bindCopy(s)
	case *core.SelectStmt:
		return b.bindQuery(s)
	case *core.ExplainStmt:
		inner, err := b.bindStatement(s.Stmt)
		if err != nil {
			return nil, err
		}
		return &BoundExplain{Stmt: inner}, nil
	case *core.ShowStmt:
		return nil, &Error{Kind: KindNotSupported}
	default:
		return nil, &Error{Kind: KindInvalidSQL}
	}
}

// resolvedTable is a catalog table found by name.
type resolvedTable struct {
	schema string
	name   string
	ref    catalog.TableRefID
	table  *catalog.TableCatalog
}

// lookupTable resolves a possibly qualified name in the default database.
func (b *Binder) lookupTable(name core.ObjectName) (*resolvedTable, error) {
	schema, table, err := resolveName(name)
	if err != nil {
		return nil, err
	}
	schemaID, err := b.lookupSchema(schema)
	if err != nil {
		return nil, err
	}
	dbID, _ := b.catalog.DatabaseByName(catalog.DefaultDatabaseName)
	ref, tc, ok := b.catalog.TableByName(dbID, schemaID, table)
	if !ok {
		return nil, invalidTable(table)
	}
	return &resolvedTable{schema: schema, name: table, ref: ref, table: tc}, nil
}

func (b *Binder) lookupSchema(schema string) (catalog.SchemaID, error) {
	dbID, ok := b.catalog.DatabaseByName(catalog.DefaultDatabaseName)
	if !ok {
		return 0, invalidDatabase(catalog.DefaultDatabaseName)
	}
	schemaID, ok := b.catalog.SchemaByName(dbID, schema)
	if !ok {
		return 0, invalidSchema(schema)
	}
	return schemaID, nil
}

func (t *resolvedTable) bound(alias string) *BoundBaseTable {
	return &BoundBaseTable{Ref: t.ref, Schema: t.schema, Name: t.name, Alias: alias}
}

// qualified is the schema.table form recorded in the base table list.
func (t *resolvedTable) qualified() string {
	return t.schema + "." + t.name
}
