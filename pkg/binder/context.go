package binder

import (
	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
)

// boundTable is a table registered in a scope, either a catalog table or a
// derived table.
type boundTable struct {
	name    string
	ref     catalog.TableRefID
	derived bool
	// columnNames maps lower-cased column names to their first position.
	columnNames map[string]int
	columnIDs   []catalog.ColumnID
	columnDescs []catalog.ColumnDesc
}

func newBoundTable(name string, ref catalog.TableRefID, derived bool, cols []catalog.ColumnCatalog) *boundTable {
	t := &boundTable{
		name:        name,
		ref:         ref,
		derived:     derived,
		columnNames: make(map[string]int, len(cols)),
		columnIDs:   make([]catalog.ColumnID, len(cols)),
		columnDescs: make([]catalog.ColumnDesc, len(cols)),
	}
	for i, c := range cols {
		key := lowerIdent(c.Desc.Name)
		if _, dup := t.columnNames[key]; !dup {
			t.columnNames[key] = i
		}
		t.columnIDs[i] = c.ID
		t.columnDescs[i] = c.Desc
	}
	return t
}

// setNullable marks every column of t nullable, as for the outer side of a join.
func (t *boundTable) setNullable() {
	for i := range t.columnDescs {
		t.columnDescs[i].DataType = t.columnDescs[i].DataType.WithNullability(true)
	}
}

// column returns the position of the first column called name.
func (t *boundTable) column(name string) (int, bool) {
	i, ok := t.columnNames[name]
	return i, ok
}

func (t *boundTable) columnRef(i, depth int) *BoundColumnRef {
	return &BoundColumnRef{
		Table:    t.name,
		TableRef: t.ref,
		Derived:  t.derived,
		ColumnID: t.columnIDs[i],
		Desc:     t.columnDescs[i],
		Depth:    depth,
	}
}

// aliasEntry pairs a SELECT-list alias with the expression it names.
type aliasEntry struct {
	name string
	expr BoundExpr
}

// bindContext holds the names visible at one nesting level.
type bindContext struct {
	tables     map[string]*boundTable
	tableOrder []string
	aliases    []aliasEntry
	// correlated scopes may resolve columns against enclosing scopes.
	correlated bool
}

func newBindContext() *bindContext {
	return &bindContext{tables: make(map[string]*boundTable)}
}

func (c *bindContext) addTable(t *boundTable) error {
	if _, ok := c.tables[t.name]; ok {
		return duplicatedTable(t.name)
	}
	c.tables[t.name] = t
	c.tableOrder = append(c.tableOrder, t.name)
	return nil
}

func (c *bindContext) table(name string) (*boundTable, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// addAlias records an alias. A repeated name shadows the earlier entry.
func (c *bindContext) addAlias(name string, expr BoundExpr) {
	c.aliases = append(c.aliases, aliasEntry{name: name, expr: expr})
}

func (c *bindContext) alias(name string) (BoundExpr, bool) {
	for i := len(c.aliases) - 1; i >= 0; i-- {
		if c.aliases[i].name == name {
			return c.aliases[i].expr, true
		}
	}
	return nil, false
}

// pushContext saves the active context and installs an empty one.
func (b *Binder) pushContext() {
	b.upperContexts = append(b.upperContexts, b.context)
	b.context = newBindContext()
}

// popContext restores the most recently saved context.
func (b *Binder) popContext() {
	n := len(b.upperContexts)
	if n == 0 {
		panic(errors.AssertionFailedf("binder: pop on empty context stack"))
	}
	b.context = b.upperContexts[n-1]
	b.upperContexts[n-1] = nil
	b.upperContexts = b.upperContexts[:n-1]
}

// inScope runs fn in a fresh context and restores the previous context on
// every return path. A correlated scope can see enclosing columns. Aggregate
// nesting is tracked per scope.
func inScope[T any](b *Binder, correlated bool, fn func() (T, error)) (T, error) {
	b.pushContext()
	b.context.correlated = correlated
	inAggregate := b.inAggregate
	b.inAggregate = false
	defer func() {
		b.inAggregate = inAggregate
		b.popContext()
	}()
	return fn()
}

// asSibling runs fn in a fresh context at the same nesting level as the
// active one. The active context is hidden from fn rather than stacked, so
// fn sees the same enclosing scopes at the same depths.
func asSibling[T any](b *Binder, fn func() (T, error)) (T, error) {
	saved := b.context
	b.context = newBindContext()
	b.context.correlated = saved.correlated
	defer func() { b.context = saved }()
	return fn()
}

// outputContext returns a context whose only names are the output columns
// of sel, each resolving to the expression it projects.
func outputContext(sel *BoundSelect, correlated bool) *bindContext {
	ctx := newBindContext()
	ctx.correlated = correlated
	for _, e := range sel.SelectList {
		name := outputName(e)
		if a, ok := e.(*BoundAlias); ok {
			e = a.Expr
		}
		ctx.addAlias(name, e)
	}
	return ctx
}
