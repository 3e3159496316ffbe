package binder

import (
	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

// bindFrom registers every FROM item in the active context and binds the
// join conditions. Joins nest to the left.
func (b *Binder) bindFrom(from *core.FromClause) (BoundTableRef, error) {
	ref, leftTables, err := b.bindTableRef(from.Source)
	if err != nil {
		return nil, err
	}
	for _, j := range from.Joins {
		right, rightTables, err := b.bindTableRef(j.Right)
		if err != nil {
			return nil, err
		}

		switch j.Type {
		case core.JoinLeft:
			markNullable(rightTables)
		case core.JoinRight:
			markNullable(leftTables)
		case core.JoinFull:
			markNullable(leftTables)
			markNullable(rightTables)
		}

		join := &BoundJoin{Left: ref, Right: right, Type: j.Type}
		switch {
		case len(j.Using) > 0:
			if join.On, err = b.bindUsing(j.Using, leftTables, rightTables); err != nil {
				return nil, err
			}
		case j.Condition != nil:
			if join.On, err = b.bindExpr(j.Condition); err != nil {
				return nil, err
			}
			if err := requireBool("JOIN/ON", join.On); err != nil {
				return nil, err
			}
		}

		ref = join
		leftTables = append(leftTables, rightTables...)
	}
	return ref, nil
}

func markNullable(tables []*boundTable) {
	for _, t := range tables {
		t.setNullable()
	}
}

// bindTableRef binds one FROM item and returns the tables it registered.
func (b *Binder) bindTableRef(ref core.TableRef) (BoundTableRef, []*boundTable, error) {
	switch t := ref.(type) {
	case *core.TableName:
		base, bt, err := b.bindBaseTable(t)
		if err != nil {
			return nil, nil, err
		}
		return base, []*boundTable{bt}, nil
	case *core.DerivedTable:
		return b.bindDerivedTable(t)
	default:
		return nil, nil, invalidExpression("unsupported table reference %T", ref)
	}
}

func (b *Binder) bindBaseTable(tn *core.TableName) (*BoundBaseTable, *boundTable, error) {
	rt, err := b.lookupTable(tn.Name)
	if err != nil {
		return nil, nil, err
	}
	name := rt.name
	alias := ""
	if tn.Alias != "" {
		alias = lowerIdent(tn.Alias)
		name = alias
	}
	bt := newBoundTable(name, rt.ref, false, rt.table.Columns())
	if err := b.context.addTable(bt); err != nil {
		return nil, nil, err
	}
	b.baseTableRefs = append(b.baseTableRefs, rt.qualified())
	return rt.bound(alias), bt, nil
}

// bindDerivedTable binds a subquery in FROM in an isolated scope and exposes
// its output columns under the alias.
func (b *Binder) bindDerivedTable(dt *core.DerivedTable) (BoundTableRef, []*boundTable, error) {
	if dt.Alias == "" {
		return nil, nil, invalidExpression("subquery in FROM must have an alias")
	}
	query, err := b.bindSelect(dt.Select, false)
	if err != nil {
		return nil, nil, err
	}

	alias := lowerIdent(dt.Alias)
	descs := query.OutputColumns()
	cols := make([]catalog.ColumnCatalog, len(descs))
	for i, d := range descs {
		cols[i] = catalog.ColumnCatalog{ID: catalog.ColumnID(i), Desc: d}
	}
	bt := newBoundTable(alias, catalog.TableRefID{}, true, cols)
	if err := b.context.addTable(bt); err != nil {
		return nil, nil, err
	}
	return &BoundDerivedTable{Alias: alias, Query: query}, []*boundTable{bt}, nil
}

// bindUsing turns USING (c1, c2) into left.c1 = right.c1 AND left.c2 = right.c2.
func (b *Binder) bindUsing(columns []string, left, right []*boundTable) (BoundExpr, error) {
	var on BoundExpr
	for _, c := range columns {
		name := lowerIdent(c)
		l, err := findUsingColumn(name, left)
		if err != nil {
			return nil, err
		}
		r, err := findUsingColumn(name, right)
		if err != nil {
			return nil, err
		}
		eq, err := bindBinaryOp(token.EQ, l, r)
		if err != nil {
			return nil, err
		}
		if on == nil {
			on = eq
			continue
		}
		if on, err = bindBinaryOp(token.AND, on, eq); err != nil {
			return nil, err
		}
	}
	return on, nil
}

func findUsingColumn(name string, tables []*boundTable) (BoundExpr, error) {
	var found *BoundColumnRef
	for _, t := range tables {
		if i, ok := t.column(name); ok {
			if found != nil {
				return nil, ambiguousColumn(name)
			}
			found = t.columnRef(i, 0)
		}
	}
	if found == nil {
		return nil, invalidColumn(name)
	}
	return found, nil
}
