package binder

import (
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/types"
)

func (b *Binder) bindQuery(s *core.SelectStmt) (BoundStatement, error) {
	sel, err := b.bindSelect(s, false)
	if err != nil {
		return nil, err
	}
	return sel, nil
}

// bindSelect binds a query in its own scope.
func (b *Binder) bindSelect(s *core.SelectStmt, correlated bool) (*BoundSelect, error) {
	if s == nil || s.Body == nil {
		return nil, &Error{Kind: KindInvalidSQL}
	}
	return inScope(b, correlated, func() (*BoundSelect, error) {
		sel, err := b.bindSelectBody(s.Body)
		if err != nil {
			return nil, err
		}

		if sel.SetOp != core.SetOpNone {
			b.context = outputContext(sel, correlated)
		}
		for _, item := range s.OrderBy {
			expr, err := b.bindExpr(item.Expr)
			if err != nil {
				return nil, err
			}
			sel.OrderBy = append(sel.OrderBy, BoundOrderBy{Expr: expr, Desc: item.Desc})
		}
		if sel.Limit, err = b.bindRowCount("LIMIT", s.Limit); err != nil {
			return nil, err
		}
		if sel.Offset, err = b.bindRowCount("OFFSET", s.Offset); err != nil {
			return nil, err
		}
		return sel, nil
	})
}

// bindSelectBody binds the left operand in the active scope and the right
// operand of a set operation in a sibling scope, so neither side sees the
// other's tables.
func (b *Binder) bindSelectBody(body *core.SelectBody) (*BoundSelect, error) {
	sel, err := b.bindSelectCore(body.Left)
	if err != nil {
		return nil, err
	}
	if body.Op == core.SetOpNone || body.Right == nil {
		return sel, nil
	}

	right, err := asSibling(b, func() (*BoundSelect, error) {
		return b.bindSelectBody(body.Right)
	})
	if err != nil {
		return nil, err
	}

	lcols, rcols := sel.OutputColumns(), right.OutputColumns()
	if len(lcols) != len(rcols) {
		return nil, invalidExpression("each %s query must have the same number of columns", body.Op)
	}
	for i := range lcols {
		if _, ok := types.Coerce(lcols[i].DataType, rcols[i].DataType); !ok {
			return nil, binaryOpTypeMismatch(lcols[i].DataType, rcols[i].DataType)
		}
	}
	sel.SetOp = body.Op
	sel.All = body.All
	sel.Right = right
	return sel, nil
}

func (b *Binder) bindSelectCore(sc *core.SelectCore) (*BoundSelect, error) {
	if sc == nil {
		return nil, &Error{Kind: KindInvalidSQL}
	}
	sel := &BoundSelect{Distinct: sc.Distinct}
	var err error

	if sc.From != nil {
		if sel.From, err = b.bindFrom(sc.From); err != nil {
			return nil, err
		}
	}

	if sc.Where != nil {
		if sel.Where, err = b.bindExpr(sc.Where); err != nil {
			return nil, err
		}
		if err := requireBool("WHERE", sel.Where); err != nil {
			return nil, err
		}
		if hasAggregate(sel.Where) {
			return nil, invalidExpression("aggregate functions are not allowed in WHERE")
		}
	}

	for _, item := range sc.Columns {
		switch {
		case item.Star:
			cols := b.expandStar()
			if len(cols) == 0 {
				return nil, invalidExpression("SELECT * with no tables specified is not valid")
			}
			sel.SelectList = append(sel.SelectList, cols...)
		case item.TableStar != "":
			name := lowerIdent(item.TableStar)
			t, ok := b.context.table(name)
			if !ok {
				return nil, invalidTable(name)
			}
			for i := range t.columnDescs {
				sel.SelectList = append(sel.SelectList, t.columnRef(i, 0))
			}
		default:
			expr, err := b.bindExpr(item.Expr)
			if err != nil {
				return nil, err
			}
			if item.Alias == "" {
				sel.SelectList = append(sel.SelectList, expr)
				continue
			}
			name := lowerIdent(item.Alias)
			b.context.addAlias(name, expr)
			sel.SelectList = append(sel.SelectList, &BoundAlias{Name: name, Expr: expr})
		}
	}

	for _, g := range sc.GroupBy {
		expr, err := b.bindExpr(g)
		if err != nil {
			return nil, err
		}
		if hasAggregate(expr) {
			return nil, invalidExpression("aggregate functions are not allowed in GROUP BY")
		}
		sel.GroupBy = append(sel.GroupBy, expr)
	}

	if sc.Having != nil {
		if sel.Having, err = b.bindExpr(sc.Having); err != nil {
			return nil, err
		}
		if err := requireBool("HAVING", sel.Having); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

// expandStar lists every column of the active context in registration order.
func (b *Binder) expandStar() []BoundExpr {
	var out []BoundExpr
	for _, name := range b.context.tableOrder {
		t := b.context.tables[name]
		for i := range t.columnDescs {
			out = append(out, t.columnRef(i, 0))
		}
	}
	return out
}

// bindRowCount binds a LIMIT or OFFSET argument, which must be an integer.
func (b *Binder) bindRowCount(clause string, e core.Expr) (BoundExpr, error) {
	if e == nil {
		return nil, nil
	}
	expr, err := b.bindExpr(e)
	if err != nil {
		return nil, err
	}
	t := expr.ReturnType()
	if !t.Kind.IsInteger() && t.Kind != types.Null {
		return nil, invalidExpression("argument of %s must be type BIGINT, not %s", clause, t)
	}
	if c, ok := expr.(*BoundConstant); ok && !c.Value.IsNull() && c.Value.Int() < 0 {
		return nil, invalidExpression("%s must not be negative", clause)
	}
	return expr, nil
}
