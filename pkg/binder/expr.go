package binder

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/token"
	"github.com/leapstack-labs/leapbind/pkg/types"
)

// bindExpr binds e against the active context.
func (b *Binder) bindExpr(e core.Expr) (BoundExpr, error) {
	switch e := e.(type) {
	case *core.ColumnRef:
		return b.bindColumnRef(e)
	case *core.Literal:
		return bindLiteral(e)
	case *core.ParenExpr:
		return b.bindExpr(e.Expr)
	case *core.BinaryExpr:
		left, right, err := b.bindPair(e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return bindBinaryOp(e.Op, left, right)
	case *core.UnaryExpr:
		return b.bindUnaryOp(e)
	case *core.CastExpr:
		return b.bindCast(e)
	case *core.IsNullExpr:
		inner, err := b.bindExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		return &BoundIsNull{Expr: inner, Not: e.Not}, nil
	case *core.InExpr:
		return b.bindIn(e)
	case *core.BetweenExpr:
		return b.bindBetween(e)
	case *core.LikeExpr:
		left, right, err := b.bindPair(e.Expr, e.Pattern)
		if err != nil {
			return nil, err
		}
		like, err := bindBinaryOp(token.LIKE, left, right)
		if err != nil {
			return nil, err
		}
		return negateIf(e.Not, like), nil
	case *core.FuncCall:
		return b.bindFunction(e)
	case *core.SubqueryExpr:
		return b.bindScalarSubquery(e)
	case *core.ExistsExpr:
		query, err := b.bindSubquery(e.Select)
		if err != nil {
			return nil, err
		}
		return &BoundSubquery{Kind: SubqueryExists, Query: query, Not: e.Not, Type: types.Bool.NotNull()}, nil
	case nil:
		return nil, invalidExpression("missing expression")
	default:
		return nil, invalidExpression("unsupported expression %T", e)
	}
}

func (b *Binder) bindPair(l, r core.Expr) (BoundExpr, BoundExpr, error) {
	left, err := b.bindExpr(l)
	if err != nil {
		return nil, nil, err
	}
	right, err := b.bindExpr(r)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// scopes returns the contexts a column may resolve in, innermost first.
// Resolution continues outward only through correlated contexts.
func (b *Binder) scopes() []*bindContext {
	out := []*bindContext{b.context}
	ctx := b.context
	for i := len(b.upperContexts) - 1; i >= 0 && ctx.correlated; i-- {
		ctx = b.upperContexts[i]
		out = append(out, ctx)
	}
	return out
}

func (b *Binder) bindColumnRef(ref *core.ColumnRef) (BoundExpr, error) {
	column := lowerIdent(ref.Column)

	if ref.Table != "" {
		table := lowerIdent(ref.Table)
		for depth, ctx := range b.scopes() {
			t, ok := ctx.table(table)
			if !ok {
				continue
			}
			i, ok := t.column(column)
			if !ok {
				return nil, invalidColumn(column)
			}
			return t.columnRef(i, depth), nil
		}
		return nil, invalidTable(table)
	}

	for depth, ctx := range b.scopes() {
		var found *BoundColumnRef
		for _, name := range ctx.tableOrder {
			t := ctx.tables[name]
			if i, ok := t.column(column); ok {
				if found != nil {
					return nil, ambiguousColumn(column)
				}
				found = t.columnRef(i, depth)
			}
		}
		if found != nil {
			return found, nil
		}
		if depth == 0 {
			if expr, ok := ctx.alias(column); ok {
				return expr, nil
			}
		}
	}
	return nil, invalidColumn(column)
}

func bindLiteral(lit *core.Literal) (BoundExpr, error) {
	switch lit.Type {
	case core.LiteralNumber:
		v, err := types.ParseNumber(lit.Value)
		if err != nil {
			return nil, invalidExpression("%v", err)
		}
		return &BoundConstant{Value: v}, nil
	case core.LiteralString:
		return &BoundConstant{Value: types.StringValue(lit.Value)}, nil
	case core.LiteralBool:
		return &BoundConstant{Value: types.BoolValue(strings.EqualFold(lit.Value, "true"))}, nil
	case core.LiteralNull:
		return &BoundConstant{Value: types.NullValue()}, nil
	default:
		return nil, invalidExpression("unknown literal %q", lit.Value)
	}
}

func isComparison(op token.TokenType) bool {
	switch op {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		return true
	}
	return false
}

func isArithmetic(op token.TokenType) bool {
	switch op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		return true
	}
	return false
}

// bindBinaryOp type-checks an operation on two bound operands.
func bindBinaryOp(op token.TokenType, left, right BoundExpr) (BoundExpr, error) {
	if isComparison(op) || isArithmetic(op) {
		var err error
		if left, err = castStringConstant(left, right.ReturnType()); err != nil {
			return nil, err
		}
		if right, err = castStringConstant(right, left.ReturnType()); err != nil {
			return nil, err
		}
	}

	lt, rt := left.ReturnType(), right.ReturnType()
	nullable := lt.Nullable || rt.Nullable
	var out types.DataType

	switch {
	case isComparison(op):
		if _, ok := types.Coerce(lt, rt); !ok {
			return nil, binaryOpTypeMismatch(lt, rt)
		}
		out = types.Bool.NotNull().WithNullability(nullable)
	case isArithmetic(op):
		ct, ok := types.Coerce(lt, rt)
		if !ok || !(ct.Kind.IsNumeric() || ct.Kind == types.Null) {
			return nil, binaryOpTypeMismatch(lt, rt)
		}
		out = ct
	case op == token.AND || op == token.OR:
		for _, t := range []types.DataType{lt, rt} {
			if t.Kind != types.Bool && t.Kind != types.Null {
				return nil, invalidExpression("argument of %s must be type BOOLEAN, not %s", op, t)
			}
		}
		out = types.Bool.NotNull().WithNullability(nullable)
	case op == token.DPIPE || op == token.LIKE:
		if !isStringish(lt) || !isStringish(rt) {
			return nil, binaryOpTypeMismatch(lt, rt)
		}
		if op == token.LIKE {
			out = types.Bool.NotNull().WithNullability(nullable)
		} else {
			out = types.String.NotNull().WithNullability(nullable)
		}
	default:
		return nil, invalidExpression("unsupported operator %s", op)
	}
	return &BoundBinaryOp{Op: op, Left: left, Right: right, Type: out}, nil
}

func isStringish(t types.DataType) bool {
	return t.Kind == types.String || t.Kind == types.Null
}

// castStringConstant converts a string constant to the kind of the other
// operand, so that a = '1' compares integers.
func castStringConstant(e BoundExpr, other types.DataType) (BoundExpr, error) {
	c, ok := e.(*BoundConstant)
	if !ok || c.Value.Kind() != types.String || other.Kind == types.String || other.Kind == types.Null {
		return e, nil
	}
	return castConstant(c, other.Kind)
}

func castConstant(c *BoundConstant, to types.DataTypeKind) (BoundExpr, error) {
	v, err := types.Cast(c.Value, to)
	if err != nil {
		var ce *types.CastError
		if errors.As(err, &ce) {
			return nil, castError(ce)
		}
		return nil, err
	}
	return &BoundConstant{Value: v}, nil
}

func negateIf(not bool, e BoundExpr) BoundExpr {
	if !not {
		return e
	}
	return &BoundUnaryOp{Op: token.NOT, Expr: e, Type: e.ReturnType()}
}

func (b *Binder) bindUnaryOp(e *core.UnaryExpr) (BoundExpr, error) {
	inner, err := b.bindExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	t := inner.ReturnType()
	switch e.Op {
	case token.NOT:
		if t.Kind != types.Bool && t.Kind != types.Null {
			return nil, invalidExpression("argument of NOT must be type BOOLEAN, not %s", t)
		}
	case token.MINUS, token.PLUS:
		if !t.Kind.IsNumeric() && t.Kind != types.Null {
			return nil, invalidExpression("operator %s cannot be applied to %s", e.Op, t)
		}
	default:
		return nil, invalidExpression("unsupported unary operator %s", e.Op)
	}
	return &BoundUnaryOp{Op: e.Op, Expr: inner, Type: t}, nil
}

// castable reports whether values of kind from may be cast to kind to.
func castable(from, to types.DataTypeKind) bool {
	switch {
	case from == to, from == types.Null, from == types.String, to == types.String:
		return true
	case from.IsNumeric() && to.IsNumeric():
		return true
	case from == types.Bool && to.IsInteger(), from.IsInteger() && to == types.Bool:
		return true
	}
	return false
}

func (b *Binder) bindCast(e *core.CastExpr) (BoundExpr, error) {
	inner, err := b.bindExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	to, err := types.ParseTypeName(e.TypeName)
	if err != nil {
		return nil, invalidExpression("%v", err)
	}
	from := inner.ReturnType()
	if c, ok := inner.(*BoundConstant); ok {
		if inner, err = castConstant(c, to.Kind); err != nil {
			return nil, err
		}
	} else if !castable(from.Kind, to.Kind) {
		return nil, invalidExpression("cannot cast type %s to %s", from, to)
	}
	return &BoundTypeCast{Expr: inner, Type: to.WithNullability(from.Nullable)}, nil
}

func (b *Binder) bindIn(e *core.InExpr) (BoundExpr, error) {
	left, err := b.bindExpr(e.Expr)
	if err != nil {
		return nil, err
	}

	if e.Query != nil {
		query, err := b.bindSubquery(e.Query)
		if err != nil {
			return nil, err
		}
		cols := query.OutputColumns()
		if len(cols) != 1 {
			return nil, invalidExpression("subquery has too many columns")
		}
		if _, ok := types.Coerce(left.ReturnType(), cols[0].DataType); !ok {
			return nil, binaryOpTypeMismatch(left.ReturnType(), cols[0].DataType)
		}
		return &BoundSubquery{
			Kind:  SubqueryIn,
			Query: query,
			Expr:  left,
			Not:   e.Not,
			Type:  types.Bool.Nullable(),
		}, nil
	}

	lt := left.ReturnType()
	nullable := lt.Nullable
	list := make([]BoundExpr, len(e.Values))
	for i, v := range e.Values {
		bound, err := b.bindExpr(v)
		if err != nil {
			return nil, err
		}
		if bound, err = castStringConstant(bound, lt); err != nil {
			return nil, err
		}
		vt := bound.ReturnType()
		if _, ok := types.Coerce(lt, vt); !ok {
			return nil, binaryOpTypeMismatch(lt, vt)
		}
		nullable = nullable || vt.Nullable
		list[i] = bound
	}
	return &BoundInList{Expr: left, List: list, Not: e.Not, Type: types.Bool.NotNull().WithNullability(nullable)}, nil
}

// bindBetween rewrites x BETWEEN lo AND hi as x >= lo AND x <= hi.
func (b *Binder) bindBetween(e *core.BetweenExpr) (BoundExpr, error) {
	x, err := b.bindExpr(e.Expr)
	if err != nil {
		return nil, err
	}
	lo, hi, err := b.bindPair(e.Low, e.High)
	if err != nil {
		return nil, err
	}
	ge, err := bindBinaryOp(token.GE, x, lo)
	if err != nil {
		return nil, err
	}
	le, err := bindBinaryOp(token.LE, x, hi)
	if err != nil {
		return nil, err
	}
	and, err := bindBinaryOp(token.AND, ge, le)
	if err != nil {
		return nil, err
	}
	return negateIf(e.Not, and), nil
}

// bindSubquery binds a query nested in an expression. It may reference
// columns of the enclosing scopes.
func (b *Binder) bindSubquery(s *core.SelectStmt) (*BoundSelect, error) {
	if s == nil {
		return nil, invalidExpression("missing subquery")
	}
	return b.bindSelect(s, true)
}

func (b *Binder) bindScalarSubquery(e *core.SubqueryExpr) (BoundExpr, error) {
	query, err := b.bindSubquery(e.Select)
	if err != nil {
		return nil, err
	}
	cols := query.OutputColumns()
	if len(cols) != 1 {
		return nil, invalidExpression("subquery must return only one column")
	}
	return &BoundSubquery{Kind: SubqueryScalar, Query: query, Type: cols[0].DataType.WithNullability(true)}, nil
}

// bindValue binds e as a value stored into the column described by desc.
// Constants are cast to the column type and NULL is rejected for NOT NULL
// columns.
func (b *Binder) bindValue(e core.Expr, desc catalog.ColumnDesc) (BoundExpr, error) {
	bound, err := b.bindExpr(e)
	if err != nil {
		return nil, err
	}
	return coerceToColumn(bound, desc)
}

func coerceToColumn(bound BoundExpr, desc catalog.ColumnDesc) (BoundExpr, error) {
	if c, ok := bound.(*BoundConstant); ok {
		if c.Value.IsNull() {
			if !desc.IsNullable() {
				return nil, notNullableColumn(desc.Name)
			}
			return c, nil
		}
		return castConstant(c, desc.DataType.Kind)
	}
	t := bound.ReturnType()
	if t.Kind == types.Null && !desc.IsNullable() {
		return nil, notNullableColumn(desc.Name)
	}
	if _, ok := types.Coerce(desc.DataType, t); !ok {
		return nil, invalidExpression("column %s is of type %s but expression is of type %s", desc.Name, desc.DataType, t)
	}
	return bound, nil
}

// requireBool checks that a predicate such as WHERE or ON is boolean.
func requireBool(clause string, e BoundExpr) error {
	t := e.ReturnType()
	if t.Kind != types.Bool && t.Kind != types.Null {
		return invalidExpression("argument of %s must be type BOOLEAN, not %s", clause, t)
	}
	return nil
}
