package binder

import (
	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/token"
	"github.com/leapstack-labs/leapbind/pkg/types"
)

// BoundExpr is a resolved, typed expression.
type BoundExpr interface {
	ReturnType() types.DataType
	boundExpr()
}

// BoundColumnRef references a column of a table visible in some scope.
type BoundColumnRef struct {
	// Table is the name the column was resolved through (alias or table name).
	Table string `json:"table"`
	// TableRef is zero for columns of derived tables.
	TableRef catalog.TableRefID `json:"table_ref"`
	Derived  bool               `json:"derived,omitempty"`
	ColumnID catalog.ColumnID   `json:"column_id"`
	Desc     catalog.ColumnDesc `json:"desc"`
	// Depth counts the enclosing scopes crossed; 0 is the current scope.
	Depth int `json:"depth,omitempty"`
}

// ReturnType implements BoundExpr.
func (e *BoundColumnRef) ReturnType() types.DataType { return e.Desc.DataType }

// BoundConstant is a typed literal.
type BoundConstant struct {
	Value types.DataValue `json:"value"`
}

// ReturnType implements BoundExpr.
func (e *BoundConstant) ReturnType() types.DataType { return e.Value.DataType() }

// BoundBinaryOp is a binary operation with its result type.
type BoundBinaryOp struct {
	Op    token.TokenType `json:"op"`
	Left  BoundExpr       `json:"left"`
	Right BoundExpr       `json:"right"`
	Type  types.DataType  `json:"type"`
}

// ReturnType implements BoundExpr.
func (e *BoundBinaryOp) ReturnType() types.DataType { return e.Type }

// BoundUnaryOp is NOT, unary minus or unary plus.
type BoundUnaryOp struct {
	Op   token.TokenType `json:"op"`
	Expr BoundExpr       `json:"expr"`
	Type types.DataType  `json:"type"`
}

// ReturnType implements BoundExpr.
func (e *BoundUnaryOp) ReturnType() types.DataType { return e.Type }

// BoundTypeCast is CAST(expr AS type).
type BoundTypeCast struct {
	Expr BoundExpr      `json:"expr"`
	Type types.DataType `json:"type"`
}

// ReturnType implements BoundExpr.
func (e *BoundTypeCast) ReturnType() types.DataType { return e.Type }

// BoundIsNull is expr IS [NOT] NULL.
type BoundIsNull struct {
	Expr BoundExpr `json:"expr"`
	Not  bool      `json:"not,omitempty"`
}

// ReturnType implements BoundExpr.
func (e *BoundIsNull) ReturnType() types.DataType { return types.Bool.NotNull() }

// BoundInList is expr [NOT] IN (v1, v2, ...).
type BoundInList struct {
	Expr BoundExpr      `json:"expr"`
	List []BoundExpr    `json:"list"`
	Not  bool           `json:"not,omitempty"`
	Type types.DataType `json:"type"`
}

// ReturnType implements BoundExpr.
func (e *BoundInList) ReturnType() types.DataType { return e.Type }

// BoundAggCall is an aggregate function call.
type BoundAggCall struct {
	Func     string         `json:"func"`
	Distinct bool           `json:"distinct,omitempty"`
	Args     []BoundExpr    `json:"args"`
	Type     types.DataType `json:"type"`
}

// ReturnType implements BoundExpr.
func (e *BoundAggCall) ReturnType() types.DataType { return e.Type }

// BoundFuncCall is a scalar function call.
type BoundFuncCall struct {
	Func string         `json:"func"`
	Args []BoundExpr    `json:"args"`
	Type types.DataType `json:"type"`
}

// ReturnType implements BoundExpr.
func (e *BoundFuncCall) ReturnType() types.DataType { return e.Type }

// BoundAlias names a SELECT-list expression.
type BoundAlias struct {
	Name string    `json:"name"`
	Expr BoundExpr `json:"expr"`
}

// ReturnType implements BoundExpr.
func (e *BoundAlias) ReturnType() types.DataType { return e.Expr.ReturnType() }

// SubqueryKind distinguishes the forms of expression subqueries.
type SubqueryKind int

// SubqueryKind constants.
const (
	SubqueryScalar SubqueryKind = iota
	SubqueryExists
	SubqueryIn
)

func (k SubqueryKind) String() string {
	switch k {
	case SubqueryExists:
		return "EXISTS"
	case SubqueryIn:
		return "IN"
	default:
		return "SCALAR"
	}
}

// MarshalText encodes the kind by name.
func (k SubqueryKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// BoundSubquery is a nested query used as an expression.
type BoundSubquery struct {
	Kind  SubqueryKind `json:"kind"`
	Query *BoundSelect `json:"query"`
	// Expr is the left operand of IN.
	Expr BoundExpr      `json:"expr,omitempty"`
	Not  bool           `json:"not,omitempty"`
	Type types.DataType `json:"type"`
}

// ReturnType implements BoundExpr.
func (e *BoundSubquery) ReturnType() types.DataType { return e.Type }

func (*BoundColumnRef) boundExpr() {}
func (*BoundConstant) boundExpr()  {}
func (*BoundBinaryOp) boundExpr()  {}
func (*BoundUnaryOp) boundExpr()   {}
func (*BoundTypeCast) boundExpr()  {}
func (*BoundIsNull) boundExpr()    {}
func (*BoundInList) boundExpr()    {}
func (*BoundAggCall) boundExpr()   {}
func (*BoundFuncCall) boundExpr()  {}
func (*BoundAlias) boundExpr()     {}
func (*BoundSubquery) boundExpr()  {}

// walk calls fn on e and its operands, depth first, until fn returns false.
// It does not descend into subqueries.
func walk(e BoundExpr, fn func(BoundExpr) bool) bool {
	if e == nil {
		return true
	}
	if !fn(e) {
		return false
	}
	switch e := e.(type) {
	case *BoundBinaryOp:
		return walk(e.Left, fn) && walk(e.Right, fn)
	case *BoundUnaryOp:
		return walk(e.Expr, fn)
	case *BoundTypeCast:
		return walk(e.Expr, fn)
	case *BoundIsNull:
		return walk(e.Expr, fn)
	case *BoundInList:
		if !walk(e.Expr, fn) {
			return false
		}
		for _, v := range e.List {
			if !walk(v, fn) {
				return false
			}
		}
	case *BoundAggCall:
		for _, a := range e.Args {
			if !walk(a, fn) {
				return false
			}
		}
	case *BoundFuncCall:
		for _, a := range e.Args {
			if !walk(a, fn) {
				return false
			}
		}
	case *BoundAlias:
		return walk(e.Expr, fn)
	case *BoundSubquery:
		return walk(e.Expr, fn)
	}
	return true
}

// hasAggregate reports whether e contains an aggregate call.
func hasAggregate(e BoundExpr) bool {
	found := false
	walk(e, func(x BoundExpr) bool {
		_, found = x.(*BoundAggCall)
		return !found
	})
	return found
}
