package binder

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/types"
)

// FunctionCategory classifies SQL functions by their purpose.
type FunctionCategory string

// FunctionCategory constants.
const (
	CategoryAggregate   FunctionCategory = "aggregate"
	CategoryNumeric     FunctionCategory = "numeric"
	CategoryString      FunctionCategory = "string"
	CategoryConditional FunctionCategory = "conditional"
)

// variadic marks a function without an upper argument bound.
const variadic = -1

// FunctionInfo describes a function the binder can type.
type FunctionInfo struct {
	Name        string           // Function name (e.g., "COUNT")
	Signature   string           // Full signature (e.g., "COUNT(expr) -> bigint")
	Description string           // Brief description
	Category    FunctionCategory // Function category
	IsAggregate bool             // True if this is an aggregate function
	MinArgs     int
	MaxArgs     int // variadic for no limit

	returnType func(args []types.DataType) (types.DataType, bool)
}

// Functions lists every function known to the binder.
var Functions = []FunctionInfo{
	// Aggregates
	{Name: "COUNT", Signature: "COUNT(expr) -> bigint", Description: "Count non-null values", Category: CategoryAggregate, IsAggregate: true, MinArgs: 1, MaxArgs: 1, returnType: countType},
	{Name: "SUM", Signature: "SUM(expr) -> numeric", Description: "Sum of all values", Category: CategoryAggregate, IsAggregate: true, MinArgs: 1, MaxArgs: 1, returnType: sumType},
	{Name: "AVG", Signature: "AVG(expr) -> numeric", Description: "Average of all values", Category: CategoryAggregate, IsAggregate: true, MinArgs: 1, MaxArgs: 1, returnType: avgType},
	{Name: "MIN", Signature: "MIN(expr) -> same", Description: "Minimum value", Category: CategoryAggregate, IsAggregate: true, MinArgs: 1, MaxArgs: 1, returnType: sameNullable},
	{Name: "MAX", Signature: "MAX(expr) -> same", Description: "Maximum value", Category: CategoryAggregate, IsAggregate: true, MinArgs: 1, MaxArgs: 1, returnType: sameNullable},

	// Numeric
	{Name: "ABS", Signature: "ABS(x) -> same", Description: "Absolute value", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 1, returnType: numericSame},
	{Name: "ROUND", Signature: "ROUND(x, [digits]) -> same", Description: "Round to digits", Category: CategoryNumeric, MinArgs: 1, MaxArgs: 2, returnType: roundType},

	// String
	{Name: "LOWER", Signature: "LOWER(str) -> varchar", Description: "Convert to lowercase", Category: CategoryString, MinArgs: 1, MaxArgs: 1, returnType: stringSame},
	{Name: "UPPER", Signature: "UPPER(str) -> varchar", Description: "Convert to uppercase", Category: CategoryString, MinArgs: 1, MaxArgs: 1, returnType: stringSame},
	{Name: "LENGTH", Signature: "LENGTH(str) -> integer", Description: "Number of characters", Category: CategoryString, MinArgs: 1, MaxArgs: 1, returnType: lengthType},

	// Conditional
	{Name: "COALESCE", Signature: "COALESCE(expr, ...) -> same", Description: "First non-null argument", Category: CategoryConditional, MinArgs: 1, MaxArgs: variadic, returnType: coalesceType},
}

var functionsByName = func() map[string]*FunctionInfo {
	m := make(map[string]*FunctionInfo, len(Functions))
	for i := range Functions {
		m[Functions[i].Name] = &Functions[i]
	}
	return m
}()

// LookupFunction finds a function by name, case-insensitively.
func LookupFunction(name string) (*FunctionInfo, bool) {
	fn, ok := functionsByName[strings.ToUpper(name)]
	return fn, ok
}

func countType([]types.DataType) (types.DataType, bool) {
	return types.Int64.NotNull(), true
}

func sumType(args []types.DataType) (types.DataType, bool) {
	switch args[0].Kind {
	case types.Int32, types.Int64, types.Null:
		return types.Int64.Nullable(), true
	case types.Decimal, types.Float64:
		return args[0].WithNullability(true), true
	}
	return types.DataType{}, false
}

func avgType(args []types.DataType) (types.DataType, bool) {
	switch args[0].Kind {
	case types.Int32, types.Int64, types.Decimal, types.Null:
		return types.Decimal.Nullable(), true
	case types.Float64:
		return types.Float64.Nullable(), true
	}
	return types.DataType{}, false
}

func sameNullable(args []types.DataType) (types.DataType, bool) {
	return args[0].WithNullability(true), true
}

func numericSame(args []types.DataType) (types.DataType, bool) {
	if args[0].Kind.IsNumeric() || args[0].Kind == types.Null {
		return args[0], true
	}
	return types.DataType{}, false
}

func roundType(args []types.DataType) (types.DataType, bool) {
	if len(args) == 2 && !args[1].Kind.IsInteger() && args[1].Kind != types.Null {
		return types.DataType{}, false
	}
	return numericSame(args[:1])
}

func stringSame(args []types.DataType) (types.DataType, bool) {
	switch args[0].Kind {
	case types.String, types.Null:
		return types.DataType{Kind: types.String, Nullable: args[0].Nullable}, true
	}
	return types.DataType{}, false
}

func lengthType(args []types.DataType) (types.DataType, bool) {
	if _, ok := stringSame(args); !ok {
		return types.DataType{}, false
	}
	return types.DataType{Kind: types.Int32, Nullable: args[0].Nullable}, true
}

func coalesceType(args []types.DataType) (types.DataType, bool) {
	out := args[0]
	for _, a := range args[1:] {
		nullable := out.Nullable && a.Nullable
		var ok bool
		if out, ok = types.Coerce(out, a); !ok {
			return types.DataType{}, false
		}
		out = out.WithNullability(nullable)
	}
	return out, true
}

// bindFunction binds a function or aggregate call.
func (b *Binder) bindFunction(call *core.FuncCall) (BoundExpr, error) {
	fn, ok := LookupFunction(call.Name)
	if !ok {
		return nil, bindFunctionError("function %s does not exist", strings.ToLower(call.Name))
	}
	if call.Star {
		if fn.Name != "COUNT" {
			return nil, bindFunctionError("%s(*) is not supported", fn.Name)
		}
		return &BoundAggCall{Func: fn.Name, Type: types.Int64.NotNull()}, nil
	}
	if call.Distinct && !fn.IsAggregate {
		return nil, bindFunctionError("DISTINCT specified, but %s is not an aggregate function", fn.Name)
	}
	if len(call.Args) < fn.MinArgs || (fn.MaxArgs != variadic && len(call.Args) > fn.MaxArgs) {
		return nil, bindFunctionError("function %s takes %s, got %d", fn.Name, arity(fn), len(call.Args))
	}
	if fn.IsAggregate {
		if b.inAggregate {
			return nil, bindFunctionError("aggregate function calls cannot be nested")
		}
		b.inAggregate = true
		defer func() { b.inAggregate = false }()
	}

	args := make([]BoundExpr, len(call.Args))
	argTypes := make([]types.DataType, len(call.Args))
	for i, a := range call.Args {
		bound, err := b.bindExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = bound
		argTypes[i] = bound.ReturnType()
	}

	rt, ok := fn.returnType(argTypes)
	if !ok {
		kinds := make([]string, len(argTypes))
		for i, t := range argTypes {
			kinds[i] = t.String()
		}
		return nil, bindFunctionError("function %s(%s) does not exist", fn.Name, strings.Join(kinds, ", "))
	}
	if fn.IsAggregate {
		return &BoundAggCall{Func: fn.Name, Distinct: call.Distinct, Args: args, Type: rt}, nil
	}
	return &BoundFuncCall{Func: fn.Name, Args: args, Type: rt}, nil
}

func arity(fn *FunctionInfo) string {
	switch {
	case fn.MaxArgs == variadic:
		return "at least " + plural(fn.MinArgs)
	case fn.MinArgs == fn.MaxArgs:
		return plural(fn.MinArgs)
	default:
		return strconv.Itoa(fn.MinArgs) + " to " + plural(fn.MaxArgs)
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return strconv.Itoa(n) + " arguments"
}
