// Package types defines the scalar type system shared by the catalog and the binder:
// data type kinds, nullable data types, typed values, casts and coercion.
package types

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/core"
)

// DataTypeKind enumerates the logical scalar types.
type DataTypeKind int

// DataTypeKind constants. Null is the type of an untyped NULL literal.
const (
	Null DataTypeKind = iota
	Bool
	Int32
	Int64
	Float64
	Decimal
	String
	Date
)

var kindNames = [...]string{
	Null:    "NULL",
	Bool:    "BOOLEAN",
	Int32:   "INT",
	Int64:   "BIGINT",
	Float64: "DOUBLE",
	Decimal: "DECIMAL",
	String:  "STRING",
	Date:    "DATE",
}

// String returns the SQL spelling of the kind.
func (k DataTypeKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k DataTypeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Nullable returns a nullable type of this kind.
func (k DataTypeKind) Nullable() DataType {
	return DataType{Kind: k, Nullable: true}
}

// NotNull returns a non-nullable type of this kind.
func (k DataTypeKind) NotNull() DataType {
	return DataType{Kind: k}
}

// IsNumeric reports whether values of the kind support arithmetic.
func (k DataTypeKind) IsNumeric() bool {
	switch k {
	case Int32, Int64, Float64, Decimal:
		return true
	default:
		return false
	}
}

// IsInteger reports whether the kind is Int32 or Int64.
func (k DataTypeKind) IsInteger() bool {
	return k == Int32 || k == Int64
}

// DataType describes the logical type and nullability of a column or expression.
type DataType struct {
	Kind      DataTypeKind `json:"kind"`
	Nullable  bool         `json:"nullable"`
	Precision int          `json:"precision,omitempty"`
	Scale     int          `json:"scale,omitempty"`
}

// NewDecimal constructs a DECIMAL(precision, scale) type.
func NewDecimal(nullable bool, precision, scale int) DataType {
	return DataType{Kind: Decimal, Nullable: nullable, Precision: precision, Scale: scale}
}

// WithNullability produces a copy of the type with the provided nullability.
func (t DataType) WithNullability(nullable bool) DataType {
	t.Nullable = nullable
	return t
}

// String renders the type the way it would be declared, e.g. DECIMAL(10,2).
func (t DataType) String() string {
	if t.Kind == Decimal && t.Precision > 0 {
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	}
	return t.Kind.String()
}

// UnsupportedTypeError is returned by ParseTypeName for unknown type names.
type UnsupportedTypeError struct {
	Name string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported data type %q", e.Name)
}

// ParseTypeName maps a declared SQL type to a nullable DataType.
// Callers apply NOT NULL themselves.
func ParseTypeName(tn core.TypeName) (DataType, error) {
	name := strings.ToUpper(strings.TrimSpace(tn.Name))
	switch name {
	case "BOOLEAN", "BOOL":
		return Bool.Nullable(), nil
	case "INT", "INTEGER", "INT4", "SMALLINT", "INT2", "TINYINT":
		return Int32.Nullable(), nil
	case "BIGINT", "INT8", "LONG":
		return Int64.Nullable(), nil
	case "DOUBLE", "DOUBLE PRECISION", "FLOAT", "FLOAT8", "REAL", "FLOAT4":
		return Float64.Nullable(), nil
	case "DECIMAL", "NUMERIC":
		dt := Decimal.Nullable()
		switch len(tn.Args) {
		case 0:
		case 1:
			dt.Precision = tn.Args[0]
		case 2:
			dt.Precision, dt.Scale = tn.Args[0], tn.Args[1]
		default:
			return DataType{}, &UnsupportedTypeError{Name: tn.Name}
		}
		if dt.Scale > dt.Precision && dt.Precision > 0 {
			return DataType{}, &UnsupportedTypeError{Name: tn.Name}
		}
		return dt, nil
	case "VARCHAR", "CHAR", "CHARACTER", "CHARACTER VARYING", "TEXT", "STRING", "BPCHAR":
		return String.Nullable(), nil
	case "DATE":
		return Date.Nullable(), nil
	default:
		return DataType{}, &UnsupportedTypeError{Name: tn.Name}
	}
}

// ParseTypeString parses a type as reported by information_schema, e.g.
// "DECIMAL(18,3)" or "character varying".
func ParseTypeString(s string) (DataType, error) {
	tn := core.TypeName{Name: s}
	if open := strings.IndexByte(s, '('); open >= 0 && strings.HasSuffix(s, ")") {
		tn.Name = s[:open]
		for _, part := range strings.Split(s[open+1:len(s)-1], ",") {
			var n int
			if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &n); err != nil {
				return DataType{}, &UnsupportedTypeError{Name: s}
			}
			tn.Args = append(tn.Args, n)
		}
	}
	dt, err := ParseTypeName(tn)
	if err != nil {
		return DataType{}, &UnsupportedTypeError{Name: s}
	}
	return dt, nil
}

// numericRank orders the numeric kinds by widening.
var numericRank = map[DataTypeKind]int{
	Int32:   1,
	Int64:   2,
	Decimal: 3,
	Float64: 4,
}

// Coerce returns the common type of a and b.
// Identical kinds are compatible, NULL adopts the other side,
// and numerics widen Int32 < Int64 < Decimal < Float64.
func Coerce(a, b DataType) (DataType, bool) {
	nullable := a.Nullable || b.Nullable
	switch {
	case a.Kind == b.Kind:
		out := a
		if b.Precision > out.Precision {
			out.Precision = b.Precision
		}
		if b.Scale > out.Scale {
			out.Scale = b.Scale
		}
		return out.WithNullability(nullable), true
	case a.Kind == Null:
		return b.WithNullability(true), true
	case b.Kind == Null:
		return a.WithNullability(true), true
	case a.Kind.IsNumeric() && b.Kind.IsNumeric():
		wide := a
		if numericRank[b.Kind] > numericRank[a.Kind] {
			wide = b
		}
		return wide.WithNullability(nullable), true
	default:
		return DataType{}, false
	}
}
