package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the textual form of DATE values.
const DateLayout = "2006-01-02"

// DataValue is a typed scalar value. The zero value is NULL.
type DataValue struct {
	kind DataTypeKind
	b    bool
	i    int64
	f    float64
	d    decimal.Decimal
	s    string
	t    time.Time
}

// NullValue returns the NULL value.
func NullValue() DataValue { return DataValue{} }

// BoolValue wraps a boolean.
func BoolValue(v bool) DataValue { return DataValue{kind: Bool, b: v} }

// Int32Value wraps a 32-bit integer.
func Int32Value(v int32) DataValue { return DataValue{kind: Int32, i: int64(v)} }

// Int64Value wraps a 64-bit integer.
func Int64Value(v int64) DataValue { return DataValue{kind: Int64, i: v} }

// Float64Value wraps a float.
func Float64Value(v float64) DataValue { return DataValue{kind: Float64, f: v} }

// DecimalValue wraps a fixed-point number.
func DecimalValue(v decimal.Decimal) DataValue { return DataValue{kind: Decimal, d: v} }

// StringValue wraps a string.
func StringValue(v string) DataValue { return DataValue{kind: String, s: v} }

// DateValue wraps a calendar date; the time of day is dropped.
func DateValue(v time.Time) DataValue {
	y, m, d := v.Date()
	return DataValue{kind: Date, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Kind returns the value's kind.
func (v DataValue) Kind() DataTypeKind { return v.kind }

// IsNull reports whether v is NULL.
func (v DataValue) IsNull() bool { return v.kind == Null }

// DataType returns the type of the value. Only NULL is nullable.
func (v DataValue) DataType() DataType {
	dt := DataType{Kind: v.kind, Nullable: v.kind == Null}
	if v.kind == Decimal {
		dt.Scale = int(-v.d.Exponent())
		if dt.Scale < 0 {
			dt.Scale = 0
		}
	}
	return dt
}

// Bool returns the boolean payload.
func (v DataValue) Bool() bool { return v.b }

// Int returns the integer payload of Int32 and Int64 values.
func (v DataValue) Int() int64 { return v.i }

// Float returns the float payload.
func (v DataValue) Float() float64 { return v.f }

// Decimal returns the decimal payload.
func (v DataValue) Decimal() decimal.Decimal { return v.d }

// Str returns the string payload.
func (v DataValue) Str() string { return v.s }

// Time returns the date payload.
func (v DataValue) Time() time.Time { return v.t }

// Equal reports whether two values have the same kind and payload.
func (v DataValue) Equal(o DataValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Int32, Int64:
		return v.i == o.i
	case Float64:
		return v.f == o.f
	case Decimal:
		return v.d.Equal(o.d)
	case String:
		return v.s == o.s
	case Date:
		return v.t.Equal(o.t)
	}
	return false
}

// String renders the value as a SQL literal.
func (v DataValue) String() string {
	switch v.kind {
	case Null:
		return "NULL"
	case Bool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case Int32, Int64:
		return strconv.FormatInt(v.i, 10)
	case Float64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case Decimal:
		return v.d.String()
	case String:
		return "'" + strings.ReplaceAll(v.s, "'", "''") + "'"
	case Date:
		return "DATE '" + v.t.Format(DateLayout) + "'"
	}
	return "?"
}

// MarshalJSON encodes the payload as its natural JSON value.
// Decimals and dates are encoded as strings to keep them exact.
func (v DataValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(v.b)
	case Int32, Int64:
		return json.Marshal(v.i)
	case Float64:
		return json.Marshal(v.f)
	case Decimal:
		return json.Marshal(v.d.String())
	case String:
		return json.Marshal(v.s)
	case Date:
		return json.Marshal(v.t.Format(DateLayout))
	}
	return nil, fmt.Errorf("unknown value kind %v", v.kind)
}

// ParseNumber converts a numeric literal to the narrowest fitting value:
// Int32, then Int64, then Decimal for integers; Decimal for fixed-point;
// Float64 for exponent notation.
func ParseNumber(lit string) (DataValue, error) {
	if strings.ContainsAny(lit, "eE") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return DataValue{}, fmt.Errorf("invalid number %q: %w", lit, err)
		}
		return Float64Value(f), nil
	}
	if !strings.Contains(lit, ".") {
		if i, err := strconv.ParseInt(lit, 10, 32); err == nil {
			return Int32Value(int32(i)), nil
		}
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int64Value(i), nil
		}
	}
	d, err := decimal.NewFromString(lit)
	if err != nil {
		return DataValue{}, fmt.Errorf("invalid number %q: %w", lit, err)
	}
	return DecimalValue(d), nil
}

// CastError reports a value that cannot be represented in the target kind.
type CastError struct {
	Value DataValue
	To    DataTypeKind
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot cast %s to %s", e.Value, e.To)
}

// Cast converts v to the target kind. NULL casts to NULL.
func Cast(v DataValue, to DataTypeKind) (DataValue, error) {
	if v.kind == to || v.kind == Null {
		return v, nil
	}
	fail := func() (DataValue, error) { return DataValue{}, &CastError{Value: v, To: to} }

	switch to {
	case String:
		switch v.kind {
		case String:
			return v, nil
		case Date:
			return StringValue(v.t.Format(DateLayout)), nil
		case Decimal:
			return StringValue(v.d.String()), nil
		default:
			// TRUE/FALSE and numbers print as themselves.
			return StringValue(strings.ToLower(v.String())), nil
		}
	case Bool:
		switch v.kind {
		case String:
			switch strings.ToLower(strings.TrimSpace(v.s)) {
			case "true", "t", "yes", "y", "1", "on":
				return BoolValue(true), nil
			case "false", "f", "no", "n", "0", "off":
				return BoolValue(false), nil
			}
		case Int32, Int64:
			return BoolValue(v.i != 0), nil
		}
		return fail()
	case Int32, Int64:
		var i int64
		switch v.kind {
		case Bool:
			if v.b {
				i = 1
			}
		case Int32, Int64:
			i = v.i
		case Float64:
			r := math.Round(v.f)
			if math.IsNaN(r) || r > math.MaxInt64 || r < math.MinInt64 {
				return fail()
			}
			i = int64(r)
		case Decimal:
			r := v.d.Round(0)
			if !r.BigInt().IsInt64() {
				return fail()
			}
			i = r.IntPart()
		case String:
			n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
			if err != nil {
				return fail()
			}
			i = n
		default:
			return fail()
		}
		if to == Int32 {
			if i > math.MaxInt32 || i < math.MinInt32 {
				return fail()
			}
			return Int32Value(int32(i)), nil
		}
		return Int64Value(i), nil
	case Float64:
		switch v.kind {
		case Int32, Int64:
			return Float64Value(float64(v.i)), nil
		case Decimal:
			f, _ := v.d.Float64()
			return Float64Value(f), nil
		case String:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
			if err != nil {
				return fail()
			}
			return Float64Value(f), nil
		}
		return fail()
	case Decimal:
		switch v.kind {
		case Int32, Int64:
			return DecimalValue(decimal.NewFromInt(v.i)), nil
		case Float64:
			if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
				return fail()
			}
			return DecimalValue(decimal.NewFromFloat(v.f)), nil
		case String:
			d, err := decimal.NewFromString(strings.TrimSpace(v.s))
			if err != nil {
				return fail()
			}
			return DecimalValue(d), nil
		}
		return fail()
	case Date:
		if v.kind == String {
			t, err := time.Parse(DateLayout, strings.TrimSpace(v.s))
			if err != nil {
				return fail()
			}
			return DateValue(t), nil
		}
		return fail()
	}
	return fail()
}
