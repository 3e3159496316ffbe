package binder

import (
	"fmt"

	"github.com/leapstack-labs/leapbind/pkg/types"
)

// ErrorKind classifies bind failures.
type ErrorKind int

// ErrorKind constants.
const (
	KindInvalidDatabase ErrorKind = iota + 1
	KindInvalidSchema
	KindInvalidTable
	KindInvalidColumn
	KindDuplicatedTable
	KindDuplicatedColumn
	KindInvalidExpression
	KindNotNullableColumn
	KindBinaryOpTypeMismatch
	KindAmbiguousColumn
	KindInvalidTableName
	KindNotSupported
	KindInvalidSQL
	KindCast
	KindBindFunction
)

var kindNames = map[ErrorKind]string{
	KindInvalidDatabase:      "invalid database",
	KindInvalidSchema:        "invalid schema",
	KindInvalidTable:         "invalid table",
	KindInvalidColumn:        "invalid column",
	KindDuplicatedTable:      "duplicated table",
	KindDuplicatedColumn:     "duplicated column",
	KindInvalidExpression:    "invalid expression",
	KindNotNullableColumn:    "not nullable column",
	KindBinaryOpTypeMismatch: "binary operator types mismatch",
	KindAmbiguousColumn:      "ambiguous column",
	KindInvalidTableName:     "invalid table name",
	KindNotSupported:         "SQL not supported",
	KindInvalidSQL:           "invalid SQL",
	KindCast:                 "cannot cast",
	KindBindFunction:         "function error",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned for every user-facing bind failure. The message is meant
// to be shown to end users verbatim.
type Error struct {
	Kind ErrorKind
	// Name is the offending object or column, when there is one.
	Name string
	msg  string
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Kind.String()
	}
	return e.msg
}

// Is matches sentinel errors by kind, so errors.Is(err, ErrAmbiguousColumn) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.msg == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidDatabase      = &Error{Kind: KindInvalidDatabase}
	ErrInvalidSchema        = &Error{Kind: KindInvalidSchema}
	ErrInvalidTable         = &Error{Kind: KindInvalidTable}
	ErrInvalidColumn        = &Error{Kind: KindInvalidColumn}
	ErrDuplicatedTable      = &Error{Kind: KindDuplicatedTable}
	ErrDuplicatedColumn     = &Error{Kind: KindDuplicatedColumn}
	ErrInvalidExpression    = &Error{Kind: KindInvalidExpression}
	ErrNotNullableColumn    = &Error{Kind: KindNotNullableColumn}
	ErrBinaryOpTypeMismatch = &Error{Kind: KindBinaryOpTypeMismatch}
	ErrAmbiguousColumn      = &Error{Kind: KindAmbiguousColumn}
	ErrInvalidTableName     = &Error{Kind: KindInvalidTableName}
	ErrNotSupported         = &Error{Kind: KindNotSupported}
	ErrInvalidSQL           = &Error{Kind: KindInvalidSQL}
	ErrCast                 = &Error{Kind: KindCast}
	ErrBindFunction         = &Error{Kind: KindBindFunction}
)

func invalidDatabase(name string) error {
	return &Error{Kind: KindInvalidDatabase, Name: name, msg: "invalid database " + name}
}

func invalidSchema(name string) error {
	return &Error{Kind: KindInvalidSchema, Name: name, msg: "invalid schema " + name}
}

func invalidTable(name string) error {
	return &Error{Kind: KindInvalidTable, Name: name, msg: "invalid table " + name}
}

func invalidColumn(name string) error {
	return &Error{Kind: KindInvalidColumn, Name: name, msg: "invalid column " + name}
}

func duplicatedTable(name string) error {
	return &Error{Kind: KindDuplicatedTable, Name: name, msg: "duplicated table " + name}
}

func duplicatedColumn(name string) error {
	return &Error{Kind: KindDuplicatedColumn, Name: name, msg: "duplicated column " + name}
}

func invalidExpression(format string, args ...any) error {
	return &Error{Kind: KindInvalidExpression, msg: "invalid expression: " + fmt.Sprintf(format, args...)}
}

func notNullableColumn(name string) error {
	return &Error{Kind: KindNotNullableColumn, Name: name, msg: "not nullable column: " + name}
}

func binaryOpTypeMismatch(left, right types.DataType) error {
	return &Error{
		Kind: KindBinaryOpTypeMismatch,
		msg:  fmt.Sprintf("binary operator types mismatch: %s != %s", left, right),
	}
}

func ambiguousColumn(name string) error {
	return &Error{Kind: KindAmbiguousColumn, Name: name, msg: "ambiguous column"}
}

func invalidTableName(parts []string) error {
	return &Error{Kind: KindInvalidTableName, msg: fmt.Sprintf("invalid table name: %v", parts)}
}

func castError(err *types.CastError) error {
	return &Error{Kind: KindCast, msg: err.Error()}
}

func bindFunctionError(format string, args ...any) error {
	return &Error{Kind: KindBindFunction, msg: fmt.Sprintf(format, args...)}
}
