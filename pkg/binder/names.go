package binder

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/core"
)

// SplitName splits a table name into schema and table.
// A bare name lives in the default schema; more than two parts is an error.
func SplitName(name core.ObjectName) (schema, table string, err error) {
	switch len(name) {
	case 1:
		return catalog.DefaultSchemaName, name[0], nil
	case 2:
		return name[0], name[1], nil
	default:
		return "", "", invalidTableName(name)
	}
}

// LowerCaseName folds every part of name to lower case.
func LowerCaseName(name core.ObjectName) core.ObjectName {
	out := make(core.ObjectName, len(name))
	for i, part := range name {
		out[i] = lowerIdent(part)
	}
	return out
}

// lowerIdent folds a single identifier. A Caser holds state, so one is built
// per call.
func lowerIdent(s string) string {
	return cases.Lower(language.Und).String(s)
}

// resolveName lower-cases and splits name.
func resolveName(name core.ObjectName) (schema, table string, err error) {
	return SplitName(LowerCaseName(name))
}
