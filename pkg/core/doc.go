// Package core defines the shared language of leapbind.
//
// This package contains:
//   - the unbound statement tree produced by pkg/parser (Node, Expr, Stmt, TableRef)
//   - the adapter contract used to introspect live catalogs
//
// pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
