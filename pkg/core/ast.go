package core

import (
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// TableRef is a marker interface for FROM clause items.
type TableRef interface {
	Node
	tableRefNode()
}

// NodeInfo provides the source span shared by all nodes.
type NodeInfo struct {
	Span token.Span
}

// Pos implements Node.
func (n *NodeInfo) Pos() token.Position { return n.Span.Start }

// ObjectName is a possibly qualified name such as schema.table.
// Parts are stored as written; callers normalize case.
type ObjectName []string

// String joins the parts with dots.
func (n ObjectName) String() string {
	return strings.Join(n, ".")
}

// Last returns the final part, or "" for an empty name.
func (n ObjectName) Last() string {
	if len(n) == 0 {
		return ""
	}
	return n[len(n)-1]
}
