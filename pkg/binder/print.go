package binder

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/catalog"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

// Format renders a bound statement as an indented tree.
func Format(stmt BoundStatement) string {
	p := &treePrinter{}
	p.stmt(stmt)
	return p.sb.String()
}

// FormatExpr renders a bound expression on one line.
func FormatExpr(e BoundExpr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

type treePrinter struct {
	sb    strings.Builder
	depth int
}

func (p *treePrinter) line(format string, args ...any) {
	p.sb.WriteString(strings.Repeat("  ", p.depth))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *treePrinter) nested(fn func()) {
	p.depth++
	fn()
	p.depth--
}

func (p *treePrinter) stmt(stmt BoundStatement) {
	switch s := stmt.(type) {
	case *BoundCreateTable:
		p.line("CreateTable %s.%s (schema_id=%d)%s", s.Schema, s.Name, s.SchemaID, flag(s.IfNotExists, " IF NOT EXISTS"))
		p.nested(func() { p.columns(s.Columns) })
	case *BoundDrop:
		p.line("Drop%s%s", flag(s.IfExists, " IF EXISTS"), flag(s.Cascade, " CASCADE"))
		p.nested(func() {
			for _, t := range s.Tables {
				if t.Missing {
					p.line("%s.%s (missing)", t.Schema, t.Name)
					continue
				}
				p.line("%s.%s %s", t.Schema, t.Name, t.Ref)
			}
		})
	case *BoundInsert:
		p.line("Insert %s", baseTable(s.Table))
		p.nested(func() {
			p.line("Columns: %s", columnNames(s.Descs))
			for _, row := range s.Rows {
				p.line("Values: %s", exprList(row))
			}
			if s.Select != nil {
				p.line("Query:%s", flag(s.ReadsTarget, " (reads target)"))
				p.nested(func() { p.selectStmt(s.Select) })
			}
		})
	case *BoundDelete:
		p.line("Delete %s", baseTable(s.Table))
		if s.Where != nil {
			p.nested(func() { p.line("Where: %s", FormatExpr(s.Where)) })
		}
	case *BoundCopy:
		dir, target := "FROM", s.Target
		if s.To {
			dir = "TO"
		}
		if target == "" {
			target = map[bool]string{false: "STDIN", true: "STDOUT"}[s.To]
		}
		p.line("Copy %s %s %s", baseTable(s.Table), dir, target)
		p.nested(func() {
			p.line("Columns: %s", columnNames(s.Descs))
			p.line("Options: format=%s delimiter=%q quote=%q header=%t",
				s.Options.Format, s.Options.Delimiter, s.Options.Quote, s.Options.Header)
		})
	case *BoundSelect:
		p.selectStmt(s)
	case *BoundExplain:
		p.line("Explain")
		p.nested(func() { p.stmt(s.Stmt) })
	}
}

func (p *treePrinter) columns(cols []catalog.ColumnDesc) {
	for _, c := range cols {
		p.line("%s %s%s", c.Name, typeWithNull(c), flag(c.IsPrimary, " PRIMARY KEY"))
	}
}

func typeWithNull(c catalog.ColumnDesc) string {
	if c.IsNullable() {
		return c.DataType.String()
	}
	return c.DataType.String() + " NOT NULL"
}

func (p *treePrinter) selectStmt(s *BoundSelect) {
	p.line("Select%s", flag(s.Distinct, " DISTINCT"))
	p.nested(func() {
		p.line("Projection: %s", exprList(s.SelectList))
		if s.From != nil {
			p.line("From:")
			p.nested(func() { p.tableRef(s.From) })
		}
		if s.Where != nil {
			p.line("Where: %s", FormatExpr(s.Where))
		}
		if len(s.GroupBy) > 0 {
			p.line("GroupBy: %s", exprList(s.GroupBy))
		}
		if s.Having != nil {
			p.line("Having: %s", FormatExpr(s.Having))
		}
		if s.SetOp != "" {
			p.line("%s%s:", s.SetOp, flag(s.All, " ALL"))
			p.nested(func() { p.selectStmt(s.Right) })
		}
		if len(s.OrderBy) > 0 {
			keys := make([]string, len(s.OrderBy))
			for i, o := range s.OrderBy {
				keys[i] = FormatExpr(o.Expr) + flag(o.Desc, " DESC")
			}
			p.line("OrderBy: [%s]", strings.Join(keys, ", "))
		}
		if s.Limit != nil {
			p.line("Limit: %s", FormatExpr(s.Limit))
		}
		if s.Offset != nil {
			p.line("Offset: %s", FormatExpr(s.Offset))
		}
	})
}

func (p *treePrinter) tableRef(ref BoundTableRef) {
	switch r := ref.(type) {
	case *BoundBaseTable:
		p.line("Table %s", baseTable(r))
	case *BoundDerivedTable:
		p.line("Subquery AS %s", r.Alias)
		p.nested(func() { p.selectStmt(r.Query) })
	case *BoundJoin:
		if r.On != nil {
			p.line("Join %s ON %s", r.Type, FormatExpr(r.On))
		} else {
			p.line("Join %s", r.Type)
		}
		p.nested(func() {
			p.tableRef(r.Left)
			p.tableRef(r.Right)
		})
	}
}

func baseTable(t *BoundBaseTable) string {
	s := fmt.Sprintf("%s.%s %s", t.Schema, t.Name, t.Ref)
	if t.Alias != "" {
		s += " AS " + t.Alias
	}
	return s
}

func columnNames(descs []catalog.ColumnDesc) string {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func exprList(list []BoundExpr) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = FormatExpr(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func flag(on bool, s string) string {
	if on {
		return s
	}
	return ""
}

func writeExpr(sb *strings.Builder, e BoundExpr) {
	switch e := e.(type) {
	case *BoundColumnRef:
		sb.WriteString(e.Table + "." + e.Desc.Name)
		if e.Depth > 0 {
			fmt.Fprintf(sb, "^%d", e.Depth)
		}
	case *BoundConstant:
		sb.WriteString(e.Value.String())
	case *BoundBinaryOp:
		sb.WriteByte('(')
		writeExpr(sb, e.Left)
		fmt.Fprintf(sb, " %s ", e.Op)
		writeExpr(sb, e.Right)
		sb.WriteByte(')')
	case *BoundUnaryOp:
		if e.Op == token.NOT {
			sb.WriteString("NOT ")
		} else {
			sb.WriteString(e.Op.String())
		}
		writeExpr(sb, e.Expr)
	case *BoundTypeCast:
		sb.WriteString("CAST(")
		writeExpr(sb, e.Expr)
		fmt.Fprintf(sb, " AS %s)", e.Type)
	case *BoundIsNull:
		writeExpr(sb, e.Expr)
		sb.WriteString(" IS " + flag(e.Not, "NOT ") + "NULL")
	case *BoundInList:
		writeExpr(sb, e.Expr)
		sb.WriteString(flag(e.Not, " NOT") + " IN " + exprList(e.List))
	case *BoundAggCall:
		sb.WriteString(e.Func + "(" + flag(e.Distinct, "DISTINCT "))
		if len(e.Args) == 0 {
			sb.WriteByte('*')
		}
		writeArgs(sb, e.Args)
		sb.WriteByte(')')
	case *BoundFuncCall:
		sb.WriteString(e.Func + "(")
		writeArgs(sb, e.Args)
		sb.WriteByte(')')
	case *BoundAlias:
		writeExpr(sb, e.Expr)
		sb.WriteString(" AS " + e.Name)
	case *BoundSubquery:
		switch e.Kind {
		case SubqueryExists:
			sb.WriteString(flag(e.Not, "NOT ") + "EXISTS ")
		case SubqueryIn:
			writeExpr(sb, e.Expr)
			sb.WriteString(flag(e.Not, " NOT") + " IN ")
		}
		fmt.Fprintf(sb, "(subquery %s)", exprList(e.Query.SelectList))
	default:
		fmt.Fprintf(sb, "%T", e)
	}
}

func writeArgs(sb *strings.Builder, args []BoundExpr) {
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, a)
	}
}
