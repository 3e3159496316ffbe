package parser

import (
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

// DDL parsing.
//
// Grammar:
//
//	create_table  → CREATE TABLE [IF NOT EXISTS] name "(" table_elem ("," table_elem)* ")"
//	table_elem    → column_def | PRIMARY KEY "(" ident_list ")"
//	column_def    → identifier type_name (NOT NULL | NULL | PRIMARY KEY)*
//	drop          → DROP TABLE [IF EXISTS] name ("," name)* [CASCADE | RESTRICT]

// parseCreateTable parses CREATE TABLE.
func (p *Parser) parseCreateTable() core.Stmt {
	start := p.token.Pos
	p.expect(token.CREATE)
	p.expect(token.TABLE)

	stmt := &core.CreateTableStmt{}
	if p.match(token.IF) {
		p.expect(token.NOT)
		p.expect(token.EXISTS)
		stmt.IfNotExists = true
	}
	stmt.Name = p.parseObjectName()

	p.expect(token.LPAREN)
	for !p.failed() {
		if p.match(token.PRIMARY) {
			p.expect(token.KEY)
			stmt.PrimaryKey = append(stmt.PrimaryKey, p.parseIdentList()...)
		} else {
			stmt.Columns = append(stmt.Columns, p.parseColumnDef())
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)

	stmt.Span = p.span(start)
	return stmt
}

// parseColumnDef parses one column declaration.
func (p *Parser) parseColumnDef() core.ColumnDef {
	col := core.ColumnDef{Name: p.parseIdent()}
	col.Type = p.parseTypeName()

	for !p.failed() {
		switch {
		case p.match(token.NOT):
			p.expect(token.NULL)
			col.NotNull = true
		case p.match(token.NULL):
			col.NotNull = false
		case p.match(token.PRIMARY):
			p.expect(token.KEY)
			col.PrimaryKey = true
		default:
			return col
		}
	}
	return col
}

// parseDrop parses DROP TABLE.
func (p *Parser) parseDrop() core.Stmt {
	start := p.token.Pos
	p.expect(token.DROP)
	p.expect(token.TABLE)

	stmt := &core.DropStmt{}
	if p.match(token.IF) {
		p.expect(token.EXISTS)
		stmt.IfExists = true
	}
	for !p.failed() {
		stmt.Names = append(stmt.Names, p.parseObjectName())
		if !p.match(token.COMMA) {
			break
		}
	}
	if p.match(token.CASCADE) {
		stmt.Cascade = true
	} else {
		p.match(token.RESTRICT)
	}

	stmt.Span = p.span(start)
	return stmt
}
