package parser

import (
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

// FROM clause parsing: table references, derived tables, JOINs.
//
// Grammar:
//
//	from_clause   → table_ref (join)*
//	table_ref     → table_name | derived_table
//	table_name    → [schema "."] identifier [[AS] identifier]
//	derived_table → "(" query ")" [AS] identifier
//	join          → join_type JOIN table_ref [ON expr | USING "(" ident_list ")"] | "," table_ref
//	join_type     → [INNER] | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER] | CROSS

// parseFromClause parses the FROM clause.
func (p *Parser) parseFromClause() *core.FromClause {
	from := &core.FromClause{}
	start := p.token.Pos
	from.Source = p.parseTableRef()

	for !p.failed() {
		join := p.parseJoin()
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}

	from.Span = p.span(start)
	return from
}

// parseTableRef parses a table reference.
func (p *Parser) parseTableRef() core.TableRef {
	if p.check(token.LPAREN) {
		return p.parseDerivedTable()
	}
	return p.parseTableName()
}

// parseTableName parses a table name with optional schema and alias.
func (p *Parser) parseTableName() *core.TableName {
	start := p.token.Pos
	table := &core.TableName{}

	if !p.check(token.IDENT) {
		p.addError("expected table name")
		return table
	}

	table.Name = p.parseObjectName()
	table.Alias = p.parseOptionalAlias()
	table.Span = p.span(start)
	return table
}

// parseOptionalAlias parses [AS] identifier.
func (p *Parser) parseOptionalAlias() string {
	if p.match(token.AS) {
		return p.parseIdent()
	}
	if p.isAliasable(p.token) {
		alias := p.token.Literal
		p.nextToken()
		return alias
	}
	return ""
}

// parseDerivedTable parses a derived table (subquery in FROM).
// A missing alias is left for the binder to reject.
func (p *Parser) parseDerivedTable() *core.DerivedTable {
	start := p.token.Pos
	p.expect(token.LPAREN)
	derived := &core.DerivedTable{}
	derived.Select = p.parseQuery()
	p.expect(token.RPAREN)
	derived.Alias = p.parseOptionalAlias()
	derived.Span = p.span(start)
	return derived
}

// parseJoin parses a JOIN clause, or returns nil if none follows.
func (p *Parser) parseJoin() *core.Join {
	start := p.token.Pos
	join := &core.Join{}

	// Comma join (implicit cross join)
	if p.match(token.COMMA) {
		join.Type = core.JoinComma
		join.Right = p.parseTableRef()
		join.Span = p.span(start)
		return join
	}

	switch p.token.Type {
	case token.JOIN:
		join.Type = core.JoinInner
	case token.INNER:
		join.Type = core.JoinInner
		p.nextToken()
	case token.LEFT:
		join.Type = core.JoinLeft
		p.nextToken()
		p.match(token.OUTER)
	case token.RIGHT:
		join.Type = core.JoinRight
		p.nextToken()
		p.match(token.OUTER)
	case token.FULL:
		join.Type = core.JoinFull
		p.nextToken()
		p.match(token.OUTER)
	case token.CROSS:
		join.Type = core.JoinCross
		p.nextToken()
	default:
		return nil
	}

	if !p.expect(token.JOIN) {
		return nil
	}

	join.Right = p.parseTableRef()
	if join.Type != core.JoinCross {
		p.parseJoinCondition(join)
	}
	join.Span = p.span(start)
	return join
}

// parseJoinCondition handles ON/USING.
func (p *Parser) parseJoinCondition(join *core.Join) {
	switch {
	case p.match(token.ON):
		join.Condition = p.parseExpression()
	case p.match(token.USING):
		join.Using = p.parseIdentList()
	default:
		p.addError("expected ON or USING after JOIN")
	}
}
