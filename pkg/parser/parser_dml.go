package parser

import (
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

// DML parsing.
//
// Grammar:
//
//	insert        → INSERT INTO name ["(" ident_list ")"] (VALUES row ("," row)* | query)
//	row           → "(" expr_list ")"
//	delete        → DELETE FROM table_name [WHERE expr]
//	copy          → COPY name ["(" ident_list ")"] (FROM | TO) (STRING | STDIN | STDOUT)
//	                [[WITH] "(" copy_option ("," copy_option)* ")"]
//	copy_option   → identifier [STRING | identifier | NUMBER | TRUE | FALSE]

// parseInsert parses INSERT INTO.
func (p *Parser) parseInsert() core.Stmt {
	start := p.token.Pos
	p.expect(token.INSERT)
	p.expect(token.INTO)

	stmt := &core.InsertStmt{Table: p.parseObjectName()}
	if p.check(token.LPAREN) && !p.checkPeek(token.SELECT) {
		stmt.Columns = p.parseIdentList()
	}

	switch {
	case p.match(token.VALUES):
		for !p.failed() {
			p.expect(token.LPAREN)
			stmt.Values = append(stmt.Values, p.parseExpressionList())
			p.expect(token.RPAREN)
			if !p.match(token.COMMA) {
				break
			}
		}
	case p.check(token.SELECT):
		stmt.Select = p.parseQuery()
	case p.match(token.LPAREN):
		stmt.Select = p.parseQuery()
		p.expect(token.RPAREN)
	default:
		p.addError("expected VALUES or SELECT after INSERT INTO")
	}

	stmt.Span = p.span(start)
	return stmt
}

// parseDelete parses DELETE FROM.
func (p *Parser) parseDelete() core.Stmt {
	start := p.token.Pos
	p.expect(token.DELETE)
	p.expect(token.FROM)

	stmt := &core.DeleteStmt{Table: p.parseTableName()}
	if p.match(token.WHERE) {
		stmt.Where = p.parseExpression()
	}

	stmt.Span = p.span(start)
	return stmt
}

// parseCopy parses COPY.
func (p *Parser) parseCopy() core.Stmt {
	start := p.token.Pos
	p.expect(token.COPY)

	stmt := &core.CopyStmt{Table: p.parseObjectName()}
	if p.check(token.LPAREN) {
		stmt.Columns = p.parseIdentList()
	}

	switch {
	case p.match(token.TO):
		stmt.To = true
	case p.match(token.FROM):
	default:
		p.addError("expected FROM or TO in COPY")
		return nil
	}

	switch {
	case p.check(token.STRING):
		stmt.Target = p.token.Literal
		p.nextToken()
	case p.check(token.IDENT) && (strings.EqualFold(p.token.Literal, "stdin") || strings.EqualFold(p.token.Literal, "stdout")):
		p.nextToken()
	default:
		p.addError("expected file path, STDIN or STDOUT in COPY")
		return nil
	}

	p.match(token.WITH)
	if p.match(token.LPAREN) {
		for !p.failed() {
			stmt.Options = append(stmt.Options, p.parseCopyOption())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	stmt.Span = p.span(start)
	return stmt
}

func (p *Parser) parseCopyOption() core.CopyOption {
	opt := core.CopyOption{Name: strings.ToLower(p.parseIdent())}
	switch p.token.Type {
	case token.STRING, token.IDENT, token.NUMBER:
		opt.Value = p.token.Literal
		p.nextToken()
	case token.TRUE, token.FALSE:
		opt.Value = strings.ToLower(p.token.Literal)
		p.nextToken()
	}
	return opt
}
