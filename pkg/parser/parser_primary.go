package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

// Primary expression parsing: literals, column refs, function calls.
//
// Grammar:
//
//	primary       → literal | column_ref | func_call | paren_expr | subquery | cast_expr | exists_expr
//	literal       → NUMBER | STRING | TRUE | FALSE | NULL
//	column_ref    → [table "."] column
//	func_call     → identifier "(" [DISTINCT] [expr_list | "*"] ")"
//	cast_expr     → CAST "(" expr AS type_name ")"
//	type_name     → identifier [identifier] ["(" NUMBER ("," NUMBER)* ")"]

// parsePrimary parses primary expressions.
func (p *Parser) parsePrimary() core.Expr {
	start := p.token.Pos
	info := func() core.NodeInfo { return core.NodeInfo{Span: p.span(start)} }

	switch p.token.Type {
	case token.NUMBER:
		lit := p.token.Literal
		p.nextToken()
		return &core.Literal{NodeInfo: info(), Type: core.LiteralNumber, Value: lit}

	case token.STRING:
		lit := p.token.Literal
		p.nextToken()
		return &core.Literal{NodeInfo: info(), Type: core.LiteralString, Value: lit}

	case token.TRUE:
		p.nextToken()
		return &core.Literal{NodeInfo: info(), Type: core.LiteralBool, Value: "true"}

	case token.FALSE:
		p.nextToken()
		return &core.Literal{NodeInfo: info(), Type: core.LiteralBool, Value: "false"}

	case token.NULL:
		p.nextToken()
		return &core.Literal{NodeInfo: info(), Type: core.LiteralNull, Value: "null"}

	case token.CAST:
		return p.parseCastExpr()

	case token.NOT:
		p.nextToken() // NOT EXISTS
		return p.parseExistsExpr(start, true)

	case token.EXISTS:
		return p.parseExistsExpr(start, false)

	case token.IDENT:
		return p.parseIdentifierExpr()

	case token.LPAREN:
		p.nextToken()
		if p.check(token.SELECT) {
			q := p.parseQuery()
			p.expect(token.RPAREN)
			return &core.SubqueryExpr{NodeInfo: info(), Select: q}
		}
		inner := p.parseExpression()
		p.expect(token.RPAREN)
		return &core.ParenExpr{NodeInfo: info(), Expr: inner}

	default:
		p.addError(fmt.Sprintf("unexpected token in expression: %s", p.token.Type))
		return nil
	}
}

// parseIdentifierExpr parses an identifier which could be a column ref or function call.
func (p *Parser) parseIdentifierExpr() core.Expr {
	start := p.token.Pos
	name := p.token.Literal
	p.nextToken()

	if p.check(token.LPAREN) {
		return p.parseFuncCall(start, name)
	}

	ref := &core.ColumnRef{Column: name}
	if p.match(token.DOT) {
		ref.Table = name
		ref.Column = p.parseIdent()
		if p.check(token.DOT) {
			p.addError("column references may have at most one qualifier")
			return nil
		}
	}
	ref.Span = p.span(start)
	return ref
}

// parseFuncCall parses a function call.
func (p *Parser) parseFuncCall(start token.Position, name string) core.Expr {
	fn := &core.FuncCall{Name: strings.ToUpper(name)}

	p.expect(token.LPAREN)

	switch {
	case p.match(token.STAR):
		fn.Star = true
	case !p.check(token.RPAREN):
		fn.Distinct = p.match(token.DISTINCT)
		fn.Args = p.parseExpressionList()
	}

	p.expect(token.RPAREN)
	fn.Span = p.span(start)
	return fn
}

// parseCastExpr parses CAST(expr AS type).
func (p *Parser) parseCastExpr() core.Expr {
	start := p.token.Pos
	p.expect(token.CAST)
	p.expect(token.LPAREN)
	cast := &core.CastExpr{Expr: p.parseExpression()}
	p.expect(token.AS)
	cast.TypeName = p.parseTypeName()
	p.expect(token.RPAREN)
	cast.Span = p.span(start)
	return cast
}

// parseTypeName parses a type such as INT, DOUBLE PRECISION or DECIMAL(10, 2).
func (p *Parser) parseTypeName() core.TypeName {
	tn := core.TypeName{Name: p.parseIdent()}
	// Two-word types: DOUBLE PRECISION, CHARACTER VARYING
	if p.check(token.IDENT) {
		second := strings.ToUpper(p.token.Literal)
		if second == "PRECISION" || second == "VARYING" {
			tn.Name += " " + p.token.Literal
			p.nextToken()
		}
	}
	if p.match(token.LPAREN) {
		for !p.failed() {
			if !p.check(token.NUMBER) {
				p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, token.NUMBER))
				break
			}
			n, err := strconv.Atoi(p.token.Literal)
			if err != nil {
				p.addError(fmt.Sprintf(ErrInvalidNumber, p.token.Literal))
				break
			}
			tn.Args = append(tn.Args, n)
			p.nextToken()
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	return tn
}

// parseExistsExpr parses EXISTS (query). The optional NOT is already consumed.
func (p *Parser) parseExistsExpr(start token.Position, not bool) core.Expr {
	p.expect(token.EXISTS)
	p.expect(token.LPAREN)
	q := p.parseQuery()
	p.expect(token.RPAREN)
	return &core.ExistsExpr{NodeInfo: core.NodeInfo{Span: p.span(start)}, Not: not, Select: q}
}
