package parser

import (
	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

// Expression precedence parsing using a Pratt parser.
//
// Precedence levels:
//
//	PrecedenceNone       = 0
//	PrecedenceOr         = 1
//	PrecedenceAnd        = 2
//	PrecedenceNot        = 3
//	PrecedenceComparison = 4  (=, !=, <, >, <=, >=, IS, IN, BETWEEN, LIKE)
//	PrecedenceAddition   = 5  (+, -, ||)
//	PrecedenceMultiply   = 6  (*, /, %)
//	PrecedenceUnary      = 7  (-, +)

// Operator precedence levels.
const (
	PrecedenceNone = iota
	PrecedenceOr
	PrecedenceAnd
	PrecedenceNot
	PrecedenceComparison
	PrecedenceAddition
	PrecedenceMultiply
	PrecedenceUnary
)

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() core.Expr {
	return p.parseExpressionWithPrecedence(PrecedenceNone + 1)
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) core.Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for !p.failed() {
		prec := precedence(p.token.Type)
		if prec < minPrecedence || prec == PrecedenceNone {
			break
		}
		left = p.parseInfixExpr(left, prec)
		if left == nil {
			break
		}
	}

	return left
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() core.Expr {
	start := p.token.Pos
	switch p.token.Type {
	case token.NOT:
		if p.checkPeek(token.EXISTS) {
			return p.parsePrimary()
		}
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(PrecedenceNot)
		return &core.UnaryExpr{NodeInfo: core.NodeInfo{Span: p.span(start)}, Op: token.NOT, Expr: expr}

	case token.MINUS, token.PLUS:
		op := p.token.Type
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(PrecedenceUnary)
		return &core.UnaryExpr{NodeInfo: core.NodeInfo{Span: p.span(start)}, Op: op, Expr: expr}

	default:
		return p.parsePrimary()
	}
}

// precedence returns the precedence of t as an infix operator, or PrecedenceNone.
func precedence(t token.TokenType) int {
	switch t {
	case token.OR:
		return PrecedenceOr
	case token.AND:
		return PrecedenceAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		return PrecedenceComparison
	case token.IS, token.IN, token.BETWEEN, token.LIKE:
		return PrecedenceComparison
	case token.NOT:
		// NOT as infix (NOT IN, NOT LIKE, NOT BETWEEN)
		return PrecedenceComparison
	case token.PLUS, token.MINUS, token.DPIPE:
		return PrecedenceAddition
	case token.STAR, token.SLASH, token.PERCENT:
		return PrecedenceMultiply
	default:
		return PrecedenceNone
	}
}

// parseInfixExpr parses an infix expression given the left operand and current precedence.
func (p *Parser) parseInfixExpr(left core.Expr, prec int) core.Expr {
	switch p.token.Type {
	case token.NOT:
		return p.parseNotInfixExpr(left)

	case token.IS:
		return p.parseIsExpr(left)

	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, false)

	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, false)

	case token.LIKE:
		p.nextToken()
		return p.parseLikeExpr(left, false)
	}

	op := p.token.Type
	p.nextToken()

	// Parse right operand with higher precedence (left-associative)
	right := p.parseExpressionWithPrecedence(prec + 1)
	if right == nil {
		return nil
	}

	return &core.BinaryExpr{
		NodeInfo: core.NodeInfo{Span: p.span(left.Pos())},
		Left:     left,
		Op:       op,
		Right:    right,
	}
}

// parseNotInfixExpr handles NOT as an infix modifier (NOT IN, NOT BETWEEN, NOT LIKE).
func (p *Parser) parseNotInfixExpr(left core.Expr) core.Expr {
	p.nextToken() // consume NOT

	switch p.token.Type {
	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, true)

	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, true)

	case token.LIKE:
		p.nextToken()
		return p.parseLikeExpr(left, true)

	default:
		p.addError("expected IN, BETWEEN, or LIKE after NOT")
		return nil
	}
}

// parseIsExpr parses IS [NOT] NULL.
func (p *Parser) parseIsExpr(left core.Expr) core.Expr {
	p.nextToken() // consume IS

	isNot := p.match(token.NOT)
	if !p.expect(token.NULL) {
		return nil
	}
	return &core.IsNullExpr{NodeInfo: core.NodeInfo{Span: p.span(left.Pos())}, Expr: left, Not: isNot}
}

// parseInExpr parses the tail of an IN expression.
func (p *Parser) parseInExpr(left core.Expr, not bool) core.Expr {
	in := &core.InExpr{Expr: left, Not: not}
	p.expect(token.LPAREN)

	if p.check(token.SELECT) {
		in.Query = p.parseQuery()
	} else {
		in.Values = p.parseExpressionList()
	}

	p.expect(token.RPAREN)
	in.Span = p.span(left.Pos())
	return in
}

// parseBetweenExpr parses the tail of a BETWEEN expression.
func (p *Parser) parseBetweenExpr(left core.Expr, not bool) core.Expr {
	between := &core.BetweenExpr{Expr: left, Not: not}
	// Bounds are parsed at addition precedence so AND is not captured.
	between.Low = p.parseExpressionWithPrecedence(PrecedenceAddition)
	p.expect(token.AND)
	between.High = p.parseExpressionWithPrecedence(PrecedenceAddition)
	between.Span = p.span(left.Pos())
	return between
}

// parseLikeExpr parses the tail of a LIKE expression.
func (p *Parser) parseLikeExpr(left core.Expr, not bool) core.Expr {
	like := &core.LikeExpr{Expr: left, Not: not}
	like.Pattern = p.parseExpressionWithPrecedence(PrecedenceAddition)
	like.Span = p.span(left.Pos())
	return like
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []core.Expr {
	var exprs []core.Expr
	for !p.failed() {
		exprs = append(exprs, p.parseExpression())
		if !p.match(token.COMMA) {
			break
		}
	}
	return exprs
}
