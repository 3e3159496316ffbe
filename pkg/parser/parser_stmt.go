package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

// Statement parsing: dispatch, queries, SELECT body, SELECT list, ORDER BY.
//
// Grammar:
//
//	query         → select_body [ORDER BY order_list] [LIMIT expr] [OFFSET expr]
//	select_body   → select_core [(UNION|INTERSECT|EXCEPT) [ALL|DISTINCT] select_body]
//	select_core   → SELECT [DISTINCT|ALL] select_list
//	                [FROM from_clause] [WHERE expr] [GROUP BY expr_list] [HAVING expr]
//	select_list   → select_item ("," select_item)*
//	select_item   → "*" | table "." "*" | expr [[AS] identifier]
//	order_list    → order_item ("," order_item)*
//	order_item    → expr [ASC|DESC]
//	explain       → EXPLAIN statement
//	show          → SHOW identifier | SHOW CREATE TABLE name | SHOW COLUMNS FROM name

// parseStatement parses a single statement of any kind.
func (p *Parser) parseStatement() core.Stmt {
	switch p.token.Type {
	case token.SELECT:
		return p.parseQuery()
	case token.CREATE:
		return p.parseCreateTable()
	case token.DROP:
		return p.parseDrop()
	case token.INSERT:
		return p.parseInsert()
	case token.DELETE:
		return p.parseDelete()
	case token.COPY:
		return p.parseCopy()
	case token.EXPLAIN:
		start := p.token.Pos
		p.nextToken()
		inner := p.parseStatement()
		return &core.ExplainStmt{NodeInfo: core.NodeInfo{Span: p.span(start)}, Stmt: inner}
	case token.SHOW:
		return p.parseShow()
	case token.BEGIN, token.COMMIT, token.ROLLBACK:
		start := p.token.Pos
		action := strings.ToUpper(p.token.Literal)
		p.nextToken()
		return &core.TransactionStmt{NodeInfo: core.NodeInfo{Span: p.span(start)}, Action: action}
	default:
		p.addError(fmt.Sprintf(ErrExpectedStatement, p.token.Type))
		return nil
	}
}

// parseShow parses the SHOW variants.
func (p *Parser) parseShow() core.Stmt {
	start := p.token.Pos
	p.expect(token.SHOW)
	show := &core.ShowStmt{}
	switch {
	case p.match(token.CREATE):
		p.expect(token.TABLE)
		show.Kind = core.ShowCreate
		show.Name = p.parseObjectName()
	case p.check(token.IDENT) && strings.EqualFold(p.token.Literal, "columns") && p.checkPeek(token.FROM):
		p.nextToken()
		p.nextToken()
		show.Kind = core.ShowColumns
		show.Name = p.parseObjectName()
	default:
		show.Kind = core.ShowVariable
		show.Name = p.parseObjectName()
	}
	show.Span = p.span(start)
	return show
}

// parseQuery parses a complete query with its trailing ORDER BY / LIMIT / OFFSET.
func (p *Parser) parseQuery() *core.SelectStmt {
	start := p.token.Pos
	stmt := &core.SelectStmt{}
	stmt.Body = p.parseSelectBody()

	if p.match(token.ORDER) {
		p.expect(token.BY)
		stmt.OrderBy = p.parseOrderByList()
	}
	if p.match(token.LIMIT) {
		stmt.Limit = p.parseExpression()
	}
	if p.match(token.OFFSET) {
		stmt.Offset = p.parseExpression()
	}

	stmt.Span = p.span(start)
	return stmt
}

// parseSelectBody parses a SELECT body with possible set operations.
func (p *Parser) parseSelectBody() *core.SelectBody {
	start := p.token.Pos
	body := &core.SelectBody{}
	body.Left = p.parseSelectCore()

	switch p.token.Type {
	case token.UNION:
		body.Op = core.SetOpUnion
	case token.INTERSECT:
		body.Op = core.SetOpIntersect
	case token.EXCEPT:
		body.Op = core.SetOpExcept
	}
	if body.Op != core.SetOpNone && !p.failed() {
		p.nextToken()
		if p.match(token.ALL) {
			body.All = true
		} else {
			p.match(token.DISTINCT) // optional
		}
		// Parse the right side (recursively for chained operations)
		body.Right = p.parseSelectBody()
	}

	body.Span = p.span(start)
	return body
}

// parseSelectCore parses a single SELECT clause.
func (p *Parser) parseSelectCore() *core.SelectCore {
	start := p.token.Pos
	p.expect(token.SELECT)
	sc := &core.SelectCore{}

	if p.match(token.DISTINCT) {
		sc.Distinct = true
	} else {
		p.match(token.ALL) // optional, consume if present
	}

	sc.Columns = p.parseSelectList()

	if p.match(token.FROM) {
		sc.From = p.parseFromClause()
	}
	if p.match(token.WHERE) {
		sc.Where = p.parseExpression()
	}
	if p.match(token.GROUP) {
		p.expect(token.BY)
		sc.GroupBy = p.parseExpressionList()
	}
	if p.match(token.HAVING) {
		sc.Having = p.parseExpression()
	}

	sc.Span = p.span(start)
	return sc
}

// parseSelectList parses the list of SELECT items.
func (p *Parser) parseSelectList() []core.SelectItem {
	var items []core.SelectItem
	for !p.failed() {
		items = append(items, p.parseSelectItem())
		if !p.match(token.COMMA) {
			break
		}
	}
	return items
}

// parseSelectItem parses a single SELECT item.
func (p *Parser) parseSelectItem() core.SelectItem {
	item := core.SelectItem{}

	if p.match(token.STAR) {
		item.Star = true
		return item
	}

	// table.* via 3-token lookahead (no rollback needed)
	if p.check(token.IDENT) && p.checkPeek(token.DOT) && p.checkPeek2(token.STAR) {
		item.TableStar = p.token.Literal
		p.nextToken() // consume identifier
		p.nextToken() // consume DOT
		p.nextToken() // consume STAR
		return item
	}

	item.Expr = p.parseExpression()
	item.Alias = p.parseOptionalAlias()
	return item
}

// parseOrderByList parses a list of ORDER BY items.
func (p *Parser) parseOrderByList() []core.OrderByItem {
	var items []core.OrderByItem
	for !p.failed() {
		item := core.OrderByItem{Expr: p.parseExpression()}
		if p.match(token.DESC) {
			item.Desc = true
		} else {
			p.match(token.ASC)
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	return items
}
