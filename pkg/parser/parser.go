// Package parser turns SQL text into the unbound statement tree of pkg/core.
//
// # Usage
//
//	stmt, err := parser.Parse("SELECT a, b FROM t")
//	stmts, err := parser.ParseScript("CREATE TABLE t (a INT); SELECT a FROM t;")
//
// # Grammar Overview
//
// The parser implements a recursive descent parser for a subset of SQL:
//
//	script        → [statement] (";" [statement])*
//	statement     → query | create_table | drop | insert | delete | copy
//	              | EXPLAIN statement | SHOW ... | BEGIN | COMMIT | ROLLBACK
//	query         → select_body [ORDER BY order_list] [LIMIT expr] [OFFSET expr]
//	select_body   → select_core [(UNION|INTERSECT|EXCEPT) [ALL] select_body]
//	select_core   → SELECT [DISTINCT] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list] [HAVING expr]
//
// See each file for detailed grammar rules for that section.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapbind/pkg/core"
	"github.com/leapstack-labs/leapbind/pkg/token"
)

// Parser parses SQL into an AST.
type Parser struct {
	lexer  *Lexer
	token  token.Token // current token
	peek   token.Token // lookahead token
	peek2  token.Token // second lookahead token
	errors []error
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string) *Parser {
	p := &Parser{lexer: NewLexer(sql)}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses exactly one statement. A trailing semicolon is allowed.
func Parse(sql string) (core.Stmt, error) {
	p := NewParser(sql)
	stmt := p.parseStatement()
	p.match(token.SEMICOLON)
	if len(p.errors) == 0 && !p.check(token.EOF) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, token.EOF))
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return stmt, nil
}

// ParseScript parses a semicolon separated list of statements.
// Empty statements are skipped.
func ParseScript(sql string) ([]core.Stmt, error) {
	p := NewParser(sql)
	var stmts []core.Stmt
	for !p.check(token.EOF) {
		if p.match(token.SEMICOLON) {
			continue
		}
		stmt := p.parseStatement()
		if len(p.errors) > 0 {
			return nil, p.errors[0]
		}
		stmts = append(stmts, stmt)
		if !p.check(token.EOF) && !p.expect(token.SEMICOLON) {
			return nil, p.errors[0]
		}
	}
	return stmts, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token. ILLEGAL tokens are reported once, when they become current.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
	if p.token.Type == token.ILLEGAL {
		p.addError(fmt.Sprintf("illegal token %q", p.token.Literal))
	}
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek.Type == t
}

// checkPeek2 returns true if the peek2 token is of the given type.
func (p *Parser) checkPeek2(t token.TokenType) bool {
	return p.peek2.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, t))
	return false
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// failed reports whether any error was recorded; used to stop loops early.
func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// span returns a span from start to the current token.
func (p *Parser) span(start token.Position) token.Span {
	return token.Span{Start: start, End: p.token.Pos}
}

// parseIdent consumes an identifier and returns its text.
func (p *Parser) parseIdent() string {
	if !p.check(token.IDENT) {
		p.addError(fmt.Sprintf(ErrExpectedIdent, p.token.Type))
		return ""
	}
	name := p.token.Literal
	p.nextToken()
	return name
}

// parseObjectName parses ident ("." ident)*.
func (p *Parser) parseObjectName() core.ObjectName {
	name := core.ObjectName{p.parseIdent()}
	for !p.failed() && p.match(token.DOT) {
		name = append(name, p.parseIdent())
	}
	return name
}

// parseIdentList parses "(" ident ("," ident)* ")".
func (p *Parser) parseIdentList() []string {
	p.expect(token.LPAREN)
	var names []string
	for !p.failed() {
		names = append(names, p.parseIdent())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return names
}

// ---------- Keyword Helpers ----------

// isAliasable returns true if the token can start an alias without AS.
func (p *Parser) isAliasable(tok token.Token) bool {
	return tok.Type == token.IDENT
}
