package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapbind/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken    = "unexpected token %s, expected %s"
	ErrUnterminatedString = "unterminated string literal"
	ErrUnterminatedIdent  = "unterminated quoted identifier"
	ErrInvalidNumber      = "invalid number literal %q"
	ErrExpectedStatement  = "expected statement, got %s"
	ErrExpectedIdent      = "expected identifier, got %s"
)
