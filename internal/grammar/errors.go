package grammar

import (
	"errors"
	"fmt"
)

// Lexer errors.
var (
	ErrUnterminatedString = errors.New("unterminated string")
)

// Parser errors.
var (
	ErrEmptyQuery      = errors.New("empty query")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnexpectedEOF   = errors.New("unexpected end of query")
	ErrUnmatchedParen  = errors.New("unmatched parenthesis")
	ErrMissingOperator = errors.New("missing comparison operator")
)

// SyntaxError describes the first syntax violation found in a query.
// No tree is produced if parsing fails.
type SyntaxError struct {
	Line    int    // 1-based line of the offending token
	Column  int    // 0-based rune offset within the line
	Message string // human-readable description
	Err     error  // sentinel error for errors.Is
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d %s", e.Line, e.Column, e.Message)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func newSyntaxError(tok Token, err error, msgFmt string, args ...any) *SyntaxError {
	return &SyntaxError{
		Line:    tok.Line,
		Column:  tok.Column,
		Message: fmt.Sprintf(msgFmt, args...),
		Err:     err,
	}
}
