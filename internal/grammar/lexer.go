package grammar

import (
	"strings"
	"unicode"
)

// TokenKind identifies the type of lexical token.
type TokenKind int

const (
	TokEOF      TokenKind = iota
	TokWord               // bareword
	TokString             // quoted string (quotes stripped)
	TokLParen             // (
	TokRParen             // )
	TokAnd                // AND (case-insensitive)
	TokOr                 // OR (case-insensitive)
	TokNot                // NOT (case-insensitive)
	TokOperator           // = == != CONTAINS MATCHES
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "end of query"
	case TokWord:
		return "word"
	case TokString:
		return "string"
	case TokLParen:
		return "'('"
	case TokRParen:
		return "')'"
	case TokAnd:
		return "AND"
	case TokOr:
		return "OR"
	case TokNot:
		return "NOT"
	case TokOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// Token represents a lexical token.
type Token struct {
	Kind   TokenKind
	Lit    string // text as written; for strings the unescaped content
	Line   int    // 1-based
	Column int    // 0-based rune offset within the line
}

// Lexer tokenizes a query string.
type Lexer struct {
	input []rune
	pos   int
	line  int
	col   int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input), line: 1}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	tok := Token{Line: l.line, Column: l.col}
	if l.pos >= len(l.input) {
		tok.Kind = TokEOF
		return tok, nil
	}

	switch ch := l.input[l.pos]; {
	case ch == '(':
		l.advance()
		tok.Kind, tok.Lit = TokLParen, "("
		return tok, nil
	case ch == ')':
		l.advance()
		tok.Kind, tok.Lit = TokRParen, ")"
		return tok, nil
	case ch == '=':
		l.advance()
		tok.Kind, tok.Lit = TokOperator, "="
		if l.peek() == '=' {
			l.advance()
			tok.Lit = "=="
		}
		return tok, nil
	case ch == '!' && l.peekAt(1) == '=':
		l.advance()
		l.advance()
		tok.Kind, tok.Lit = TokOperator, "!="
		return tok, nil
	case ch == '"':
		return l.scanQuotedString(tok)
	}

	return l.scanBareword(tok), nil
}

func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.advance()
	}
}

// scanQuotedString scans a double quoted string. Only \" and \\ are escape
// sequences, every other backslash is kept so regular expressions like \d
// can be written without doubling.
func (l *Lexer) scanQuotedString(tok Token) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '"' {
			l.advance()
			tok.Kind = TokString
			tok.Lit = sb.String()
			return tok, nil
		}
		if next := l.peekAt(1); ch == '\\' && (next == '"' || next == '\\') {
			l.advance()
			ch = next
		}
		sb.WriteRune(ch)
		l.advance()
	}
	return Token{}, newSyntaxError(tok, ErrUnterminatedString, "unterminated string")
}

func (l *Lexer) scanBareword(tok Token) Token {
	start := l.pos
	for l.pos < len(l.input) && isBarewordRune(l.input[l.pos], l.peekAt(1)) {
		l.advance()
	}
	tok.Lit = string(l.input[start:l.pos])
	tok.Kind = keywordKind(tok.Lit)
	return tok
}

func isBarewordRune(r rune, next rune) bool {
	switch {
	case unicode.IsSpace(r):
		return false
	case r == '(' || r == ')' || r == '"' || r == '=':
		return false
	case r == '!' && next == '=':
		return false
	}
	return true
}

func keywordKind(lit string) TokenKind {
	switch {
	case strings.EqualFold(lit, "AND"):
		return TokAnd
	case strings.EqualFold(lit, "OR"):
		return TokOr
	case strings.EqualFold(lit, "NOT"):
		return TokNot
	case strings.EqualFold(lit, "CONTAINS"), strings.EqualFold(lit, "MATCHES"):
		return TokOperator
	}
	return TokWord
}
