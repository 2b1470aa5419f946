package grammar

// Grammar (EBNF):
//
//	query      = or_expr EOF
//	or_expr    = and_expr ( "OR" and_expr )*
//	and_expr   = unary_expr ( "AND" unary_expr )*
//	unary_expr = "NOT" unary_expr | primary
//	primary    = "(" or_expr ")" | comparison
//	comparison = name operator name
//	name       = WORD | STRING
//	operator   = "=" | "==" | "!=" | "CONTAINS" | "MATCHES"
//
// Precedence (highest to lowest): parentheses, NOT, AND, OR.
// AND and OR are left-associative.
type parser struct {
	lex *Lexer
	cur Token
}

// Parse parses a query string into an expression tree. It either returns
// exactly one tree or exactly one *SyntaxError.
func Parse(input string) (Node, error) {
	p := &parser{lex: NewLexer(input)}

	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Kind == TokEOF {
		return nil, newSyntaxError(p.cur, ErrEmptyQuery, "empty query")
	}

	node, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}

	if p.cur.Kind != TokEOF {
		if p.cur.Kind == TokRParen {
			return nil, newSyntaxError(p.cur, ErrUnmatchedParen, "unmatched closing parenthesis")
		}
		return nil, newSyntaxError(p.cur, ErrUnexpectedToken, "unexpected %s '%s'", p.cur.Kind, p.cur.Lit)
	}
	return node, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) parseOrExpr() (Node, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAndExpr() (Node, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnaryExpr() (Node, error) {
	if p.cur.Kind != TokNot {
		return p.parsePrimary()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	inner, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	return &Not{Inner: inner}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	if p.cur.Kind != TokLParen {
		return p.parseComparison()
	}
	open := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Kind == TokRParen {
		return nil, newSyntaxError(p.cur, ErrUnexpectedToken, "empty parentheses")
	}
	inner, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != TokRParen {
		if p.cur.Kind == TokEOF {
			return nil, newSyntaxError(open, ErrUnmatchedParen, "unmatched opening parenthesis")
		}
		return nil, newSyntaxError(p.cur, ErrUnexpectedToken, "expected ')', got %s '%s'", p.cur.Kind, p.cur.Lit)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &Group{Inner: inner}, nil
}

func (p *parser) parseComparison() (Node, error) {
	field, err := p.parseName("field")
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != TokOperator {
		if p.cur.Kind == TokEOF {
			return nil, newSyntaxError(p.cur, ErrUnexpectedEOF, "expected comparison operator after '%s'", field)
		}
		return nil, newSyntaxError(p.cur, ErrMissingOperator, "expected comparison operator after '%s', got %s '%s'", field, p.cur.Kind, p.cur.Lit)
	}
	op := OperatorFromToken(p.cur.Lit)
	if err := p.advance(); err != nil {
		return nil, err
	}
	value, err := p.parseName("value")
	if err != nil {
		return nil, err
	}
	return &Comparison{Field: field, Operator: op, Value: value}, nil
}

func (p *parser) parseName(what string) (string, error) {
	switch p.cur.Kind {
	case TokWord, TokString:
		lit := p.cur.Lit
		return lit, p.advance()
	case TokEOF:
		return "", newSyntaxError(p.cur, ErrUnexpectedEOF, "expected %s, got end of query", what)
	case TokRParen:
		return "", newSyntaxError(p.cur, ErrUnmatchedParen, "expected %s, got unmatched closing parenthesis", what)
	}
	return "", newSyntaxError(p.cur, ErrUnexpectedToken, "expected %s, got %s '%s'", what, p.cur.Kind, p.cur.Lit)
}
