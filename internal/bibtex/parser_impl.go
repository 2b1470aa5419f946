package bibtex

import (
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/nylssoft/bibsearch/internal/entry"
)

type parser_impl struct {
	str    string
	idx    int
	macros map[string]string
}

func (p *parser_impl) parse() ([]Record, error) {
	var ret []Record
	for {
		start := strings.IndexByte(p.str[p.idx:], '@')
		if start < 0 {
			return ret, nil
		}
		p.idx += start
		start = p.idx
		p.idx++
		entryType := strings.ToLower(p.matchSymbol())
		if len(entryType) == 0 {
			continue
		}
		closing, ok := p.matchOpening()
		if !ok {
			// '@' in free text between entries
			continue
		}
		switch entryType {
		case "comment", "preamble":
			if !p.skipBalanced(closing) {
				return nil, fmt.Errorf("unterminated @%s starting at position %d", entryType, start)
			}
		case "string":
			if err := p.parseMacro(closing); err != nil {
				return nil, err
			}
		default:
			e, err := p.parseEntry(entryType, closing)
			if err != nil {
				return nil, fmt.Errorf("cannot parse entry starting at position %d: %w", start, err)
			}
			ret = append(ret, Record{Entry: e, Raw: p.str[start:p.idx]})
		}
	}
}

func (p *parser_impl) parseEntry(entryType string, closing byte) (*entry.MemEntry, error) {
	key := strings.TrimSpace(p.matchUntil(",", closing))
	if len(key) == 0 {
		return nil, fmt.Errorf("missing citation key")
	}
	e := entry.NewEntry(key, entryType)
	for {
		r, ok := p.nextNonSpace()
		if !ok {
			return nil, fmt.Errorf("unterminated entry '%s'", key)
		}
		if r == closing {
			p.idx++
			return e, nil
		}
		if r == ',' {
			p.idx++
			continue
		}
		name := strings.ToLower(p.matchSymbol())
		if len(name) == 0 {
			return nil, fmt.Errorf("invalid field name in entry '%s' at position %d", key, p.idx)
		}
		if !p.matchRune('=') {
			return nil, fmt.Errorf("missing '=' after field '%s' in entry '%s'", name, key)
		}
		value, err := p.parseValue(closing)
		if err != nil {
			return nil, fmt.Errorf("field '%s' in entry '%s': %w", name, key, err)
		}
		if err := e.SetField(name, value); err != nil {
			log.Printf("WARN: Skip field '%s' in entry '%s': %s\n", name, key, err.Error())
		}
	}
}

func (p *parser_impl) parseMacro(closing byte) error {
	name := strings.ToLower(p.matchSymbol())
	if len(name) == 0 || !p.matchRune('=') {
		return fmt.Errorf("invalid @string definition at position %d", p.idx)
	}
	value, err := p.parseValue(closing)
	if err != nil {
		return fmt.Errorf("@string '%s': %w", name, err)
	}
	if !p.matchRune(rune(closing)) {
		return fmt.Errorf("unterminated @string '%s'", name)
	}
	p.macros[name] = value
	return nil
}

// parseValue reads value parts joined by '#'.
func (p *parser_impl) parseValue(closing byte) (string, error) {
	var sb strings.Builder
	for {
		r, ok := p.nextNonSpace()
		if !ok {
			return "", fmt.Errorf("unexpected end of input")
		}
		switch {
		case r == '{':
			p.idx++
			part, ok := p.matchBraced()
			if !ok {
				return "", fmt.Errorf("unbalanced braces")
			}
			sb.WriteString(part)
		case r == '"':
			p.idx++
			part, ok := p.matchQuoted()
			if !ok {
				return "", fmt.Errorf("unterminated quoted value")
			}
			sb.WriteString(part)
		default:
			part := strings.TrimSpace(p.matchUntil(",#", closing))
			if len(part) == 0 {
				return "", fmt.Errorf("missing value")
			}
			if macro, ok := p.macros[strings.ToLower(part)]; ok {
				part = macro
			}
			sb.WriteString(part)
		}
		if !p.matchRune('#') {
			return sb.String(), nil
		}
	}
}

func (p *parser_impl) getRune() (byte, bool) {
	if p.idx >= len(p.str) {
		return 0, false
	}
	return p.str[p.idx], true
}

func (p *parser_impl) nextNonSpace() (byte, bool) {
	r, ok := p.getRune()
	for ok && unicode.IsSpace(rune(r)) {
		p.idx++
		r, ok = p.getRune()
	}
	return r, ok
}

func (p *parser_impl) matchRune(expected rune) bool {
	r, ok := p.nextNonSpace()
	if ok && rune(r) == expected {
		p.idx++
		return true
	}
	return false
}

func (p *parser_impl) matchOpening() (byte, bool) {
	if p.matchRune('{') {
		return '}', true
	}
	if p.matchRune('(') {
		return ')', true
	}
	return 0, false
}

func (p *parser_impl) matchSymbol() string {
	var ret strings.Builder
	r, ok := p.nextNonSpace()
	for ok && isSymbolRune(r) {
		ret.WriteByte(r)
		p.idx++
		r, ok = p.getRune()
	}
	return ret.String()
}

// matchUntil reads up to, but not including, one of the stop characters or the
// closing delimiter.
func (p *parser_impl) matchUntil(stop string, closing byte) string {
	start := p.idx
	r, ok := p.getRune()
	for ok && r != closing && strings.IndexByte(stop, r) < 0 {
		p.idx++
		r, ok = p.getRune()
	}
	return p.str[start:p.idx]
}

// matchBraced reads the content after an opening brace up to the matching
// closing brace. Nested braces are kept.
func (p *parser_impl) matchBraced() (string, bool) {
	start := p.idx
	depth := 1
	r, ok := p.getRune()
	for ok {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.idx++
				return p.str[start : p.idx-1], true
			}
		}
		p.idx++
		r, ok = p.getRune()
	}
	return "", false
}

// matchQuoted reads the content after an opening quote up to the closing quote.
// Quotes inside braces do not terminate the value.
func (p *parser_impl) matchQuoted() (string, bool) {
	start := p.idx
	depth := 0
	r, ok := p.getRune()
	for ok {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case r == '"' && depth == 0:
			p.idx++
			return p.str[start : p.idx-1], true
		}
		p.idx++
		r, ok = p.getRune()
	}
	return "", false
}

func (p *parser_impl) skipBalanced(closing byte) bool {
	opening := byte('{')
	if closing == ')' {
		opening = '('
	}
	depth := 1
	r, ok := p.getRune()
	for ok {
		if r == opening {
			depth++
		} else if r == closing {
			depth--
			if depth == 0 {
				p.idx++
				return true
			}
		}
		p.idx++
		r, ok = p.getRune()
	}
	return false
}

func isSymbolRune(r byte) bool {
	return r == '-' || r == '_' || r == ':' || r == '.' || r == '+' || r == '/' ||
		unicode.IsLetter(rune(r)) || unicode.IsDigit(rune(r))
}
