package pattern

import (
	"regexp"
)

type pattern_impl struct {
	source string
	find   *regexp.Regexp
	whole  *regexp.Regexp
}

func compile(text string, isRegex bool, caseSensitive bool) (*pattern_impl, error) {
	expr := text
	if !isRegex {
		expr = regexp.QuoteMeta(text)
	}
	var flags string
	if !caseSensitive {
		flags = "(?i)"
	}
	find, err := regexp.Compile(flags + expr)
	if err != nil {
		return nil, &MalformedPatternError{Text: text, Err: err}
	}
	// anchored variant for full matches, the group keeps alternations intact
	whole, err := regexp.Compile(flags + `^(?:` + expr + `)$`)
	if err != nil {
		return nil, &MalformedPatternError{Text: text, Err: err}
	}
	return &pattern_impl{source: text, find: find, whole: whole}, nil
}

func (p *pattern_impl) MatchesAll(text string) bool {
	return p.whole.MatchString(text)
}

func (p *pattern_impl) Find(text string) bool {
	return p.find.MatchString(text)
}

func (p *pattern_impl) String() string {
	return p.source
}
