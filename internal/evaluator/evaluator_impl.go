package evaluator

import (
	"fmt"
	"slices"

	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/grammar"
	"github.com/nylssoft/bibsearch/internal/pattern"
)

type evaluator_impl struct {
	caseSensitive bool
	regex         bool
	patterns      map[*grammar.Comparison]pattern.Pair
}

func (ev *evaluator_impl) CaseSensitive() bool {
	return ev.caseSensitive
}

func (ev *evaluator_impl) Regex() bool {
	return ev.regex
}

func (ev *evaluator_impl) Prepare(node grammar.Node) error {
	for _, c := range grammar.Comparisons(node) {
		if _, err := ev.compile(c); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator_impl) Evaluate(node grammar.Node, e entry.Entry) (bool, error) {
	switch n := node.(type) {
	case *grammar.Comparison:
		pair, err := ev.compile(n)
		if err != nil {
			return false, err
		}
		return compare(pair, n.Operator, e), nil
	case *grammar.Not:
		ret, err := ev.Evaluate(n.Inner, e)
		return !ret && err == nil, err
	case *grammar.Group:
		return ev.Evaluate(n.Inner, e)
	case *grammar.And:
		left, err := ev.Evaluate(n.Left, e)
		if err != nil || !left {
			return false, err
		}
		return ev.Evaluate(n.Right, e)
	case *grammar.Or:
		left, err := ev.Evaluate(n.Left, e)
		if err != nil || left {
			return left, err
		}
		return ev.Evaluate(n.Right, e)
	}
	return false, fmt.Errorf("unsupported expression node %T", node)
}

func (ev *evaluator_impl) compile(c *grammar.Comparison) (pattern.Pair, error) {
	pair, ok := ev.patterns[c]
	if ok {
		return pair, nil
	}
	pair, err := pattern.CompilePair(c.Field, c.Value, ev.regex, ev.caseSensitive)
	if err != nil {
		return pair, err
	}
	ev.patterns[c] = pair
	return pair, nil
}

// compare tests all regular fields and the entry type pseudo-field whose name
// matches the field pattern. Absent fields only satisfy DoesNotContain.
func compare(pair pattern.Pair, op grammar.Operator, e entry.Entry) bool {
	noSuchField := true
	names := append(slices.Clip(e.FieldNames()), entry.PseudoFieldType)
	for _, name := range names {
		if !pair.Field.MatchesAll(name) {
			continue
		}
		noSuchField = false
		var content string
		if name == entry.PseudoFieldType {
			content = e.Type()
		} else {
			content, _ = e.Field(name)
		}
		if len(content) == 0 {
			continue
		}
		if matchInField(pair.Value, op, content) {
			return true
		}
	}
	return noSuchField && op == grammar.DoesNotContain
}

func matchInField(value pattern.Pattern, op grammar.Operator, content string) bool {
	switch op {
	case grammar.Exact:
		return value.MatchesAll(content)
	case grammar.Contains:
		return value.Find(content)
	default:
		return !value.Find(content)
	}
}
