// Package evaluator decides whether an entry matches a parsed search expression.
package evaluator

import (
	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/grammar"
	"github.com/nylssoft/bibsearch/internal/pattern"
)

// Evaluates expression trees against entries using fixed matching flags.
//
// Compiled patterns are cached per comparison node, so an evaluator should be
// used for a single tree and is not safe for concurrent use.
type Evaluator interface {
	// Compiles the patterns of all comparisons in the tree.
	// Returns a *pattern.MalformedPatternError for an invalid regular expression.
	Prepare(node grammar.Node) error
	// Returns whether the entry matches the tree.
	Evaluate(node grammar.Node, e entry.Entry) (bool, error)
	CaseSensitive() bool
	Regex() bool
}

// Creates a new evaluator with the specified matching flags.
func NewEvaluator(caseSensitive bool, regex bool) Evaluator {
	var ev evaluator_impl
	ev.caseSensitive = caseSensitive
	ev.regex = regex
	ev.patterns = make(map[*grammar.Comparison]pattern.Pair)
	return &ev
}

// Evaluates the tree against the entry with a throwaway evaluator.
func Evaluate(node grammar.Node, e entry.Entry, caseSensitive bool, regex bool) (bool, error) {
	return NewEvaluator(caseSensitive, regex).Evaluate(node, e)
}
