package rule

import (
	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/grammar"
)

// Anything that decides whether an entry matches a query.
type Rule interface {
	// Returns whether the entry matches the query.
	// Returns an error if the query cannot be evaluated, e.g. for a syntax error.
	Apply(query string, e entry.Entry) (bool, error)
}

// A rule that can check a query before it is applied.
type Validator interface {
	Validate(query string) bool
}

// Search rule for queries in the search expression grammar, e.g.
//
//	author = "Smith" AND (year == 2020 OR entrytype = article)
//
// The parsed query is cached. A query is parsed again only if it differs from
// the last successfully parsed query. The cache is guarded by a mutex, so a rule
// can be shared between goroutines.
//
// Use NewGrammarRule to create a new rule.
type GrammarRule interface {
	Rule
	Validator
	// Returns the syntax or pattern error for the query, or nil if the query is valid.
	// A valid query is cached, an invalid query leaves the cache unchanged.
	Check(query string) error
	// Returns the last successfully parsed query.
	Query() string
	// Returns the tree of the last successfully parsed query, or nil.
	Tree() grammar.Node
	// Returns how often a query was parsed by this rule.
	ParseCount() int
	CaseSensitive() bool
	Regex() bool
}

// Creates a new grammar rule with the specified matching flags.
func NewGrammarRule(caseSensitive bool, regex bool) GrammarRule {
	var r grammarRule
	r.caseSensitive = caseSensitive
	r.regex = regex
	return &r
}

// Returns whether the query is valid for the specified matching flags.
func IsValid(caseSensitive bool, regex bool, query string) bool {
	return NewGrammarRule(caseSensitive, regex).Validate(query)
}
