package rule

import (
	"fmt"
	"strings"
)

// Mode defines how a rule set combines the results of its rules.
type Mode int

const (
	All Mode = iota // every rule must match
	Any             // at least one rule must match
)

func (m Mode) String() string {
	if m == Any {
		return "any"
	}
	return "all"
}

// Parses "all" or "any" (case-insensitive), also accepting "and" and "or".
func ParseMode(str string) (Mode, error) {
	switch strings.ToLower(str) {
	case "all", "and":
		return All, nil
	case "any", "or":
		return Any, nil
	}
	return All, fmt.Errorf("unknown rule set mode '%s'", str)
}

// Ordered collection of rules combined by a score.
// The score is the number of rules that match an entry. In All mode the set
// matches if the score equals the number of rules, so an empty set matches
// every entry. In Any mode a score of at least one is required, so an empty
// set matches nothing.
//
// Rule sets are rules themselves and can be nested.
type RuleSet interface {
	Rule
	Validator
	// Appends a rule to the set.
	Add(r Rule)
	// Returns the rules of the set.
	Rules() []Rule
	// Returns the number of rules in the set.
	Len() int
	Mode() Mode
}

// Creates a new rule set with the specified mode and rules.
func NewRuleSet(mode Mode, rules ...Rule) RuleSet {
	var rs ruleSet
	rs.mode = mode
	rs.rules = append(rs.rules, rules...)
	return &rs
}

// Returns a rule that always applies the specified query and ignores the query
// passed to Apply. Used to combine rules with different queries in a rule set.
func Bind(r Rule, query string) Rule {
	return &boundRule{rule: r, query: query}
}
