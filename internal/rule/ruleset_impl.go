package rule

import (
	"slices"

	"github.com/nylssoft/bibsearch/internal/entry"
)

type ruleSet struct {
	mode  Mode
	rules []Rule
}

func (rs *ruleSet) Add(r Rule) {
	rs.rules = append(rs.rules, r)
}

func (rs *ruleSet) Rules() []Rule {
	return slices.Clone(rs.rules)
}

func (rs *ruleSet) Len() int {
	return len(rs.rules)
}

func (rs *ruleSet) Mode() Mode {
	return rs.mode
}

func (rs *ruleSet) Apply(query string, e entry.Entry) (bool, error) {
	score := 0
	// each rule adds at most 1 to the score
	for _, r := range rs.rules {
		ok, err := r.Apply(query, e)
		if err != nil {
			return false, err
		}
		if ok {
			score++
		}
	}
	if rs.mode == Any {
		return score > 0, nil
	}
	return score == len(rs.rules), nil
}

func (rs *ruleSet) Validate(query string) bool {
	for _, r := range rs.rules {
		if v, ok := r.(Validator); ok && !v.Validate(query) {
			return false
		}
	}
	return true
}

type boundRule struct {
	rule  Rule
	query string
}

func (b *boundRule) Apply(_ string, e entry.Entry) (bool, error) {
	return b.rule.Apply(b.query, e)
}

func (b *boundRule) Validate(string) bool {
	if v, ok := b.rule.(Validator); ok {
		return v.Validate(b.query)
	}
	return true
}
