package rule

import (
	"sync"

	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/evaluator"
	"github.com/nylssoft/bibsearch/internal/grammar"
)

type grammarRule struct {
	caseSensitive bool
	regex         bool

	mu        sync.Mutex
	parsed    bool
	query     string
	tree      grammar.Node
	evaluator evaluator.Evaluator
	parses    int
}

func (r *grammarRule) CaseSensitive() bool {
	return r.caseSensitive
}

func (r *grammarRule) Regex() bool {
	return r.regex
}

func (r *grammarRule) Query() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.query
}

func (r *grammarRule) Tree() grammar.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree
}

func (r *grammarRule) ParseCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.parses
}

func (r *grammarRule) Validate(query string) bool {
	return r.Check(query) == nil
}

func (r *grammarRule) Check(query string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.init(query)
}

func (r *grammarRule) Apply(query string, e entry.Entry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.init(query); err != nil {
		return false, err
	}
	return r.evaluator.Evaluate(r.tree, e)
}

// init replaces the cached tree if the query differs from the cached one.
// Must be called with the mutex held.
func (r *grammarRule) init(query string) error {
	if r.parsed && r.query == query {
		return nil
	}
	r.parses++
	tree, err := grammar.Parse(query)
	if err != nil {
		return err
	}
	ev := evaluator.NewEvaluator(r.caseSensitive, r.regex)
	if err := ev.Prepare(tree); err != nil {
		return err
	}
	r.parsed = true
	r.query = query
	r.tree = tree
	r.evaluator = ev
	return nil
}
