package analyzer

import (
	"github.com/nylssoft/bibsearch/internal/config"
	"github.com/nylssoft/bibsearch/internal/database"
	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/hook"
	"github.com/nylssoft/bibsearch/internal/rule"
)

// Counters of a single import run.
type Stats struct {
	Inserted int
	Skipped  int
	Deleted  int
	Matched  int
}

type Analyzer interface {
	// Imports the configured BibTeX file into the database.
	// New or changed entries are evaluated against all saved searches and the
	// hook is fired for every match. Entries removed from the file are deleted.
	Analyze() (Stats, error)
	// Returns the stored entries that match the query.
	Search(r rule.Rule, query string) ([]entry.Entry, error)
}

func NewAnalyzer(cfg config.Config, db database.Database, h hook.Hook) Analyzer {
	var analyzer analyzer_impl
	analyzer.config = cfg
	analyzer.db = db
	analyzer.hook = h
	return &analyzer
}
