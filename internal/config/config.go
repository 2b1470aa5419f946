package config

import (
	"github.com/nylssoft/bibsearch/internal/entry"
	"github.com/nylssoft/bibsearch/internal/rule"
)

// Provides the configuration read from a JSON file.
//
// Besides file locations and logger settings the configuration defines saved
// searches, each a query in the search expression grammar with its own
// matching flags, and filters, each combining saved searches with mode
// "all" or "any". Searches and filters share one namespace.
//
// Use NewConfig to create a new configuration object.
type Config interface {
	// Reads and validates the configuration file and sets up the log file.
	Init(filename string) error
	IsVerbose() bool
	BibtexFilename() string
	DatabaseFilename() string
	// Returns the hook command and its arguments.
	HookCommand() (string, []string)
	// Returns the names of all saved searches followed by all filters.
	SearchNames() []string
	// Returns the rule for the saved search or filter with the specified name.
	// The rule ignores the query passed to Apply.
	Rule(name string) (rule.Rule, bool)
	// Returns the names of all saved searches and filters that match the entry.
	MatchingSearches(e entry.Entry) []string
}

// Creates a new configuration object.
func NewConfig() Config {
	var cfg config_impl
	return &cfg
}
