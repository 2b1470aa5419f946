package bibtex

import (
	"github.com/nylssoft/bibsearch/internal/entry"
)

// Entry read from a BibTeX file.
type Record struct {
	Entry *entry.MemEntry
	// Source text of the entry, used to detect changed entries.
	Raw string
}

// Parses BibTeX content into records.
//
// Entry types and field names are converted to lower case. Field values are
// stored without the outer braces or quotes, concatenations with '#' are joined
// and @string macros are expanded. @comment and @preamble blocks are skipped.
func Parse(content string) ([]Record, error) {
	var p parser_impl
	p.str = content
	p.macros = make(map[string]string)
	return p.parse()
}
