package entry

import "errors"

// Name of the pseudo-field that exposes the entry type to search expressions.
// It is never stored among the regular fields of an entry.
const PseudoFieldType = "entrytype"

var ErrReservedField = errors.New("field name 'entrytype' is reserved")

// Read-only view of a bibliographic entry as consumed by the search rules.
type Entry interface {
	// Returns the citation key.
	Key() string
	// Returns the entry type, e.g. article or book.
	Type() string
	// Returns the content of the specified field and whether the field exists.
	// Field names are compared case-insensitively.
	Field(name string) (string, bool)
	// Returns the names of all regular fields in ascending order.
	FieldNames() []string
}

// Creates a new in-memory entry with the specified citation key and type.
func NewEntry(key string, entryType string) *MemEntry {
	var e MemEntry
	e.key = key
	e.entryType = entryType
	e.fields = make(map[string]string)
	return &e
}
