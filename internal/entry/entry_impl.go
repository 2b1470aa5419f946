package entry

import (
	"slices"
	"strings"
)

type MemEntry struct {
	key       string
	entryType string
	fields    map[string]string
}

func (e *MemEntry) Key() string {
	return e.key
}

func (e *MemEntry) Type() string {
	return e.entryType
}

func (e *MemEntry) Field(name string) (string, bool) {
	val, ok := e.fields[strings.ToLower(name)]
	return val, ok
}

func (e *MemEntry) FieldNames() []string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Sets the field to the specified value. Field names are stored lower case.
func (e *MemEntry) SetField(name string, value string) error {
	name = strings.ToLower(name)
	if name == PseudoFieldType {
		return ErrReservedField
	}
	e.fields[name] = value
	return nil
}

// Removes the field if present.
func (e *MemEntry) ClearField(name string) {
	delete(e.fields, strings.ToLower(name))
}
