package pattern

import (
	"errors"
	"fmt"
)

// ErrMalformedPattern is matched by every MalformedPatternError via errors.Is.
var ErrMalformedPattern = errors.New("malformed pattern")

// Returned by Compile if regular expression mode is requested and the text
// is not a valid regular expression.
type MalformedPatternError struct {
	Text string
	Err  error
}

func (e *MalformedPatternError) Error() string {
	return fmt.Sprintf("malformed pattern '%s': %s", e.Text, e.Err.Error())
}

func (e *MalformedPatternError) Unwrap() error {
	return e.Err
}

func (e *MalformedPatternError) Is(target error) bool {
	return target == ErrMalformedPattern
}

// A compiled field or value pattern.
type Pattern interface {
	// Returns whether the pattern matches the entire text.
	MatchesAll(text string) bool
	// Returns whether the pattern matches some substring of the text.
	Find(text string) bool
	// Returns the text the pattern was compiled from.
	String() string
}

// Field name pattern and value pattern of a single comparison.
type Pair struct {
	Field Pattern
	Value Pattern
}

// Compiles the text into a pattern.
//
// If isRegex is false all regular expression metacharacters are escaped so the
// text only matches itself. If caseSensitive is false the pattern matches
// case-insensitively; the text itself is never case folded.
func Compile(text string, isRegex bool, caseSensitive bool) (Pattern, error) {
	p, err := compile(text, isRegex, caseSensitive)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Compiles the field and value text of a comparison using the same flags.
func CompilePair(field string, value string, isRegex bool, caseSensitive bool) (Pair, error) {
	var pair Pair
	var err error
	pair.Field, err = Compile(field, isRegex, caseSensitive)
	if err != nil {
		return pair, err
	}
	pair.Value, err = Compile(value, isRegex, caseSensitive)
	return pair, err
}
