package history

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that the dataset does not exist. It is not fatal.
	ErrNotFound = errors.New("dataset not found")
	// ErrMalformedRow reports a row whose timestamp or value cannot be parsed.
	ErrMalformedRow = errors.New("malformed row")
)

// MalformedRowError describes the first offending row of a rejected dataset.
type MalformedRowError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *MalformedRowError) Unwrap() []error { return []error{ErrMalformedRow, e.Err} }
