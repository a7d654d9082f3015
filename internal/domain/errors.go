package domain

import "fmt"

// MissingFileError reports a required input that is absent or not a regular file.
type MissingFileError struct {
	Label string
	Path  string
	Err   error // nil when the path simply does not exist
}

func (e *MissingFileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s path not found: %s (%v)", e.Label, e.Path, e.Err)
	}
	return fmt.Sprintf("%s path not found: %s", e.Label, e.Path)
}

func (e *MissingFileError) Unwrap() error { return e.Err }

// ComputationError wraps a failure raised by the adjustment routine.
type ComputationError struct {
	Err error
}

func (e *ComputationError) Error() string { return e.Err.Error() }

func (e *ComputationError) Unwrap() error { return e.Err }

// SerializationError reports a result table that cannot be rendered as JSON records.
// Row is -1 when the column set itself is invalid.
type SerializationError struct {
	Row    int
	Column string
	Reason string
}

func (e *SerializationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("serialize result column %q: %s", e.Column, e.Reason)
	}
	if e.Column == "" {
		return fmt.Sprintf("serialize result row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("serialize result row %d column %q: %s", e.Row, e.Column, e.Reason)
}
