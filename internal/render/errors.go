package render

import "fmt"

// MissingFieldError reports an entry missing a field the renderer
// cannot do without (year, title, or author).
type MissingFieldError struct {
	Key   string // citation key of the offending entry
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("entry %s: missing required field %q", e.Key, e.Field)
}

// CollaboratorError reports a field extractor failing on an entry.
type CollaboratorError struct {
	Key string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("entry %s: %v", e.Key, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// RowError pairs a failed entry's position with its cause. Failures are
// per-entry: one bad record never aborts the rest of the batch.
type RowError struct {
	Index int
	Key   string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Index, e.Key, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
