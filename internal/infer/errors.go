package infer

import "fmt"

// ColumnError reports a failure to resolve one column of a dataset
type ColumnError struct {
	Column string
	Index  int
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("resolve column %q (position %d): %v", e.Column, e.Index, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}
