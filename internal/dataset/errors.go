package dataset

import "errors"

var (
	// ErrColumnNotFound is returned when a named column does not exist.
	ErrColumnNotFound = errors.New("column not found")

	// ErrRowCountMismatch is returned when a column's length differs from the dataset row count.
	ErrRowCountMismatch = errors.New("row count mismatch")

	// ErrDuplicateColumn is returned when an operation would produce two columns with the same name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)
