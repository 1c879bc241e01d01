package transform

import "errors"

var (
	// ErrInvalidDelimiter is returned for an empty delimiter.
	ErrInvalidDelimiter = errors.New("invalid delimiter")

	// ErrInvalidWidths is returned when the width list is empty or holds a non-positive width.
	ErrInvalidWidths = errors.New("invalid widths")

	// ErrArityMismatch is returned when a rename supplies a different number of names than there are candidates.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrInvalidName is returned for an empty column name.
	ErrInvalidName = errors.New("invalid column name")

	// ErrInvalidMode is returned for an unknown split mode.
	ErrInvalidMode = errors.New("invalid split mode")
)
