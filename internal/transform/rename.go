package transform

import (
	"fmt"
	"slices"

	"github.com/JonMunkholm/colsplit/internal/dataset"
)

// Rename returns a copy of c with its names replaced positionally by names.
// It fails with ErrArityMismatch unless len(names) == c.Len(), and rejects
// empty or repeated names. c is never modified.
func Rename(c *Candidates, names []string) (*Candidates, error) {
	if len(names) != len(c.names) {
		return nil, fmt.Errorf("%w: got %d names for %d columns", ErrArityMismatch, len(names), len(c.names))
	}

	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("%w: name %d is empty", ErrInvalidName, i)
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: %q", dataset.ErrDuplicateColumn, n)
		}
		seen[n] = true
	}

	return &Candidates{
		source: c.source,
		names:  slices.Clone(names),
		values: c.values,
		rows:   c.rows,
	}, nil
}
