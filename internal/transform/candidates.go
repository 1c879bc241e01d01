package transform

import (
	"slices"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/JonMunkholm/colsplit/internal/dataset"
)

// Candidates is an ordered set of proposed columns produced by a split.
// Like Dataset it is immutable; Rename returns a new value.
type Candidates struct {
	source string
	names  []string
	values []arrow.Array
	rows   int
}

// Source returns the name of the column the candidates were split from.
func (c *Candidates) Source() string {
	return c.source
}

// Names returns the candidate names in order.
func (c *Candidates) Names() []string {
	return slices.Clone(c.names)
}

// Len returns the number of candidate columns.
func (c *Candidates) Len() int {
	return len(c.names)
}

// RowCount returns the number of cells in each candidate column.
func (c *Candidates) RowCount() int {
	return c.rows
}

// Columns returns the candidates as dataset columns, ready to splice.
func (c *Candidates) Columns() []dataset.Column {
	cols := make([]dataset.Column, len(c.names))
	for i, name := range c.names {
		cols[i] = dataset.Column{Name: name, Values: c.values[i]}
	}
	return cols
}

// Dataset returns the candidates as a standalone Dataset for display.
func (c *Candidates) Dataset() (*dataset.Dataset, error) {
	return dataset.New(c.Columns()...)
}
