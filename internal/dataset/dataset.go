// Package dataset provides Dataset, the immutable column store a session
// operates on.
//
// Columns are Apache Arrow arrays. Arrow arrays are immutable and carry a
// validity bitmap, which gives us nullable cells for free and lets a new
// Dataset share every unchanged column with the one it was derived from.
// A snapshot held for undo therefore costs one slice of column headers, not a
// copy of the table.
//
// All arrays are allocated from the Go allocator and are left to the garbage
// collector; nothing in this package calls Release.
package dataset

import (
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Column is a named, immutable sequence of nullable values.
type Column struct {
	Name   string
	Values arrow.Array
}

// Len returns the number of cells in the column.
func (c Column) Len() int {
	if c.Values == nil {
		return 0
	}
	return c.Values.Len()
}

// NonNull returns the number of non-null cells.
func (c Column) NonNull() int {
	if c.Values == nil {
		return 0
	}
	return c.Values.Len() - c.Values.NullN()
}

// Dataset is an ordered set of equally long, uniquely named columns.
// A Dataset is never modified after construction; every operation returns a new one.
type Dataset struct {
	cols  []Column
	index map[string]int
	rows  int
}

// Empty returns a dataset with no columns and no rows.
func Empty() *Dataset {
	return &Dataset{index: map[string]int{}}
}

// New builds a Dataset from columns, enforcing equal length and unique names.
// With no columns the row count is zero.
func New(cols ...Column) (*Dataset, error) {
	d := &Dataset{
		cols:  make([]Column, len(cols)),
		index: make(map[string]int, len(cols)),
	}

	for i, c := range cols {
		if c.Values == nil {
			return nil, fmt.Errorf("column %q has no values", c.Name)
		}
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i == 0 {
			d.rows = c.Len()
		} else if c.Len() != d.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrRowCountMismatch, c.Name, c.Len(), d.rows)
		}
		d.cols[i] = c
		d.index[c.Name] = i
	}

	return d, nil
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int {
	return len(d.cols)
}

// RowCount returns the number of rows shared by every column.
func (d *Dataset) RowCount() int {
	return d.rows
}

// Columns returns the columns in order. The slice is a copy; the arrays are shared.
func (d *Dataset) Columns() []Column {
	return slices.Clone(d.cols)
}

// Index returns the position of the named column, or -1.
func (d *Dataset) Index(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the dataset has a column with the given name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, error) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return d.cols[i], nil
}

// WithColumnsAt returns a new Dataset in which removedName is replaced by
// newColumns, spliced in at position index. All other columns keep their
// relative order and are shared with d.
//
// index must be the current position of removedName. Every new column must
// have RowCount() cells, and the result must not contain duplicate names.
func (d *Dataset) WithColumnsAt(index int, removedName string, newColumns []Column) (*Dataset, error) {
	if index < 0 || index >= len(d.cols) || d.cols[index].Name != removedName {
		return nil, fmt.Errorf("%w: %q at position %d", ErrColumnNotFound, removedName, index)
	}

	for _, c := range newColumns {
		if c.Len() != d.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrRowCountMismatch, c.Name, c.Len(), d.rows)
		}
	}

	cols := make([]Column, 0, len(d.cols)-1+len(newColumns))
	cols = append(cols, d.cols[:index]...)
	cols = append(cols, newColumns...)
	cols = append(cols, d.cols[index+1:]...)

	out := &Dataset{
		cols:  cols,
		index: make(map[string]int, len(cols)),
		rows:  d.rows,
	}
	for i, c := range cols {
		if _, dup := out.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		out.index[c.Name] = i
	}

	return out, nil
}

// Select returns a new Dataset containing only the columns for which keep returns true.
func (d *Dataset) Select(keep func(Column) bool) *Dataset {
	out := &Dataset{index: map[string]int{}, rows: d.rows}
	for _, c := range d.cols {
		if keep(c) {
			out.index[c.Name] = len(out.cols)
			out.cols = append(out.cols, c)
		}
	}
	return out
}

// Equal reports whether d and other have the same column names, in the same
// order, holding equal values.
func (d *Dataset) Equal(other *Dataset) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	if d.rows != other.rows || len(d.cols) != len(other.cols) {
		return false
	}
	for i, c := range d.cols {
		o := other.cols[i]
		if c.Name != o.Name || !array.Equal(c.Values, o.Values) {
			return false
		}
	}
	return true
}
