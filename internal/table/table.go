// Package table defines RawTable, the row-oriented text table exchanged with
// the ingestion and export layers.
//
// A RawTable is what an external producer hands to a session (already parsed
// from CSV, JSON, or anything else) and what ExportCurrent hands back. Cells
// are nullable: a nil *string is a null cell. The zero value is an empty table.
package table

import (
	"errors"
	"fmt"
)

// ErrRaggedRow is returned by Normalize when a row has more cells than the header.
var ErrRaggedRow = errors.New("row has more fields than header")

// Row is one record. A nil element is a null cell.
type Row []*string

// RawTable is a header plus rows of nullable text cells.
type RawTable struct {
	Header []string `json:"header" yaml:"header"`
	Rows   []Row    `json:"rows" yaml:"rows"`
}

// Str returns a non-null cell holding s.
func Str(s string) *string {
	return &s
}

// Text returns the cell text and whether the cell is non-null.
func Text(c *string) (string, bool) {
	if c == nil {
		return "", false
	}
	return *c, true
}

// NumRows returns the number of data rows.
func (t RawTable) NumRows() int {
	return len(t.Rows)
}

// Normalize pads short rows with nulls so every row matches the header width.
// Rows longer than the header are rejected with ErrRaggedRow.
// The receiver is not modified.
func (t RawTable) Normalize() (RawTable, error) {
	width := len(t.Header)
	out := RawTable{
		Header: append([]string(nil), t.Header...),
		Rows:   make([]Row, len(t.Rows)),
	}

	for i, row := range t.Rows {
		if len(row) > width {
			return RawTable{}, fmt.Errorf("row %d: %d fields, header has %d: %w", i+1, len(row), width, ErrRaggedRow)
		}
		padded := make(Row, width)
		copy(padded, row)
		out.Rows[i] = padded
	}

	return out, nil
}

// Column returns the cells of column i, top to bottom.
func (t RawTable) Column(i int) []*string {
	cells := make([]*string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			cells[r] = row[i]
		}
	}
	return cells
}

// Head returns a table with at most n rows. Rows are shared with the receiver.
func (t RawTable) Head(n int) RawTable {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return RawTable{Header: t.Header, Rows: t.Rows[:n]}
}
