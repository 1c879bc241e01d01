package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/JonMunkholm/colsplit/internal/dataset"
)

// SplitByDelimiter splits column on the literal delimiter.
//
// The number of output columns is the largest token count seen in any row.
// Rows with fewer tokens get nulls in the trailing columns. A null cell
// counts as a single null token.
func SplitByDelimiter(d *dataset.Dataset, column, delimiter string) (*Candidates, error) {
	return splitByDelimiter(d, column, delimiter, column)
}

// SplitByFixedWidth slices column into consecutive windows of the given widths.
//
// Offsets count characters. A window that runs past the end of a cell is
// clamped, so short cells produce "" rather than an error. A null cell is
// null in every output column.
func SplitByFixedWidth(d *dataset.Dataset, column string, widths []int) (*Candidates, error) {
	return splitByFixedWidth(d, column, widths, column)
}

func splitByDelimiter(d *dataset.Dataset, column, delimiter, prefix string) (*Candidates, error) {
	if err := validateDelimiter(delimiter); err != nil {
		return nil, err
	}

	src, err := d.Column(column)
	if err != nil {
		return nil, err
	}

	rows := src.Len()
	tokens := make([][]string, rows)
	// Every cell yields at least one token, so an empty column still
	// produces a single candidate.
	width := 1
	for r := 0; r < rows; r++ {
		s, ok := dataset.Text(src.Values, r)
		if !ok {
			continue
		}
		tokens[r] = strings.Split(s, delimiter)
		if n := len(tokens[r]); n > width {
			width = n
		}
	}

	builders := newBuilders(width)
	for r := 0; r < rows; r++ {
		for j, b := range builders {
			if j < len(tokens[r]) {
				b.Append(tokens[r][j])
			} else {
				b.AppendNull()
			}
		}
	}

	return finish(column, prefix, rows, builders), nil
}

func splitByFixedWidth(d *dataset.Dataset, column string, widths []int, prefix string) (*Candidates, error) {
	if err := validateWidths(widths); err != nil {
		return nil, err
	}

	src, err := d.Column(column)
	if err != nil {
		return nil, err
	}

	starts := make([]int, len(widths))
	offset := 0
	for k, w := range widths {
		starts[k] = offset
		if w > math.MaxInt-offset {
			offset = math.MaxInt
		} else {
			offset += w
		}
	}

	rows := src.Len()
	builders := newBuilders(len(widths))
	for r := 0; r < rows; r++ {
		s, ok := dataset.Text(src.Values, r)
		if !ok {
			for _, b := range builders {
				b.AppendNull()
			}
			continue
		}
		runes := []rune(s)
		for k, b := range builders {
			b.Append(clampSlice(runes, starts[k], widths[k]))
		}
	}

	return finish(column, prefix, rows, builders), nil
}

// clampSlice returns runes[start:start+length] with both bounds clamped to
// the slice. Widths may be as large as math.MaxInt, so the end is never
// computed by adding past len(runes).
func clampSlice(runes []rune, start, length int) string {
	if start >= len(runes) {
		return ""
	}
	if length >= len(runes)-start {
		return string(runes[start:])
	}
	return string(runes[start : start+length])
}

func newBuilders(n int) []*array.StringBuilder {
	builders := make([]*array.StringBuilder, n)
	for i := range builders {
		builders[i] = array.NewStringBuilder(dataset.Allocator)
	}
	return builders
}

func finish(source, prefix string, rows int, builders []*array.StringBuilder) *Candidates {
	values := make([]arrow.Array, len(builders))
	for i, b := range builders {
		values[i] = b.NewArray()
	}
	return &Candidates{
		source: source,
		names:  DefaultNames(prefix, len(builders)),
		values: values,
		rows:   rows,
	}
}

// String summarises the candidates for logs.
func (c *Candidates) String() string {
	return fmt.Sprintf("%d candidate columns from %q (%d rows)", len(c.names), c.source, c.rows)
}
