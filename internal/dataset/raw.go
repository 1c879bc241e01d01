package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/JonMunkholm/colsplit/internal/table"
)

// RawOptions controls conversion from a RawTable.
type RawOptions struct {
	// InferTypes builds int64, float64, or boolean columns when every
	// non-null cell of a column parses as that type. Otherwise all
	// columns are strings.
	InferTypes bool
}

// FromRaw builds a Dataset from a RawTable. Short rows are padded with nulls.
func FromRaw(t table.RawTable, opts RawOptions) (*Dataset, error) {
	t, err := t.Normalize()
	if err != nil {
		return nil, err
	}

	cols := make([]Column, len(t.Header))
	for i, name := range t.Header {
		cells := t.Column(i)
		if opts.InferTypes {
			cols[i] = Column{Name: name, Values: inferArray(cells)}
		} else {
			cols[i] = StringColumn(name, cells)
		}
	}

	d, err := New(cols...)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	// Rows without any header still count.
	if len(cols) == 0 {
		d.rows = len(t.Rows)
	}
	return d, nil
}

// ToRaw converts d to a RawTable, coercing every cell to text.
func ToRaw(d *Dataset) table.RawTable {
	t := table.RawTable{
		Header: d.ColumnNames(),
		Rows:   make([]table.Row, d.rows),
	}
	for r := 0; r < d.rows; r++ {
		row := make(table.Row, len(d.cols))
		for i, c := range d.cols {
			if s, ok := Text(c.Values, r); ok {
				row[i] = table.Str(s)
			}
		}
		t.Rows[r] = row
	}
	return t
}

// Head returns a new Dataset with at most n rows.
func Head(d *Dataset, n int) *Dataset {
	if n < 0 || n >= d.rows {
		return d
	}
	out := &Dataset{
		cols:  make([]Column, len(d.cols)),
		index: make(map[string]int, len(d.cols)),
		rows:  n,
	}
	for i, c := range d.cols {
		out.cols[i] = Column{Name: c.Name, Values: array.NewSlice(c.Values, 0, int64(n))}
		out.index[c.Name] = i
	}
	return out
}

// inferArray picks the narrowest type every non-null cell parses as:
// int64, then float64, then boolean, falling back to string.
func inferArray(cells []*string) arrow.Array {
	nonNull := 0
	isInt, isFloat, isBool := true, true, true
	for _, c := range cells {
		if c == nil {
			continue
		}
		nonNull++
		s := strings.TrimSpace(*c)
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if f, err := strconv.ParseFloat(s, 64); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(s); !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			break
		}
	}

	switch {
	case nonNull == 0:
		return StringColumn("", cells).Values
	case isInt:
		b := array.NewInt64Builder(Allocator)
		for _, c := range cells {
			if c == nil {
				b.AppendNull()
				continue
			}
			v, _ := strconv.ParseInt(strings.TrimSpace(*c), 10, 64)
			b.Append(v)
		}
		return b.NewArray()
	case isFloat:
		b := array.NewFloat64Builder(Allocator)
		for _, c := range cells {
			if c == nil {
				b.AppendNull()
				continue
			}
			v, _ := strconv.ParseFloat(strings.TrimSpace(*c), 64)
			b.Append(v)
		}
		return b.NewArray()
	case isBool:
		b := array.NewBooleanBuilder(Allocator)
		for _, c := range cells {
			if c == nil {
				b.AppendNull()
				continue
			}
			v, _ := parseBool(strings.TrimSpace(*c))
			b.Append(v)
		}
		return b.NewArray()
	default:
		return StringColumn("", cells).Values
	}
}

// parseBool accepts only true/false in any case; strconv.ParseBool also
// takes 0/1 and t/f, which would turn integer columns into booleans.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
