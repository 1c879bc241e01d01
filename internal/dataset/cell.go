package dataset

import (
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Allocator is the memory allocator used for every array built by this module.
var Allocator memory.Allocator = memory.NewGoAllocator()

// Text returns the text form of cell i and whether it is non-null.
// Non-string columns are coerced: integers and booleans use strconv,
// floats use the shortest decimal representation without an exponent.
func Text(arr arrow.Array, i int) (string, bool) {
	if arr.IsNull(i) {
		return "", false
	}

	switch a := arr.(type) {
	case *array.String:
		return a.Value(i), true
	case *array.LargeString:
		return a.Value(i), true
	case *array.Int64:
		return strconv.FormatInt(a.Value(i), 10), true
	case *array.Float64:
		return strconv.FormatFloat(a.Value(i), 'f', -1, 64), true
	case *array.Boolean:
		return strconv.FormatBool(a.Value(i)), true
	default:
		return arr.ValueStr(i), true
	}
}

// StringColumn builds a string column from nullable cells. A nil cell is null.
func StringColumn(name string, cells []*string) Column {
	b := array.NewStringBuilder(Allocator)
	b.Reserve(len(cells))
	for _, c := range cells {
		if c == nil {
			b.AppendNull()
		} else {
			b.Append(*c)
		}
	}
	return Column{Name: name, Values: b.NewArray()}
}

// Strings builds a string column with no nulls.
func Strings(name string, values ...string) Column {
	b := array.NewStringBuilder(Allocator)
	b.AppendValues(values, nil)
	return Column{Name: name, Values: b.NewArray()}
}

// take returns a new array holding the cells of arr at the given row positions, in order.
func take(arr arrow.Array, rows []int) arrow.Array {
	switch a := arr.(type) {
	case *array.Int64:
		b := array.NewInt64Builder(Allocator)
		for _, r := range rows {
			if a.IsNull(r) {
				b.AppendNull()
			} else {
				b.Append(a.Value(r))
			}
		}
		return b.NewArray()
	case *array.Float64:
		b := array.NewFloat64Builder(Allocator)
		for _, r := range rows {
			if a.IsNull(r) {
				b.AppendNull()
			} else {
				b.Append(a.Value(r))
			}
		}
		return b.NewArray()
	case *array.Boolean:
		b := array.NewBooleanBuilder(Allocator)
		for _, r := range rows {
			if a.IsNull(r) {
				b.AppendNull()
			} else {
				b.Append(a.Value(r))
			}
		}
		return b.NewArray()
	default:
		b := array.NewStringBuilder(Allocator)
		for _, r := range rows {
			if s, ok := Text(arr, r); ok {
				b.Append(s)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	}
}
