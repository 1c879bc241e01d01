package dataset

// DropBlankColumns returns a new Dataset without the columns whose non-null
// cell count is zero. Applying it to its own result returns an equal Dataset.
func DropBlankColumns(d *Dataset) *Dataset {
	return d.Select(func(c Column) bool {
		return c.NonNull() > 0
	})
}

// DropNullRows returns a new Dataset keeping only the rows in which every
// column is non-null. If no row is dropped, d itself is returned.
func DropNullRows(d *Dataset) *Dataset {
	keep := make([]int, 0, d.rows)
rows:
	for r := 0; r < d.rows; r++ {
		for _, c := range d.cols {
			if c.Values.IsNull(r) {
				continue rows
			}
		}
		keep = append(keep, r)
	}

	if len(keep) == d.rows {
		return d
	}

	out := &Dataset{
		cols:  make([]Column, len(d.cols)),
		index: make(map[string]int, len(d.cols)),
		rows:  len(keep),
	}
	for i, c := range d.cols {
		out.cols[i] = Column{Name: c.Name, Values: take(c.Values, keep)}
		out.index[c.Name] = i
	}
	return out
}
