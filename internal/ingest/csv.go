// Package ingest turns delimited text into a table.RawTable and back.
//
// Reading is the external producer step in front of a session: it only
// parses. Typing and splitting happen later, on the Dataset.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/colsplit/internal/table"
)

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("empty file")

// Options controls CSV parsing.
type Options struct {
	// Comma is the field separator. Zero means ','.
	Comma rune
	// MaxBytes bounds the input size. Zero means unlimited.
	MaxBytes int64
	// MaxRows stops reading after this many data rows. Zero means all.
	MaxRows int
}

// ReadCSV parses r into a RawTable. The first record is the header.
//
// Empty fields become null cells. Header names are trimmed; blank names
// become column_<i> and repeated names get a _duplicated_<n> suffix so every
// column can be addressed by name. A record wider than the header is an error.
func ReadCSV(r io.Reader, opts Options) (table.RawTable, error) {
	src, _ := Wrap(r, opts.MaxBytes)

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.RawTable{}, ErrEmptyFile
	}
	if err != nil {
		return table.RawTable{}, fmt.Errorf("read header: %w", err)
	}

	t := table.RawTable{Header: cleanHeader(header)}
	width := len(t.Header)

	for opts.MaxRows <= 0 || len(t.Rows) < opts.MaxRows {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.RawTable{}, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		if len(rec) > width {
			line, _ := cr.FieldPos(0)
			return table.RawTable{}, fmt.Errorf("line %d: %d fields, header has %d: %w", line, len(rec), width, table.ErrRaggedRow)
		}

		row := make(table.Row, width)
		for i, v := range rec {
			if v != "" {
				row[i] = table.Str(v)
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// WriteCSV writes t as CSV with a header row. Null cells are written empty.
func WriteCSV(w io.Writer, t table.RawTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rec := make([]string, len(t.Header))
	for i, row := range t.Rows {
		for j := range rec {
			rec[j] = ""
			if j < len(row) {
				rec[j], _ = table.Text(row[j])
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cleanHeader(raw []string) []string {
	header := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "column_" + strconv.Itoa(i)
		}
		if taken[name] {
			base := name
			for n := 0; taken[name]; n++ {
				name = base + "_duplicated_" + strconv.Itoa(n)
			}
		}
		taken[name] = true
		header[i] = name
	}
	return header
}
