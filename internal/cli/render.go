package cli

import (
	"fmt"
	"io"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/JonMunkholm/colsplit/internal/ingest"
	"github.com/JonMunkholm/colsplit/internal/session"
	"github.com/JonMunkholm/colsplit/internal/table"
)

const nullText = "null"

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderTable writes t as a boxed table, or as CSV when pretty is false.
func renderTable(w io.Writer, t table.RawTable, pretty bool) error {
	if !pretty {
		return ingest.WriteCSV(w, t)
	}

	if len(t.Header) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return nil
	}

	tw := prettytable.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(prettytable.StyleLight)

	header := make(prettytable.Row, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range t.Rows {
		out := make(prettytable.Row, len(t.Header))
		for i := range t.Header {
			out[i] = nullText
			if i < len(row) && row[i] != nil {
				out[i] = *row[i]
			}
		}
		tw.AppendRow(out)
	}

	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(t.Rows))
	return nil
}

// describe prints a one-line summary of st.
func describe(w io.Writer, st session.State) {
	_, _ = fmt.Fprintf(w, "%d rows x %d columns [%s] history=%d",
		st.Current.RowCount(), st.Current.NumColumns(),
		strings.Join(st.Current.ColumnNames(), ", "), st.History.Len())
	if st.Spec.Column != "" {
		_, _ = fmt.Fprintf(w, " selected=%s mode=%s", st.Spec.Column, st.Spec.Mode)
	}
	if st.Candidates != nil {
		_, _ = fmt.Fprintf(w, " previewing=%s", strings.Join(st.Candidates.Names(), ","))
	}
	_, _ = fmt.Fprintln(w)
}
