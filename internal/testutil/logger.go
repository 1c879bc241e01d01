// Package testutil holds helpers shared by package tests.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/JonMunkholm/colsplit/internal/table"
)

// NewTestLogger returns a logger that writes to t.Log.
// Output only shows on failure or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// People is a small table with a splittable "name" column.
func People() table.RawTable {
	return table.RawTable{
		Header: []string{"id", "name", "city"},
		Rows: []table.Row{
			{table.Str("1"), table.Str("Ada,Lovelace"), table.Str("London")},
			{table.Str("2"), table.Str("Alan,Mathison,Turing"), table.Str("Wilmslow")},
			{table.Str("3"), nil, table.Str("Boston")},
		},
	}
}
