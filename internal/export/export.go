// Package export writes a table.RawTable to files, HTTP responses, and databases.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/colsplit/internal/ingest"
	"github.com/JonMunkholm/colsplit/internal/table"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is a serialization format for downloads and files.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name or file extension. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Ext returns the file extension for f, with the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes t to w in format f. Null cells are empty in CSV and null
// in JSON and YAML.
func Encode(w io.Writer, f Format, t table.RawTable) error {
	switch f {
	case FormatCSV:
		return ingest.WriteCSV(w, t)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Sink is a destination for an exported table.
type Sink interface {
	Write(ctx context.Context, name string, t table.RawTable) error
}

// FileSink writes <Dir>/<name><ext> in its Format.
type FileSink struct {
	Dir    string
	Format Format
}

// Write implements Sink.
func (s FileSink) Write(_ context.Context, name string, t table.RawTable) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(s.Dir, filepath.Base(name)+s.Format.Ext())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := Encode(f, s.Format, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriterSink encodes to a single writer, ignoring the table name.
type WriterSink struct {
	W      io.Writer
	Format Format
}

// Write implements Sink.
func (s WriterSink) Write(_ context.Context, _ string, t table.RawTable) error {
	return Encode(s.W, s.Format, t)
}

// Fanout writes t to every sink concurrently and returns the first error.
func Fanout(ctx context.Context, name string, t table.RawTable, sinks ...Sink) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range sinks {
		g.Go(func() error {
			return s.Write(gctx, name, t)
		})
	}
	return g.Wait()
}
