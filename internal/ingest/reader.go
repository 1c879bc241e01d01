package ingest

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrFileTooLarge is returned once more than the configured number of bytes has been read.
var ErrFileTooLarge = errors.New("file too large")

// Decode wraps r so that a leading byte order mark is honoured and stripped
// and invalid UTF-8 is replaced with U+FFFD. UTF-16 input with a BOM is
// transcoded to UTF-8.
func Decode(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// CountingReader tracks how many bytes have passed through it and fails
// with ErrFileTooLarge once Limit is exceeded. A zero Limit disables the check.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64
}

// NewCountingReader wraps r with an optional byte limit.
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, r.Limit)
	}
	return n, err
}

// Wrap applies the byte limit to the raw input and then decodes it.
// The limit counts bytes as uploaded, before any transcoding.
func Wrap(r io.Reader, limit int64) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r, limit)
	return Decode(counter), counter
}
