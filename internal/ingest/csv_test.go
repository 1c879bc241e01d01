package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/colsplit/internal/table"
)

func TestReadCSV(t *testing.T) {
	input := "id,name,city\n1,\"Lovelace, Ada\",London\n2,,\n3,Turing\n"

	got, err := ReadCSV(strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "city"}, got.Header)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Lovelace, Ada", *got.Rows[0][1])
	assert.Nil(t, got.Rows[1][1], "empty field is null")
	assert.Nil(t, got.Rows[1][2])
	assert.Nil(t, got.Rows[2][2], "short record is padded")
}

func TestReadCSV_Header(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "trimmed", input: " a , b \n", want: []string{"a", "b"}},
		{name: "blank names", input: "a,,\n", want: []string{"a", "column_1", "column_2"}},
		{name: "duplicates", input: "x,x,x\n", want: []string{"x", "x_duplicated_0", "x_duplicated_1"}},
		{name: "generated name taken", input: "x,x_duplicated_0,x\n", want: []string{"x", "x_duplicated_0", "x_duplicated_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input), Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Header)
		})
	}
}

func TestReadCSV_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""), Options{})
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("only BOM", func(t *testing.T) {
		_, err := ReadCSV(bytes.NewReader([]byte{0xEF, 0xBB, 0xBF}), Options{})
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("wide row", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a,b\n1,2,3\n"), Options{})
		assert.ErrorIs(t, err, table.ErrRaggedRow)
	})

	t.Run("too large", func(t *testing.T) {
		input := "a\n" + strings.Repeat("xxxxxxxxx\n", 100)
		_, err := ReadCSV(strings.NewReader(input), Options{MaxBytes: 64})
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}

func TestReadCSV_Options(t *testing.T) {
	input := "a;b\n1;2\n3;4\n5;6\n"

	got, err := ReadCSV(strings.NewReader(input), Options{Comma: ';', MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Header)
	assert.Len(t, got.Rows, 2)
}

func TestReadCSV_Encoding(t *testing.T) {
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\ncaf\xe9\n")...)

	got, err := ReadCSV(bytes.NewReader(bom), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, got.Header, "BOM is stripped")
	assert.Equal(t, "caf\uFFFD", *got.Rows[0][0], "invalid UTF-8 is replaced")
}

func TestWriteCSV(t *testing.T) {
	in := table.RawTable{
		Header: []string{"a", "b"},
		Rows: []table.Row{
			{table.Str("1"), nil},
			{table.Str("x,y")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))
	assert.Equal(t, "a,b\n1,\n\"x,y\",\n", buf.String())

	back, err := ReadCSV(&buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, in.Header, back.Header)
	assert.Equal(t, "x,y", *back.Rows[1][0])
	assert.Nil(t, back.Rows[1][1])
}

func TestCountingReader(t *testing.T) {
	r := NewCountingReader(strings.NewReader("hello"), 0)
	buf := make([]byte, 10)
	n, _ := r.Read(buf)
	assert.Equal(t, 5, n)
	assert.Equal(t, int64(5), r.BytesRead)
}
