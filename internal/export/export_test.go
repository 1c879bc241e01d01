package export

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/colsplit/internal/table"
)

func sample() table.RawTable {
	return table.RawTable{
		Header: []string{"first", "last"},
		Rows: []table.Row{
			{table.Str("Ada"), table.Str("Lovelace")},
			{table.Str("Plato"), nil},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatCSV},
		{in: "CSV", want: FormatCSV},
		{in: ".json", want: FormatJSON},
		{in: "yml", want: FormatYAML},
		{in: "xlsx", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatCSV, sample()))
		assert.Equal(t, "first,last\nAda,Lovelace\nPlato,\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatJSON, sample()))
		assert.JSONEq(t, `{"header":["first","last"],"rows":[["Ada","Lovelace"],["Plato",null]]}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatYAML, sample()))
		assert.Contains(t, buf.String(), "header:")
		assert.Contains(t, buf.String(), "- Lovelace")
		assert.Contains(t, buf.String(), "null")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.ErrorIs(t, Encode(&bytes.Buffer{}, Format("xml"), sample()), ErrUnknownFormat)
	})
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := FileSink{Dir: dir, Format: FormatCSV}

	require.NoError(t, sink.Write(context.Background(), "people", sample()))

	data, err := os.ReadFile(filepath.Join(dir, "people.csv"))
	require.NoError(t, err)
	assert.Equal(t, "first,last\nAda,Lovelace\nPlato,\n", string(data))
}

func TestSQLSink_SQLite(t *testing.T) {
	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, "people", sample()))
	// A second write replaces the table.
	require.NoError(t, sink.Write(ctx, "people", sample()))

	var count int
	require.NoError(t, sink.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM "people"`).Scan(&count))
	assert.Equal(t, 2, count)

	var last sql.NullString
	require.NoError(t, sink.DB.QueryRowContext(ctx, `SELECT "last" FROM "people" WHERE "first" = ?`, "Plato").Scan(&last))
	assert.False(t, last.Valid)
}

func TestSQLSink_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		table     string
		setupMock func(mock sqlmock.Sqlmock)
		errMsg    string
	}{
		{
			name:   "empty name",
			table:  " ",
			errMsg: "invalid table name",
		},
		{
			name:  "create fails",
			table: "people",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "people"`)).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			errMsg: "create people: disk full",
		},
		{
			name:  "insert fails",
			table: "people",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
				prep := mock.ExpectPrepare("INSERT INTO")
				prep.ExpectExec().WithArgs("Ada", "Lovelace").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			errMsg: "insert row 1",
		},
		{
			name:  "success",
			table: "people",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "people" ("first" TEXT, "last" TEXT)`)).WillReturnResult(sqlmock.NewResult(0, 0))
				prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "people" VALUES (?, ?)`))
				prep.ExpectExec().WithArgs("Ada", "Lovelace").WillReturnResult(sqlmock.NewResult(1, 1))
				prep.ExpectExec().WithArgs("Plato", nil).WillReturnResult(sqlmock.NewResult(2, 1))
				mock.ExpectCommit()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			if tt.setupMock != nil {
				tt.setupMock(mock)
			}

			err = (&SQLSink{DB: db}).Write(ctx, tt.table, sample())
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
	assert.Equal(t, `INSERT INTO "t" VALUES (?)`, insertSQL(`"t"`, 1))
}

func TestPgRow(t *testing.T) {
	row := pgRow(table.Row{table.Str(""), nil}, 3)
	require.Len(t, row, 3)
	assert.Equal(t, pgtype.Text{String: "", Valid: true}, row[0])
	assert.Equal(t, pgtype.Text{}, row[1])
	assert.Equal(t, pgtype.Text{}, row[2])
}

func TestPgCreateTableSQL(t *testing.T) {
	got := pgCreateTableSQL([]string{"people"}, []string{"first", "la\"st"})
	assert.Equal(t, `CREATE TABLE "people" ("first" TEXT, "la""st" TEXT)`, got)
}

type recordingSink struct {
	err  error
	name string
	rows int
}

func (s *recordingSink) Write(_ context.Context, name string, t table.RawTable) error {
	s.name = name
	s.rows = t.NumRows()
	return s.err
}

func TestFanout(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	require.NoError(t, Fanout(context.Background(), "people", sample(), a, b))
	assert.Equal(t, "people", a.name)
	assert.Equal(t, 2, b.rows)

	failing := &recordingSink{err: assert.AnError}
	assert.ErrorIs(t, Fanout(context.Background(), "people", sample(), a, failing), assert.AnError)
}
