package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/JonMunkholm/colsplit/internal/table"
)

// ErrInvalidTableName is returned for an empty destination table name.
var ErrInvalidTableName = errors.New("invalid table name")

// SQLSink replaces a table in a database/sql database with the exported rows.
// Every column is TEXT and null cells are NULL. It is used with SQLite
// (driver name "sqlite") but only relies on standard SQL.
type SQLSink struct {
	DB *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database file for export.
func OpenSQLite(path string) (*SQLSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLSink{DB: db}, nil
}

// Close closes the underlying database.
func (s *SQLSink) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Write implements Sink. The table is dropped and recreated in one transaction.
func (s *SQLSink) Write(ctx context.Context, name string, t table.RawTable) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidTableName
	}
	if s.DB == nil {
		return errors.New("database connection not established")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ident := quoteIdent(name)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(ident, t.Header)); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	if len(t.Header) > 0 && len(t.Rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertSQL(ident, len(t.Header)))
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		args := make([]any, len(t.Header))
		for i, row := range t.Rows {
			for j := range args {
				args[j] = nil
				if j < len(row) && row[j] != nil {
					args[j] = *row[j]
				}
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert row %d: %w", i+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(ident string, header []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(ident)
	b.WriteString(" (")
	for i, col := range header {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(col))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")
	return b.String()
}

func insertSQL(ident string, n int) string {
	return "INSERT INTO " + ident + " VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}
