package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/colsplit/internal/table"
)

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresSink replaces a Postgres table with the exported rows using COPY.
type PostgresSink struct {
	DB TxBeginner
}

// Write implements Sink.
func (s PostgresSink) Write(ctx context.Context, name string, t table.RawTable) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidTableName
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ident := pgx.Identifier{name}
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, pgCreateTableSQL(ident, t.Header)); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	if len(t.Header) > 0 {
		n, err := tx.CopyFrom(ctx, ident, t.Header, pgx.CopyFromSlice(len(t.Rows), func(i int) ([]any, error) {
			return pgRow(t.Rows[i], len(t.Header)), nil
		}))
		if err != nil {
			return fmt.Errorf("copy into %s: %w", name, err)
		}
		if int(n) != len(t.Rows) {
			return fmt.Errorf("copy into %s: wrote %d of %d rows", name, n, len(t.Rows))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func pgCreateTableSQL(ident pgx.Identifier, header []string) string {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = pgx.Identifier{h}.Sanitize() + " TEXT"
	}
	return "CREATE TABLE " + ident.Sanitize() + " (" + strings.Join(cols, ", ") + ")"
}

// pgRow converts a row to COPY values. Empty strings stay valid; only a
// null cell is NULL.
func pgRow(row table.Row, width int) []any {
	vals := make([]any, width)
	for i := range vals {
		var c *string
		if i < len(row) {
			c = row[i]
		}
		if c == nil {
			vals[i] = pgtype.Text{}
		} else {
			vals[i] = pgtype.Text{String: *c, Valid: true}
		}
	}
	return vals
}
