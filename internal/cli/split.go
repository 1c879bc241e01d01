package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/colsplit/internal/export"
	"github.com/JonMunkholm/colsplit/internal/session"
	"github.com/JonMunkholm/colsplit/internal/transform"
)

type splitOptions struct {
	column       string
	delimiter    string
	widths       string
	prefix       string
	names        string
	prune        bool
	dropNullRows bool
	out          string
	format       string
	sqlite       string
	table        string
}

func newSplitCommand(root *rootOptions) *cobra.Command {
	o := &splitOptions{}

	cmd := &cobra.Command{
		Use:   "split <file.csv>",
		Short: "Split one column and write the result",
		Long: `Split one column of a CSV file and write the resulting table.

Without --widths the column is split on --delimiter. With --widths it is cut
into fixed-width pieces. The result goes to --out (stdout by default) and,
with --sqlite, into a SQLite table as well.`,
		Example: `  colsplit split people.csv --column name --names first,last
  colsplit split codes.csv --column code --widths 2,3 --out codes.json
  colsplit split people.csv --column name --sqlite out.db --table people`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, root, o, args[0])
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&o.column, "column", "c", "", "Column to split (required)")
	fs.StringVarP(&o.delimiter, "delimiter", "d", transform.DefaultDelimiter, `Separator; \t means tab`)
	fs.StringVarP(&o.widths, "widths", "w", "", "Comma-separated fixed widths, e.g. 5,5,5")
	fs.StringVar(&o.prefix, "prefix", "", "Prefix for generated column names (default: the column name)")
	fs.StringVarP(&o.names, "names", "n", "", "Comma-separated names for the new columns")
	fs.BoolVar(&o.prune, "prune", false, "Drop all-null columns afterwards")
	fs.BoolVar(&o.dropNullRows, "drop-null-rows", false, "With --prune, also drop rows containing nulls")
	fs.StringVarP(&o.out, "out", "o", "-", "Output file; - for stdout")
	fs.StringVarP(&o.format, "format", "f", "", "Output format: csv, json or yaml (default: from --out extension)")
	fs.StringVar(&o.sqlite, "sqlite", "", "Also write the result into this SQLite database")
	fs.StringVar(&o.table, "table", "", "SQLite table name (default: input file name)")
	_ = cmd.MarkFlagRequired("column")

	return cmd
}

// commands builds the reducer commands for one split.
func (o *splitOptions) commands() ([]session.Command, error) {
	mode := session.SetSplitMode{Mode: transform.ModeDelimiter, Prefix: o.prefix}
	if o.widths != "" {
		widths, err := transform.ParseWidths(o.widths)
		if err != nil {
			return nil, err
		}
		mode.Mode = transform.ModeFixedWidth
		mode.Widths = widths
	} else {
		delim, err := parseDelimiterArg(o.delimiter)
		if err != nil {
			return nil, err
		}
		mode.Delimiter = delim
	}

	cmds := []session.Command{session.SelectColumn{Column: o.column}, mode, session.Preview{}}
	if o.names != "" {
		names := strings.Split(o.names, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		cmds = append(cmds, session.RenameColumns{Names: names})
	}
	cmds = append(cmds, session.CommitPreview{})
	if o.prune {
		cmds = append(cmds, session.DropBlank{DropNullRows: o.dropNullRows})
	}
	return cmds, nil
}

func runSplit(cmd *cobra.Command, root *rootOptions, o *splitOptions, path string) error {
	cmds, err := o.commands()
	if err != nil {
		return err
	}

	raw, err := loadTable(path, root)
	if err != nil {
		return err
	}
	st, err := session.NewState(raw, root.sessionOptions())
	if err != nil {
		return err
	}
	for _, c := range cmds {
		if st, err = session.Apply(st, c); err != nil {
			return err
		}
	}
	result := st.Export()

	name := o.table
	if name == "" {
		name = tableName(path)
	}

	var sinks []export.Sink
	if o.sqlite != "" {
		sink, err := export.OpenSQLite(o.sqlite)
		if err != nil {
			return err
		}
		defer sink.Close()
		sinks = append(sinks, sink)
	}

	stdout := o.out == "-" || o.out == ""
	if stdout && o.format == "" && isTerminal(cmd.OutOrStdout()) {
		if err := renderTable(cmd.OutOrStdout(), result, true); err != nil {
			return err
		}
		return export.Fanout(cmd.Context(), name, result, sinks...)
	}

	formatName := o.format
	if formatName == "" && !stdout {
		formatName = filepath.Ext(o.out)
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	if stdout {
		sinks = append(sinks, export.WriterSink{W: cmd.OutOrStdout(), Format: format})
		return export.Fanout(cmd.Context(), name, result, sinks...)
	}

	f, err := os.Create(o.out)
	if err != nil {
		return err
	}
	sinks = append(sinks, export.WriterSink{W: f, Format: format})
	if err := export.Fanout(cmd.Context(), name, result, sinks...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", result.NumRows(), o.out)
	return nil
}
