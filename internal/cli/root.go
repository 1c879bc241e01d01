// Package cli provides the colsplit command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JonMunkholm/colsplit/internal/ingest"
	"github.com/JonMunkholm/colsplit/internal/logging"
	"github.com/JonMunkholm/colsplit/internal/session"
	"github.com/JonMunkholm/colsplit/internal/table"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	logLevel   string
	logFormat  string
	comma      string
	inferTypes bool
	maxHistory int
	maxBytes   int64
}

func (o *rootOptions) sessionOptions() session.Options {
	return session.Options{MaxHistory: o.maxHistory, InferTypes: o.inferTypes}
}

func (o *rootOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "text", "Log format: text or json")
	fs.StringVar(&o.comma, "comma", ",", "Field separator of the input CSV")
	fs.BoolVar(&o.inferTypes, "infer-types", true, "Infer integer, float and boolean columns")
	fs.IntVar(&o.maxHistory, "max-history", 50, "Undo depth; 0 is unbounded")
	fs.Int64Var(&o.maxBytes, "max-bytes", 0, "Reject inputs larger than this many bytes; 0 is unlimited")
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "colsplit",
		Short: "Split CSV columns into several columns, with undo",
		Long: `colsplit loads a CSV table and splits one column at a time into new
columns, either on a delimiter or at fixed character widths. Every commit
can be undone.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.Setup(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
			if _, err := opts.commaRune(); err != nil {
				return err
			}
			return nil
		},
	}
	opts.bind(root.PersistentFlags())

	root.AddCommand(newREPLCommand(opts))
	root.AddCommand(newSplitCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "colsplit v%s (%s)\n", Version, GitCommit)
		},
	}
}

func (o *rootOptions) commaRune() (rune, error) {
	s := o.comma
	if s == `\t` || strings.EqualFold(s, "tab") {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError || r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("invalid --comma %q: want a single character", s)
	}
	return r, nil
}

// loadTable reads path, or stdin for "-".
func loadTable(path string, opts *rootOptions) (table.RawTable, error) {
	comma, err := opts.commaRune()
	if err != nil {
		return table.RawTable{}, err
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return table.RawTable{}, err
		}
		defer f.Close()
		r = f
	}

	raw, err := ingest.ReadCSV(r, ingest.Options{Comma: comma, MaxBytes: opts.maxBytes})
	if err != nil {
		return table.RawTable{}, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// tableName derives an export table name from an input path.
func tableName(path string) string {
	if path == "-" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
