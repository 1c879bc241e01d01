package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/colsplit/internal/core"
	"github.com/JonMunkholm/colsplit/internal/dataset"
	"github.com/JonMunkholm/colsplit/internal/export"
	"github.com/JonMunkholm/colsplit/internal/session"
)

// REPL executes interactive lines against one session.
type REPL struct {
	sess   *session.Session
	name   string
	out    io.Writer
	pretty bool
	rows   int
}

// NewREPL returns a REPL over sess. name is used as the default export
// table name. Tables are drawn boxed when pretty is set, as CSV otherwise.
func NewREPL(sess *session.Session, name string, out io.Writer, pretty bool) *REPL {
	return &REPL{sess: sess, name: name, out: out, pretty: pretty, rows: 10}
}

// Prompt reflects whether a preview is pending.
func (r *REPL) Prompt() string {
	if r.sess.State().Phase() == session.PhasePreviewing {
		return "colsplit(preview)> "
	}
	return "colsplit> "
}

// Columns returns the current column names, for completion.
func (r *REPL) Columns() []string {
	return r.sess.Current().ColumnNames()
}

// Exec runs one line. It reports true when the user asked to quit.
func (r *REPL) Exec(ctx context.Context, line string) (bool, error) {
	verb, rest := splitVerb(line)
	args := strings.Fields(rest)

	switch verb {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help":
		printHelp(r.out)
		return false, nil
	case "status":
		describe(r.out, r.sess.State())
		return false, nil
	case "show":
		n := r.rows
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return false, usage("show [rows]")
			}
			n = v
		}
		return false, renderTable(r.out, dataset.ToRaw(dataset.Head(r.sess.Current(), n)), r.pretty)
	case "export":
		if len(args) != 1 {
			return false, usage("export <file.csv|file.json|file.yaml>")
		}
		return false, r.exportFile(ctx, args[0])
	case "sqlite":
		if len(args) != 2 {
			return false, usage("sqlite <database> <table>")
		}
		return false, r.exportSQLite(ctx, args[0], args[1])
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		return false, err
	}
	if err := r.sess.Dispatch(cmd); err != nil {
		return false, err
	}
	return false, r.report(cmd)
}

// report prints what changed after a successful command.
func (r *REPL) report(cmd session.Command) error {
	st := r.sess.State()
	switch cmd.(type) {
	case session.SelectColumn:
		if sample := r.sess.SourceSample(core.SourceSampleRows); sample != nil {
			return renderTable(r.out, dataset.ToRaw(sample), r.pretty)
		}
	case session.Preview, session.RenameColumns:
		d, err := st.Candidates.Dataset()
		if err != nil {
			return err
		}
		return renderTable(r.out, dataset.ToRaw(dataset.Head(d, core.CandidatePreviewRows)), r.pretty)
	case session.CommitPreview, session.UndoCommit, session.DropBlank:
		describe(r.out, st)
		return renderTable(r.out, dataset.ToRaw(dataset.Head(st.Current, r.rows)), r.pretty)
	default:
		describe(r.out, st)
	}
	return nil
}

func (r *REPL) exportFile(ctx context.Context, path string) error {
	format, err := export.ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := (export.WriterSink{W: f, Format: format}).Write(ctx, r.name, r.sess.ExportCurrent()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(r.out, "wrote %s\n", path)
	return nil
}

func (r *REPL) exportSQLite(ctx context.Context, path, tableName string) error {
	sink, err := export.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.Write(ctx, tableName, r.sess.ExportCurrent()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(r.out, "wrote table %s to %s\n", tableName, path)
	return nil
}

func newREPLCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl <file.csv>",
		Short: "Split columns interactively",
		Long: `Load a CSV file and edit it line by line: select a column, choose a
delimiter or fixed widths, preview, rename, commit and undo.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := loadTable(args[0], opts)
			if err != nil {
				return err
			}
			sess, err := session.New(raw, opts.sessionOptions(), nil)
			if err != nil {
				return err
			}
			repl := NewREPL(sess, tableName(args[0]), cmd.OutOrStdout(), isTerminal(cmd.OutOrStdout()))
			return runREPL(cmd, repl)
		},
	}
}

func runREPL(cmd *cobra.Command, repl *REPL) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	historyFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		historyFile = filepath.Join(dir, "colsplit_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          repl.Prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    newCompleter(repl),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(out, "colsplit: %s\n", repl.name)
	describe(out, repl.sess.State())
	_, _ = fmt.Fprintln(out, "Type help for commands, quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		quit, err := repl.Exec(ctx, line)
		if err != nil {
			printError(cmd.ErrOrStderr(), err)
		}
		if quit {
			return nil
		}
		rl.SetPrompt(repl.Prompt())
	}
}

func newCompleter(repl *REPL) *readline.PrefixCompleter {
	columns := func(string) []string { return repl.Columns() }
	return readline.NewPrefixCompleter(
		readline.PcItem("select", readline.PcItemDynamic(columns)),
		readline.PcItem("delim", readline.PcItem("comma"), readline.PcItem("space"), readline.PcItem("tab"), readline.PcItem("pipe"), readline.PcItem("semicolon")),
		readline.PcItem("fixed"),
		readline.PcItem("preview"),
		readline.PcItem("rename"),
		readline.PcItem("commit"),
		readline.PcItem("undo"),
		readline.PcItem("cancel"),
		readline.PcItem("prune", readline.PcItem("rows")),
		readline.PcItem("show"),
		readline.PcItem("status"),
		readline.PcItem("export"),
		readline.PcItem("sqlite"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// printError shows the mapped user message; usage errors are shown verbatim.
func printError(w io.Writer, err error) {
	if errors.Is(err, ErrUsage) || !core.IsUserFacing(err) {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	msg := core.MapError(err)
	_, _ = fmt.Fprintf(w, "Error: %s (%s): %v\n", msg.Message, msg.Code, err)
}

func printHelp(w io.Writer) {
	help := `
Commands:
  select <column>           Choose the column to split
  delim <sep> [prefix]      Split on a separator (comma, space, tab, pipe, semicolon or literal)
  fixed <w1,w2,..> [prefix] Split into fixed-width pieces
  preview                   Compute candidate columns
  rename <n1,n2,..>         Rename the candidates
  commit                    Replace the source column with the candidates
  undo                      Restore the table as it was before the last commit
  cancel                    Discard the preview
  prune [rows]              Drop all-null columns (and rows with nulls); cannot be undone
  show [n]                  Print the first n rows
  status                    Print the session state
  export <file>             Write the table as csv, json or yaml by extension
  sqlite <db> <table>       Write the table into a SQLite database
  quit                      Exit
`
	_, _ = fmt.Fprintln(w, help)
}
