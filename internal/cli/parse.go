package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/colsplit/internal/session"
	"github.com/JonMunkholm/colsplit/internal/transform"
)

// ErrUsage is returned for a REPL line that does not parse.
var ErrUsage = errors.New("usage")

// namedDelimiters are accepted in place of characters that are awkward to type.
var namedDelimiters = map[string]string{
	"space":     " ",
	"tab":       "\t",
	"comma":     ",",
	"pipe":      "|",
	"semicolon": ";",
}

// ParseCommand turns one REPL line into a session command.
//
//	select <column>
//	delim <separator> [prefix]
//	fixed <w1,w2,...> [prefix]
//	preview
//	rename <name1,name2,...>
//	commit | undo | cancel
//	prune [rows]
func ParseCommand(line string) (session.Command, error) {
	verb, rest := splitVerb(line)
	args := strings.Fields(rest)

	switch verb {
	case "select", "use":
		if rest == "" {
			return nil, usage("select <column>")
		}
		return session.SelectColumn{Column: rest}, nil

	case "delim", "delimiter":
		if len(args) == 0 || len(args) > 2 {
			return nil, usage("delim <separator> [prefix]")
		}
		delim, err := parseDelimiterArg(args[0])
		if err != nil {
			return nil, err
		}
		return session.SetSplitMode{Mode: transform.ModeDelimiter, Delimiter: delim, Prefix: optional(args, 1)}, nil

	case "fixed", "widths":
		if len(args) == 0 || len(args) > 2 {
			return nil, usage("fixed <w1,w2,...> [prefix]")
		}
		widths, err := transform.ParseWidths(args[0])
		if err != nil {
			return nil, err
		}
		return session.SetSplitMode{Mode: transform.ModeFixedWidth, Widths: widths, Prefix: optional(args, 1)}, nil

	case "preview":
		return session.Preview{}, nil

	case "rename":
		if rest == "" {
			return nil, usage("rename <name1,name2,...>")
		}
		names := strings.Split(rest, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		return session.RenameColumns{Names: names}, nil

	case "commit":
		return session.CommitPreview{}, nil

	case "undo":
		return session.UndoCommit{}, nil

	case "cancel":
		return session.CancelPreview{}, nil

	case "prune":
		switch rest {
		case "":
			return session.DropBlank{}, nil
		case "rows":
			return session.DropBlank{DropNullRows: true}, nil
		}
		return nil, usage("prune [rows]")
	}

	return nil, fmt.Errorf("%w: unknown command %q (type help)", ErrUsage, verb)
}

func parseDelimiterArg(s string) (string, error) {
	if d, ok := namedDelimiters[strings.ToLower(s)]; ok {
		return d, nil
	}
	return transform.ParseDelimiter(s)
}

// splitVerb returns the lower-cased first word and the trimmed remainder.
func splitVerb(line string) (string, string) {
	line = strings.TrimSpace(line)
	verb, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(verb), strings.TrimSpace(rest)
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func usage(form string) error {
	return fmt.Errorf("%w: %s", ErrUsage, form)
}
