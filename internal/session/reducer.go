package session

import (
	"fmt"

	"github.com/JonMunkholm/colsplit/internal/dataset"
	"github.com/JonMunkholm/colsplit/internal/table"
	"github.com/JonMunkholm/colsplit/internal/transform"
)

// Command is one discrete user action. Every action goes through Apply.
type Command interface {
	// Name is a short identifier used in logs.
	Name() string
}

// LoadTable replaces the session with a freshly ingested table and an empty history.
type LoadTable struct {
	Table   table.RawTable
	Options Options
}

// SelectColumn chooses the column to split and abandons any pending preview.
type SelectColumn struct {
	Column string
}

// SetSplitMode chooses the split mode and its parameters and abandons any pending preview.
type SetSplitMode struct {
	Mode      transform.Mode
	Delimiter string
	Widths    []int
	Prefix    string
}

// Preview computes candidate columns from the pending spec.
type Preview struct{}

// RenameColumns relabels the pending candidates.
type RenameColumns struct {
	Names []string
}

// CommitPreview splices the pending candidates into the dataset.
type CommitPreview struct{}

// UndoCommit restores the dataset as it was before the last commit.
type UndoCommit struct{}

// CancelPreview discards pending candidates without touching the dataset.
type CancelPreview struct{}

// DropBlank removes all-null columns (and optionally rows with nulls).
type DropBlank struct {
	DropNullRows bool
}

func (LoadTable) Name() string { return "load" }
func (SelectColumn) Name() string { return "select" }
func (SetSplitMode) Name() string { return "mode" }
func (Preview) Name() string { return "preview" }
func (RenameColumns) Name() string { return "rename" }
func (CommitPreview) Name() string { return "commit" }
func (UndoCommit) Name() string { return "undo" }
func (CancelPreview) Name() string { return "cancel" }
func (DropBlank) Name() string { return "prune" }

// Apply is the session reducer. It returns the state that results from
// applying cmd to s. On error the returned state is s, unchanged.
func Apply(s State, cmd Command) (State, error) {
	switch c := cmd.(type) {
	case LoadTable:
		next, err := NewState(c.Table, c.Options)
		if err != nil {
			return s, fmt.Errorf("load table: %w", err)
		}
		return next, nil

	case SelectColumn:
		if s.Current == nil || !s.Current.Has(c.Column) {
			return s, fmt.Errorf("select: %w: %q", dataset.ErrColumnNotFound, c.Column)
		}
		out := s.idle()
		out.Spec.Column = c.Column
		return out, nil

	case SetSplitMode:
		spec := transform.SplitSpec{
			Column:    s.Spec.Column,
			Mode:      c.Mode,
			Delimiter: c.Delimiter,
			Widths:    append([]int(nil), c.Widths...),
			Prefix:    c.Prefix,
		}
		if err := spec.Validate(); err != nil {
			return s, fmt.Errorf("set mode: %w", err)
		}
		out := s.idle()
		out.Spec = spec
		return out, nil

	case Preview:
		if s.Spec.Column == "" {
			return s, ErrNoColumnSelected
		}
		if s.Current == nil {
			return s, fmt.Errorf("preview: %w: %q", dataset.ErrColumnNotFound, s.Spec.Column)
		}
		cands, err := s.Spec.Apply(s.Current)
		if err != nil {
			return s, fmt.Errorf("preview: %w", err)
		}
		s.Candidates = cands
		return s, nil

	case RenameColumns:
		if s.Candidates == nil {
			return s, ErrNoPreview
		}
		renamed, err := transform.Rename(s.Candidates, c.Names)
		if err != nil {
			return s, fmt.Errorf("rename: %w", err)
		}
		s.Candidates = renamed
		return s, nil

	case CommitPreview:
		if s.Candidates == nil {
			return s, ErrNoPreview
		}
		return Commit(s, s.Candidates.Source(), s.Candidates)

	case UndoCommit:
		return Undo(s)

	case CancelPreview:
		return s.idle(), nil

	case DropBlank:
		return DropBlankColumns(s, c.DropNullRows), nil

	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}
