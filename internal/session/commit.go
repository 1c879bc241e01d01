package session

import (
	"fmt"

	"github.com/JonMunkholm/colsplit/internal/dataset"
	"github.com/JonMunkholm/colsplit/internal/transform"
)

// Commit splices candidates into the current dataset in place of source.
//
// On success the pre-commit dataset is pushed onto the history, the spliced
// dataset becomes current, and the candidates are discarded. On failure s is
// returned unchanged along with ErrColumnNotFound, ErrRowCountMismatch or
// ErrDuplicateColumn.
func Commit(s State, source string, candidates *transform.Candidates) (State, error) {
	if candidates == nil {
		return s, ErrNoPreview
	}

	if s.Current == nil || !s.Current.Has(source) {
		return s, fmt.Errorf("commit: %w: %q", dataset.ErrColumnNotFound, source)
	}

	next, err := s.Current.WithColumnsAt(s.Current.Index(source), source, candidates.Columns())
	if err != nil {
		return s, fmt.Errorf("commit: %w", err)
	}

	out := s.idle()
	out.History = s.History.Push(s.Current)
	out.Current = next
	out.Spec.Column = ""
	return out, nil
}

// Undo restores the most recent snapshot and discards any pending candidates.
// With an empty history it returns s unchanged and ErrEmptyHistory.
func Undo(s State) (State, error) {
	snap, rest, err := s.History.Pop()
	if err != nil {
		return s, err
	}

	out := s.idle()
	out.Current = snap
	out.History = rest
	return out, nil
}

// DropBlankColumns removes every all-null column from the current dataset.
// With dropNullRows it then removes every row that still contains a null.
//
// Unlike Commit this does not push a snapshot, so it cannot be undone.
// Pending candidates are kept; a later commit revalidates them. A state
// without a dataset is returned as is.
func DropBlankColumns(s State, dropNullRows bool) State {
	if s.Current == nil {
		return s
	}
	d := dataset.DropBlankColumns(s.Current)
	if dropNullRows {
		d = dataset.DropNullRows(d)
	}
	s.Current = d
	return s
}
