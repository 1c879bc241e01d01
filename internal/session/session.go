// Package session holds the column-splitting workflow: the session state,
// the undo history, and the reducer that applies user commands.
//
// A Session wraps a State for callers that want a mutable handle. It is not
// safe for concurrent use; the service layer serializes access per session.
package session

import (
	"log/slog"

	"github.com/JonMunkholm/colsplit/internal/dataset"
	"github.com/JonMunkholm/colsplit/internal/table"
	"github.com/JonMunkholm/colsplit/internal/transform"
)

// Session is a mutable handle around a State.
type Session struct {
	state  State
	logger *slog.Logger
}

// New starts a session over an already-parsed table.
func New(raw table.RawTable, opts Options, logger *slog.Logger) (*Session, error) {
	st, err := NewState(raw, opts)
	if err != nil {
		return nil, err
	}
	return FromState(st, logger), nil
}

// FromState wraps an existing state.
func FromState(st State, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{state: st, logger: logger}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	return s.state
}

// Dispatch applies cmd. On error the session is left as it was.
func (s *Session) Dispatch(cmd Command) error {
	next, err := Apply(s.state, cmd)
	if err != nil {
		s.logger.Debug("command rejected", "command", cmd.Name(), "error", err)
		return err
	}
	s.state = next

	var cols, rows int
	if next.Current != nil {
		cols, rows = next.Current.NumColumns(), next.Current.RowCount()
	}
	s.logger.Debug("command applied",
		"command", cmd.Name(),
		"phase", next.Phase(),
		"columns", cols,
		"rows", rows,
		"history", next.History.Len(),
	)
	return nil
}

// SelectColumn chooses the column to split. Any pending preview is dropped.
func (s *Session) SelectColumn(name string) error {
	return s.Dispatch(SelectColumn{Column: name})
}

// SetSplitMode sets how the selected column is split. delimiter is used in
// delimiter mode and widths in fixed-width mode; prefix overrides the
// default candidate name prefix. Any pending preview is dropped.
func (s *Session) SetSplitMode(mode transform.Mode, delimiter string, widths []int, prefix string) error {
	return s.Dispatch(SetSplitMode{Mode: mode, Delimiter: delimiter, Widths: widths, Prefix: prefix})
}

// Preview computes candidates and returns them.
func (s *Session) Preview() (*transform.Candidates, error) {
	if err := s.Dispatch(Preview{}); err != nil {
		return nil, err
	}
	return s.state.Candidates, nil
}

// RenameColumns relabels the pending candidates and returns them. names must
// match them one to one.
func (s *Session) RenameColumns(names []string) (*transform.Candidates, error) {
	if err := s.Dispatch(RenameColumns{Names: names}); err != nil {
		return nil, err
	}
	return s.state.Candidates, nil
}

// Commit splices the pending candidates into the dataset and returns the result.
func (s *Session) Commit() (*dataset.Dataset, error) {
	return s.dispatchCurrent(CommitPreview{})
}

// Undo reverts the last commit and returns the restored dataset.
func (s *Session) Undo() (*dataset.Dataset, error) {
	return s.dispatchCurrent(UndoCommit{})
}

// CancelPreview drops the pending candidates. It is a no-op when there are none.
func (s *Session) CancelPreview() error {
	return s.Dispatch(CancelPreview{})
}

// DropBlankColumns prunes all-null columns, and rows with nulls when
// dropNullRows is set, and returns the pruned dataset. It cannot be undone.
func (s *Session) DropBlankColumns(dropNullRows bool) (*dataset.Dataset, error) {
	return s.dispatchCurrent(DropBlank{DropNullRows: dropNullRows})
}

func (s *Session) dispatchCurrent(cmd Command) (*dataset.Dataset, error) {
	if err := s.Dispatch(cmd); err != nil {
		return nil, err
	}
	return s.state.Current, nil
}

// Current returns the working dataset.
func (s *Session) Current() *dataset.Dataset {
	return s.state.Current
}

// ExportCurrent converts the working dataset to a RawTable.
func (s *Session) ExportCurrent() table.RawTable {
	return s.state.Export()
}

// SourceSample returns the first n values of the selected column as a
// one-column dataset. It returns nil when no column is selected.
func (s *Session) SourceSample(n int) *dataset.Dataset {
	return s.state.SourceSample(n)
}
