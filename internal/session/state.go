package session

import (
	"github.com/JonMunkholm/colsplit/internal/dataset"
	"github.com/JonMunkholm/colsplit/internal/table"
	"github.com/JonMunkholm/colsplit/internal/transform"
)

// Phase is the orchestrator state.
type Phase string

const (
	// PhaseIdle means there is no pending edit.
	PhaseIdle Phase = "idle"
	// PhasePreviewing means candidate columns have been computed but not committed.
	PhasePreviewing Phase = "previewing"
)

// State is the whole session context: the current dataset, the undo
// history, and the in-progress split, if any. It is a value; Apply returns
// a new State and never modifies the one it was given.
//
// The zero State holds no dataset. Apply accepts it: LoadTable fills it,
// DropBlank leaves it alone and every other command fails without panicking.
type State struct {
	Current    *dataset.Dataset
	History    History
	Spec       transform.SplitSpec
	Candidates *transform.Candidates
}

// Options configures a new session.
type Options struct {
	// MaxHistory bounds the undo stack. Zero means unbounded.
	MaxHistory int
	// InferTypes builds typed columns from the loaded table.
	InferTypes bool
}

// NewState builds the initial state from an already-parsed table.
func NewState(raw table.RawTable, opts Options) (State, error) {
	d, err := dataset.FromRaw(raw, dataset.RawOptions{InferTypes: opts.InferTypes})
	if err != nil {
		return State{}, err
	}
	return StateOf(d, opts.MaxHistory), nil
}

// StateOf returns an idle state over d with an empty history.
func StateOf(d *dataset.Dataset, maxHistory int) State {
	return State{
		Current: d,
		History: NewHistory(maxHistory),
		Spec:    transform.SplitSpec{Mode: transform.ModeDelimiter, Delimiter: transform.DefaultDelimiter},
	}
}

// Phase reports whether a preview is pending.
func (s State) Phase() Phase {
	if s.Candidates != nil {
		return PhasePreviewing
	}
	return PhaseIdle
}

// CanUndo reports whether Undo would succeed.
func (s State) CanUndo() bool {
	return !s.History.Empty()
}

// Export converts the current dataset to a RawTable.
func (s State) Export() table.RawTable {
	if s.Current == nil {
		return table.RawTable{}
	}
	return dataset.ToRaw(s.Current)
}

// SourceSample returns the first n cells of the selected column as a
// one-column dataset, or nil when no existing column is selected.
func (s State) SourceSample(n int) *dataset.Dataset {
	if s.Current == nil || s.Spec.Column == "" {
		return nil
	}
	col, err := s.Current.Column(s.Spec.Column)
	if err != nil {
		return nil
	}
	d, err := dataset.New(col)
	if err != nil {
		return nil
	}
	return dataset.Head(d, n)
}

// idle returns s with any pending candidates discarded.
func (s State) idle() State {
	s.Candidates = nil
	return s
}
