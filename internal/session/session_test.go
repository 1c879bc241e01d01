package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/colsplit/internal/dataset"
	"github.com/JonMunkholm/colsplit/internal/table"
	"github.com/JonMunkholm/colsplit/internal/testutil"
	"github.com/JonMunkholm/colsplit/internal/transform"
)

func newState(t *testing.T, maxHistory int) State {
	t.Helper()
	st, err := NewState(testutil.People(), Options{MaxHistory: maxHistory})
	require.NoError(t, err)
	return st
}

func mustApply(t *testing.T, s State, cmds ...Command) State {
	t.Helper()
	for _, cmd := range cmds {
		var err error
		s, err = Apply(s, cmd)
		require.NoError(t, err, cmd.Name())
	}
	return s
}

func TestCommitThenUndoRestores(t *testing.T) {
	st := newState(t, 0)
	before := st.Current

	st = mustApply(t, st, SelectColumn{Column: "name"}, Preview{}, CommitPreview{})
	assert.Equal(t, []string{"id", "name_0", "name_1", "name_2", "city"}, st.Current.ColumnNames())
	assert.Equal(t, 1, st.History.Len())
	assert.Equal(t, PhaseIdle, st.Phase())
	assert.Empty(t, st.Spec.Column)

	st = mustApply(t, st, UndoCommit{})
	assert.True(t, before.Equal(st.Current))
	assert.False(t, st.CanUndo())
}

func TestUndoEmptyHistory(t *testing.T) {
	st := newState(t, 0)

	out, err := Apply(st, UndoCommit{})
	require.ErrorIs(t, err, ErrEmptyHistory)
	assert.Same(t, st.Current, out.Current)
}

func TestUndoDiscardsPreview(t *testing.T) {
	st := newState(t, 0)
	st = mustApply(t, st, SelectColumn{Column: "name"}, Preview{}, CommitPreview{})
	st = mustApply(t, st, SelectColumn{Column: "city"}, Preview{})
	require.Equal(t, PhasePreviewing, st.Phase())

	st = mustApply(t, st, UndoCommit{})
	assert.Equal(t, PhaseIdle, st.Phase())
	assert.True(t, st.Current.Has("name"))
}

func TestRenameArityMismatchLeavesPreview(t *testing.T) {
	st := mustApply(t, newState(t, 0), SelectColumn{Column: "name"}, Preview{})

	out, err := Apply(st, RenameColumns{Names: []string{"first"}})
	require.ErrorIs(t, err, transform.ErrArityMismatch)
	assert.Same(t, st.Candidates, out.Candidates)
	assert.Equal(t, []string{"name_0", "name_1", "name_2"}, out.Candidates.Names())
}

func TestRenameThenCommit(t *testing.T) {
	st := mustApply(t, newState(t, 0),
		SelectColumn{Column: "name"},
		Preview{},
		RenameColumns{Names: []string{"first", "middle", "last"}},
		CommitPreview{},
	)
	assert.Equal(t, []string{"id", "first", "middle", "last", "city"}, st.Current.ColumnNames())

	raw := st.Export()
	assert.Equal(t, "Lovelace", *raw.Rows[0][2])
	assert.Nil(t, raw.Rows[0][3])
	assert.Equal(t, "Turing", *raw.Rows[1][3])
	assert.Equal(t, "Boston", *raw.Rows[2][4])
	assert.Nil(t, raw.Rows[2][1])
}

func TestCommitCollisionIsAtomic(t *testing.T) {
	st := mustApply(t, newState(t, 0),
		SelectColumn{Column: "name"},
		Preview{},
		RenameColumns{Names: []string{"city", "b", "c"}},
	)

	out, err := Apply(st, CommitPreview{})
	require.ErrorIs(t, err, dataset.ErrDuplicateColumn)
	assert.Same(t, st.Current, out.Current)
	assert.Equal(t, 0, out.History.Len())
	assert.Equal(t, PhasePreviewing, out.Phase())
}

func TestCommitSourceGone(t *testing.T) {
	st := mustApply(t, newState(t, 0), SelectColumn{Column: "name"}, Preview{})
	cands := st.Candidates

	// Commit once; the source column no longer exists.
	st = mustApply(t, st, CommitPreview{})

	_, err := Commit(st, "name", cands)
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)
}

func TestCommitRowCountMismatch(t *testing.T) {
	st := newState(t, 0)
	short, err := dataset.New(dataset.Strings("v", "a,b"))
	require.NoError(t, err)
	cands, err := transform.SplitByDelimiter(short, "v", ",")
	require.NoError(t, err)

	out, err := Commit(st, "name", cands)
	require.ErrorIs(t, err, dataset.ErrRowCountMismatch)
	assert.Same(t, st.Current, out.Current)
	assert.True(t, out.History.Empty())
}

func TestCommitWithoutPreview(t *testing.T) {
	_, err := Apply(newState(t, 0), CommitPreview{})
	assert.ErrorIs(t, err, ErrNoPreview)

	_, err = Apply(newState(t, 0), RenameColumns{Names: []string{"a"}})
	assert.ErrorIs(t, err, ErrNoPreview)
}

func TestSelectAndModeClearPreview(t *testing.T) {
	previewing := mustApply(t, newState(t, 0), SelectColumn{Column: "name"}, Preview{})

	tests := []struct {
		name string
		cmd  Command
	}{
		{name: "select", cmd: SelectColumn{Column: "city"}},
		{name: "mode", cmd: SetSplitMode{Mode: transform.ModeFixedWidth, Widths: []int{2}}},
		{name: "cancel", cmd: CancelPreview{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustApply(t, previewing, tt.cmd)
			assert.Equal(t, PhaseIdle, out.Phase())
			assert.Same(t, previewing.Current, out.Current)
			// The input state is a value and keeps its preview.
			assert.Equal(t, PhasePreviewing, previewing.Phase())
		})
	}
}

func TestInvalidCommandsLeaveStateUnchanged(t *testing.T) {
	previewing := mustApply(t, newState(t, 0), SelectColumn{Column: "name"}, Preview{})

	tests := []struct {
		name    string
		cmd     Command
		wantErr error
	}{
		{name: "unknown column", cmd: SelectColumn{Column: "nope"}, wantErr: dataset.ErrColumnNotFound},
		{name: "empty delimiter", cmd: SetSplitMode{Mode: transform.ModeDelimiter}, wantErr: transform.ErrInvalidDelimiter},
		{name: "bad widths", cmd: SetSplitMode{Mode: transform.ModeFixedWidth, Widths: []int{3, 0}}, wantErr: transform.ErrInvalidWidths},
		{name: "bad mode", cmd: SetSplitMode{Mode: "regex"}, wantErr: transform.ErrInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(previewing, tt.cmd)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, previewing, out)
		})
	}
}

func TestPreviewRequiresColumn(t *testing.T) {
	_, err := Apply(newState(t, 0), Preview{})
	assert.ErrorIs(t, err, ErrNoColumnSelected)
}

func TestFixedWidthFlow(t *testing.T) {
	raw := table.RawTable{
		Header: []string{"code"},
		Rows:   []table.Row{{table.Str("AB123")}, {table.Str("C")}},
	}
	st, err := NewState(raw, Options{})
	require.NoError(t, err)

	st = mustApply(t, st,
		SelectColumn{Column: "code"},
		SetSplitMode{Mode: transform.ModeFixedWidth, Widths: []int{2, 3}, Prefix: "part"},
		Preview{},
		CommitPreview{},
	)
	out := st.Export()
	assert.Equal(t, []string{"part_0", "part_1"}, out.Header)
	assert.Equal(t, "123", *out.Rows[0][1])
	assert.Equal(t, "", *out.Rows[1][1])
}

func TestDropBlankDoesNotPushHistory(t *testing.T) {
	raw := table.RawTable{
		Header: []string{"a", "blank"},
		Rows:   []table.Row{{table.Str("1"), nil}, {nil, nil}},
	}
	st, err := NewState(raw, Options{})
	require.NoError(t, err)

	once := mustApply(t, st, DropBlank{})
	assert.Equal(t, []string{"a"}, once.Current.ColumnNames())
	assert.True(t, once.History.Empty())

	twice := mustApply(t, once, DropBlank{})
	assert.True(t, once.Current.Equal(twice.Current))

	rows := mustApply(t, st, DropBlank{DropNullRows: true})
	assert.Equal(t, 1, rows.Current.RowCount())
	assert.Equal(t, []string{"a"}, rows.Current.ColumnNames())
}

func TestHistoryCap(t *testing.T) {
	raw := table.RawTable{
		Header: []string{"v"},
		Rows:   []table.Row{{table.Str("a-b-c-d")}},
	}
	st, err := NewState(raw, Options{MaxHistory: 2})
	require.NoError(t, err)

	// Split v, then v_0 repeatedly; three commits with a cap of two.
	st = mustApply(t, st, SelectColumn{Column: "v"}, SetSplitMode{Mode: transform.ModeDelimiter, Delimiter: "-"}, Preview{}, CommitPreview{})
	st = mustApply(t, st, SelectColumn{Column: "v_1"}, SetSplitMode{Mode: transform.ModeFixedWidth, Widths: []int{1}}, Preview{}, CommitPreview{})
	st = mustApply(t, st, SelectColumn{Column: "v_2"}, SetSplitMode{Mode: transform.ModeFixedWidth, Widths: []int{1}}, Preview{}, CommitPreview{})
	require.Equal(t, 2, st.History.Len())

	st = mustApply(t, st, UndoCommit{}, UndoCommit{})
	assert.Equal(t, []string{"v_0", "v_1", "v_2", "v_3"}, st.Current.ColumnNames())

	_, err = Apply(st, UndoCommit{})
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

func TestLoadTableResets(t *testing.T) {
	st := mustApply(t, newState(t, 0), SelectColumn{Column: "name"}, Preview{}, CommitPreview{})

	st = mustApply(t, st, LoadTable{Table: table.RawTable{Header: []string{"x"}}})
	assert.Equal(t, []string{"x"}, st.Current.ColumnNames())
	assert.True(t, st.History.Empty())
	assert.Equal(t, PhaseIdle, st.Phase())
}

type bogus struct{}

func (bogus) Name() string { return "bogus" }

func TestUnknownCommand(t *testing.T) {
	_, err := Apply(newState(t, 0), bogus{})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestSessionHandle(t *testing.T) {
	s, err := New(testutil.People(), Options{}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	assert.Nil(t, s.SourceSample(5))
	require.NoError(t, s.SelectColumn("name"))
	sample := s.SourceSample(2)
	require.NotNil(t, sample)
	assert.Equal(t, 2, sample.RowCount())

	cands, err := s.Preview()
	require.NoError(t, err)
	assert.Equal(t, 3, cands.Len())

	renamed, err := s.RenameColumns([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, renamed.Names())
	committed, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, 5, committed.NumColumns())
	assert.Same(t, committed, s.Current())

	require.NoError(t, s.CancelPreview())
	restored, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, testutil.People().Header, restored.ColumnNames())

	gone, err := s.Undo()
	assert.ErrorIs(t, err, ErrEmptyHistory)
	assert.Nil(t, gone)
	assert.Equal(t, testutil.People().Header, s.ExportCurrent().Header)

	pruned, err := s.DropBlankColumns(false)
	require.NoError(t, err)
	assert.Same(t, pruned, s.Current())
}

func TestZeroStateDoesNotPanic(t *testing.T) {
	cands, err := transform.SplitByDelimiter(newState(t, 0).Current, "name", ",")
	require.NoError(t, err)

	tests := []struct {
		name    string
		state   State
		cmd     Command
		wantErr error
	}{
		{name: "prune", cmd: DropBlank{DropNullRows: true}},
		{name: "cancel", cmd: CancelPreview{}},
		{name: "mode", cmd: SetSplitMode{Mode: transform.ModeDelimiter, Delimiter: ","}},
		{name: "select", cmd: SelectColumn{Column: "name"}, wantErr: dataset.ErrColumnNotFound},
		{name: "undo", cmd: UndoCommit{}, wantErr: ErrEmptyHistory},
		{name: "commit", cmd: CommitPreview{}, wantErr: ErrNoPreview},
		{
			name:    "preview with stale column",
			state:   State{Spec: transform.DefaultSpec("name")},
			cmd:     Preview{},
			wantErr: dataset.ErrColumnNotFound,
		},
		{
			name:    "commit with stale candidates",
			state:   State{Candidates: cands},
			cmd:     CommitPreview{},
			wantErr: dataset.ErrColumnNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				out State
				err error
			)
			require.NotPanics(t, func() {
				out, err = Apply(tt.state, tt.cmd)
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.state, out)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, out.Current)
		})
	}

	s := FromState(State{}, testutil.NewTestLogger(t))
	require.NotPanics(t, func() {
		assert.NoError(t, s.CancelPreview())
	})
	assert.Nil(t, s.SourceSample(3))
}

func TestSourceSample(t *testing.T) {
	st := mustApply(t, newState(t, 0), SelectColumn{Column: "name"})

	sample := st.SourceSample(2)
	require.NotNil(t, sample)
	assert.Equal(t, []string{"name"}, sample.ColumnNames())
	assert.Equal(t, 2, sample.RowCount())

	st.Spec.Column = "missing"
	assert.Nil(t, st.SourceSample(2))
}
