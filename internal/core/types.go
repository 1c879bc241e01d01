package core

import (
	"time"

	"github.com/JonMunkholm/colsplit/internal/dataset"
	"github.com/JonMunkholm/colsplit/internal/session"
	"github.com/JonMunkholm/colsplit/internal/table"
	"github.com/JonMunkholm/colsplit/internal/transform"
)

// Preview sizes shown alongside a session summary.
const (
	// SourceSampleRows is how many source cells are shown while choosing widths.
	SourceSampleRows = 5
	// CandidatePreviewRows is how many rows of a pending split are shown.
	CandidatePreviewRows = 10
)

// Summary describes a session after a command.
type Summary struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Phase        session.Phase       `json:"phase"`
	Columns      []string            `json:"columns"`
	Rows         int                 `json:"rows"`
	HistoryDepth int                 `json:"historyDepth"`
	CanUndo      bool                `json:"canUndo"`
	Spec         transform.SplitSpec `json:"spec"`
	SourceSample []*string           `json:"sourceSample,omitempty"`
	Candidates   *CandidateView      `json:"candidates,omitempty"`
	Preview      table.RawTable      `json:"preview"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// CandidateView is the pending split as shown to a client.
type CandidateView struct {
	Source  string         `json:"source"`
	Names   []string       `json:"names"`
	Preview table.RawTable `json:"preview"`
}

// Status reports service load.
type Status struct {
	Sessions      int `json:"sessions"`
	MaxSessions   int `json:"maxSessions"`
	ActiveParses  int `json:"activeParses"`
	MaxParses     int `json:"maxParses"`
	TotalCommands int `json:"totalCommands"`
}

// summarize builds a Summary of st with at most previewRows dataset rows.
func summarize(id, name string, st session.State, previewRows int, created, updated time.Time) Summary {
	sum := Summary{
		ID:           id,
		Name:         name,
		Phase:        st.Phase(),
		Columns:      st.Current.ColumnNames(),
		Rows:         st.Current.RowCount(),
		HistoryDepth: st.History.Len(),
		CanUndo:      st.CanUndo(),
		Spec:         st.Spec,
		Preview:      dataset.ToRaw(dataset.Head(st.Current, previewRows)),
		CreatedAt:    created,
		UpdatedAt:    updated,
	}

	if sample := st.SourceSample(SourceSampleRows); sample != nil {
		sum.SourceSample = dataset.ToRaw(sample).Column(0)
	}

	if st.Candidates != nil {
		view := &CandidateView{
			Source: st.Candidates.Source(),
			Names:  st.Candidates.Names(),
		}
		if d, err := st.Candidates.Dataset(); err == nil {
			view.Preview = dataset.ToRaw(dataset.Head(d, CandidatePreviewRows))
		}
		sum.Candidates = view
	}

	return sum
}
