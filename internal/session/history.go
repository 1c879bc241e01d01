package session

import (
	"github.com/JonMunkholm/colsplit/internal/dataset"
)

// History is a LIFO stack of dataset snapshots.
//
// It is a persistent linked stack: Push and Pop return a new History and
// leave the receiver untouched, so a State holding a History can be copied
// freely. Snapshots share unchanged columns with later datasets, so the
// marginal cost of a push is the columns a commit actually replaced.
//
// MaxDepth bounds the stack. Zero means unbounded. When a push would exceed
// the bound the oldest snapshot is evicted.
type History struct {
	top      *frame
	depth    int
	maxDepth int
}

type frame struct {
	snap *dataset.Dataset
	next *frame
}

// NewHistory returns an empty history bounded to maxDepth snapshots (0 = unbounded).
func NewHistory(maxDepth int) History {
	if maxDepth < 0 {
		maxDepth = 0
	}
	return History{maxDepth: maxDepth}
}

// Len returns the number of snapshots on the stack.
func (h History) Len() int {
	return h.depth
}

// MaxDepth returns the configured bound (0 = unbounded).
func (h History) MaxDepth() int {
	return h.maxDepth
}

// Empty reports whether there is nothing to undo.
func (h History) Empty() bool {
	return h.depth == 0
}

// Push returns a history with snap on top.
func (h History) Push(snap *dataset.Dataset) History {
	out := History{
		top:      &frame{snap: snap, next: h.top},
		depth:    h.depth + 1,
		maxDepth: h.maxDepth,
	}
	if out.maxDepth > 0 && out.depth > out.maxDepth {
		out = out.truncate(out.maxDepth)
	}
	return out
}

// Pop returns the top snapshot and the history beneath it.
func (h History) Pop() (*dataset.Dataset, History, error) {
	if h.top == nil {
		return nil, h, ErrEmptyHistory
	}
	return h.top.snap, History{top: h.top.next, depth: h.depth - 1, maxDepth: h.maxDepth}, nil
}

// Peek returns the top snapshot without removing it.
func (h History) Peek() (*dataset.Dataset, bool) {
	if h.top == nil {
		return nil, false
	}
	return h.top.snap, true
}

// truncate keeps the newest n snapshots. Frames are shared with older
// histories, so the kept prefix is copied rather than relinked.
func (h History) truncate(n int) History {
	kept := make([]*dataset.Dataset, 0, n)
	for f := h.top; f != nil && len(kept) < n; f = f.next {
		kept = append(kept, f.snap)
	}

	var top *frame
	for i := len(kept) - 1; i >= 0; i-- {
		top = &frame{snap: kept[i], next: top}
	}
	return History{top: top, depth: len(kept), maxDepth: h.maxDepth}
}
