// Package history implements snapshot based undo/redo over whole documents.
//
// Every entry is an independent deep copy, so mutating the live document can
// never reach back into a stored snapshot. There are no per-operation inverse
// functions: undo simply swaps the live document for the previous snapshot.
package history

import "codesnap/snap"

// DefaultLimit bounds the undo stack of a History created with New(0).
const DefaultLimit = 50

type History struct {
	past   []*snap.Snap
	future []*snap.Snap
	limit  int
}

// New returns an empty history keeping at most limit undo steps.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Commit records cur as an undo point and drops the redo stack. The oldest
// entry is evicted once the limit is exceeded.
func (h *History) Commit(cur *snap.Snap) {
	h.past = append(h.past, cur.Clone())
	if over := len(h.past) - h.limit; over > 0 {
		for i := 0; i < over; i++ {
			h.past[i] = nil
		}
		h.past = append(h.past[:0:0], h.past[over:]...)
	}
	h.clearFuture()
}

// Undo returns the previous document and stores cur for redo. ok is false
// when there is nothing to undo.
func (h *History) Undo(cur *snap.Snap) (prev *snap.Snap, ok bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	last := len(h.past) - 1
	prev = h.past[last]
	h.past[last] = nil
	h.past = h.past[:last]
	h.future = append(h.future, cur.Clone())
	return prev.Clone(), true
}

// Redo is the mirror of Undo.
func (h *History) Redo(cur *snap.Snap) (next *snap.Snap, ok bool) {
	if len(h.future) == 0 {
		return nil, false
	}
	last := len(h.future) - 1
	next = h.future[last]
	h.future[last] = nil
	h.future = h.future[:last]
	h.past = append(h.past, cur.Clone())
	return next.Clone(), true
}

// Reset forgets all undo and redo steps.
func (h *History) Reset() {
	h.past = nil
	h.future = nil
}

func (h *History) clearFuture() {
	for i := range h.future {
		h.future[i] = nil
	}
	h.future = h.future[:0]
}

func (h *History) PastLen() int   { return len(h.past) }
func (h *History) FutureLen() int { return len(h.future) }
func (h *History) CanUndo() bool  { return len(h.past) > 0 }
func (h *History) CanRedo() bool  { return len(h.future) > 0 }

// Discard pops the most recent undo point without recording cur for redo,
// for rolling back an edit that should leave no trace.
func (h *History) Discard() (prev *snap.Snap, ok bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	last := len(h.past) - 1
	prev = h.past[last]
	h.past[last] = nil
	h.past = h.past[:last]
	return prev.Clone(), true
}
