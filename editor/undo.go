package editor

// SaveToHistory records the current document as an undo point and drops the
// redo stack. Callers batching continuous edits (drags, typing, sliders)
// call it once when the gesture starts.
func (e *Editor) SaveToHistory() {
	e.history.Commit(e.doc)
	e.emit("commit")
}

func (e *Editor) commit() {
	e.history.Commit(e.doc)
}

// Undo restores the previous snapshot. The selection is cleared since it may
// reference ids that do not exist there.
func (e *Editor) Undo() bool {
	e.CancelArrow()
	prev, ok := e.history.Undo(e.doc)
	if !ok {
		return false
	}
	e.doc = prev
	e.selected = nil
	e.log.Debug("undo", "past", e.history.PastLen(), "future", e.history.FutureLen())
	e.emit("undo")
	return true
}

// Redo re-applies the most recently undone snapshot.
func (e *Editor) Redo() bool {
	e.CancelArrow()
	next, ok := e.history.Redo(e.doc)
	if !ok {
		return false
	}
	e.doc = next
	e.selected = nil
	e.log.Debug("redo", "past", e.history.PastLen(), "future", e.history.FutureLen())
	e.emit("redo")
	return true
}

// Revert rolls back to the last undo point and forgets it, without touching
// the redo stack. It cancels a gesture that began with SaveToHistory. Selected
// ids that survive the rollback stay selected.
func (e *Editor) Revert() bool {
	e.CancelArrow()
	prev, ok := e.history.Discard()
	if !ok {
		return false
	}
	e.doc = prev
	e.pruneSelection()
	e.log.Debug("revert", "past", e.history.PastLen(), "future", e.history.FutureLen())
	e.emit("revert")
	return true
}

func (e *Editor) CanUndo() bool  { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool  { return e.history.CanRedo() }
func (e *Editor) UndoDepth() int { return e.history.PastLen() }
func (e *Editor) RedoDepth() int { return e.history.FutureLen() }
