package main

import "fmt"

func (m *model) undo() {
	ed := m.getEditor()
	if ed == nil {
		return
	}
	if !ed.Undo() {
		m.successMessage = "Nothing to undo"
		return
	}
	m.successMessage = fmt.Sprintf("Undo (%d left)", ed.UndoDepth())
}

func (m *model) redo() {
	ed := m.getEditor()
	if ed == nil {
		return
	}
	if !ed.Redo() {
		m.successMessage = "Nothing to redo"
		return
	}
	m.successMessage = fmt.Sprintf("Redo (%d left)", ed.RedoDepth())
}

// beginGesture records one undo point for a continuous edit such as a move
// or resize.
func (m *model) beginGesture() {
	if ed := m.getEditor(); ed != nil {
		ed.SaveToHistory()
	}
}

// cancelGesture rolls a move or resize back to where it started. Nothing is
// left on the redo stack.
func (m *model) cancelGesture() {
	if ed := m.getEditor(); ed != nil {
		ed.Revert()
	}
}
