package editor

// SelectElement selects id alone, or toggles its membership when additive is
// set. An empty id clears the selection; unknown ids are ignored.
func (e *Editor) SelectElement(id string, additive bool) {
	if id == "" {
		if !additive {
			e.ClearSelection()
		}
		return
	}
	if !e.exists(id) {
		return
	}
	if !additive {
		e.selected = []string{id}
		e.emit("select", id)
		return
	}
	for i, s := range e.selected {
		if s == id {
			e.selected = append(e.selected[:i:i], e.selected[i+1:]...)
			e.emit("select", id)
			return
		}
	}
	e.selected = append(e.selected, id)
	e.emit("select", id)
}

// SelectAll selects every top-level element.
func (e *Editor) SelectAll() {
	e.selected = e.selected[:0]
	for i := range e.doc.Elements {
		e.selected = append(e.selected, e.doc.Elements[i].ID)
	}
	e.emit("select", e.selected...)
}

func (e *Editor) ClearSelection() {
	if len(e.selected) == 0 {
		return
	}
	e.selected = nil
	e.emit("select")
}

// SelectedID is the primary selection: the most recently selected element,
// or "" when nothing is selected.
func (e *Editor) SelectedID() string {
	if len(e.selected) == 0 {
		return ""
	}
	return e.selected[len(e.selected)-1]
}

// SelectedIDs returns the whole selection in selection order.
func (e *Editor) SelectedIDs() []string {
	return append([]string(nil), e.selected...)
}

func (e *Editor) isSelected(id string) bool {
	for _, s := range e.selected {
		if s == id {
			return true
		}
	}
	return false
}

// pruneSelection drops selected ids that no longer exist.
func (e *Editor) pruneSelection() {
	kept := e.selected[:0]
	for _, id := range e.selected {
		if e.exists(id) {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	e.selected = kept
}

// targets resolves an explicit id or, when id is empty, the selection into
// top-level indices in ascending z-order.
func (e *Editor) targets(id string) []int {
	ids := []string{id}
	if id == "" {
		ids = e.selected
	}
	var idx []int
	for i := range e.doc.Elements {
		for _, want := range ids {
			if e.doc.Elements[i].ID == want {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}
