package main

import (
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"codesnap/editor"
	"codesnap/snap"
	"codesnap/snapfile"
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if buf := m.getCurrentBuffer(); buf != nil && !buf.fitted {
			m.fitView()
		}
		m.ensureCursorInBounds()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.help && m.mode != ModeStartup {
			return m.handleHelpKey(msg.String())
		}
		switch m.mode {
		case ModeStartup:
			return m.handleStartupKey(msg.String())
		case ModeEditing:
			return m.handleEditKey(msg)
		case ModeMove:
			return m.handleMoveKey(msg.String())
		case ModeResize:
			return m.handleResizeKey(msg.String())
		case ModeArrow:
			return m.handleArrowKey(msg.String())
		case ModeFileInput:
			return m.handleFileInputKey(msg)
		case ModeLibrary:
			return m.handleLibraryKey(msg.String())
		case ModeConfirm:
			return m.handleConfirmKey(msg.String())
		default:
			return m.handleNormalKey(msg.String())
		}
	}
	return m, nil
}

func (m model) handleHelpKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		if m.helpScroll < len(helpLines)-1 {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
	return m, nil
}

func (m model) handleStartupKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n":
		m.replaceBuffer(m.newEditor(nil), "")
		m.fitView()
		m.mode = ModeNormal
		m.errorMessage = ""
	case "o":
		m.fromStartup = true
		m.startFileInput(FileOpOpen, false)
	case "L":
		m.fromStartup = true
		m.openLibrary()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// leaveDialog returns from a file or library dialog to where it was opened.
func (m *model) leaveDialog() {
	if m.fromStartup {
		m.mode = ModeStartup
		return
	}
	m.mode = ModeNormal
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m, nil
	}
	row := msg.Y
	if m.showBufferBar() {
		row--
	}
	if msg.X >= m.canvasCols() || row < 0 || row >= m.canvasRows() {
		return m, nil
	}
	switch msg.Type {
	case tea.MouseLeft:
		m.cursorX, m.cursorY = msg.X, row
		m.selectAtCursor(false)
	case tea.MouseWheelUp:
		m.cursorX, m.cursorY = msg.X, row
		m.zoom(zoomStep)
	case tea.MouseWheelDown:
		m.cursorX, m.cursorY = msg.X, row
		m.zoom(1 / zoomStep)
	}
	return m, nil
}

func (m model) handleNormalKey(key string) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""
	ed := m.getEditor()

	if isMoveKey(key) {
		return m.handleNavigation(key, m.getMoveSpeed(key))
	}

	switch key {
	case "ctrl+c", "q":
		if m.needsConfirm() {
			m.confirm(ConfirmQuit)
			return m, nil
		}
		return m, tea.Quit
	case "esc":
		m.panMode = false
		ed.ClearSelection()
	case "?":
		m.help = true
	case "tab":
		m.showLayers = !m.showLayers
		m.ensureCursorInBounds()
	case "z":
		m.panMode = !m.panMode
	case "+", "=":
		m.zoom(zoomStep)
	case "-", "_":
		m.zoom(1 / zoomStep)
	case "0":
		m.fitView()

	case "enter", " ":
		m.selectAtCursor(false)
	case "v":
		m.selectAtCursor(true)
	case "ctrl+a":
		ed.SelectAll()

	case "c":
		p := m.cursorCanvas()
		el := snap.NewCodeElement(p.X, p.Y)
		el.Code.Theme = m.cfg.CodeTheme
		ed.AddElement(el)
	case "t":
		p := m.cursorCanvas()
		el := snap.NewTextElement(p.X, p.Y)
		el.Width, el.Height = m.renderer.MeasureText(el.Text)
		ed.AddElement(el)
	case "s":
		p := m.cursorCanvas()
		ed.AddElement(snap.NewShapeElement(snap.ShapeRectangle, p.X, p.Y))
	case "a":
		ed.BeginArrow(m.cursorCanvas())
		m.mode = ModeArrow
	case "x":
		m.cycleStyle()
	case "e":
		m.startEditing()
	case "m":
		if m.hasMovableSelection() {
			m.beginGesture()
			m.mode = ModeMove
		}
	case "r":
		if m.hasMovableSelection() {
			m.beginGesture()
			m.mode = ModeResize
		}
	case "d":
		if len(ed.SelectedIDs()) == 0 {
			break
		}
		if m.cfg.Confirmations {
			m.confirm(ConfirmDelete)
			break
		}
		ed.DeleteElement("")
	case "y":
		ed.DuplicateElement("")
	case "i":
		m.toggleFlag(func(el *snap.Element) { el.Visible = !el.Visible })
	case "I":
		m.toggleFlag(func(el *snap.Element) { el.Locked = !el.Locked })
	case "[":
		m.eachSelected(ed.MoveElementDown)
	case "]":
		m.eachSelected(ed.MoveElementUp)
	case "<":
		m.eachSelected(ed.SendToBack)
	case ">":
		m.eachSelected(ed.BringToFront)
	case "g":
		if ed.GroupSelection() == "" {
			m.errorMessage = "select at least two elements to group"
		}
	case "G":
		ed.UngroupSelection()

	case "C":
		if n, err := ed.CopyToClipboard(); err != nil {
			m.errorMessage = err.Error()
		} else if n > 0 {
			m.successMessage = pluralize(n, "element") + " copied"
		}
	case "X":
		if n, err := ed.CutToClipboard(); err != nil {
			m.errorMessage = err.Error()
		} else if n > 0 {
			m.successMessage = pluralize(n, "element") + " cut"
		}
	case "p":
		if _, err := ed.PasteFromClipboard(); err != nil {
			m.errorMessage = err.Error()
		}

	case "u":
		m.undo()
	case "U":
		m.redo()

	case "w":
		m.startFileInput(FileOpSave, false)
	case "E":
		m.startFileInput(FileOpExportPNG, false)
	case "o":
		m.startFileInput(FileOpOpen, false)
	case "O":
		m.startFileInput(FileOpOpen, true)
	case "W":
		if err := m.saveToLibrary(); err != nil {
			m.errorMessage = err.Error()
		}
	case "L":
		m.openLibrary()

	case "n":
		m.createNewBuffer = false
		if m.needsConfirm() {
			m.confirm(ConfirmNewSnap)
			break
		}
		m.newSnap()
	case "N":
		m.createNewBuffer = true
		m.newSnap()
	case "Q":
		if m.needsConfirm() {
			m.confirm(ConfirmCloseBuffer)
			break
		}
		m.closeBuffer()
	case "{":
		if len(m.buffers) > 1 {
			m.currentBufferIndex = (m.currentBufferIndex - 1 + len(m.buffers)) % len(m.buffers)
		}
	case "}":
		if len(m.buffers) > 1 {
			m.currentBufferIndex = (m.currentBufferIndex + 1) % len(m.buffers)
		}
	}
	return m, nil
}

func (m *model) selectAtCursor(additive bool) {
	ed := m.getEditor()
	id := ed.ElementAt(m.cursorCanvas())
	if id == "" && additive {
		return
	}
	ed.SelectElement(id, additive)
}

func (m *model) eachSelected(fn func(id string)) {
	for _, id := range m.getEditor().SelectedIDs() {
		fn(id)
	}
}

// toggleFlag flips a property on every selected element as one undo step.
func (m *model) toggleFlag(flip func(el *snap.Element)) {
	ed := m.getEditor()
	sel := ed.SelectedIDs()
	if len(sel) == 0 {
		return
	}
	ed.SaveToHistory()
	for _, id := range sel {
		ed.UpdateElementFunc(id, flip)
	}
}

// cycleStyle steps shapes through their kinds and arrows between straight
// and curved.
func (m *model) cycleStyle() {
	ed := m.getEditor()
	el, ok := ed.Element(ed.SelectedID())
	if !ok {
		return
	}
	switch {
	case el.Shape != nil && !el.UsesPoints():
		kinds := []snap.ShapeKind{snap.ShapeRectangle, snap.ShapeEllipse, snap.ShapePolygon, snap.ShapeStar}
		next := kinds[0]
		for i, k := range kinds {
			if k == el.Shape.Kind {
				next = kinds[(i+1)%len(kinds)]
			}
		}
		props := *snap.NewShapeElement(next, 0, 0).Shape
		props.Fill, props.Stroke, props.StrokeWidth, props.Opacity = el.Shape.Fill, el.Shape.Stroke, el.Shape.StrokeWidth, el.Shape.Opacity
		ed.SaveToHistory()
		ed.UpdateElement(el.ID, editor.ElementPatch{Shape: &props})
	case el.Arrow != nil:
		props := *el.Arrow
		if props.Style == snap.ArrowCurved {
			props.Style = snap.ArrowStraight
		} else {
			props.Style = snap.ArrowCurved
		}
		ed.SaveToHistory()
		ed.UpdateElement(el.ID, editor.ElementPatch{Arrow: &props})
	}
}

func (m *model) hasMovableSelection() bool {
	ed := m.getEditor()
	for _, id := range ed.SelectedIDs() {
		if el, ok := ed.Element(id); ok && !el.Locked {
			return true
		}
	}
	return false
}

func (m *model) startEditing() {
	ed := m.getEditor()
	el, ok := ed.Element(ed.SelectedID())
	if !ok || el.Locked {
		return
	}
	switch {
	case el.Code != nil:
		m.editText = el.Code.Code
	case el.Text != nil:
		m.editText = el.Text.Text
	default:
		return
	}
	m.editID = el.ID
	m.editCursorPos = len([]rune(m.editText))
	m.mode = ModeEditing
}

func (m model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.editID = ""
		return m, nil
	case "ctrl+s":
		m.commitEdit()
		m.mode = ModeNormal
		return m, nil
	case "enter":
		m.editText = insertAt(m.editText, m.editCursorPos, "\n")
		m.editCursorPos++
	case "tab":
		m.editText = insertAt(m.editText, m.editCursorPos, "\t")
		m.editCursorPos++
	case "backspace":
		m.editText, m.editCursorPos = deleteBefore(m.editText, m.editCursorPos)
	case "left":
		m.editCursorPos = max(m.editCursorPos-1, 0)
	case "right":
		m.editCursorPos = min(m.editCursorPos+1, len([]rune(m.editText)))
	case "home":
		m.editCursorPos = 0
	case "end":
		m.editCursorPos = len([]rune(m.editText))
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			text := string(msg.Runes)
			if msg.Type == tea.KeySpace {
				text = " "
			}
			m.editText = insertAt(m.editText, m.editCursorPos, text)
			m.editCursorPos += len([]rune(text))
		}
	}
	return m, nil
}

// commitEdit writes the edited content back as one undo step.
func (m *model) commitEdit() {
	ed := m.getEditor()
	el, ok := ed.Element(m.editID)
	m.editID = ""
	if !ok {
		return
	}
	switch {
	case el.Code != nil:
		if el.Code.Code == m.editText {
			return
		}
		props := *el.Code
		props.Code = m.editText
		ed.SaveToHistory()
		ed.UpdateElement(el.ID, editor.ElementPatch{Code: &props})
	case el.Text != nil:
		if el.Text.Text == m.editText {
			return
		}
		props := *el.Text
		props.Text = m.editText
		w, h := m.renderer.MeasureText(&props)
		ed.SaveToHistory()
		ed.UpdateElement(el.ID, editor.ElementPatch{Text: &props, Width: &w, Height: &h})
	}
}

func (m model) handleMoveKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter":
		m.mode = ModeNormal
	case "esc":
		m.cancelGesture()
		m.mode = ModeNormal
	default:
		dx, dy := direction(key)
		if dx == 0 && dy == 0 {
			return m, nil
		}
		sx, sy := m.cellStep()
		speed := float64(m.getMoveSpeed(key))
		ed := m.getEditor()
		for _, id := range ed.SelectedIDs() {
			ed.MoveBy(id, float64(dx)*sx*speed, float64(dy)*sy*speed)
		}
	}
	return m, nil
}

func (m model) handleResizeKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter":
		m.mode = ModeNormal
	case "esc":
		m.cancelGesture()
		m.mode = ModeNormal
	default:
		dx, dy := direction(key)
		if dx == 0 && dy == 0 {
			return m, nil
		}
		sx, sy := m.cellStep()
		speed := float64(m.getMoveSpeed(key))
		ed := m.getEditor()
		for _, id := range ed.SelectedIDs() {
			el, ok := ed.Element(id)
			if !ok || el.Locked || el.UsesPoints() {
				continue
			}
			w := max(el.Width+float64(dx)*sx*speed, snap.MinElementSize)
			h := max(el.Height+float64(dy)*sy*speed, snap.MinElementSize)
			if el.Type == snap.TypeGroup {
				ed.ScaleGroup(id, w, h)
			} else {
				ed.UpdateElement(id, editor.ElementPatch{Width: &w, Height: &h})
			}
		}
	}
	return m, nil
}

func (m model) handleArrowKey(key string) (tea.Model, tea.Cmd) {
	ed := m.getEditor()
	switch key {
	case "enter", "a":
		if ed.EndArrow() == "" {
			m.successMessage = "Arrow too short, discarded"
		}
		m.mode = ModeNormal
	case "esc":
		ed.CancelArrow()
		m.mode = ModeNormal
	default:
		if !isMoveKey(key) {
			return m, nil
		}
		m.handleCursorMove(key, m.getMoveSpeed(key))
		ed.DragArrow(m.cursorCanvas())
	}
	return m, nil
}

func (m *model) startFileInput(op FileOperation, newBuffer bool) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.openInNewBuffer = newBuffer
	m.errorMessage = ""
	m.filename = ""
	switch op {
	case FileOpOpen:
		m.scanSnapFiles()
	case FileOpSave, FileOpExportPNG:
		if buf := m.getCurrentBuffer(); buf != nil && buf.filename != "" {
			m.filename = trimExt(baseName(buf.filename))
		}
	}
}

func (m model) handleFileInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.errorMessage = ""
		m.leaveDialog()
		return m, nil
	case "up":
		if m.fileOp == FileOpOpen && m.selectedFileIndex > 0 {
			m.selectedFileIndex--
			m.filename = trimExt(m.fileList[m.selectedFileIndex])
		}
		return m, nil
	case "down":
		if m.fileOp == FileOpOpen && m.selectedFileIndex < len(m.fileList)-1 {
			m.selectedFileIndex++
			m.filename = trimExt(m.fileList[m.selectedFileIndex])
		}
		return m, nil
	case "backspace":
		m.filename, _ = deleteBefore(m.filename, len([]rune(m.filename)))
		return m, nil
	case "enter":
		return m.submitFileInput(false)
	}
	if msg.Type == tea.KeyRunes {
		m.filename += string(msg.Runes)
	}
	return m, nil
}

func (m model) submitFileInput(overwrite bool) (tea.Model, tea.Cmd) {
	if m.filename == "" {
		m.errorMessage = "filename cannot be empty"
		return m, nil
	}
	var err error
	switch m.fileOp {
	case FileOpSave:
		target := m.cfg.GetSavePath(m.filename)
		if filepath.Ext(target) == "" {
			target += snapfile.Ext
		}
		buf := m.getCurrentBuffer()
		if !overwrite && (buf.filename == "" || buf.filename != target) && exists(target) && m.cfg.Confirmations {
			m.confirm(ConfirmOverwriteFile)
			return m, nil
		}
		err = m.saveSnap(m.filename)
	case FileOpExportPNG:
		err = m.exportPNG(m.filename)
	case FileOpOpen:
		err = m.openSnap(m.filename, m.openInNewBuffer)
	}
	if err != nil {
		m.errorMessage = err.Error()
		return m, nil
	}
	m.errorMessage = ""
	m.fromStartup = false
	m.mode = ModeNormal
	return m, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (m *model) openLibrary() {
	if err := m.loadLibraryEntries(); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.mode = ModeLibrary
}

func (m model) handleLibraryKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q":
		m.leaveDialog()
	case "up", "k":
		m.selectedEntry = max(m.selectedEntry-1, 0)
	case "down", "j":
		m.selectedEntry = min(m.selectedEntry+1, max(len(m.entries)-1, 0))
	case "enter":
		if m.selectedEntry >= len(m.entries) {
			break
		}
		if err := m.openFromLibrary(m.entries[m.selectedEntry].ID); err != nil {
			m.errorMessage = err.Error()
			break
		}
		m.fromStartup = false
		m.mode = ModeNormal
	case "d":
		if m.selectedEntry < len(m.entries) {
			m.confirm(ConfirmLibraryDelete)
		}
	}
	return m, nil
}

// needsConfirm reports whether a destructive action should ask first.
func (m *model) needsConfirm() bool {
	if !m.cfg.Confirmations {
		return false
	}
	for i := range m.buffers {
		if m.buffers[i].dirty() {
			return true
		}
	}
	return false
}

func (m *model) confirm(action ConfirmAction) {
	m.confirmAction = action
	m.mode = ModeConfirm
}

func (m model) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmDelete:
			m.getEditor().DeleteElement("")
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmNewSnap:
			m.newSnap()
		case ConfirmCloseBuffer:
			m.closeBuffer()
		case ConfirmOverwriteFile:
			m.mode = ModeFileInput
			return m.submitFileInput(true)
		case ConfirmLibraryDelete:
			m.mode = ModeLibrary
			if err := m.deleteFromLibrary(m.entries[m.selectedEntry].ID); err != nil {
				m.errorMessage = err.Error()
			}
			m.selectedEntry = min(m.selectedEntry, max(len(m.entries)-1, 0))
		}
	case "n", "N", "esc":
		switch m.confirmAction {
		case ConfirmOverwriteFile:
			m.mode = ModeFileInput
		case ConfirmLibraryDelete:
			m.mode = ModeLibrary
		default:
			m.mode = ModeNormal
		}
	}
	return m, nil
}

func (m *model) newSnap() {
	ed := m.newEditor(nil)
	if m.createNewBuffer {
		m.addNewBuffer(ed, "")
	} else {
		m.replaceBuffer(ed, "")
	}
	m.fitView()
	m.cursorX, m.cursorY = 0, 0
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
