package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"codesnap/geometry"
)

func (m *model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	if m.panMode {
		return m.handlePan(key, speed), nil
	}
	return m.handleCursorMove(key, speed), nil
}

func (m *model) handlePan(key string, speed int) tea.Model {
	ed := m.getEditor()
	if ed == nil {
		return m
	}
	dx, dy := direction(key)
	// Panning moves the canvas under a fixed cursor, so it runs opposite to
	// the key.
	ed.PanBy(float64(-dx*speed*cellWidth), float64(-dy*speed*cellHeight))
	return m
}

func (m *model) handleCursorMove(key string, speed int) tea.Model {
	dx, dy := direction(key)
	m.cursorX += dx * speed
	m.cursorY += dy * speed
	m.ensureCursorInBounds()
	return m
}

// direction maps a movement key onto a unit step.
func direction(key string) (int, int) {
	switch key {
	case "h", "left", "H", "shift+left":
		return -1, 0
	case "l", "right", "L", "shift+right":
		return 1, 0
	case "k", "up", "K", "shift+up":
		return 0, -1
	case "j", "down", "J", "shift+down":
		return 0, 1
	}
	return 0, 0
}

func isMoveKey(key string) bool {
	dx, dy := direction(key)
	return dx != 0 || dy != 0
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 4
	default:
		return 1
	}
}

func (m *model) canvasRows() int {
	rows := m.height - 1
	if m.showBufferBar() {
		rows--
	}
	return max(rows, 1)
}

func (m *model) canvasCols() int {
	cols := m.width
	if m.showLayers {
		cols -= layersPanelWidth
	}
	return max(cols, 1)
}

func (m *model) ensureCursorInBounds() {
	m.cursorX = min(max(m.cursorX, 0), m.canvasCols()-1)
	m.cursorY = min(max(m.cursorY, 0), m.canvasRows()-1)
}

// cellToScreen is the screen pixel at the center of a terminal cell.
func cellToScreen(col, row int) geometry.Point {
	return geometry.Pt(float64(col)*cellWidth+cellWidth/2, float64(row)*cellHeight+cellHeight/2)
}

// screenToCell is the terminal cell containing a screen pixel.
func screenToCell(p geometry.Point) (int, int) {
	return floorDiv(p.X, cellWidth), floorDiv(p.Y, cellHeight)
}

// cursorCanvas is the canvas point under the cursor.
func (m *model) cursorCanvas() geometry.Point {
	ed := m.getEditor()
	if ed == nil {
		return geometry.Point{}
	}
	return ed.ScreenToCanvas(cellToScreen(m.cursorX, m.cursorY))
}

// cellStep is the canvas distance covered by one cursor step.
func (m *model) cellStep() (float64, float64) {
	ed := m.getEditor()
	if ed == nil {
		return cellWidth, cellHeight
	}
	d := ed.Viewport().ScreenDelta(cellWidth, cellHeight)
	return d.X, d.Y
}

func (m *model) zoom(factor float64) {
	if ed := m.getEditor(); ed != nil {
		ed.ZoomAt(cellToScreen(m.cursorX, m.cursorY), factor)
	}
}

// fitView centers the whole canvas in the terminal.
func (m *model) fitView() {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	meta := buf.ed.Meta()
	if m.width <= 0 || m.height <= 0 {
		v := geometry.NewViewport()
		v.SetScale(defaultZoom)
		buf.ed.SetViewport(v)
		return
	}
	buf.ed.SetViewport(geometry.Fit(
		float64(meta.Width), float64(meta.Height),
		float64(m.canvasCols()*cellWidth), float64(m.canvasRows()*cellHeight),
		fitPadding,
	))
	buf.fitted = true
}
