package editor

import (
	"codesnap/geometry"
	"codesnap/snap"
)

// MinArrowLength is the shortest arrow a drag gesture keeps, in canvas units.
const MinArrowLength = 10

// arrowGesture tracks an arrow being drawn. before is the document as it was
// when the drag started; it becomes the undo point if the arrow is kept.
type arrowGesture struct {
	id     string
	before *snap.Snap
}

// BeginArrow starts drawing an arrow at p. The stub is inserted right away so
// it renders during the drag, but history is only touched by EndArrow.
func (e *Editor) BeginArrow(p geometry.Point) string {
	e.CancelArrow()
	before := e.doc.Clone()
	el := snap.NewArrowElement(p.X, p.Y)
	el.ID = e.newID()
	el.Points = []geometry.Point{p, p}
	e.doc.Elements = append(e.doc.Elements, el)
	e.gesture = &arrowGesture{id: el.ID, before: before}
	e.emit("draw", el.ID)
	return el.ID
}

// DragArrow moves the end point of the arrow being drawn.
func (e *Editor) DragArrow(p geometry.Point) {
	if e.gesture == nil {
		return
	}
	el := e.find(e.gesture.id)
	if el == nil {
		e.gesture = nil
		return
	}
	el.Points[len(el.Points)-1] = p
	e.emit("draw", el.ID)
}

// EndArrow finishes the gesture. Arrows shorter than MinArrowLength are
// dropped without a trace; otherwise one undo step is recorded, the arrow is
// selected and the select tool is restored. It returns the kept arrow's id.
func (e *Editor) EndArrow() string {
	g := e.gesture
	if g == nil {
		return ""
	}
	e.gesture = nil
	el := e.find(g.id)
	if el == nil {
		return ""
	}
	if geometry.Distance(el.Points[0], el.Points[len(el.Points)-1]) < MinArrowLength {
		e.doc.Elements = removeIDs(e.doc.Elements, map[string]bool{g.id: true})
		e.emit("draw")
		return ""
	}
	e.history.Commit(g.before)
	e.selected = []string{g.id}
	e.tool = ToolSelect
	e.log.Debug("arrow drawn", "id", g.id)
	e.emit("add", g.id)
	return g.id
}

// CancelArrow aborts a gesture in progress and removes its stub.
func (e *Editor) CancelArrow() {
	g := e.gesture
	if g == nil {
		return
	}
	e.gesture = nil
	if e.exists(g.id) {
		e.doc.Elements = removeIDs(e.doc.Elements, map[string]bool{g.id: true})
		e.emit("draw")
	}
}

// Drawing reports whether an arrow gesture is in progress.
func (e *Editor) Drawing() bool {
	return e.gesture != nil
}
