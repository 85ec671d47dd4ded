// Package editor is the mutating API over a snap document: selection, tools,
// viewport, element operations, grouping, clipboard and undo/redo.
//
// An Editor is a plain value owned by its host; there is no package level
// instance. It is not safe for concurrent use. Asynchronous work (image
// loads, clipboard reads, highlighting) must report back through the owner's
// event loop and call the setters from there. All operations tolerate stale
// ids: an unknown id turns the call into a no-op.
package editor

import (
	"io"
	"log/slog"

	"codesnap/geometry"
	"codesnap/history"
	"codesnap/snap"
)

type Tool string

const (
	ToolSelect Tool = "select"
	ToolCode   Tool = "code"
	ToolText   Tool = "text"
	ToolArrow  Tool = "arrow"
	ToolShape  Tool = "shape"
	ToolImage  Tool = "image"
	ToolHand   Tool = "hand"
)

// Event is delivered to subscribers after every change. Op names the
// operation; IDs lists the elements it touched, if any.
type Event struct {
	Op  string
	IDs []string
}

type Editor struct {
	doc       *snap.Snap
	history   *history.History
	selected  []string
	tool      Tool
	viewport  geometry.Viewport
	clipboard Clipboard
	pastes    int
	gesture   *arrowGesture
	newID     func() string
	log       *slog.Logger

	listeners map[int]func(Event)
	nextSub   int
}

type Option func(*Editor)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClipboard sets the clipboard used by copy and paste.
func WithClipboard(c Clipboard) Option {
	return func(e *Editor) {
		if c != nil {
			e.clipboard = c
		}
	}
}

// WithHistoryLimit bounds the undo stack.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) { e.history = history.New(n) }
}

// WithSnap starts the editor on s instead of an empty document.
func WithSnap(s *snap.Snap) Option {
	return func(e *Editor) {
		if s != nil {
			e.doc = s.Clone()
		}
	}
}

// WithIDGenerator overrides how fresh element ids are produced.
func WithIDGenerator(gen func() string) Option {
	return func(e *Editor) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// New returns an editor on an empty document.
func New(opts ...Option) *Editor {
	e := &Editor{
		doc:       snap.NewSnap(),
		history:   history.New(history.DefaultLimit),
		tool:      ToolSelect,
		viewport:  geometry.NewViewport(),
		clipboard: &MemoryClipboard{},
		newID:     func() string { return snap.NewID() },
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		listeners: make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(e)
	}
	snap.Normalize(e.doc)
	snap.RepairIDs(e.doc, e.newID)
	return e
}

// Subscribe registers fn for change events and returns its cancel func.
func (e *Editor) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := e.nextSub
	e.nextSub++
	e.listeners[id] = fn
	return func() { delete(e.listeners, id) }
}

func (e *Editor) emit(op string, ids ...string) {
	ev := Event{Op: op, IDs: ids}
	for _, fn := range e.listeners {
		fn(ev)
	}
}

// Snap returns a copy of the current document.
func (e *Editor) Snap() *snap.Snap {
	return e.doc.Clone()
}

// Meta returns the canvas meta data.
func (e *Editor) Meta() snap.Meta {
	return e.doc.Meta
}

// Background returns a copy of the canvas background.
func (e *Editor) Background() snap.Background {
	return e.doc.Background.Clone()
}

// Elements returns a copy of the top-level elements in z-order.
func (e *Editor) Elements() []snap.Element {
	out := make([]snap.Element, len(e.doc.Elements))
	for i := range e.doc.Elements {
		out[i] = e.doc.Elements[i].Clone()
	}
	return out
}

// Len is the number of top-level elements.
func (e *Editor) Len() int {
	return len(e.doc.Elements)
}

// Element returns a copy of the element with the given id, searching group
// children too.
func (e *Editor) Element(id string) (snap.Element, bool) {
	el := e.find(id)
	if el == nil {
		return snap.Element{}, false
	}
	return el.Clone(), true
}

// SetSnap replaces the document wholesale. History, selection and any
// in-progress gesture are dropped since they refer to another document.
func (e *Editor) SetSnap(s *snap.Snap) {
	if s == nil {
		s = snap.NewSnap()
	} else {
		s = s.Clone()
	}
	snap.Normalize(s)
	if n := snap.RepairIDs(s, e.newID); n > 0 {
		e.log.Warn("repaired duplicate element ids", "count", n)
	}
	e.doc = s
	e.history.Reset()
	e.selected = nil
	e.gesture = nil
	e.pastes = 0
	e.log.Debug("document replaced", "title", s.Meta.Title, "elements", len(s.Elements))
	e.emit("set")
}

// NewSnap starts over on an empty document.
func (e *Editor) NewSnap() {
	e.SetSnap(snap.NewSnap())
}

func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches the active tool. Any tool other than select clears the
// selection so drawing tools never show stale selection handles.
func (e *Editor) SetTool(t Tool) {
	if t == "" {
		t = ToolSelect
	}
	if t == e.tool {
		return
	}
	e.tool = t
	if t != ToolSelect {
		e.selected = nil
	}
	e.emit("tool")
}

func (e *Editor) Viewport() geometry.Viewport { return e.viewport }

func (e *Editor) SetViewport(v geometry.Viewport) {
	v.Scale = geometry.ClampZoom(v.Scale)
	e.viewport = v
	e.emit("viewport")
}

// PanBy moves the view by a screen offset.
func (e *Editor) PanBy(dx, dy float64) {
	e.viewport.PanBy(dx, dy)
	e.emit("viewport")
}

// ZoomAt zooms around a screen point.
func (e *Editor) ZoomAt(screen geometry.Point, factor float64) {
	e.viewport.ZoomAt(screen, factor)
	e.emit("viewport")
}

func (e *Editor) ScreenToCanvas(p geometry.Point) geometry.Point {
	return e.viewport.ScreenToCanvas(p)
}

func (e *Editor) CanvasToScreen(p geometry.Point) geometry.Point {
	return e.viewport.CanvasToScreen(p)
}

// hitSlop widens thin point-based elements for hit testing.
const hitSlop = 6

// ElementAt returns the topmost visible top-level element under the canvas
// point, or "".
func (e *Editor) ElementAt(p geometry.Point) string {
	for i := len(e.doc.Elements) - 1; i >= 0; i-- {
		el := &e.doc.Elements[i]
		if !el.Visible {
			continue
		}
		r := snap.Bounds(el)
		if el.UsesPoints() || el.Type == snap.TypeText {
			r = geometry.R(r.X-hitSlop, r.Y-hitSlop, r.W+2*hitSlop, r.H+2*hitSlop)
		}
		if r.Contains(p) {
			return el.ID
		}
	}
	return ""
}

// Layer is one row of the layers panel.
type Layer struct {
	ID       string
	Name     string
	Type     snap.ElementType
	Depth    int
	Visible  bool
	Locked   bool
	Selected bool
}

// Layers lists elements top-most first; group children follow their group
// one level deeper.
func (e *Editor) Layers() []Layer {
	var out []Layer
	var walk func(els []snap.Element, depth int)
	walk = func(els []snap.Element, depth int) {
		for i := len(els) - 1; i >= 0; i-- {
			el := &els[i]
			out = append(out, Layer{
				ID:       el.ID,
				Name:     snap.DisplayName(el),
				Type:     el.Type,
				Depth:    depth,
				Visible:  el.Visible,
				Locked:   el.Locked,
				Selected: e.isSelected(el.ID),
			})
			walk(el.Elements, depth+1)
		}
	}
	walk(e.doc.Elements, 0)
	return out
}

// find locates an element anywhere in the tree.
func (e *Editor) find(id string) *snap.Element {
	if id == "" {
		return nil
	}
	var walk func(els []snap.Element) *snap.Element
	walk = func(els []snap.Element) *snap.Element {
		for i := range els {
			if els[i].ID == id {
				return &els[i]
			}
			if found := walk(els[i].Elements); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(e.doc.Elements)
}

func (e *Editor) exists(id string) bool {
	return e.find(id) != nil
}
