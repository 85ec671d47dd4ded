package editor

import (
	"fmt"

	"codesnap/geometry"
	"codesnap/snap"
)

// DuplicateOffset is how far copies are shifted from their original.
const DuplicateOffset = 20

// Ptr returns a pointer to v, for filling patches.
func Ptr[T any](v T) *T { return &v }

// MetaPatch is a partial update of the canvas meta; nil fields are kept.
type MetaPatch struct {
	Title  *string
	Aspect *string
	Width  *int
	Height *int
}

// BackgroundPatch is a partial update of the background; nil fields are kept.
type BackgroundPatch struct {
	Type       *snap.BackgroundType
	Solid      *snap.Solid
	Gradient   *snap.Gradient
	BrandStrip *snap.BrandStrip
	Branding   *snap.Branding
}

// ElementPatch is a shallow partial update of an element. Props are replaced
// as a whole and only when they match the element's type.
type ElementPatch struct {
	Name     *string
	X        *float64
	Y        *float64
	Rotation *float64
	Width    *float64
	Height   *float64
	Locked   *bool
	Visible  *bool
	Points   []geometry.Point

	Code  *snap.CodeProps
	Text  *snap.TextProps
	Arrow *snap.ArrowProps
	Shape *snap.ShapeProps
	Image *snap.ImageProps
}

// UpdateMeta merges p into the canvas meta. Sizes are clamped to the canvas
// bounds. A preset aspect without explicit sizes applies the preset's size;
// explicit sizes rename the aspect to the matching preset or "Custom WxH".
// It does not commit history.
func (e *Editor) UpdateMeta(p MetaPatch) {
	m := &e.doc.Meta
	if p.Title != nil {
		m.Title = *p.Title
	}
	explicit := p.Width != nil || p.Height != nil
	if p.Aspect != nil && !explicit {
		if preset, ok := snap.LookupAspect(*p.Aspect); ok {
			m.Width, m.Height = preset.Width, preset.Height
		} else {
			var w, h int
			if _, err := fmt.Sscanf(*p.Aspect, "Custom %dx%d", &w, &h); err == nil {
				m.Width, m.Height = w, h
			}
		}
	}
	if p.Width != nil {
		m.Width = *p.Width
	}
	if p.Height != nil {
		m.Height = *p.Height
	}
	snap.NormalizeMeta(m)
	e.emit("meta")
}

// SetBackground merges p into the background. It does not commit history.
func (e *Editor) SetBackground(p BackgroundPatch) {
	b := &e.doc.Background
	if p.Type != nil && (*p.Type == snap.BackgroundSolid || *p.Type == snap.BackgroundGradient) {
		b.Type = *p.Type
	}
	if p.Solid != nil {
		b.Solid = *p.Solid
	}
	if p.Gradient != nil {
		b.Gradient = *p.Gradient
	}
	if p.BrandStrip != nil {
		strip := *p.BrandStrip
		b.BrandStrip = &strip
	}
	if p.Branding != nil {
		branding := *p.Branding
		b.Branding = &branding
	}
	snap.NormalizeBackground(b)
	e.emit("background")
}

// AddElement commits history, appends el on top of the z-order, selects it
// and returns to the select tool. el is copied; if its id is empty or already
// used it gets a fresh one. The stored id is returned.
func (e *Editor) AddElement(el snap.Element) string {
	el = el.Clone()
	snap.NormalizeElement(&el)
	if e.collides(&el) {
		snap.Reassign(&el, e.newID)
	}
	e.commit()
	e.doc.Elements = append(e.doc.Elements, el)
	e.selected = []string{el.ID}
	e.tool = ToolSelect
	e.log.Debug("element added", "id", el.ID, "type", el.Type)
	e.emit("add", el.ID)
	return el.ID
}

func (e *Editor) collides(el *snap.Element) bool {
	if el.ID == "" || e.exists(el.ID) {
		return true
	}
	for i := range el.Elements {
		if e.collides(&el.Elements[i]) {
			return true
		}
	}
	return false
}

// UpdateElement shallow-merges p into the element. It never commits history:
// callers create one undo step per gesture with SaveToHistory. Values are
// clamped back into the element invariants.
func (e *Editor) UpdateElement(id string, p ElementPatch) {
	el := e.find(id)
	if el == nil {
		return
	}
	applyPatch(el, p)
	snap.NormalizeElement(el)
	e.emit("update", id)
}

func applyPatch(el *snap.Element, p ElementPatch) {
	if p.Name != nil {
		el.Name = *p.Name
	}
	if p.X != nil {
		el.X = *p.X
	}
	if p.Y != nil {
		el.Y = *p.Y
	}
	if p.Rotation != nil {
		el.Rotation = *p.Rotation
	}
	if p.Width != nil {
		el.Width = *p.Width
	}
	if p.Height != nil {
		el.Height = *p.Height
	}
	if p.Locked != nil {
		el.Locked = *p.Locked
	}
	if p.Visible != nil {
		el.Visible = *p.Visible
	}
	if len(p.Points) >= 2 && el.UsesPoints() {
		el.Points = append([]geometry.Point(nil), p.Points...)
	}
	// Props go through a throwaway element so the stored copy never aliases
	// the caller's slices.
	switch {
	case p.Code != nil && el.Type == snap.TypeCode:
		el.Code = snap.Element{Code: p.Code}.Clone().Code
	case p.Text != nil && el.Type == snap.TypeText:
		el.Text = snap.Element{Text: p.Text}.Clone().Text
	case p.Arrow != nil && el.Type == snap.TypeArrow:
		el.Arrow = snap.Element{Arrow: p.Arrow}.Clone().Arrow
	case p.Shape != nil && el.Type == snap.TypeShape:
		el.Shape = snap.Element{Shape: p.Shape}.Clone().Shape
	case p.Image != nil && el.Type == snap.TypeImage:
		el.Image = snap.Element{Image: p.Image}.Clone().Image
	}
}

// UpdateElementFunc runs fn on the live element for edits a patch cannot
// express (a single prop, a control point). The id and type are restored
// afterwards and the element is re-normalized. No history commit.
func (e *Editor) UpdateElementFunc(id string, fn func(el *snap.Element)) {
	el := e.find(id)
	if el == nil {
		return
	}
	keepID, keepType := el.ID, el.Type
	fn(el)
	el.ID, el.Type = keepID, keepType
	snap.NormalizeElement(el)
	e.emit("update", id)
}

// MoveBy shifts an element by a canvas offset. Locked elements do not move.
// No history commit.
func (e *Editor) MoveBy(id string, dx, dy float64) {
	el := e.find(id)
	if el == nil || el.Locked {
		return
	}
	snap.Translate(el, dx, dy)
	e.emit("move", id)
}

// DeleteElement removes id, or the whole selection when id is empty, after
// committing history. Deleted ids leave the selection.
func (e *Editor) DeleteElement(id string) {
	ids := []string{id}
	if id == "" {
		ids = e.SelectedIDs()
	}
	doomed := make(map[string]bool)
	for _, d := range ids {
		if e.exists(d) {
			doomed[d] = true
		}
	}
	if len(doomed) == 0 {
		return
	}
	e.commit()
	e.doc.Elements = removeIDs(e.doc.Elements, doomed)
	e.pruneSelection()
	e.log.Debug("elements deleted", "count", len(doomed))
	e.emit("delete", ids...)
}

// removeIDs filters els recursively; groups left without children go too.
func removeIDs(els []snap.Element, doomed map[string]bool) []snap.Element {
	out := els[:0]
	for _, el := range els {
		if doomed[el.ID] {
			continue
		}
		if el.Type == snap.TypeGroup && len(el.Elements) > 0 {
			el.Elements = removeIDs(el.Elements, doomed)
			if len(el.Elements) == 0 {
				continue
			}
		}
		out = append(out, el)
	}
	return out
}

// DuplicateElement copies id, or every selected top-level element when id is
// empty. Copies get fresh ids (children included), are offset by
// DuplicateOffset, sit right above their original and become the selection.
func (e *Editor) DuplicateElement(id string) []string {
	idx := e.targets(id)
	if len(idx) == 0 {
		return nil
	}
	e.commit()
	copies := make([]string, len(idx))
	for k := len(idx) - 1; k >= 0; k-- {
		i := idx[k]
		dup := e.doc.Elements[i].Clone()
		snap.Reassign(&dup, e.newID)
		snap.Translate(&dup, DuplicateOffset, DuplicateOffset)
		e.doc.Elements = insertAt(e.doc.Elements, i+1, dup)
		copies[k] = dup.ID
	}
	e.selected = append([]string(nil), copies...)
	e.log.Debug("elements duplicated", "count", len(copies))
	e.emit("duplicate", copies...)
	return copies
}

func insertAt(els []snap.Element, i int, el snap.Element) []snap.Element {
	els = append(els, snap.Element{})
	copy(els[i+1:], els[i:])
	els[i] = el
	return els
}

// MoveElementUp swaps the element with the one above it. No-op on top.
func (e *Editor) MoveElementUp(id string) {
	i := e.doc.Index(id)
	if i < 0 || i == len(e.doc.Elements)-1 {
		return
	}
	e.commit()
	els := e.doc.Elements
	els[i], els[i+1] = els[i+1], els[i]
	e.emit("reorder", id)
}

// MoveElementDown swaps the element with the one below it. No-op at the
// bottom.
func (e *Editor) MoveElementDown(id string) {
	i := e.doc.Index(id)
	if i <= 0 {
		return
	}
	e.commit()
	els := e.doc.Elements
	els[i], els[i-1] = els[i-1], els[i]
	e.emit("reorder", id)
}

// BringToFront moves the element to the end of the list (drawn last).
func (e *Editor) BringToFront(id string) {
	i := e.doc.Index(id)
	if i < 0 || i == len(e.doc.Elements)-1 {
		return
	}
	e.commit()
	el := e.doc.Elements[i]
	e.doc.Elements = append(e.doc.Elements[:i], e.doc.Elements[i+1:]...)
	e.doc.Elements = append(e.doc.Elements, el)
	e.emit("reorder", id)
}

// SendToBack moves the element to the start of the list (drawn first).
func (e *Editor) SendToBack(id string) {
	i := e.doc.Index(id)
	if i <= 0 {
		return
	}
	e.commit()
	el := e.doc.Elements[i]
	copy(e.doc.Elements[1:i+1], e.doc.Elements[:i])
	e.doc.Elements[0] = el
	e.emit("reorder", id)
}
