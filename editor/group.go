package editor

import (
	"codesnap/geometry"
	"codesnap/snap"
)

// GroupSelection wraps the selected top-level elements in a new group and
// returns its id. The group box is the union of the members' bounds and the
// members are stored relative to its origin. The group takes the z-position
// of its topmost member. Needs at least two members.
func (e *Editor) GroupSelection() string {
	idx := e.targets("")
	if len(idx) < 2 {
		return ""
	}
	e.commit()

	members := make([]snap.Element, 0, len(idx))
	for _, i := range idx {
		members = append(members, e.doc.Elements[i].Clone())
	}
	box := snap.BoundsAll(members)
	for i := range members {
		snap.Translate(&members[i], -box.X, -box.Y)
	}
	group := snap.Element{
		ID:       e.newID(),
		Type:     snap.TypeGroup,
		X:        box.X,
		Y:        box.Y,
		Width:    box.W,
		Height:   box.H,
		Visible:  true,
		Group:    &snap.GroupProps{},
		Elements: members,
	}
	snap.NormalizeElement(&group)

	top := idx[len(idx)-1]
	kept := make([]snap.Element, 0, len(e.doc.Elements)-len(idx)+1)
	k := 0
	for i := range e.doc.Elements {
		if k < len(idx) && idx[k] == i {
			k++
			if i == top {
				kept = append(kept, group)
			}
			continue
		}
		kept = append(kept, e.doc.Elements[i])
	}
	e.doc.Elements = kept
	e.selected = []string{group.ID}
	e.log.Debug("grouped", "id", group.ID, "members", len(members))
	e.emit("group", group.ID)
	return group.ID
}

// UngroupSelection dissolves every selected top-level group. Children go
// back to canvas coordinates, taking the group's rotation about its origin
// into account, and replace the group in the z-order. The released children
// become the selection.
func (e *Editor) UngroupSelection() []string {
	var groups []int
	for _, i := range e.targets("") {
		if e.doc.Elements[i].Type == snap.TypeGroup {
			groups = append(groups, i)
		}
	}
	if len(groups) == 0 {
		return nil
	}
	e.commit()

	var released []string
	out := make([]snap.Element, 0, len(e.doc.Elements))
	g := 0
	for i := range e.doc.Elements {
		if g < len(groups) && groups[g] == i {
			g++
			for _, child := range e.doc.Elements[i].Elements {
				toCanvas(&child, &e.doc.Elements[i])
				out = append(out, child)
				released = append(released, child.ID)
			}
			continue
		}
		out = append(out, e.doc.Elements[i])
	}
	e.doc.Elements = out
	e.selected = released
	e.log.Debug("ungrouped", "groups", len(groups), "children", len(released))
	e.emit("ungroup", released...)
	return released
}

// toCanvas converts child from group-relative to the group's parent space.
func toCanvas(child *snap.Element, group *snap.Element) {
	snap.Translate(child, group.X, group.Y)
	if group.Rotation == 0 {
		return
	}
	origin := geometry.Pt(group.X, group.Y)
	rot := func(p geometry.Point) geometry.Point { return geometry.Rotate(p, origin, group.Rotation) }

	o := rot(geometry.Pt(child.X, child.Y))
	child.X, child.Y = o.X, o.Y
	for i := range child.Points {
		child.Points[i] = rot(child.Points[i])
	}
	if child.Arrow != nil {
		for i := range child.Arrow.ControlPoints {
			child.Arrow.ControlPoints[i] = rot(child.Arrow.ControlPoints[i])
		}
	}
	if !child.UsesPoints() {
		child.Rotation += group.Rotation
	}
	snap.NormalizeElement(child)
}

// ScaleGroup resizes a group to w x h by scaling its children's positions
// and sizes. Called once when a resize gesture ends; it does not commit.
func (e *Editor) ScaleGroup(id string, w, h float64) {
	group := e.find(id)
	if group == nil || group.Type != snap.TypeGroup || group.Locked {
		return
	}
	if group.Width <= 0 || group.Height <= 0 || w <= 0 || h <= 0 {
		return
	}
	sx, sy := w/group.Width, h/group.Height
	if sx == 1 && sy == 1 {
		return
	}
	for i := range group.Elements {
		scaleElement(&group.Elements[i], sx, sy)
	}
	group.Width, group.Height = w, h
	snap.NormalizeElement(group)
	e.emit("scale", id)
}

func scaleElement(el *snap.Element, sx, sy float64) {
	el.X *= sx
	el.Y *= sy
	el.Width *= sx
	el.Height *= sy
	for i := range el.Points {
		el.Points[i] = geometry.Pt(el.Points[i].X*sx, el.Points[i].Y*sy)
	}
	if el.Arrow != nil {
		for i := range el.Arrow.ControlPoints {
			p := el.Arrow.ControlPoints[i]
			el.Arrow.ControlPoints[i] = geometry.Pt(p.X*sx, p.Y*sy)
		}
	}
	if el.Text != nil {
		el.Text.FontSize *= min(sx, sy)
	}
	for i := range el.Elements {
		scaleElement(&el.Elements[i], sx, sy)
	}
	snap.NormalizeElement(el)
}
