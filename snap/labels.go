package snap

import (
	"strings"

	"codesnap/geometry"
)

// DisplayName returns the user label of e, or a type-derived default when
// Name is blank.
func DisplayName(e *Element) string {
	if name := strings.TrimSpace(e.Name); name != "" {
		return name
	}
	switch e.Type {
	case TypeCode:
		return "Code"
	case TypeText:
		return "Text"
	case TypeArrow:
		return "Arrow"
	case TypeShape:
		if e.Shape != nil && e.Shape.Kind != "" {
			k := string(e.Shape.Kind)
			return strings.ToUpper(k[:1]) + k[1:]
		}
		return "Shape"
	case TypeImage:
		return "Image"
	case TypeGroup:
		return "Group"
	}
	if e.Type == "" {
		return "Element"
	}
	return string(e.Type)
}

// Bounds returns the axis-aligned box of e in its parent's coordinate space,
// ignoring rotation. Point-based elements include their control points.
func Bounds(e *Element) geometry.Rect {
	if e.UsesPoints() {
		pts := append([]geometry.Point(nil), e.Points...)
		if e.Arrow != nil && e.Arrow.Curved() && len(e.Points) >= 2 {
			start, end := e.Points[0], e.Points[len(e.Points)-1]
			pts = append(pts, geometry.ControlPointsFor(start, end, e.Arrow.ControlPoints, true)...)
		}
		return geometry.BoundsOf(pts...)
	}
	return geometry.R(e.X, e.Y, e.Width, e.Height)
}

// BoundsAll is the union of the bounds of els, or the zero rect when els is
// empty.
func BoundsAll(els []Element) geometry.Rect {
	var r geometry.Rect
	for i := range els {
		if i == 0 {
			r = Bounds(&els[i])
			continue
		}
		r = r.Union(Bounds(&els[i]))
	}
	return r
}

// Translate moves e by (dx, dy). Point-based elements move their points and
// control points; X/Y always follow so the origin stays meaningful.
func Translate(e *Element, dx, dy float64) {
	e.X += dx
	e.Y += dy
	for i := range e.Points {
		e.Points[i].X += dx
		e.Points[i].Y += dy
	}
	if e.Arrow != nil {
		for i := range e.Arrow.ControlPoints {
			e.Arrow.ControlPoints[i].X += dx
			e.Arrow.ControlPoints[i].Y += dy
		}
	}
}

// Reassign gives e and all of its children fresh ids.
func Reassign(e *Element, newID func() string) {
	e.ID = newID()
	for i := range e.Elements {
		Reassign(&e.Elements[i], newID)
	}
}
