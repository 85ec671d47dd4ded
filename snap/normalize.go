package snap

import (
	"errors"
	"fmt"
	"math"

	"codesnap/geometry"
)

// MinElementSize is the smallest width/height a boxed element may have.
// Text boxes may be 0 until their first measurement.
const MinElementSize = 1

// Normalize brings s back inside the document invariants: canvas size within
// bounds, both background configs present, JSON-safe numbers, well-formed
// elements. Out-of-range values are clamped, never rejected.
func Normalize(s *Snap) {
	if s.Version == "" {
		s.Version = CurrentVersion
	}
	NormalizeMeta(&s.Meta)
	NormalizeBackground(&s.Background)
	if s.Elements == nil {
		s.Elements = []Element{}
	}
	for i := range s.Elements {
		NormalizeElement(&s.Elements[i])
	}
}

// NormalizeMeta clamps the canvas size and keeps Aspect consistent with it.
func NormalizeMeta(m *Meta) {
	if m.Width == 0 && m.Height == 0 {
		if p, ok := LookupAspect(m.Aspect); ok {
			m.Width, m.Height = p.Width, p.Height
		}
	}
	m.Width = ClampCanvasSize(m.Width)
	m.Height = ClampCanvasSize(m.Height)
	if p, ok := LookupAspect(m.Aspect); !ok || p.Width != m.Width || p.Height != m.Height {
		m.Aspect = AspectFor(m.Width, m.Height)
	}
}

// NormalizeBackground fills in missing background configs.
func NormalizeBackground(b *Background) {
	def := DefaultBackground()
	if b.Type != BackgroundSolid && b.Type != BackgroundGradient {
		b.Type = BackgroundSolid
	}
	if b.Solid.Color == "" {
		b.Solid.Color = def.Solid.Color
	}
	if b.Gradient.From == "" {
		b.Gradient.From = def.Gradient.From
	}
	if b.Gradient.To == "" {
		b.Gradient.To = def.Gradient.To
	}
	b.Gradient.Angle = finite(b.Gradient.Angle)
	if b.BrandStrip != nil {
		b.BrandStrip.Height = math.Max(0, finite(b.BrandStrip.Height))
	}
}

// NormalizeElement repairs a single element (and its children) in place.
func NormalizeElement(e *Element) {
	e.X = finite(e.X)
	e.Y = finite(e.Y)
	e.Rotation = normalizeRotation(e.Rotation)
	e.Width = finite(e.Width)
	e.Height = finite(e.Height)
	for i := range e.Points {
		e.Points[i] = finitePoint(e.Points[i])
	}

	switch e.Type {
	case TypeCode:
		if e.Code == nil {
			e.Code = defaultCodeProps()
		}
		if e.Code.Highlights == nil {
			e.Code.Highlights = []int{}
		}
		e.Code.FontSize = positive(e.Code.FontSize, defaultCodeProps().FontSize)
	case TypeText:
		if e.Text == nil {
			e.Text = defaultTextProps()
		}
		e.Text.FontSize = positive(e.Text.FontSize, defaultTextProps().FontSize)
	case TypeArrow:
		if e.Arrow == nil {
			e.Arrow = defaultArrowProps()
		}
		normalizeArrowProps(e.Arrow)
	case TypeShape:
		if e.Shape == nil {
			e.Shape = defaultShapeProps(ShapeRectangle)
		}
		if e.Shape.Kind == "" {
			e.Shape.Kind = ShapeRectangle
		}
		if e.Shape.Kind == ShapePolygon && e.Shape.Sides < 3 {
			e.Shape.Sides = 6
		}
		if e.Shape.Kind == ShapeStar && (e.Shape.InnerRatio <= 0 || e.Shape.InnerRatio >= 1) {
			e.Shape.InnerRatio = 0.5
		}
		e.Shape.Opacity = opacity(e.Shape.Opacity)
	case TypeImage:
		if e.Image == nil {
			e.Image = &ImageProps{}
		}
		e.Image.Opacity = opacity(e.Image.Opacity)
	case TypeGroup:
		if e.Group == nil {
			e.Group = &GroupProps{}
		}
		for i := range e.Elements {
			NormalizeElement(&e.Elements[i])
		}
	}

	switch {
	case e.UsesPoints():
		e.Points = padPoints(e.Points, e.X, e.Y)
		e.Width, e.Height = 0, 0
	case e.Type == TypeText:
		e.Width = math.Max(0, e.Width)
		e.Height = math.Max(0, e.Height)
	case e.Type.Known():
		e.Width = math.Max(MinElementSize, e.Width)
		e.Height = math.Max(MinElementSize, e.Height)
	}
}

func normalizeArrowProps(a *ArrowProps) {
	if a.Style != ArrowCurved {
		a.Style = ArrowStraight
	}
	if a.Head == "" {
		a.Head = HeadFilled
	}
	if a.Tail == "" {
		a.Tail = HeadNone
	}
	a.StrokeWidth = positive(a.StrokeWidth, 3)
	if len(a.ControlPoints) == 0 {
		a.ControlPoints = nil
	} else if len(a.ControlPoints) > 2 {
		a.ControlPoints = a.ControlPoints[:2]
	}
	for i := range a.ControlPoints {
		a.ControlPoints[i] = finitePoint(a.ControlPoints[i])
	}
}

// padPoints guarantees the two endpoints a point-based element needs.
func padPoints(points []geometry.Point, x, y float64) []geometry.Point {
	switch len(points) {
	case 0:
		return []geometry.Point{{X: x, Y: y}, {X: x, Y: y}}
	case 1:
		return []geometry.Point{points[0], points[0]}
	}
	return points
}

func normalizeRotation(deg float64) float64 {
	deg = math.Mod(finite(deg), 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func finitePoint(p geometry.Point) geometry.Point {
	return geometry.Point{X: finite(p.X), Y: finite(p.Y)}
}

// opacity treats a missing (zero) or out-of-range opacity as fully opaque;
// hiding is what Visible is for.
func opacity(v float64) float64 {
	if v <= 0 || v > 1 || math.IsNaN(v) {
		return 1
	}
	return v
}

func positive(v, fallback float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// RepairIDs gives a fresh id to every element whose id is empty or already
// used earlier in document order. It returns the number of ids replaced.
func RepairIDs(s *Snap, newID func() string) int {
	seen := make(map[string]bool)
	fixed := 0
	var walk func([]Element)
	walk = func(els []Element) {
		for i := range els {
			if els[i].ID == "" || seen[els[i].ID] {
				els[i].ID = newID()
				fixed++
			}
			seen[els[i].ID] = true
			walk(els[i].Elements)
		}
	}
	walk(s.Elements)
	return fixed
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("snap: invalid document")

// Validate checks the document invariants without modifying s.
func Validate(s *Snap) error {
	if s.Meta.Width < MinCanvasSize || s.Meta.Width > MaxCanvasSize ||
		s.Meta.Height < MinCanvasSize || s.Meta.Height > MaxCanvasSize {
		return fmt.Errorf("%w: canvas size %dx%d out of range", ErrInvalid, s.Meta.Width, s.Meta.Height)
	}
	seen := make(map[string]bool)
	var check func([]Element) error
	check = func(els []Element) error {
		for i := range els {
			e := &els[i]
			if e.ID == "" {
				return fmt.Errorf("%w: element %d has no id", ErrInvalid, i)
			}
			if seen[e.ID] {
				return fmt.Errorf("%w: duplicate id %q", ErrInvalid, e.ID)
			}
			seen[e.ID] = true
			if e.UsesPoints() && len(e.Points) < 2 {
				return fmt.Errorf("%w: %s %q needs at least 2 points", ErrInvalid, e.Type, e.ID)
			}
			if e.Type == TypeGroup {
				if err := check(e.Elements); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return check(s.Elements)
}
