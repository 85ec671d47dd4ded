package geometry

const (
	// DefaultSegments is the polyline resolution used to approximate curves.
	DefaultSegments = 50

	// DegenerateEpsilon is the distance under which two endpoints are treated
	// as the same point.
	DegenerateEpsilon = 0.5

	// CurveBend scales the perpendicular offset of the auto-derived control
	// point relative to the chord length.
	CurveBend = 0.3
)

// IsDegenerate reports whether a curve between a and b has no usable length.
// Directional shapes (arrowheads) must not be drawn for degenerate curves.
func IsDegenerate(a, b Point) bool {
	return Distance(a, b) < DegenerateEpsilon
}

// DefaultControlPoint derives a single control point that bends the chord
// start→end to its left: midpoint plus the perpendicular vector scaled by
// CurveBend.
func DefaultControlPoint(start, end Point) Point {
	mid := start.Lerp(end, 0.5)
	perp := Point{X: -(end.Y - start.Y), Y: end.X - start.X}
	return mid.Add(perp.Mul(CurveBend))
}

// ControlPointsFor returns the control points a curve should use. Straight
// curves use none; curved ones without user-placed controls get the default.
// At most two controls are honoured.
func ControlPointsFor(start, end Point, controls []Point, curved bool) []Point {
	if !curved {
		return nil
	}
	if len(controls) == 0 {
		return []Point{DefaultControlPoint(start, end)}
	}
	if len(controls) > 2 {
		controls = controls[:2]
	}
	out := make([]Point, len(controls))
	copy(out, controls)
	return out
}

// PointAt evaluates the exact curve at t in [0,1]: linear for zero controls,
// quadratic for one, cubic for two.
func PointAt(start, end Point, controls []Point, t float64) Point {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	u := 1 - t
	switch {
	case len(controls) == 0:
		return start.Lerp(end, t)
	case len(controls) == 1:
		c := controls[0]
		return Point{
			X: u*u*start.X + 2*u*t*c.X + t*t*end.X,
			Y: u*u*start.Y + 2*u*t*c.Y + t*t*end.Y,
		}
	default:
		c1, c2 := controls[0], controls[1]
		return Point{
			X: u*u*u*start.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
			Y: u*u*u*start.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
		}
	}
}

// TangentAt returns the (unnormalized) derivative of the curve at t.
func TangentAt(start, end Point, controls []Point, t float64) Point {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	u := 1 - t
	switch {
	case len(controls) == 0:
		return end.Sub(start)
	case len(controls) == 1:
		c := controls[0]
		return c.Sub(start).Mul(2 * u).Add(end.Sub(c).Mul(2 * t))
	default:
		c1, c2 := controls[0], controls[1]
		return c1.Sub(start).Mul(3 * u * u).
			Add(c2.Sub(c1).Mul(6 * u * t)).
			Add(end.Sub(c2).Mul(3 * t * t))
	}
}

// SampleCurve approximates the curve with segments+1 points, both endpoints
// included. segments <= 0 selects DefaultSegments.
func SampleCurve(start, end Point, controls []Point, segments int) []Point {
	if segments <= 0 {
		segments = DefaultSegments
	}
	out := make([]Point, segments+1)
	for i := 0; i <= segments; i++ {
		out[i] = PointAt(start, end, controls, float64(i)/float64(segments))
	}
	out[0], out[segments] = start, end
	return out
}

// ArrowPath returns the polyline for an arrow. Straight arrows pass through
// every point; curved arrows bend between the first and last point.
func ArrowPath(points, controls []Point, curved bool, segments int) []Point {
	switch len(points) {
	case 0:
		return nil
	case 1:
		return []Point{points[0]}
	}
	start, end := points[0], points[len(points)-1]
	if curved {
		return SampleCurve(start, end, ControlPointsFor(start, end, controls, true), segments)
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}
