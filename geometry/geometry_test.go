package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{OffsetX: 120, OffsetY: -40, Scale: 2.5}
	for _, p := range []Point{{0, 0}, {10, 20}, {-300, 77.5}} {
		back := v.ScreenToCanvas(v.CanvasToScreen(p))
		assert.InDelta(t, p.X, back.X, eps)
		assert.InDelta(t, p.Y, back.Y, eps)
	}

	c := v.ScreenToCanvas(Pt(145, 10))
	assert.InDelta(t, 10, c.X, eps)
	assert.InDelta(t, 20, c.Y, eps)
}

func TestViewportZeroScaleIsIdentity(t *testing.T) {
	v := Viewport{}
	assert.Equal(t, Pt(5, 6), v.ScreenToCanvas(Pt(5, 6)))
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	v := NewViewport()
	v.PanBy(30, 40)
	anchor := Pt(200, 150)
	before := v.ScreenToCanvas(anchor)

	v.ZoomAt(anchor, 2)
	after := v.ScreenToCanvas(anchor)
	assert.InDelta(t, before.X, after.X, eps)
	assert.InDelta(t, before.Y, after.Y, eps)
	assert.Equal(t, 2.0, v.Scale)

	v.ZoomAt(anchor, 1000)
	assert.Equal(t, MaxZoom, v.Scale)
	v.SetScale(0)
	assert.Equal(t, MinZoom, v.Scale)
}

func TestFitCentersCanvas(t *testing.T) {
	v := Fit(1920, 1080, 960, 1080, 0)
	assert.InDelta(t, 0.5, v.Scale, eps)
	tl := v.CanvasToScreen(Pt(0, 0))
	br := v.CanvasToScreen(Pt(1920, 1080))
	assert.InDelta(t, 0, tl.X, eps)
	assert.InDelta(t, 960, br.X, eps)
	assert.InDelta(t, (1080-540)/2.0, tl.Y, eps)
}

func TestDefaultControlPoint(t *testing.T) {
	cp := DefaultControlPoint(Pt(0, 0), Pt(100, 0))
	assert.InDelta(t, 50, cp.X, eps)
	assert.InDelta(t, 30, cp.Y, eps)
}

func TestSampleCurve(t *testing.T) {
	start, end := Pt(0, 0), Pt(100, 0)

	line := SampleCurve(start, end, nil, 50)
	require.Len(t, line, 51)
	assert.Equal(t, start, line[0])
	assert.Equal(t, end, line[50])
	assert.InDelta(t, 50, line[25].X, eps)
	assert.InDelta(t, 0, line[25].Y, eps)

	quad := SampleCurve(start, end, []Point{{50, 100}}, 50)
	require.Len(t, quad, 51)
	assert.Equal(t, start, quad[0])
	assert.Equal(t, end, quad[50])
	assert.InDelta(t, 50, quad[25].Y, eps)

	cubic := SampleCurve(start, end, []Point{{0, 100}, {100, 100}}, 0)
	require.Len(t, cubic, DefaultSegments+1)
	assert.InDelta(t, 75, cubic[25].Y, eps)
}

func TestPointAtMatchesSamples(t *testing.T) {
	start, end := Pt(10, 10), Pt(200, 60)
	controls := []Point{{40, 200}, {160, -80}}
	samples := SampleCurve(start, end, controls, 10)
	for i, s := range samples {
		p := PointAt(start, end, controls, float64(i)/10)
		assert.InDelta(t, s.X, p.X, 1e-6)
		assert.InDelta(t, s.Y, p.Y, 1e-6)
	}
	assert.Equal(t, start, PointAt(start, end, controls, -1))
	assert.Equal(t, end, PointAt(start, end, controls, 2))
}

func TestTangentAt(t *testing.T) {
	tan := TangentAt(Pt(0, 0), Pt(100, 0), []Point{{50, 50}}, 1)
	assert.Greater(t, tan.X, 0.0)
	assert.Less(t, tan.Y, 0.0)
}

func TestControlPointsFor(t *testing.T) {
	assert.Nil(t, ControlPointsFor(Pt(0, 0), Pt(1, 1), []Point{{3, 3}}, false))
	assert.Len(t, ControlPointsFor(Pt(0, 0), Pt(1, 1), nil, true), 1)
	got := ControlPointsFor(Pt(0, 0), Pt(1, 1), []Point{{1, 1}, {2, 2}, {3, 3}}, true)
	assert.Len(t, got, 2)
}

func TestIsDegenerate(t *testing.T) {
	assert.True(t, IsDegenerate(Pt(10, 10), Pt(10.2, 10.2)))
	assert.False(t, IsDegenerate(Pt(10, 10), Pt(11, 10)))
}

func TestArrowPath(t *testing.T) {
	pts := []Point{{0, 0}, {50, 50}, {100, 0}}
	assert.Equal(t, pts, ArrowPath(pts, nil, false, 0))
	curved := ArrowPath(pts, nil, true, 8)
	assert.Len(t, curved, 9)
}

func TestRectUnionAndBounds(t *testing.T) {
	r := R(10, 10, 5, 5).Union(R(0, 20, 2, 2))
	assert.Equal(t, R(0, 10, 15, 12), r)
	assert.Equal(t, R(0, 0, 15, 15), Rect{}.Union(R(10, 10, 5, 5)), "a zero rect at the origin is a point")
	assert.True(t, r.Contains(Pt(1, 11)))
	assert.Equal(t, R(-5, 0, 15, 8), BoundsOf(Pt(0, 0), Pt(10, 8), Pt(-5, 3)))
	assert.True(t, Rect{}.Empty())
}

func TestRotate(t *testing.T) {
	p := Rotate(Pt(10, 0), Pt(0, 0), 90)
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, 10, p.Y, eps)
}
