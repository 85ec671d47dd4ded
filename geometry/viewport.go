package geometry

import "math"

const (
	MinZoom = 0.1
	MaxZoom = 8.0
)

// Viewport maps canvas space onto the screen. Offset is the screen position
// of the canvas origin, Scale the number of screen pixels per canvas pixel.
//
// ScreenToCanvas and CanvasToScreen are the only conversions; callers must not
// redo the arithmetic inline.
type Viewport struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// NewViewport returns an identity viewport.
func NewViewport() Viewport {
	return Viewport{Scale: 1}
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 || math.IsNaN(v.Scale) || math.IsInf(v.Scale, 0) {
		return 1
	}
	return v.Scale
}

// ScreenToCanvas converts a screen coordinate into canvas space.
func (v Viewport) ScreenToCanvas(p Point) Point {
	s := v.scale()
	return Point{
		X: (p.X - v.OffsetX) / s,
		Y: (p.Y - v.OffsetY) / s,
	}
}

// CanvasToScreen converts a canvas coordinate into screen space.
func (v Viewport) CanvasToScreen(p Point) Point {
	s := v.scale()
	return Point{
		X: p.X*s + v.OffsetX,
		Y: p.Y*s + v.OffsetY,
	}
}

// ScreenDelta converts a screen-space drag distance into canvas units.
func (v Viewport) ScreenDelta(dx, dy float64) Point {
	return v.ScreenToCanvas(Point{dx + v.OffsetX, dy + v.OffsetY})
}

// PanBy moves the canvas by a screen pixel offset.
func (v *Viewport) PanBy(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// SetScale sets the zoom level, clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetScale(scale float64) {
	v.Scale = ClampZoom(scale)
}

// ZoomAt zooms by factor while keeping the canvas point under screen fixed.
// factor > 1 zooms in, factor < 1 zooms out.
func (v *Viewport) ZoomAt(screen Point, factor float64) {
	if factor <= 0 {
		return
	}
	anchor := v.ScreenToCanvas(screen)
	v.Scale = ClampZoom(v.scale() * factor)
	v.OffsetX = screen.X - anchor.X*v.Scale
	v.OffsetY = screen.Y - anchor.Y*v.Scale
}

// Fit returns a viewport that centers a canvas of the given size inside the
// screen with padding on every side, never zooming past 1:1.
func Fit(canvasW, canvasH, screenW, screenH, padding float64) Viewport {
	availW := screenW - 2*padding
	availH := screenH - 2*padding
	if canvasW <= 0 || canvasH <= 0 || availW <= 0 || availH <= 0 {
		return NewViewport()
	}
	scale := ClampZoom(math.Min(1, math.Min(availW/canvasW, availH/canvasH)))
	return Viewport{
		OffsetX: (screenW - canvasW*scale) / 2,
		OffsetY: (screenH - canvasH*scale) / 2,
		Scale:   scale,
	}
}

// ClampZoom bounds a zoom factor to the supported range.
func ClampZoom(scale float64) float64 {
	if math.IsNaN(scale) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, scale))
}
