package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"codesnap/geometry"
	"codesnap/snap"
)

const (
	chromeHeight  = 36
	chromeDotSize = 6
	tabWidth      = 4
)

var trafficLights = []string{"#ff5f56", "#ffbd2e", "#27c93f"}

func (r *Renderer) drawCode(dc *gg.Context, el *snap.Element) {
	p := el.Code
	w, h := el.Width, el.Height

	if p.Shadow.Enabled && p.Shadow.Opacity > 0 {
		drawShadow(dc, p.Shadow, w, h, p.BorderRadius)
	}

	bg, fg := p.Background, ""
	if th, ok := r.tokenizer.(Themer); ok {
		if bg == "" {
			bg = th.Background(p.Theme)
		}
		fg = th.Foreground(p.Theme)
	}
	dc.DrawRoundedRectangle(0, 0, w, h, p.BorderRadius)
	dc.SetColor(parseColor(bg, color.NRGBA{R: 0x28, G: 0x2a, B: 0x36, A: 0xff}))
	dc.FillPreserve()
	dc.Clip()
	defer dc.ResetClip()

	top := p.Padding
	if p.WindowControls || p.Title != "" {
		if p.WindowControls {
			for i, c := range trafficLights {
				dc.DrawCircle(p.Padding+chromeDotSize+float64(i)*20, chromeHeight/2+4, chromeDotSize)
				dc.SetColor(parseColor(c, color.White))
				dc.Fill()
			}
		}
		if p.Title != "" {
			if face, err := r.face(false, false, false, 13); err == nil {
				dc.SetFontFace(face)
				dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 150})
				dc.DrawStringAnchored(p.Title, w/2, chromeHeight/2+4, 0.5, 0.35)
			}
		}
		top += chromeHeight
	}

	lines, err := r.tokenizer.Tokenize(strings.ReplaceAll(p.Code, "\t", strings.Repeat(" ", tabWidth)), p.Language, p.Theme)
	if err != nil {
		r.log.Debug("highlighting failed, drawing plain code", "id", el.ID, "err", err)
		lines, _ = Plain{}.Tokenize(p.Code, "", "")
	}
	lineH := p.FontSize * p.LineHeight
	face, err := r.face(true, false, false, p.FontSize)
	if err != nil {
		return
	}
	dc.SetFontFace(face)

	left := p.Padding
	if p.ShowLineNumbers {
		digits := len(strconv.Itoa(len(lines)))
		gw, _ := dc.MeasureString(strings.Repeat("0", digits))
		for i := range lines {
			dc.SetColor(color.NRGBA{R: 0x62, G: 0x72, B: 0xa4, A: 0xff})
			dc.DrawStringAnchored(strconv.Itoa(i+1), left+gw, top+float64(i)*lineH+lineH/2, 1, 0.35)
		}
		left += gw + 16
	}

	highlighted := make(map[int]bool, len(p.Highlights))
	for _, n := range p.Highlights {
		highlighted[n] = true
	}
	defaultFG := parseColor(fg, color.NRGBA{R: 0xf8, G: 0xf8, B: 0xf2, A: 0xff})
	for i, line := range lines {
		y := top + float64(i)*lineH
		if highlighted[i+1] {
			dc.DrawRectangle(0, y, w, lineH)
			dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 20})
			dc.Fill()
		}
		x := left
		for _, tok := range line {
			if tok.Bold || tok.Italic {
				if f, err := r.face(true, tok.Bold, tok.Italic, p.FontSize); err == nil {
					dc.SetFontFace(f)
				}
			}
			dc.SetColor(parseColor(tok.Color, defaultFG))
			dc.DrawStringAnchored(tok.Text, x, y+lineH/2, 0, 0.35)
			tw, _ := dc.MeasureString(tok.Text)
			x += tw
			if tok.Bold || tok.Italic {
				dc.SetFontFace(face)
			}
		}
	}
}

// drawShadow approximates a blurred drop shadow with stacked translucent
// rounded rectangles.
func drawShadow(dc *gg.Context, s snap.Shadow, w, h, radius float64) {
	const steps = 8
	base := parseColor(s.Color, color.Black)
	for i := steps; i >= 1; i-- {
		grow := s.Blur * float64(i) / steps / 2
		dc.DrawRoundedRectangle(s.OffsetX-grow, s.OffsetY-grow, w+2*grow, h+2*grow, radius+grow)
		dc.SetColor(withOpacity(base, s.Opacity/steps))
		dc.Fill()
	}
}

func (r *Renderer) drawText(dc *gg.Context, el *snap.Element) {
	p := el.Text
	face, err := r.face(isMono(p.FontFamily), p.FontWeight >= 600, p.Italic, p.FontSize)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	lines := strings.Split(p.Text, "\n")
	tw, th := r.MeasureText(p)
	w := math.Max(el.Width, tw)
	h := math.Max(el.Height, th)

	if p.Background != "" {
		dc.DrawRoundedRectangle(0, 0, w, h, math.Min(8, h/2))
		dc.SetColor(parseColor(p.Background, color.Transparent))
		dc.Fill()
	}
	x, ax := p.Padding, 0.0
	switch p.Align {
	case "center":
		x, ax = w/2, 0.5
	case "right":
		x, ax = w-p.Padding, 1
	}
	lineH := p.FontSize * textLineHeight
	dc.SetColor(parseColor(p.Color, color.White))
	for i, line := range lines {
		dc.DrawStringAnchored(line, x, p.Padding+float64(i)*lineH+lineH/2, ax, 0.35)
	}
}

const textLineHeight = 1.2

// MeasureText returns the box a text element needs for its content,
// padding included.
func (r *Renderer) MeasureText(p *snap.TextProps) (w, h float64) {
	if p == nil {
		return 0, 0
	}
	face, err := r.face(isMono(p.FontFamily), p.FontWeight >= 600, p.Italic, p.FontSize)
	if err != nil {
		return 0, 0
	}
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	lines := strings.Split(p.Text, "\n")
	for _, line := range lines {
		lw, _ := dc.MeasureString(line)
		w = math.Max(w, lw)
	}
	return w + 2*p.Padding, float64(len(lines))*p.FontSize*textLineHeight + 2*p.Padding
}

func (r *Renderer) drawArrow(dc *gg.Context, el *snap.Element) {
	p := el.Arrow
	pts := el.Points
	start, end := pts[0], pts[len(pts)-1]
	col := parseColor(p.Color, color.White)
	dc.SetColor(col)

	if len(p.ControlPoints) == 0 && geometry.IsDegenerate(start, end) {
		dc.DrawCircle(start.X, start.Y, math.Max(1.5, p.StrokeWidth/2))
		dc.Fill()
		return
	}

	path := geometry.ArrowPath(pts, p.ControlPoints, p.Curved(), geometry.DefaultSegments)
	dc.SetLineWidth(p.StrokeWidth)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	if p.Dashed {
		dc.SetDash(p.StrokeWidth*3, p.StrokeWidth*2)
	}
	dc.MoveTo(path[0].X, path[0].Y)
	for _, pt := range path[1:] {
		dc.LineTo(pt.X, pt.Y)
	}
	dc.Stroke()
	dc.SetDash()

	size := math.Max(10, p.StrokeWidth*3)
	n := len(path)
	drawHead(dc, p.Head, path[n-1], path[n-1].Sub(path[n-2]), size)
	drawHead(dc, p.Tail, path[0], path[0].Sub(path[1]), size)

	if p.Label != "" {
		controls := geometry.ControlPointsFor(start, end, p.ControlPoints, p.Curved())
		mid := geometry.PointAt(start, end, controls, 0.5)
		if len(pts) > 2 && !p.Curved() {
			mid = pts[len(pts)/2]
		}
		r.drawLabel(dc, p.Label, mid, col)
	}
}

// drawHead draws an arrow head with its tip at tip pointing along dir.
func drawHead(dc *gg.Context, head snap.ArrowHead, tip, dir geometry.Point, size float64) {
	l := dir.Len()
	if head == snap.HeadNone || head == "" || l < 0.1 {
		return
	}
	u := dir.Mul(1 / l)
	perp := geometry.Pt(-u.Y, u.X)
	base := tip.Sub(u.Mul(size))
	left := base.Add(perp.Mul(size / 2))
	right := base.Sub(perp.Mul(size / 2))

	dc.MoveTo(left.X, left.Y)
	dc.LineTo(tip.X, tip.Y)
	dc.LineTo(right.X, right.Y)
	if head == snap.HeadOpen {
		dc.Stroke()
		return
	}
	dc.ClosePath()
	dc.Fill()
}

func (r *Renderer) drawLabel(dc *gg.Context, label string, at geometry.Point, col color.Color) {
	face, err := r.face(false, true, false, 14)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	w, h := dc.MeasureString(label)
	const pad = 6
	dc.DrawRoundedRectangle(at.X-w/2-pad, at.Y-h/2-pad, w+2*pad, h+2*pad, (h+2*pad)/2)
	dc.SetColor(color.NRGBA{A: 200})
	dc.Fill()
	dc.SetColor(col)
	dc.DrawStringAnchored(label, at.X, at.Y, 0.5, 0.35)
}

func drawLine(dc *gg.Context, el *snap.Element) {
	p := el.Shape
	dc.SetColor(withOpacity(parseColor(p.Stroke, color.White), p.Opacity))
	dc.SetLineWidth(p.StrokeWidth)
	dc.SetLineCap(gg.LineCapRound)
	dc.MoveTo(el.Points[0].X, el.Points[0].Y)
	for _, pt := range el.Points[1:] {
		dc.LineTo(pt.X, pt.Y)
	}
	dc.Stroke()
}

func drawShape(dc *gg.Context, el *snap.Element) {
	p := el.Shape
	w, h := el.Width, el.Height
	switch p.Kind {
	case snap.ShapeEllipse:
		dc.DrawEllipse(w/2, h/2, w/2, h/2)
	case snap.ShapePolygon:
		tracePolygon(dc, polygonPoints(p.Sides, w, h, 1))
	case snap.ShapeStar:
		tracePolygon(dc, polygonPoints(p.Sides, w, h, p.InnerRatio))
	default:
		dc.DrawRoundedRectangle(0, 0, w, h, math.Min(p.CornerRadius, math.Min(w, h)/2))
	}
	if p.Fill != "" {
		dc.SetColor(withOpacity(parseColor(p.Fill, color.Transparent), p.Opacity))
		dc.FillPreserve()
	}
	if p.Stroke != "" && p.StrokeWidth > 0 {
		dc.SetColor(withOpacity(parseColor(p.Stroke, color.Transparent), p.Opacity))
		dc.SetLineWidth(p.StrokeWidth)
		dc.StrokePreserve()
	}
	dc.ClearPath()
}

// polygonPoints lays out a regular polygon (inner == 1) or a star with
// sides points inside the w x h box, first vertex at the top.
func polygonPoints(sides int, w, h, inner float64) []geometry.Point {
	n := sides
	step := 1
	if inner < 1 {
		n, step = sides*2, 2
	}
	pts := make([]geometry.Point, 0, n)
	for i := 0; i < n; i++ {
		a := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		rx, ry := w/2, h/2
		if step == 2 && i%2 == 1 {
			rx, ry = rx*inner, ry*inner
		}
		pts = append(pts, geometry.Pt(w/2+rx*math.Cos(a), h/2+ry*math.Sin(a)))
	}
	return pts
}

func tracePolygon(dc *gg.Context, pts []geometry.Point) {
	dc.NewSubPath()
	for _, p := range pts {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
}

func (r *Renderer) drawImage(dc *gg.Context, el *snap.Element) {
	p := el.Image
	img, err := decodeDataURL(p.Src)
	if err != nil {
		r.log.Debug("drawing image placeholder", "id", el.ID, "err", err)
		dc.DrawRoundedRectangle(0, 0, el.Width, el.Height, p.CornerRadius)
		dc.SetColor(color.NRGBA{R: 128, G: 128, B: 128, A: 80})
		dc.Fill()
		return
	}
	if p.CornerRadius > 0 {
		dc.DrawRoundedRectangle(0, 0, el.Width, el.Height, p.CornerRadius)
		dc.Clip()
		defer dc.ResetClip()
	}
	drawImageScaled(dc, img, 0, 0, el.Width, el.Height, p.Opacity)
}

// drawImageScaled resamples img to w x h canvas units and draws it at (x, y)
// with the given opacity.
func drawImageScaled(dc *gg.Context, img image.Image, x, y, w, h, opacity float64) {
	pw, ph := int(math.Ceil(w)), int(math.Ceil(h))
	if pw <= 0 || ph <= 0 {
		return
	}
	dst := image.NewNRGBA(image.Rect(0, 0, pw, ph))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	if opacity < 1 {
		faded := image.NewNRGBA(dst.Bounds())
		mask := image.NewUniform(color.Alpha{A: uint8(255 * math.Max(0, opacity))})
		draw.DrawMask(faded, faded.Bounds(), dst, image.Point{}, mask, image.Point{}, draw.Over)
		dst = faded
	}
	dc.Push()
	dc.Translate(x, y)
	dc.DrawImage(dst, 0, 0)
	dc.Pop()
}

var errNotDataURL = errors.New("not an inline data URL")

// decodeDataURL decodes base64 or percent-encoded image data URLs. Remote
// URLs are never fetched.
func decodeDataURL(src string) (image.Image, error) {
	if !strings.HasPrefix(src, "data:") {
		return nil, errNotDataURL
	}
	header, body, ok := strings.Cut(src, ",")
	if !ok {
		return nil, errNotDataURL
	}
	var data []byte
	if strings.HasSuffix(header, ";base64") {
		var err error
		data, err = base64.StdEncoding.DecodeString(body)
		if err != nil {
			if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(body, "=")); err != nil {
				return nil, fmt.Errorf("decode image data: %w", err)
			}
		}
	} else {
		s, err := url.PathUnescape(body)
		if err != nil {
			return nil, fmt.Errorf("decode image data: %w", err)
		}
		data = []byte(s)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
