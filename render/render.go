// Package render rasterizes a snap document with fogleman/gg. It is the
// export adapter: elements are drawn in index order, hidden ones skipped,
// groups drawn through a pushed transform.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"codesnap/snap"
)

type Options struct {
	// Scale multiplies the canvas size of the output image. Defaults to 1.
	Scale float64
	// Tokenizer highlights code blocks. Defaults to Chroma.
	Tokenizer Tokenizer
	Logger    *slog.Logger
}

// Renderer draws documents. A Renderer caches font faces and is not safe for
// concurrent use.
type Renderer struct {
	scale     float64
	tokenizer Tokenizer
	log       *slog.Logger
	faces     map[faceKey]font.Face
}

func New(opts Options) *Renderer {
	r := &Renderer{
		scale:     opts.Scale,
		tokenizer: opts.Tokenizer,
		log:       opts.Logger,
		faces:     make(map[faceKey]font.Face),
	}
	if r.scale <= 0 || math.IsNaN(r.scale) || math.IsInf(r.scale, 0) {
		r.scale = 1
	}
	if r.tokenizer == nil {
		r.tokenizer = Chroma{}
	}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}
	return r
}

// Size is the output size in pixels for s.
func (r *Renderer) Size(s *snap.Snap) (int, int) {
	return int(math.Round(float64(s.Meta.Width) * r.scale)), int(math.Round(float64(s.Meta.Height) * r.scale))
}

// Image renders s into a new image.
func (r *Renderer) Image(s *snap.Snap) image.Image {
	w, h := r.Size(s)
	dc := gg.NewContext(w, h)
	r.Draw(dc, s)
	return dc.Image()
}

// WritePNG renders s and encodes it as PNG to w.
func (r *Renderer) WritePNG(w io.Writer, s *snap.Snap) error {
	width, height := r.Size(s)
	dc := gg.NewContext(width, height)
	r.Draw(dc, s)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNG renders s to a PNG file.
func (r *Renderer) ExportPNG(path string, s *snap.Snap) error {
	width, height := r.Size(s)
	dc := gg.NewContext(width, height)
	r.Draw(dc, s)
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	r.log.Info("exported png", "path", path, "width", width, "height", height, "elements", len(s.Elements))
	return nil
}

// Draw paints s onto dc, scaled by the renderer's scale.
func (r *Renderer) Draw(dc *gg.Context, s *snap.Snap) {
	dc.Push()
	defer dc.Pop()
	dc.Scale(r.scale, r.scale)

	w, h := float64(s.Meta.Width), float64(s.Meta.Height)
	r.drawBackground(dc, s.Background, w, h)
	for i := range s.Elements {
		r.drawElement(dc, &s.Elements[i])
	}
	if strip := s.Background.BrandStrip; strip != nil && strip.Enabled {
		r.drawBrandStrip(dc, strip, w, h)
	}
	if b := s.Background.Branding; b != nil && b.Enabled {
		r.drawBranding(dc, b, w, h)
	}
}

func (r *Renderer) drawBackground(dc *gg.Context, bg snap.Background, w, h float64) {
	dc.DrawRectangle(0, 0, w, h)
	if bg.Type == snap.BackgroundGradient {
		// Patterns are sampled in device space, not through the transform.
		dc.SetFillStyle(linearGradient(bg.Gradient, w*r.scale, h*r.scale))
	} else {
		dc.SetColor(parseColor(bg.Solid.Color, color.Black))
	}
	dc.Fill()
}

// linearGradient follows CSS angles: 0 points up, 90 right, and the line is
// long enough for the corners to get the end colors.
func linearGradient(g snap.Gradient, w, h float64) gg.Gradient {
	rad := g.Angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(w*dx) + math.Abs(h*dy)) / 2
	cx, cy := w/2, h/2
	grad := gg.NewLinearGradient(cx-dx*half, cy-dy*half, cx+dx*half, cy+dy*half)
	grad.AddColorStop(0, parseColor(g.From, color.Black))
	grad.AddColorStop(1, parseColor(g.To, color.Black))
	return grad
}

func (r *Renderer) drawBrandStrip(dc *gg.Context, strip *snap.BrandStrip, w, h float64) {
	height := strip.Height
	if height <= 0 {
		height = 8
	}
	dc.DrawRectangle(0, h-height, w, height)
	dc.SetColor(parseColor(strip.Color, color.White))
	dc.Fill()
	if strip.Text == "" || height < 12 {
		return
	}
	face, err := r.face(false, true, false, height*0.5)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(strip.Text, w/2, h-height/2, 0.5, 0.35)
}

const brandingMargin = 32

func (r *Renderer) drawBranding(dc *gg.Context, b *snap.Branding, w, h float64) {
	name, err := r.face(false, true, false, 20)
	if err != nil {
		return
	}
	handle, err := r.face(false, false, false, 16)
	if err != nil {
		return
	}
	dc.SetFontFace(name)
	nameW, _ := dc.MeasureString(b.Name)
	dc.SetFontFace(handle)
	handleW, _ := dc.MeasureString(b.Handle)

	avatar := 0.0
	var img image.Image
	if b.ShowAvatar && b.Avatar != "" {
		if img, err = decodeDataURL(b.Avatar); err == nil {
			avatar = 44
		} else {
			r.log.Debug("branding avatar not drawn", "err", err)
		}
	}
	gap := 0.0
	if avatar > 0 {
		gap = 12
	}
	blockW := avatar + gap + math.Max(nameW, handleW)
	blockH := 44.0

	x, y := float64(brandingMargin), h-brandingMargin-blockH
	switch b.Position {
	case "top-left":
		y = brandingMargin
	case "top-right":
		x, y = w-brandingMargin-blockW, brandingMargin
	case "bottom-right", "":
		x = w - brandingMargin - blockW
	}

	if img != nil {
		dc.Push()
		dc.DrawCircle(x+avatar/2, y+avatar/2, avatar/2)
		dc.Clip()
		drawImageScaled(dc, img, x, y, avatar, avatar, 1)
		dc.Pop()
	}
	tx := x + avatar + gap
	dc.SetColor(color.White)
	dc.SetFontFace(name)
	dc.DrawStringAnchored(b.Name, tx, y, 0, 1)
	if b.Handle != "" {
		dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 170})
		dc.SetFontFace(handle)
		dc.DrawStringAnchored(b.Handle, tx, y+blockH/2, 0, 1)
	}
}

// drawElement paints one element in its parent's coordinate space.
func (r *Renderer) drawElement(dc *gg.Context, el *snap.Element) {
	if !el.Visible {
		return
	}
	dc.Push()
	defer dc.Pop()

	if el.UsesPoints() {
		if el.Rotation != 0 {
			dc.RotateAbout(gg.Radians(el.Rotation), el.X, el.Y)
		}
		switch el.Type {
		case snap.TypeArrow:
			r.drawArrow(dc, el)
		case snap.TypeShape:
			drawLine(dc, el)
		}
		return
	}

	dc.Translate(el.X, el.Y)
	if el.Rotation != 0 {
		dc.Rotate(gg.Radians(el.Rotation))
	}
	switch el.Type {
	case snap.TypeCode:
		r.drawCode(dc, el)
	case snap.TypeText:
		r.drawText(dc, el)
	case snap.TypeShape:
		drawShape(dc, el)
	case snap.TypeImage:
		r.drawImage(dc, el)
	case snap.TypeGroup:
		for i := range el.Elements {
			r.drawElement(dc, &el.Elements[i])
		}
	default:
		r.log.Debug("skipping element of unknown type", "id", el.ID, "type", el.Type)
	}
}
