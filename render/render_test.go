package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codesnap/geometry"
	"codesnap/snap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func hex(s string) color.NRGBA {
	return rgba(parseColor(s, color.Black))
}

func smallSnap() *snap.Snap {
	s := snap.NewSnap()
	s.Meta.Width, s.Meta.Height = 640, 480
	snap.Normalize(s)
	return s
}

func TestImageSizeFollowsScale(t *testing.T) {
	s := snap.NewSnap()
	img := New(Options{Scale: 0.25}).Image(s)
	assert.Equal(t, image.Rect(0, 0, 480, 270), img.Bounds())

	w, h := New(Options{}).Size(s)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestSolidBackground(t *testing.T) {
	s := smallSnap()
	img := New(Options{}).Image(s)
	assert.Equal(t, hex("#1e1e2e"), rgba(img.At(0, 0)))
	assert.Equal(t, hex("#1e1e2e"), rgba(img.At(639, 479)))
}

func TestGradientBackground(t *testing.T) {
	s := smallSnap()
	s.Background.Type = snap.BackgroundGradient
	s.Background.Gradient = snap.Gradient{From: "#000000", To: "#ffffff", Angle: 135}
	img := New(Options{}).Image(s)

	start := rgba(img.At(0, 0))
	end := rgba(img.At(639, 479))
	assert.Less(t, start.R, uint8(10))
	assert.Greater(t, end.R, uint8(245))
}

func TestShapesAndVisibility(t *testing.T) {
	s := smallSnap()
	box := snap.NewShapeElement(snap.ShapeRectangle, 100, 100)
	hidden := snap.NewShapeElement(snap.ShapeRectangle, 400, 100)
	hidden.Shape.Fill = "#00ff00"
	hidden.Visible = false
	s.Elements = append(s.Elements, box, hidden)

	img := New(Options{}).Image(s)
	assert.Equal(t, hex("#7c3aed"), rgba(img.At(200, 160)))
	assert.Equal(t, hex("#1e1e2e"), rgba(img.At(500, 160)))
}

func TestZOrder(t *testing.T) {
	s := smallSnap()
	under := snap.NewShapeElement(snap.ShapeRectangle, 100, 100)
	under.Shape.Fill = "#ff0000"
	over := snap.NewShapeElement(snap.ShapeRectangle, 150, 150)
	over.Shape.Fill = "#0000ff"
	s.Elements = append(s.Elements, under, over)

	img := New(Options{}).Image(s)
	assert.Equal(t, hex("#0000ff"), rgba(img.At(200, 200)))
	assert.Equal(t, hex("#ff0000"), rgba(img.At(120, 120)))
}

func TestGroupChildrenAreRelative(t *testing.T) {
	s := smallSnap()
	child := snap.NewShapeElement(snap.ShapeRectangle, 10, 10)
	child.Shape.Fill = "#00ff00"
	s.Elements = append(s.Elements, snap.Element{
		ID: "g", Type: snap.TypeGroup, X: 300, Y: 200, Width: 220, Height: 140,
		Visible: true, Group: &snap.GroupProps{}, Elements: []snap.Element{child},
	})
	img := New(Options{}).Image(s)
	assert.Equal(t, hex("#00ff00"), rgba(img.At(400, 260)))
	assert.Equal(t, hex("#1e1e2e"), rgba(img.At(100, 100)))
}

func TestDegenerateArrowIsADot(t *testing.T) {
	s := smallSnap()
	arrow := snap.NewArrowElement(100, 100)
	arrow.Points = []geometry.Point{{X: 100, Y: 100}, {X: 100.2, Y: 100}}
	s.Elements = append(s.Elements, arrow)

	img := New(Options{}).Image(s)
	assert.Equal(t, hex("#ffffff"), rgba(img.At(100, 100)))
	assert.Equal(t, hex("#1e1e2e"), rgba(img.At(120, 100)))
}

func TestArrowStroke(t *testing.T) {
	s := smallSnap()
	arrow := snap.NewArrowElement(50, 300)
	arrow.Points = []geometry.Point{{X: 50, Y: 300}, {X: 450, Y: 300}}
	arrow.Arrow.StrokeWidth = 6
	s.Elements = append(s.Elements, arrow)

	img := New(Options{}).Image(s)
	assert.Equal(t, hex("#ffffff"), rgba(img.At(250, 300)))
	assert.Equal(t, hex("#1e1e2e"), rgba(img.At(250, 320)))
}

func TestCodeBlockUsesThemeBackground(t *testing.T) {
	s := smallSnap()
	s.Elements = append(s.Elements, snap.NewCodeElement(10, 10))
	img := New(Options{}).Image(s)

	want := hex(Chroma{}.Background("dracula"))
	assert.Equal(t, want, rgba(img.At(310, 300)))
}

func TestImageFromDataURL(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	s := smallSnap()
	s.Elements = append(s.Elements, snap.NewImageElement(10, 10, url, 40, 40))
	img := New(Options{}).Image(s)
	assert.Equal(t, hex("#ff0000"), rgba(img.At(30, 30)))

	_, err := decodeDataURL("https://example.com/a.png")
	assert.ErrorIs(t, err, errNotDataURL)
	_, err = decodeDataURL("data:image/png;base64,%%%")
	assert.Error(t, err)
}

func TestBrandStrip(t *testing.T) {
	s := smallSnap()
	s.Background.BrandStrip = &snap.BrandStrip{Enabled: true, Color: "#ff0000", Height: 20}
	img := New(Options{}).Image(s)
	assert.Equal(t, hex("#ff0000"), rgba(img.At(5, 475)))
	assert.Equal(t, hex("#1e1e2e"), rgba(img.At(5, 440)))
}

func TestWriteAndExportPNG(t *testing.T) {
	s := smallSnap()
	s.Elements = append(s.Elements, snap.NewTextElement(20, 20), snap.NewShapeElement(snap.ShapeStar, 200, 200))
	r := New(Options{Scale: 0.5, Tokenizer: Plain{}})

	var buf bytes.Buffer
	require.NoError(t, r.WritePNG(&buf, s))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, r.ExportPNG(path, s))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestMeasureText(t *testing.T) {
	r := New(Options{})
	short := &snap.TextProps{Text: "Hi", FontFamily: "Inter", FontSize: 32, FontWeight: 600}
	long := *short
	long.Text = "Hello, world"
	multi := *short
	multi.Text = "Hi\nthere"

	sw, sh := r.MeasureText(short)
	lw, _ := r.MeasureText(&long)
	_, mh := r.MeasureText(&multi)
	assert.Greater(t, sw, 0.0)
	assert.Greater(t, lw, sw)
	assert.InDelta(t, 2*sh, mh, 1e-9)

	padded := *short
	padded.Padding = 10
	pw, _ := r.MeasureText(&padded)
	assert.InDelta(t, sw+20, pw, 1e-9)
}

func TestChromaTokenizer(t *testing.T) {
	lines, err := Chroma{}.Tokenize("package main\n\nfunc main() {}\n", "go", "dracula")
	require.NoError(t, err)
	require.Len(t, lines, 3)

	var first strings.Builder
	colored := false
	for _, tok := range lines[0] {
		first.WriteString(tok.Text)
		colored = colored || tok.Color != ""
	}
	assert.Equal(t, "package main", first.String())
	assert.True(t, colored)
	assert.Empty(t, lines[1])

	lines, err = Chroma{}.Tokenize("x = 1", "no-such-language", "no-such-theme")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestPlainTokenizer(t *testing.T) {
	lines, err := Plain{}.Tokenize("a\r\n\nb\n", "", "")
	require.NoError(t, err)
	assert.Equal(t, []Line{{{Text: "a"}}, {}, {{Text: "b"}}}, lines)
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}, parseColor("#f00", color.Black))
	assert.Equal(t, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x80}, parseColor("#12345680", color.Black))
	assert.Equal(t, color.NRGBA{}, parseColor("transparent", color.Black))
	assert.Equal(t, color.Black, parseColor("rgb(1,2,3)", color.Black))
	assert.Equal(t, color.Black, parseColor("#12", color.Black))

	half := rgba(withOpacity(color.White, 0.5))
	assert.Equal(t, uint8(127), half.A)
}

func TestPolygonPoints(t *testing.T) {
	hexagon := polygonPoints(6, 100, 100, 1)
	require.Len(t, hexagon, 6)
	assert.InDelta(t, 50, hexagon[0].X, 1e-9)
	assert.InDelta(t, 0, hexagon[0].Y, 1e-9)

	star := polygonPoints(5, 100, 100, 0.5)
	require.Len(t, star, 10)
	assert.InDelta(t, 25, geometry.Distance(star[1], geometry.Pt(50, 50)), 1e-9)
}
