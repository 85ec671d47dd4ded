package snap

import (
	"codesnap/geometry"

	"github.com/google/uuid"
)

// NewID produces element ids. Tests may swap it for a deterministic source.
var NewID = uuid.NewString

const (
	DefaultCodeWidth  = 600
	DefaultCodeHeight = 300
	DefaultShapeSize  = 200
	defaultArrowDX    = 150
	defaultArrowDY    = 80
)

func defaultCodeProps() *CodeProps {
	return &CodeProps{
		Code:           "func main() {\n\tfmt.Println(\"hello, world\")\n}",
		Language:       "go",
		Theme:          "dracula",
		FontFamily:     "JetBrains Mono",
		FontSize:       14,
		LineHeight:     1.5,
		WindowControls: true,
		Padding:        24,
		BorderRadius:   12,
		Highlights:     []int{},
		Shadow: Shadow{
			Enabled: true,
			Color:   "#000000",
			Blur:    40,
			OffsetY: 20,
			Opacity: 0.45,
		},
	}
}

func defaultTextProps() *TextProps {
	return &TextProps{
		Text:       "Double-click to edit",
		FontFamily: "Inter",
		FontSize:   32,
		FontWeight: 600,
		Color:      "#ffffff",
		Align:      "left",
	}
}

func defaultArrowProps() *ArrowProps {
	return &ArrowProps{
		Style:       ArrowStraight,
		Color:       "#ffffff",
		StrokeWidth: 3,
		Head:        HeadFilled,
		Tail:        HeadNone,
	}
}

func defaultShapeProps(kind ShapeKind) *ShapeProps {
	p := &ShapeProps{
		Kind:        kind,
		Fill:        "#7c3aed",
		Stroke:      "#ffffff",
		StrokeWidth: 2,
		Opacity:     1,
	}
	switch kind {
	case ShapeRectangle:
		p.CornerRadius = 8
	case ShapePolygon:
		p.Sides = 6
	case ShapeStar:
		p.Sides = 5
		p.InnerRatio = 0.5
	case ShapeLine:
		p.Fill = ""
		p.StrokeWidth = 3
	}
	return p
}

func newElement(t ElementType, x, y float64) Element {
	return Element{
		ID:      NewID(),
		Type:    t,
		X:       x,
		Y:       y,
		Visible: true,
	}
}

// NewCodeElement returns a 600x300 code block anchored at (x, y).
func NewCodeElement(x, y float64) Element {
	e := newElement(TypeCode, x, y)
	e.Width, e.Height = DefaultCodeWidth, DefaultCodeHeight
	e.Code = defaultCodeProps()
	return e
}

// NewTextElement returns a placeholder text. Its box stays 0x0 until the
// renderer measures it.
func NewTextElement(x, y float64) Element {
	e := newElement(TypeText, x, y)
	e.Text = defaultTextProps()
	return e
}

// NewArrowElement returns a straight arrow from (x, y) to (x+150, y+80).
func NewArrowElement(x, y float64) Element {
	e := newElement(TypeArrow, x, y)
	e.Points = []geometry.Point{{X: x, Y: y}, {X: x + defaultArrowDX, Y: y + defaultArrowDY}}
	e.Arrow = defaultArrowProps()
	return e
}

// NewShapeElement returns a shape of the given kind. Lines get two points
// instead of a box.
func NewShapeElement(kind ShapeKind, x, y float64) Element {
	e := newElement(TypeShape, x, y)
	e.Shape = defaultShapeProps(kind)
	if kind == ShapeLine {
		e.Points = []geometry.Point{{X: x, Y: y}, {X: x + DefaultShapeSize, Y: y}}
		return e
	}
	e.Width, e.Height = DefaultShapeSize, DefaultShapeSize*0.6
	if kind != ShapeRectangle {
		e.Height = DefaultShapeSize
	}
	return e
}

// NewImageElement returns an image of the given size; src is a URL or an
// inline data URL.
func NewImageElement(x, y float64, src string, width, height float64) Element {
	e := newElement(TypeImage, x, y)
	e.Width, e.Height = width, height
	e.Image = &ImageProps{Src: src, Opacity: 1}
	NormalizeElement(&e)
	return e
}
