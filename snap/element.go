package snap

import (
	"bytes"
	"encoding/json"

	"codesnap/geometry"
)

type ElementType string

const (
	TypeCode  ElementType = "code"
	TypeText  ElementType = "text"
	TypeArrow ElementType = "arrow"
	TypeShape ElementType = "shape"
	TypeImage ElementType = "image"
	TypeGroup ElementType = "group"
)

// Known reports whether t is one of the element types this package models.
func (t ElementType) Known() bool {
	switch t {
	case TypeCode, TypeText, TypeArrow, TypeShape, TypeImage, TypeGroup:
		return true
	}
	return false
}

// Element is one object on the canvas. Type selects the variant and which
// props pointer is set. Arrows and line shapes use Points instead of
// Width/Height; groups hold children in Elements with coordinates relative to
// the group origin. Rotation is in degrees around the element origin (X, Y).
type Element struct {
	ID       string
	Type     ElementType
	Name     string
	X        float64
	Y        float64
	Rotation float64
	Locked   bool
	Visible  bool

	Width  float64
	Height float64
	Points []geometry.Point

	Elements []Element

	Code  *CodeProps
	Text  *TextProps
	Arrow *ArrowProps
	Shape *ShapeProps
	Image *ImageProps
	Group *GroupProps

	// RawProps keeps the props of element types this version does not know
	// so they survive a load/save cycle.
	RawProps json.RawMessage
}

type Shadow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Opacity float64 `json:"opacity"`
}

type CodeProps struct {
	Code            string  `json:"code"`
	Language        string  `json:"language"`
	Theme           string  `json:"theme"`
	FontFamily      string  `json:"fontFamily"`
	FontSize        float64 `json:"fontSize"`
	LineHeight      float64 `json:"lineHeight"`
	Title           string  `json:"title"`
	ShowLineNumbers bool    `json:"showLineNumbers"`
	WindowControls  bool    `json:"windowControls"`
	Padding         float64 `json:"padding"`
	BorderRadius    float64 `json:"borderRadius"`
	Background      string  `json:"background,omitempty"`
	Highlights      []int   `json:"highlights"`
	Shadow          Shadow  `json:"shadow"`
}

type TextProps struct {
	Text       string  `json:"text"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	FontWeight int     `json:"fontWeight"`
	Italic     bool    `json:"italic,omitempty"`
	Color      string  `json:"color"`
	Align      string  `json:"align"`
	Background string  `json:"background,omitempty"`
	Padding    float64 `json:"padding,omitempty"`
}

type ArrowStyle string

const (
	ArrowStraight ArrowStyle = "straight"
	ArrowCurved   ArrowStyle = "curved"
)

type ArrowHead string

const (
	HeadFilled ArrowHead = "filled"
	HeadOpen   ArrowHead = "open"
	HeadNone   ArrowHead = "none"
)

type ArrowProps struct {
	Style         ArrowStyle       `json:"style"`
	Color         string           `json:"color"`
	StrokeWidth   float64          `json:"strokeWidth"`
	Head          ArrowHead        `json:"head"`
	Tail          ArrowHead        `json:"tail"`
	Dashed        bool             `json:"dashed,omitempty"`
	ControlPoints []geometry.Point `json:"controlPoints,omitempty"`
	Label         string           `json:"label,omitempty"`
}

// Curved reports whether the arrow is drawn as a bezier.
func (p *ArrowProps) Curved() bool {
	return p != nil && p.Style == ArrowCurved
}

type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeEllipse   ShapeKind = "ellipse"
	ShapeLine      ShapeKind = "line"
	ShapePolygon   ShapeKind = "polygon"
	ShapeStar      ShapeKind = "star"
)

type ShapeProps struct {
	Kind         ShapeKind `json:"kind"`
	Fill         string    `json:"fill"`
	Stroke       string    `json:"stroke"`
	StrokeWidth  float64   `json:"strokeWidth"`
	CornerRadius float64   `json:"cornerRadius,omitempty"`
	Sides        int       `json:"sides,omitempty"`
	InnerRatio   float64   `json:"innerRatio,omitempty"`
	Opacity      float64   `json:"opacity"`
}

type ImageProps struct {
	Src          string  `json:"src"`
	Opacity      float64 `json:"opacity"`
	CornerRadius float64 `json:"cornerRadius,omitempty"`
}

type GroupProps struct{}

// UsesPoints reports whether the element is positioned by Points rather than
// a Width/Height box.
func (e *Element) UsesPoints() bool {
	switch e.Type {
	case TypeArrow:
		return true
	case TypeShape:
		return e.Shape != nil && e.Shape.Kind == ShapeLine
	}
	return false
}

// Clone returns an independent deep copy of e, children included.
func (e Element) Clone() Element {
	out := e
	if e.Points != nil {
		out.Points = append([]geometry.Point(nil), e.Points...)
	}
	if e.Elements != nil {
		out.Elements = make([]Element, len(e.Elements))
		for i := range e.Elements {
			out.Elements[i] = e.Elements[i].Clone()
		}
	}
	if e.Code != nil {
		c := *e.Code
		if e.Code.Highlights != nil {
			c.Highlights = append([]int{}, e.Code.Highlights...)
		}
		out.Code = &c
	}
	if e.Text != nil {
		t := *e.Text
		out.Text = &t
	}
	if e.Arrow != nil {
		a := *e.Arrow
		if e.Arrow.ControlPoints != nil {
			a.ControlPoints = append([]geometry.Point(nil), e.Arrow.ControlPoints...)
		}
		out.Arrow = &a
	}
	if e.Shape != nil {
		s := *e.Shape
		out.Shape = &s
	}
	if e.Image != nil {
		img := *e.Image
		out.Image = &img
	}
	if e.Group != nil {
		g := *e.Group
		out.Group = &g
	}
	if e.RawProps != nil {
		out.RawProps = append(json.RawMessage(nil), e.RawProps...)
	}
	return out
}

type elementJSON struct {
	ID       string           `json:"id"`
	Type     ElementType      `json:"type"`
	Name     string           `json:"name,omitempty"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	Width    float64          `json:"width,omitempty"`
	Height   float64          `json:"height,omitempty"`
	Points   []geometry.Point `json:"points,omitempty"`
	Rotation float64          `json:"rotation"`
	Locked   bool             `json:"locked"`
	Visible  *bool            `json:"visible,omitempty"`
	Props    json.RawMessage  `json:"props,omitempty"`
	Elements []Element        `json:"elements,omitempty"`
}

// MarshalJSON writes the element with its variant props under "props".
func (e Element) MarshalJSON() ([]byte, error) {
	visible := e.Visible
	aux := elementJSON{
		ID:       e.ID,
		Type:     e.Type,
		Name:     e.Name,
		X:        e.X,
		Y:        e.Y,
		Width:    e.Width,
		Height:   e.Height,
		Points:   e.Points,
		Rotation: e.Rotation,
		Locked:   e.Locked,
		Visible:  &visible,
		Elements: e.Elements,
	}
	var props any
	switch e.Type {
	case TypeCode:
		props = e.Code
	case TypeText:
		props = e.Text
	case TypeArrow:
		props = e.Arrow
	case TypeShape:
		props = e.Shape
	case TypeImage:
		props = e.Image
	case TypeGroup:
		props = e.Group
	}
	switch {
	case e.Type.Known():
		raw, err := json.Marshal(props)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(raw, []byte("null")) {
			aux.Props = raw
		}
	case len(e.RawProps) > 0:
		aux.Props = e.RawProps
	}
	return json.Marshal(aux)
}

// UnmarshalJSON reads an element, defaulting Visible to true when the field is
// missing. Props of unknown types are kept verbatim in RawProps.
func (e *Element) UnmarshalJSON(data []byte) error {
	var aux elementJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Element{
		ID:       aux.ID,
		Type:     aux.Type,
		Name:     aux.Name,
		X:        aux.X,
		Y:        aux.Y,
		Width:    aux.Width,
		Height:   aux.Height,
		Points:   aux.Points,
		Rotation: aux.Rotation,
		Locked:   aux.Locked,
		Visible:  aux.Visible == nil || *aux.Visible,
		Elements: aux.Elements,
	}
	props := aux.Props
	if len(props) == 0 || bytes.Equal(props, []byte("null")) {
		return nil
	}
	var target any
	switch aux.Type {
	case TypeCode:
		e.Code = &CodeProps{}
		target = e.Code
	case TypeText:
		e.Text = &TextProps{}
		target = e.Text
	case TypeArrow:
		e.Arrow = &ArrowProps{}
		target = e.Arrow
	case TypeShape:
		e.Shape = &ShapeProps{}
		target = e.Shape
	case TypeImage:
		e.Image = &ImageProps{}
		target = e.Image
	case TypeGroup:
		e.Group = &GroupProps{}
		target = e.Group
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, props); err != nil {
			return err
		}
		e.RawProps = buf.Bytes()
		return nil
	}
	return json.Unmarshal(props, target)
}
