package snap

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"codesnap/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryDefaults(t *testing.T) {
	code := NewCodeElement(10, 20)
	assert.Equal(t, TypeCode, code.Type)
	assert.Equal(t, 600.0, code.Width)
	assert.Equal(t, 300.0, code.Height)
	assert.NotNil(t, code.Code.Highlights)
	assert.Empty(t, code.Code.Highlights)
	assert.True(t, code.Code.Shadow.Enabled)
	assert.True(t, code.Visible)

	text := NewTextElement(100, 100)
	assert.Equal(t, "Double-click to edit", text.Text.Text)
	assert.Empty(t, text.Text.Background)

	arrow := NewArrowElement(5, 5)
	assert.Equal(t, []geometry.Point{{X: 5, Y: 5}, {X: 155, Y: 85}}, arrow.Points)
	assert.Equal(t, ArrowStraight, arrow.Arrow.Style)
	assert.Equal(t, HeadFilled, arrow.Arrow.Head)

	line := NewShapeElement(ShapeLine, 0, 0)
	assert.True(t, line.UsesPoints())
	assert.Len(t, line.Points, 2)

	assert.NotEqual(t, code.ID, text.ID)

	s := NewSnap()
	s.Elements = append(s.Elements, code, text, arrow, line, NewShapeElement(ShapeStar, 1, 1))
	require.NoError(t, Validate(s))
}

func TestFactoryOutputIsNormalized(t *testing.T) {
	for _, e := range []Element{
		NewCodeElement(0, 0),
		NewTextElement(0, 0),
		NewArrowElement(0, 0),
		NewShapeElement(ShapeRectangle, 0, 0),
		NewShapeElement(ShapePolygon, 0, 0),
		NewShapeElement(ShapeLine, 0, 0),
		NewImageElement(0, 0, "https://example.com/a.png", 64, 64),
	} {
		n := e.Clone()
		NormalizeElement(&n)
		assert.Equal(t, e, n, "%s changed under normalization", e.Type)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	arrow := NewArrowElement(0, 0)
	arrow.Arrow.ControlPoints = []geometry.Point{{X: 1, Y: 1}}
	code := NewCodeElement(0, 0)
	code.Code.Highlights = []int{1, 2}
	group := Element{ID: "g", Type: TypeGroup, Visible: true, Group: &GroupProps{}, Elements: []Element{arrow, code}}

	s := NewSnap()
	s.Elements = append(s.Elements, group)
	s.Background.Branding = &Branding{Name: "me"}

	c := s.Clone()
	require.Equal(t, s, c)

	c.Elements[0].Elements[0].Points[0].X = 99
	c.Elements[0].Elements[0].Arrow.ControlPoints[0].X = 99
	c.Elements[0].Elements[1].Code.Highlights[0] = 99
	c.Background.Branding.Name = "you"

	assert.Equal(t, 0.0, s.Elements[0].Elements[0].Points[0].X)
	assert.Equal(t, 1.0, s.Elements[0].Elements[0].Arrow.ControlPoints[0].X)
	assert.Equal(t, 1, s.Elements[0].Elements[1].Code.Highlights[0])
	assert.Equal(t, "me", s.Background.Branding.Name)
}

func TestElementJSONRoundTrip(t *testing.T) {
	els := []Element{
		NewCodeElement(1, 2),
		NewTextElement(3, 4),
		NewArrowElement(5, 6),
		NewShapeElement(ShapeEllipse, 7, 8),
		NewImageElement(0, 0, "data:image/png;base64,AAAA", 10, 10),
	}
	els[2].Arrow.Style = ArrowCurved
	els[2].Arrow.ControlPoints = []geometry.Point{{X: 9, Y: 9}}
	els[1].Visible = false
	els[1].Name = "Headline"

	data, err := json.Marshal(els)
	require.NoError(t, err)

	var back []Element
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, els, back)
}

func TestElementJSONDefaultsAndUnknownTypes(t *testing.T) {
	var e Element
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","type":"text","x":1,"y":2,"props":{"text":"hi"}}`), &e))
	assert.True(t, e.Visible)
	assert.Equal(t, "hi", e.Text.Text)

	raw := `{"id":"b","type":"sticker","x":0,"y":0,"props":{"emoji": "🚀", "size": 3}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, ElementType("sticker"), e.Type)
	assert.JSONEq(t, `{"emoji":"🚀","size":3}`, string(e.RawProps))

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"props":{"emoji":"🚀","size":3}`)
}

func TestNormalizeClampsAndRepairs(t *testing.T) {
	s := &Snap{
		Meta: Meta{Width: 50, Height: 999999},
		Elements: []Element{
			{ID: "a", Type: TypeArrow, X: 3, Y: 4},
			{ID: "c", Type: TypeCode, Width: -20, Height: math.NaN(), Rotation: -90},
			{ID: "t", Type: TypeText, Width: -1},
		},
	}
	Normalize(s)

	assert.Equal(t, MinCanvasSize, s.Meta.Width)
	assert.Equal(t, MaxCanvasSize, s.Meta.Height)
	assert.Equal(t, "Custom 320x10000", s.Meta.Aspect)
	assert.Equal(t, BackgroundSolid, s.Background.Type)
	assert.NotEmpty(t, s.Background.Gradient.From)
	assert.Equal(t, CurrentVersion, s.Version)

	assert.Len(t, s.Elements[0].Points, 2)
	assert.NotNil(t, s.Elements[0].Arrow)
	assert.Equal(t, 1.0, s.Elements[1].Width)
	assert.Equal(t, 1.0, s.Elements[1].Height)
	assert.Equal(t, 270.0, s.Elements[1].Rotation)
	assert.Equal(t, 0.0, s.Elements[2].Width)
	require.NoError(t, Validate(s))
}

func TestNormalizeAppliesPresetSize(t *testing.T) {
	s := &Snap{Meta: Meta{Aspect: "1:1"}}
	Normalize(s)
	assert.Equal(t, 1080, s.Meta.Width)
	assert.Equal(t, 1080, s.Meta.Height)
	assert.Equal(t, "1:1", s.Meta.Aspect)
}

func TestValidateDuplicateIDs(t *testing.T) {
	s := NewSnap()
	e := NewTextElement(0, 0)
	s.Elements = append(s.Elements, e, e)
	assert.ErrorIs(t, Validate(s), ErrInvalid)
}

func TestDisplayName(t *testing.T) {
	e := NewShapeElement(ShapeEllipse, 0, 0)
	assert.Equal(t, "Ellipse", DisplayName(&e))
	e.Name = "   "
	assert.Equal(t, "Ellipse", DisplayName(&e))
	e.Name = " Logo "
	assert.Equal(t, "Logo", DisplayName(&e))
	code := NewCodeElement(0, 0)
	assert.Equal(t, "Code", DisplayName(&code))
}

func TestBoundsAndTranslate(t *testing.T) {
	arrow := NewArrowElement(10, 10)
	assert.Equal(t, geometry.R(10, 10, 150, 80), Bounds(&arrow))

	Translate(&arrow, 20, 20)
	assert.Equal(t, geometry.Point{X: 30, Y: 30}, arrow.Points[0])
	assert.Equal(t, 30.0, arrow.X)

	code := NewCodeElement(0, 0)
	assert.Equal(t, geometry.R(0, 0, 600, 300), BoundsAll([]Element{code}))

	text := NewTextElement(0, 0)
	shape := NewShapeElement(ShapeRectangle, 100, 100)
	assert.Equal(t, geometry.R(0, 0, 300, 220), BoundsAll([]Element{shape, text}))
	assert.Equal(t, geometry.Rect{}, BoundsAll(nil))
}

func TestSnapIndexAndIDs(t *testing.T) {
	s := NewSnap()
	a, b := NewTextElement(0, 0), NewTextElement(0, 0)
	s.Elements = append(s.Elements, a, Element{ID: "g", Type: TypeGroup, Elements: []Element{b}})
	assert.Equal(t, 0, s.Index(a.ID))
	assert.Equal(t, -1, s.Index(b.ID))
	assert.Equal(t, -1, s.Index(""))
	assert.Equal(t, []string{a.ID, "g", b.ID}, s.IDs())
	assert.Nil(t, s.Find("nope"))
}

func TestRepairIDs(t *testing.T) {
	s := NewSnap()
	a := NewTextElement(0, 0)
	s.Elements = append(s.Elements, a, a, Element{Type: TypeCode})
	n := 0
	fixed := RepairIDs(s, func() string { n++; return fmt.Sprintf("fresh-%d", n) })
	assert.Equal(t, 2, fixed)
	assert.Equal(t, a.ID, s.Elements[0].ID)
	assert.Equal(t, "fresh-1", s.Elements[1].ID)
	assert.Equal(t, "fresh-2", s.Elements[2].ID)
}
