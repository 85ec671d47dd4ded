// Package snap defines the canvas document: a Snap with its meta data,
// background and z-ordered element list, plus the factory for new elements.
//
// Element order is z-order: index 0 is drawn first, the last element is on
// top. There is no separate z-index field.
package snap

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// CurrentVersion is written into every new or exported document.
const CurrentVersion = "1.1"

const (
	MinCanvasSize = 320
	MaxCanvasSize = 10000
)

// Snap is one canvas project.
type Snap struct {
	Version    string     `json:"version"`
	Meta       Meta       `json:"meta"`
	Background Background `json:"background"`
	Elements   []Element  `json:"elements"`
}

// Meta holds the canvas title and pixel size. Aspect is either a preset name
// from AspectPresets or "Custom WxH".
type Meta struct {
	Title  string `json:"title"`
	Aspect string `json:"aspect"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// UnmarshalJSON accepts fractional sizes, rounding them to whole pixels.
// NormalizeMeta does the clamping.
func (m *Meta) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var aux struct {
		Title  string  `json:"title"`
		Aspect string  `json:"aspect"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = Meta{
		Title:  aux.Title,
		Aspect: aux.Aspect,
		Width:  pixels(aux.Width),
		Height: pixels(aux.Height),
	}
	return nil
}

func pixels(v float64) int {
	switch {
	case v > MaxCanvasSize:
		return MaxCanvasSize + 1
	case v < -MaxCanvasSize:
		return -MaxCanvasSize
	}
	return int(math.Round(v))
}

// AspectPreset is a named canvas size.
type AspectPreset struct {
	Name   string
	Width  int
	Height int
}

var AspectPresets = []AspectPreset{
	{Name: "16:9", Width: 1920, Height: 1080},
	{Name: "4:3", Width: 1600, Height: 1200},
	{Name: "1:1", Width: 1080, Height: 1080},
	{Name: "9:16", Width: 1080, Height: 1920},
	{Name: "3:2", Width: 1800, Height: 1200},
}

// LookupAspect returns the preset with the given name.
func LookupAspect(name string) (AspectPreset, bool) {
	for _, p := range AspectPresets {
		if p.Name == name {
			return p, true
		}
	}
	return AspectPreset{}, false
}

// AspectFor names a canvas size: the matching preset or "Custom WxH".
func AspectFor(width, height int) string {
	for _, p := range AspectPresets {
		if p.Width == width && p.Height == height {
			return p.Name
		}
	}
	return CustomAspect(width, height)
}

func CustomAspect(width, height int) string {
	return fmt.Sprintf("Custom %dx%d", width, height)
}

// IsCustomAspect reports whether aspect is a "Custom WxH" label.
func IsCustomAspect(aspect string) bool {
	return strings.HasPrefix(aspect, "Custom ")
}

// ClampCanvasSize bounds a canvas dimension to [MinCanvasSize, MaxCanvasSize].
func ClampCanvasSize(v int) int {
	if v < MinCanvasSize {
		return MinCanvasSize
	}
	if v > MaxCanvasSize {
		return MaxCanvasSize
	}
	return v
}

type BackgroundType string

const (
	BackgroundSolid    BackgroundType = "solid"
	BackgroundGradient BackgroundType = "gradient"
)

// Background carries both the solid and gradient configs at all times; Type
// picks the active one so switching back and forth keeps earlier values.
type Background struct {
	Type       BackgroundType `json:"type"`
	Solid      Solid          `json:"solid"`
	Gradient   Gradient       `json:"gradient"`
	BrandStrip *BrandStrip    `json:"brandStrip,omitempty"`
	Branding   *Branding      `json:"branding,omitempty"`
}

type Solid struct {
	Color string `json:"color"`
}

type Gradient struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Angle float64 `json:"angle"`
}

// BrandStrip is a colored bar along the bottom edge of the canvas.
type BrandStrip struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Height  float64 `json:"height"`
	Text    string  `json:"text,omitempty"`
}

// Branding is the author watermark. Avatar is an inline data URL and is
// subject to the asset size cap on save.
type Branding struct {
	Enabled    bool   `json:"enabled"`
	Name       string `json:"name"`
	Handle     string `json:"handle,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	ShowAvatar bool   `json:"showAvatar"`
	Position   string `json:"position,omitempty"`
}

// DefaultBackground is the background of a new document.
func DefaultBackground() Background {
	return Background{
		Type:  BackgroundSolid,
		Solid: Solid{Color: "#1e1e2e"},
		Gradient: Gradient{
			From:  "#667eea",
			To:    "#764ba2",
			Angle: 135,
		},
	}
}

// NewSnap returns an empty 16:9 document.
func NewSnap() *Snap {
	preset := AspectPresets[0]
	return &Snap{
		Version: CurrentVersion,
		Meta: Meta{
			Title:  "Untitled",
			Aspect: preset.Name,
			Width:  preset.Width,
			Height: preset.Height,
		},
		Background: DefaultBackground(),
		Elements:   []Element{},
	}
}

// Clone returns a deep copy; nothing is shared with s.
func (s *Snap) Clone() *Snap {
	if s == nil {
		return nil
	}
	out := &Snap{
		Version:    s.Version,
		Meta:       s.Meta,
		Background: s.Background.Clone(),
	}
	if s.Elements != nil {
		out.Elements = make([]Element, len(s.Elements))
		for i := range s.Elements {
			out.Elements[i] = s.Elements[i].Clone()
		}
	}
	return out
}

func (b Background) Clone() Background {
	out := b
	if b.BrandStrip != nil {
		strip := *b.BrandStrip
		out.BrandStrip = &strip
	}
	if b.Branding != nil {
		branding := *b.Branding
		out.Branding = &branding
	}
	return out
}

// Index returns the position of the top-level element with the given id,
// or -1.
func (s *Snap) Index(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer to the top-level element with the given id.
func (s *Snap) Find(id string) *Element {
	if i := s.Index(id); i >= 0 {
		return &s.Elements[i]
	}
	return nil
}

// IDs lists every element id, group children included, in document order.
func (s *Snap) IDs() []string {
	var ids []string
	var walk func([]Element)
	walk = func(els []Element) {
		for i := range els {
			ids = append(ids, els[i].ID)
			walk(els[i].Elements)
		}
	}
	walk(s.Elements)
	return ids
}
