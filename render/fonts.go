package render

import (
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

type faceKey struct {
	mono   bool
	bold   bool
	italic bool
	size   float64
}

var (
	fontsOnce sync.Once
	fonts     map[faceKey]*truetype.Font
	fontsErr  error
)

// loadFonts parses the embedded Go fonts once per process.
func loadFonts() (map[faceKey]*truetype.Font, error) {
	fontsOnce.Do(func() {
		sources := map[faceKey][]byte{
			{mono: false}:                           goregular.TTF,
			{mono: false, bold: true}:               gobold.TTF,
			{mono: false, italic: true}:             goitalic.TTF,
			{mono: false, bold: true, italic: true}: gobolditalic.TTF,
			{mono: true}:                            gomono.TTF,
			{mono: true, bold: true}:                gomonobold.TTF,
			{mono: true, italic: true}:              gomonoitalic.TTF,
			{mono: true, bold: true, italic: true}:  gomonobolditalic.TTF,
		}
		fonts = make(map[faceKey]*truetype.Font, len(sources))
		for k, ttf := range sources {
			f, err := truetype.Parse(ttf)
			if err != nil {
				fontsErr = err
				return
			}
			fonts[k] = f
		}
	})
	return fonts, fontsErr
}

var monoFamilies = []string{"mono", "code", "menlo", "consolas", "courier", "monaco"}

// isMono maps a CSS font family onto the embedded monospace font.
func isMono(family string) bool {
	f := strings.ToLower(family)
	for _, m := range monoFamilies {
		if strings.Contains(f, m) {
			return true
		}
	}
	return false
}

// face returns a cached font face. Sizes are in canvas pixels.
func (r *Renderer) face(mono, bold, italic bool, size float64) (font.Face, error) {
	key := faceKey{mono: mono, bold: bold, italic: italic, size: size}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	all, err := loadFonts()
	if err != nil {
		return nil, err
	}
	ttf := all[faceKey{mono: mono, bold: bold, italic: italic}]
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[key] = f
	return f, nil
}
