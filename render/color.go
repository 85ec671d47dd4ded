package render

import (
	"image/color"
	"strconv"
	"strings"
)

// parseColor reads #rgb, #rgba, #rrggbb and #rrggbbaa hex colors plus the
// keyword "transparent". Anything else yields fallback.
func parseColor(s string, fallback color.Color) color.Color {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "transparent" {
		return color.NRGBA{}
	}
	if !strings.HasPrefix(s, "#") {
		return fallback
	}
	hex := s[1:]
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for _, c := range hex {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		hex = b.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// withOpacity scales the alpha of c by op in [0, 1].
func withOpacity(c color.Color, op float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if op >= 1 {
		return n
	}
	n.A = uint8(float64(n.A) * max(0, op))
	return n
}
