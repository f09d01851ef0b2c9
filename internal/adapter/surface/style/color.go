// Package style parses CSS color strings for the drawing surfaces.
package style

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Parse converts a CSS color ("#4dc3ff", "#fff", "#4dc3ff80", "rgb(1,2,3)",
// "rgba(77, 195, 255, 0.2)", "red", "transparent") to a non-premultiplied color.
func Parse(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return color.NRGBA{}, fmt.Errorf("empty color")
	case s == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return parseFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
}

// ParseOr returns the parsed color, or fallback when s does not parse.
func ParseOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		return fallback
	}
	return c
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.NRGBA) string {
	return toColorful(c).Hex()
}

// Blend composites over onto an opaque base using over's alpha.
func Blend(base, over color.NRGBA) color.NRGBA {
	if over.A == 255 {
		return over
	}
	b := toColorful(base).BlendRgb(toColorful(over), float64(over.A)/255)
	r, g, bl := b.RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: 255}
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func parseHex(s string) (color.NRGBA, error) {
	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad alpha in %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func parseFunc(s string) (color.NRGBA, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if end < open {
		return color.NRGBA{}, fmt.Errorf("malformed color %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("malformed color %q", s)
	}

	var ch [3]uint8
	for i := range 3 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad channel in %q: %w", s, err)
		}
		ch[i] = uint8(math.Round(clamp(v, 0, 255)))
	}

	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad alpha in %q: %w", s, err)
		}
		alpha = clamp(a, 0, 1)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(math.Round(alpha * 255))}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
