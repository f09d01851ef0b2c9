// Package raster implements domain.Surface on an in-memory RGBA image using gg.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"

	"canvas-ai/internal/adapter/surface/style"
	"canvas-ai/internal/domain"
)

// Background is the color ClearRect paints when none is configured.
var Background = color.NRGBA{A: 255}

type pathOp struct {
	kind byte // 'M', 'L', 'A'
	args [5]float64
}

type faceKey struct {
	size float64
	bold bool
}

// Surface draws into an image. Paths are kept separately from gg's so that
// rectangle operations never disturb the current path, as on an HTML canvas.
type Surface struct {
	dc         *gg.Context
	background color.NRGBA

	stroke    color.NRGBA
	fill      color.NRGBA
	lineWidth float64
	font      domain.Font
	path      []pathOp

	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
}

var _ domain.Surface = (*Surface)(nil)

// Option configures a Surface.
type Option func(*Surface)

// WithBackground sets the color ClearRect paints.
func WithBackground(c color.NRGBA) Option {
	return func(s *Surface) { s.background = c }
}

// New creates a w x h surface cleared to the background.
func New(w, h int, opts ...Option) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", w, h)
	}
	regular, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("raster: parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gomonobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("raster: parse bold font: %w", err)
	}

	s := &Surface{
		dc:         gg.NewContext(w, h),
		background: Background,
		stroke:     color.NRGBA{A: 255},
		fill:       color.NRGBA{A: 255},
		lineWidth:  1,
		regular:    regular,
		bold:       bold,
		faces:      make(map[faceKey]font.Face),
	}
	for _, o := range opts {
		o(s)
	}
	s.SetFont(domain.Font{Size: 10})
	s.ClearRect(0, 0, float64(w), float64(h))
	return s, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s *Surface) Size() (float64, float64) {
	return float64(s.dc.Width()), float64(s.dc.Height())
}

// ClearRect replaces the pixels of the rectangle with the background.
func (s *Surface) ClearRect(x, y, w, h float64) {
	if !finite(x, y, w, h) {
		return
	}
	img, ok := s.dc.Image().(draw.Image)
	if !ok {
		return
	}
	r := image.Rect(int(math.Floor(x)), int(math.Floor(y)), int(math.Ceil(x+w)), int(math.Ceil(y+h))).Canon()
	draw.Draw(img, r, image.NewUniform(s.background), image.Point{}, draw.Src)
}

// Invalid colors leave the current style unchanged.
func (s *Surface) SetStrokeStyle(c string) { s.stroke = style.ParseOr(c, s.stroke) }
func (s *Surface) SetFillStyle(c string)   { s.fill = style.ParseOr(c, s.fill) }

func (s *Surface) SetLineWidth(w float64) {
	if finite(w) && w > 0 {
		s.lineWidth = w
	}
}

func (s *Surface) LineWidth() float64 { return s.lineWidth }

func (s *Surface) SetFont(f domain.Font) {
	if !finite(f.Size) || f.Size <= 0 {
		return
	}
	s.font = f
	s.dc.SetFontFace(s.face(f))
}

func (s *Surface) face(f domain.Font) font.Face {
	k := faceKey{size: f.Size, bold: f.Bold}
	if face, ok := s.faces[k]; ok {
		return face
	}
	ttf := s.regular
	if f.Bold {
		ttf = s.bold
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	s.faces[k] = face
	return face
}

func (s *Surface) StrokeRect(x, y, w, h float64) {
	if !finite(x, y, w, h) {
		return
	}
	s.dc.ClearPath()
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetColor(s.stroke)
	s.dc.SetLineWidth(s.lineWidth)
	s.dc.Stroke()
}

func (s *Surface) FillRect(x, y, w, h float64) {
	if !finite(x, y, w, h) {
		return
	}
	s.dc.ClearPath()
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetColor(s.fill)
	s.dc.Fill()
}

func (s *Surface) BeginPath() { s.path = s.path[:0] }

func (s *Surface) MoveTo(x, y float64) {
	if finite(x, y) {
		s.path = append(s.path, pathOp{kind: 'M', args: [5]float64{x, y}})
	}
}

func (s *Surface) LineTo(x, y float64) {
	if finite(x, y) {
		s.path = append(s.path, pathOp{kind: 'L', args: [5]float64{x, y}})
	}
}

func (s *Surface) Arc(x, y, r, start, end float64) {
	if finite(x, y, r, start, end) && r >= 0 {
		s.path = append(s.path, pathOp{kind: 'A', args: [5]float64{x, y, r, start, end}})
	}
}

func (s *Surface) replay() {
	s.dc.ClearPath()
	for _, op := range s.path {
		a := op.args
		switch op.kind {
		case 'M':
			s.dc.MoveTo(a[0], a[1])
		case 'L':
			s.dc.LineTo(a[0], a[1])
		case 'A':
			s.dc.DrawArc(a[0], a[1], a[2], a[3], a[4])
		}
	}
}

func (s *Surface) Stroke() {
	s.replay()
	s.dc.SetColor(s.stroke)
	s.dc.SetLineWidth(s.lineWidth)
	s.dc.Stroke()
}

func (s *Surface) Fill() {
	s.replay()
	s.dc.SetColor(s.fill)
	s.dc.Fill()
}

func (s *Surface) FillText(text string, x, y float64) {
	if !finite(x, y) {
		return
	}
	s.dc.SetColor(s.fill)
	s.dc.DrawString(text, x, y)
}

func (s *Surface) MeasureText(text string) float64 {
	w, _ := s.dc.MeasureString(text)
	return w
}

// Image returns the backing image.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// EncodePNG writes the surface as PNG.
func (s *Surface) EncodePNG(w io.Writer) error { return s.dc.EncodePNG(w) }

// SavePNG writes the surface to a PNG file.
func (s *Surface) SavePNG(path string) error { return s.dc.SavePNG(path) }
