package render

import (
	"math"
	"strings"

	"canvas-ai/internal/domain"
)

const (
	defaultAsciiFontSize = 14
	asciiLineSpacing     = 1.2
)

func drawRectangle(s domain.Surface, o domain.CanvasObject, sc Scale) error {
	x, y := o.X*sc.X, o.Y*sc.Y
	w, h := o.Width*sc.X, o.Height*sc.Y

	s.SetFillStyle(AccentFill)
	s.FillRect(x, y, w, h)
	s.SetStrokeStyle(colorOr(o.Color, AccentColor))
	s.StrokeRect(x, y, w, h)
	return nil
}

// drawCircle scales the radius by the horizontal factor only.
func drawCircle(s domain.Surface, o domain.CanvasObject, sc Scale) error {
	cx, cy := o.CenterX*sc.X, o.CenterY*sc.Y
	r := o.Radius * sc.X

	s.BeginPath()
	s.Arc(cx, cy, r, 0, 2*math.Pi)
	s.SetFillStyle(AccentFill)
	s.Fill()
	s.SetStrokeStyle(colorOr(o.Color, AccentColor))
	s.Stroke()
	return nil
}

func drawLine(s domain.Surface, o domain.CanvasObject, sc Scale) error {
	prev := s.LineWidth()
	defer s.SetLineWidth(prev)

	s.SetStrokeStyle(colorOr(o.Color, AccentColor))
	s.SetLineWidth(shapeLineWidth)
	s.BeginPath()
	s.MoveTo(o.StartX*sc.X, o.StartY*sc.Y)
	s.LineTo(o.EndX*sc.X, o.EndY*sc.Y)
	s.Stroke()
	return nil
}

// drawAscii scales the font by the smaller axis factor so glyphs keep their aspect.
func drawAscii(s domain.Surface, o domain.CanvasObject, sc Scale) error {
	if o.Text == nil {
		return domain.NewSubSystemError("render", "render.Ascii", domain.ErrMissingField, "text_content")
	}

	size := o.FontSize
	if size == 0 || math.IsNaN(size) {
		size = defaultAsciiFontSize
	}
	size *= math.Min(sc.X, sc.Y)

	s.SetFillStyle(colorOr(o.Color, AccentColor))
	s.SetFont(domain.Font{Size: size})

	x, y := o.X*sc.X, o.Y*sc.Y
	for i, line := range strings.Split(*o.Text, "\n") {
		s.FillText(line, x, y+float64(i)*asciiLineSpacing*size)
	}
	return nil
}
