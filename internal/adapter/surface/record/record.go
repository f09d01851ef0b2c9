// Package record provides a Surface that records every drawing call instead
// of painting. It backs renderer tests and headless inspection.
package record

import (
	"unicode/utf8"

	"canvas-ai/internal/domain"
)

// Call is one recorded drawing operation with the style in effect when it ran.
type Call struct {
	Op        string
	Args      []float64
	Text      string
	Stroke    string
	Fill      string
	LineWidth float64
	Font      domain.Font
}

// Surface records drawing calls. Text is measured as a fixed advance per rune.
type Surface struct {
	W, H float64
	// CharWidth is the advance of one rune in MeasureText.
	CharWidth float64
	Calls     []Call

	stroke, fill string
	lineWidth    float64
	font         domain.Font
}

var _ domain.Surface = (*Surface)(nil)

// New creates a recording surface of the given size with canvas defaults.
func New(w, h float64) *Surface {
	return &Surface{
		W:         w,
		H:         h,
		CharWidth: 10,
		stroke:    "#000000",
		fill:      "#000000",
		lineWidth: 1,
		font:      domain.Font{Size: 10},
	}
}

func (s *Surface) add(op, text string, args ...float64) {
	s.Calls = append(s.Calls, Call{
		Op:        op,
		Args:      args,
		Text:      text,
		Stroke:    s.stroke,
		Fill:      s.fill,
		LineWidth: s.lineWidth,
		Font:      s.font,
	})
}

func (s *Surface) Size() (float64, float64) { return s.W, s.H }

func (s *Surface) ClearRect(x, y, w, h float64) { s.add("ClearRect", "", x, y, w, h) }

func (s *Surface) SetStrokeStyle(color string) { s.stroke = color }
func (s *Surface) SetFillStyle(color string)   { s.fill = color }
func (s *Surface) SetLineWidth(w float64)      { s.lineWidth = w }
func (s *Surface) LineWidth() float64          { return s.lineWidth }
func (s *Surface) SetFont(f domain.Font)       { s.font = f }

func (s *Surface) StrokeRect(x, y, w, h float64) { s.add("StrokeRect", "", x, y, w, h) }
func (s *Surface) FillRect(x, y, w, h float64)   { s.add("FillRect", "", x, y, w, h) }

func (s *Surface) BeginPath() { s.add("BeginPath", "") }

func (s *Surface) MoveTo(x, y float64) { s.add("MoveTo", "", x, y) }
func (s *Surface) LineTo(x, y float64) { s.add("LineTo", "", x, y) }

func (s *Surface) Arc(x, y, r, start, end float64) { s.add("Arc", "", x, y, r, start, end) }

func (s *Surface) Stroke() { s.add("Stroke", "") }
func (s *Surface) Fill()   { s.add("Fill", "") }

func (s *Surface) FillText(text string, x, y float64) { s.add("FillText", text, x, y) }

func (s *Surface) MeasureText(text string) float64 {
	return float64(utf8.RuneCountInString(text)) * s.CharWidth
}

// Reset drops all recorded calls, keeping the current style.
func (s *Surface) Reset() { s.Calls = nil }

// Ops returns the operation names in call order.
func (s *Surface) Ops() []string {
	ops := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Find returns the recorded calls of one operation.
func (s *Surface) Find(op string) []Call {
	var out []Call
	for _, c := range s.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns the strings passed to FillText, in order.
func (s *Surface) Texts() []string {
	var out []string
	for _, c := range s.Find("FillText") {
		out = append(out, c.Text)
	}
	return out
}
