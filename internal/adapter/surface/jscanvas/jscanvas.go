//go:build js && wasm

// Package jscanvas implements domain.Surface on a browser 2D canvas context.
package jscanvas

import (
	"fmt"
	"syscall/js"

	"canvas-ai/internal/domain"
)

// FontFamily is the CSS font family used for all text.
const FontFamily = "'Courier New', monospace"

// Surface wraps a CanvasRenderingContext2D.
type Surface struct {
	canvas js.Value
	ctx    js.Value
}

var _ domain.Surface = (*Surface)(nil)

// New wraps the 2D context of the given <canvas> element.
func New(canvas js.Value) *Surface {
	return &Surface{canvas: canvas, ctx: canvas.Call("getContext", "2d")}
}

// SetSize sets the canvas backing store size in CSS pixels.
func (s *Surface) SetSize(w, h int) {
	s.canvas.Set("width", w)
	s.canvas.Set("height", h)
}

func (s *Surface) Size() (float64, float64) {
	return s.canvas.Get("width").Float(), s.canvas.Get("height").Float()
}

func (s *Surface) ClearRect(x, y, w, h float64) { s.ctx.Call("clearRect", x, y, w, h) }

func (s *Surface) SetStrokeStyle(c string) { s.ctx.Set("strokeStyle", c) }
func (s *Surface) SetFillStyle(c string)   { s.ctx.Set("fillStyle", c) }
func (s *Surface) SetLineWidth(w float64)  { s.ctx.Set("lineWidth", w) }
func (s *Surface) LineWidth() float64      { return s.ctx.Get("lineWidth").Float() }

func (s *Surface) SetFont(f domain.Font) {
	weight := ""
	if f.Bold {
		weight = "bold "
	}
	s.ctx.Set("font", fmt.Sprintf("%s%gpx %s", weight, f.Size, FontFamily))
}

func (s *Surface) StrokeRect(x, y, w, h float64) { s.ctx.Call("strokeRect", x, y, w, h) }
func (s *Surface) FillRect(x, y, w, h float64)   { s.ctx.Call("fillRect", x, y, w, h) }

func (s *Surface) BeginPath()          { s.ctx.Call("beginPath") }
func (s *Surface) MoveTo(x, y float64) { s.ctx.Call("moveTo", x, y) }
func (s *Surface) LineTo(x, y float64) { s.ctx.Call("lineTo", x, y) }

func (s *Surface) Arc(x, y, r, start, end float64) {
	if r < 0 {
		// The browser throws IndexSizeError on a negative radius.
		return
	}
	s.ctx.Call("arc", x, y, r, start, end)
}

func (s *Surface) Stroke() { s.ctx.Call("stroke") }
func (s *Surface) Fill()   { s.ctx.Call("fill") }

func (s *Surface) FillText(text string, x, y float64) { s.ctx.Call("fillText", text, x, y) }

func (s *Surface) MeasureText(text string) float64 {
	return s.ctx.Call("measureText", text).Get("width").Float()
}
