// Package render draws normalized canvas objects onto a domain.Surface.
package render

import (
	"fmt"
	"log/slog"

	"canvas-ai/internal/domain"
)

// Fixed visual style shared by all renderers.
const (
	AccentColor = "#4dc3ff"
	GraphColor  = "#00aaff"
	AccentFill  = "rgba(77, 195, 255, 0.2)"

	shapeLineWidth = 2
)

// Scale maps logical coordinates onto the surface, one factor per axis.
type Scale struct {
	X, Y float64
}

// ScaleFor returns the scale from the logical 1920x1080 space to a surface of size w x h.
func ScaleFor(w, h float64) Scale {
	return Scale{X: w / domain.LogicalWidth, Y: h / domain.LogicalHeight}
}

type drawFunc func(s domain.Surface, o domain.CanvasObject, sc Scale) error

var drawers = map[domain.Kind]drawFunc{
	domain.KindInfoBox:   drawInfoBox,
	domain.KindLineGraph: drawLineGraph,
	domain.KindRectangle: drawRectangle,
	domain.KindCircle:    drawCircle,
	domain.KindLine:      drawLine,
	domain.KindAscii:     drawAscii,
}

// Renderer dispatches canvas objects to the shape renderers.
type Renderer struct {
	logger *slog.Logger
}

// New creates a Renderer.
func New(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render clears s and draws objects in order. Unknown kinds are skipped.
// The first renderer error aborts the pass; whatever was drawn before it stays
// on the surface until the next Render clears it.
func (r *Renderer) Render(s domain.Surface, objects []domain.CanvasObject) error {
	w, h := s.Size()
	s.ClearRect(0, 0, w, h)
	if len(objects) == 0 {
		return nil
	}

	sc := ScaleFor(w, h)
	for i, o := range objects {
		draw, ok := drawers[o.Kind]
		if !ok {
			r.logger.Debug("skipping unknown canvas object", "index", i, "tool", o.Tool)
			continue
		}
		if err := draw(s, o, sc); err != nil {
			return domain.WrapOp(fmt.Sprintf("render.Render[%d:%s]", i, o.Kind), err)
		}
	}
	return nil
}

func colorOr(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}
