package render

import (
	"canvas-ai/internal/domain"
)

const (
	graphInset      = 10
	graphTopReserve = 40
	graphLabelDX    = 10
	graphLabelDY    = 25
	graphFontSize   = 16
)

// minMaxScale maps each value onto [0, 1] by the series' min and max.
// A series whose min equals its max divides by zero: every result is NaN.
func minMaxScale(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

func drawLineGraph(s domain.Surface, o domain.CanvasObject, sc Scale) error {
	x, y := o.X*sc.X, o.Y*sc.Y
	w, h := o.Width*sc.X, o.Height*sc.Y

	s.SetStrokeStyle(AccentColor)
	s.StrokeRect(x, y, w, h)

	s.SetFillStyle(AccentColor)
	s.SetFont(domain.Font{Size: graphFontSize, Bold: true})
	if o.HasLabel {
		s.FillText(o.Label, x+graphLabelDX, y+graphLabelDY)
	}

	if len(o.Series) == 0 {
		return nil
	}

	xs := make([]float64, len(o.Series))
	ys := make([]float64, len(o.Series))
	for i, p := range o.Series {
		xs[i], ys[i] = p.X, p.Y
	}
	nx, ny := minMaxScale(xs), minMaxScale(ys)

	s.SetStrokeStyle(GraphColor)
	s.BeginPath()
	for i := range o.Series {
		px := x + graphInset + nx[i]*(w-2*graphInset)
		py := y + (h - graphInset) - ny[i]*(h-graphTopReserve)
		if i == 0 {
			s.MoveTo(px, py)
		} else {
			s.LineTo(px, py)
		}
	}
	s.Stroke()
	return nil
}
