package render

import (
	"strings"

	"canvas-ai/internal/domain"
)

const (
	infoPadding    = 15
	infoLineHeight = 22
	infoFontSize   = 16
)

// WrapText draws text word-wrapped to maxWidth, starting at (x, y) and moving
// down by lineHeight per line. A word that overflows an empty line is drawn
// anyway. It returns the number of lines drawn.
func WrapText(s domain.Surface, text string, x, y, maxWidth, lineHeight float64) int {
	words := strings.Split(text, " ")
	line := ""
	lines := 0

	for n, word := range words {
		candidate := line + word + " "
		if s.MeasureText(candidate) > maxWidth && n > 0 {
			s.FillText(strings.TrimSuffix(line, " "), x, y)
			lines++
			line = word + " "
			y += lineHeight
			continue
		}
		line = candidate
	}
	s.FillText(strings.TrimSuffix(line, " "), x, y)
	return lines + 1
}

func drawInfoBox(s domain.Surface, o domain.CanvasObject, sc Scale) error {
	x, y := o.X*sc.X, o.Y*sc.Y
	w, h := o.Width*sc.X, o.Height*sc.Y

	s.SetStrokeStyle(AccentColor)
	s.StrokeRect(x, y, w, h)

	s.SetFillStyle(AccentColor)
	s.SetFont(domain.Font{Size: infoFontSize})

	cx, cy := x+infoPadding, y+infoPadding
	maxWidth := w - 2*infoPadding

	if o.Info.IsText {
		WrapText(s, o.Info.Text, cx, cy, maxWidth, infoLineHeight)
		return nil
	}
	for _, kv := range o.Info.Pairs {
		WrapText(s, kv.Key+": "+kv.Value, cx, cy, maxWidth, infoLineHeight)
		cy += 2 * infoLineHeight
	}
	return nil
}
