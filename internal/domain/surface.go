package domain

// Font selects the face used by FillText and MeasureText.
type Font struct {
	Size float64
	Bold bool
}

// Surface is a stateful 2D immediate-mode drawing context. Styles are CSS
// color strings ("#4dc3ff", "rgba(77,195,255,0.2)", "red"). Implementations
// treat non-finite coordinates as no-ops.
type Surface interface {
	// Size returns the drawable area in device pixels (or cells).
	Size() (width, height float64)
	ClearRect(x, y, w, h float64)

	SetStrokeStyle(color string)
	SetFillStyle(color string)
	SetLineWidth(w float64)
	LineWidth() float64
	SetFont(f Font)

	StrokeRect(x, y, w, h float64)
	FillRect(x, y, w, h float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	// Arc adds a circular arc centered at (x, y). Angles are in radians.
	Arc(x, y, r, start, end float64)
	Stroke()
	Fill()

	// FillText draws s with its alphabetic baseline at y.
	FillText(s string, x, y float64)
	// MeasureText returns the advance width of s in the current font.
	MeasureText(s string) float64
}
