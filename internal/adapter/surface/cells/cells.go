// Package cells implements domain.Surface on a terminal character grid.
//
// The grid exposes a virtual pixel space of cols*CellWidth by rows*CellHeight.
// Shapes are rasterized to cells with box-drawing glyphs; text advances one
// cell per column of display width, regardless of the requested font size.
package cells

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"canvas-ai/internal/adapter/surface/style"
	"canvas-ai/internal/domain"
)

// Default virtual pixel size of one cell.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

type cell struct {
	r      rune
	fg, bg string // "#rrggbb" or "" for terminal default
	// cont marks the right half of a double-width rune.
	cont bool
}

type point struct{ x, y float64 }

// Surface is a character grid. It is not safe for concurrent use.
type Surface struct {
	cols, rows   int
	cellW, cellH float64
	grid         []cell

	background color.NRGBA
	stroke     color.NRGBA
	fill       color.NRGBA
	lineWidth  float64
	font       domain.Font

	subpaths [][]point
}

var _ domain.Surface = (*Surface)(nil)

// Option configures a Surface.
type Option func(*Surface)

// WithCellSize sets the virtual pixel size of one cell.
func WithCellSize(w, h float64) Option {
	return func(s *Surface) {
		if w > 0 && h > 0 {
			s.cellW, s.cellH = w, h
		}
	}
}

// WithBackground sets the color translucent fills are blended over.
func WithBackground(c color.NRGBA) Option {
	return func(s *Surface) { s.background = c }
}

// New creates a cols x rows grid.
func New(cols, rows int, opts ...Option) *Surface {
	s := &Surface{
		cellW:      DefaultCellWidth,
		cellH:      DefaultCellHeight,
		background: color.NRGBA{A: 255},
		stroke:     color.NRGBA{A: 255},
		fill:       color.NRGBA{A: 255},
		lineWidth:  1,
		font:       domain.Font{Size: 10},
	}
	for _, o := range opts {
		o(s)
	}
	s.Resize(cols, rows)
	return s
}

// Resize replaces the grid with a blank cols x rows one.
func (s *Surface) Resize(cols, rows int) {
	s.cols, s.rows = max(cols, 0), max(rows, 0)
	s.grid = make([]cell, s.cols*s.rows)
	s.ClearRect(0, 0, float64(s.cols)*s.cellW, float64(s.rows)*s.cellH)
}

// Grid returns the grid dimensions in cells.
func (s *Surface) Grid() (cols, rows int) { return s.cols, s.rows }

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s *Surface) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return nil
	}
	return &s.grid[row*s.cols+col]
}

func (s *Surface) put(col, row int, r rune, fg string) {
	if c := s.at(col, row); c != nil {
		c.r, c.fg, c.cont = r, fg, false
	}
}

// span returns the cells whose centers fall inside [x, x+w) x [y, y+h).
func (s *Surface) span(x, y, w, h float64) (c0, r0, c1, r1 int) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	c0 = clampIndex(math.Ceil(x/s.cellW-0.5), s.cols)
	r0 = clampIndex(math.Ceil(y/s.cellH-0.5), s.rows)
	c1 = clampIndex(math.Ceil((x+w)/s.cellW-0.5)-1, s.cols)
	r1 = clampIndex(math.Ceil((y+h)/s.cellH-0.5)-1, s.rows)
	return max(c0, 0), max(r0, 0), min(c1, s.cols-1), min(r1, s.rows-1)
}

// clampIndex converts a cell coordinate to int, pinned to [-1, n] so that
// far-off coordinates neither overflow nor drive long loops.
func clampIndex(v float64, n int) int {
	return int(math.Max(-1, math.Min(v, float64(n))))
}

func (s *Surface) Size() (float64, float64) {
	return float64(s.cols) * s.cellW, float64(s.rows) * s.cellH
}

func (s *Surface) ClearRect(x, y, w, h float64) {
	if !finite(x, y, w, h) {
		return
	}
	c0, r0, c1, r1 := s.span(x, y, w, h)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			*s.at(col, row) = cell{r: ' '}
		}
	}
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
	if finite(f.Size) && f.Size > 0 {
		s.font = f
	}
}

func (s *Surface) cellOf(x, y float64) (int, int) {
	return clampIndex(math.Floor(x/s.cellW), s.cols), clampIndex(math.Floor(y/s.cellH), s.rows)
}

func (s *Surface) StrokeRect(x, y, w, h float64) {
	if !finite(x, y, w, h) {
		return
	}
	c0, r0 := s.cellOf(x, y)
	c1, r1 := s.cellOf(x+w, y+h)
	if c1 < c0 {
		c0, c1 = c1, c0
	}
	if r1 < r0 {
		r0, r1 = r1, r0
	}
	fg := style.Hex(s.stroke)
	for col := c0 + 1; col < c1; col++ {
		s.put(col, r0, '─', fg)
		s.put(col, r1, '─', fg)
	}
	for row := r0 + 1; row < r1; row++ {
		s.put(c0, row, '│', fg)
		s.put(c1, row, '│', fg)
	}
	switch {
	case c0 == c1 && r0 == r1:
		s.put(c0, r0, '□', fg)
	case r0 == r1:
		s.put(c0, r0, '─', fg)
		s.put(c1, r0, '─', fg)
	case c0 == c1:
		s.put(c0, r0, '│', fg)
		s.put(c0, r1, '│', fg)
	default:
		s.put(c0, r0, '┌', fg)
		s.put(c1, r0, '┐', fg)
		s.put(c0, r1, '└', fg)
		s.put(c1, r1, '┘', fg)
	}
}

func (s *Surface) FillRect(x, y, w, h float64) {
	if !finite(x, y, w, h) {
		return
	}
	c0, r0, c1, r1 := s.span(x, y, w, h)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			s.shade(col, row)
		}
	}
}

func (s *Surface) shade(col, row int) {
	c := s.at(col, row)
	if c == nil {
		return
	}
	base := s.background
	if c.bg != "" {
		base = style.ParseOr(c.bg, base)
	}
	c.bg = style.Hex(style.Blend(base, s.fill))
}

func (s *Surface) BeginPath() { s.subpaths = s.subpaths[:0] }

func (s *Surface) MoveTo(x, y float64) {
	if finite(x, y) {
		s.subpaths = append(s.subpaths, []point{{x, y}})
	}
}

func (s *Surface) LineTo(x, y float64) {
	if !finite(x, y) {
		return
	}
	if len(s.subpaths) == 0 {
		s.MoveTo(x, y)
		return
	}
	last := len(s.subpaths) - 1
	s.subpaths[last] = append(s.subpaths[last], point{x, y})
}

// Arc flattens the arc into line segments roughly one cell long.
func (s *Surface) Arc(x, y, r, start, end float64) {
	if !finite(x, y, r, start, end) || r < 0 {
		return
	}
	sweep := end - start
	n := int(math.Ceil(math.Abs(sweep) * r / math.Min(s.cellW, s.cellH)))
	n = min(max(n, 8), 512)
	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		s.LineTo(x+r*math.Cos(a), y+r*math.Sin(a))
	}
}

func (s *Surface) Stroke() {
	fg := style.Hex(s.stroke)
	for _, sp := range s.subpaths {
		for i := 1; i < len(sp); i++ {
			s.segment(sp[i-1], sp[i], fg)
		}
	}
}

func glyphFor(dx, dy float64) rune {
	ax, ay := math.Abs(dx), math.Abs(dy)
	switch {
	case ay*2 < ax:
		return '─'
	case ax*2 < ay:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (s *Surface) segment(a, b point, fg string) {
	g := glyphFor(b.x-a.x, b.y-a.y)
	w, h := s.Size()
	a, b, ok := clipSegment(a, b, -s.cellW, -s.cellH, w+s.cellW, h+s.cellH)
	if !ok {
		return
	}
	c0, r0 := s.cellOf(a.x, a.y)
	c1, r1 := s.cellOf(b.x, b.y)
	steps := max(abs(c1-c0), abs(r1-r0))
	if steps == 0 {
		s.put(c0, r0, g, fg)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		col := c0 + int(math.Round(t*float64(c1-c0)))
		row := r0 + int(math.Round(t*float64(r1-r0)))
		s.put(col, row, g, fg)
	}
}

// clipSegment clips a-b to the rectangle [x0, x1] x [y0, y1]
// (Liang-Barsky). ok is false when the segment misses it entirely.
func clipSegment(a, b point, x0, y0, x1, y1 float64) (point, point, bool) {
	dx, dy := b.x-a.x, b.y-a.y
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, a.x - x0},
		{dx, x1 - a.x},
		{-dy, a.y - y0},
		{dy, y1 - a.y},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return point{a.x + t0*dx, a.y + t0*dy}, point{a.x + t1*dx, a.y + t1*dy}, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Fill shades every cell whose center lies inside the path (even-odd rule).
func (s *Surface) Fill() {
	if len(s.subpaths) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sp := range s.subpaths {
		for _, p := range sp {
			minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
			minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
		}
	}
	c0, r0, c1, r1 := s.span(minX, minY, maxX-minX, maxY-minY)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			cx, cy := (float64(col)+0.5)*s.cellW, (float64(row)+0.5)*s.cellH
			if s.inside(cx, cy) {
				s.shade(col, row)
			}
		}
	}
}

func (s *Surface) inside(x, y float64) bool {
	in := false
	for _, sp := range s.subpaths {
		n := len(sp)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			pi, pj := sp[i], sp[j]
			if (pi.y > y) != (pj.y > y) && x < (pj.x-pi.x)*(y-pi.y)/(pj.y-pi.y)+pi.x {
				in = !in
			}
		}
	}
	return in
}

// FillText writes text on the row nearest its baseline.
func (s *Surface) FillText(text string, x, y float64) {
	if !finite(x, y) {
		return
	}
	colF := math.Floor(x / s.cellW)
	row := clampIndex(math.Floor(y/s.cellH+0.5), s.rows)
	if row < 0 || row >= s.rows || colF >= float64(s.cols) || colF < -float64(runewidth.StringWidth(text)) {
		return
	}
	col := int(colF)
	fg := style.Hex(s.fill)
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		s.put(col, row, r, fg)
		if w == 2 {
			if c := s.at(col+1, row); c != nil {
				c.r, c.fg, c.cont = 0, fg, true
			}
		}
		col += w
	}
}

func (s *Surface) MeasureText(text string) float64 {
	return float64(runewidth.StringWidth(text)) * s.cellW
}

// Plain returns the grid as text without styling, trailing spaces trimmed.
func (s *Surface) Plain() string {
	var b strings.Builder
	for row := 0; row < s.rows; row++ {
		var line strings.Builder
		for col := 0; col < s.cols; col++ {
			c := s.at(col, row)
			if !c.cont {
				line.WriteRune(c.r)
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		if row < s.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// String renders the grid with lipgloss colors, batching runs of equal style.
func (s *Surface) String() string {
	var b strings.Builder
	for row := 0; row < s.rows; row++ {
		var run strings.Builder
		var fg, bg string
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := lipgloss.NewStyle()
			if fg != "" {
				st = st.Foreground(lipgloss.Color(fg))
			}
			if bg != "" {
				st = st.Background(lipgloss.Color(bg))
			}
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for col := 0; col < s.cols; col++ {
			c := s.at(col, row)
			if c.cont {
				continue
			}
			if c.fg != fg || c.bg != bg {
				flush()
				fg, bg = c.fg, c.bg
			}
			run.WriteRune(c.r)
		}
		flush()
		if row < s.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
