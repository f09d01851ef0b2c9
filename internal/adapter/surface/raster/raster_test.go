package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai/internal/domain"
)

func rgbaAt(t *testing.T, s *Surface, x, y int) color.NRGBA {
	t.Helper()
	return color.NRGBAModel.Convert(s.Image().At(x, y)).(color.NRGBA)
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := New(0, 10)
	assert.Error(t, err)
}

func TestClearRect_PaintsBackground(t *testing.T) {
	s, err := New(20, 20, WithBackground(color.NRGBA{R: 10, G: 20, B: 30, A: 255}))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, rgbaAt(t, s, 5, 5))

	s.SetFillStyle("#ffffff")
	s.FillRect(0, 0, 20, 20)
	s.ClearRect(0, 0, 10, 10)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, rgbaAt(t, s, 5, 5))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, rgbaAt(t, s, 15, 15))
}

func TestFillRect_UsesFillStyle(t *testing.T) {
	s, err := New(20, 20)
	require.NoError(t, err)

	s.SetFillStyle("#4dc3ff")
	s.FillRect(2, 2, 10, 10)
	assert.Equal(t, color.NRGBA{R: 0x4d, G: 0xc3, B: 0xff, A: 255}, rgbaAt(t, s, 6, 6))
	assert.Equal(t, Background, rgbaAt(t, s, 16, 16))
}

func TestInvalidStyleKeepsPrevious(t *testing.T) {
	s, err := New(10, 10)
	require.NoError(t, err)

	s.SetFillStyle("red")
	s.SetFillStyle("not-a-color")
	s.FillRect(0, 0, 10, 10)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, rgbaAt(t, s, 5, 5))
}

func TestNonFiniteCoordinatesAreIgnored(t *testing.T) {
	s, err := New(10, 10)
	require.NoError(t, err)

	s.SetFillStyle("red")
	s.FillRect(math.NaN(), 0, 10, 10)
	s.BeginPath()
	s.MoveTo(math.Inf(1), 0)
	s.LineTo(5, 5)
	s.Stroke()
	s.FillText("x", math.NaN(), 5)
	assert.Equal(t, Background, rgbaAt(t, s, 1, 1))
}

func TestLineWidth(t *testing.T) {
	s, err := New(10, 10)
	require.NoError(t, err)

	assert.Equal(t, 1.0, s.LineWidth())
	s.SetLineWidth(2)
	assert.Equal(t, 2.0, s.LineWidth())
	s.SetLineWidth(math.NaN())
	assert.Equal(t, 2.0, s.LineWidth())
}

func TestMeasureText_Monospace(t *testing.T) {
	s, err := New(100, 100)
	require.NoError(t, err)

	s.SetFont(domain.Font{Size: 16})
	one := s.MeasureText("a")
	assert.Greater(t, one, 0.0)
	assert.InDelta(t, 4*one, s.MeasureText("abcd"), 0.5)

	s.SetFont(domain.Font{Size: 32})
	assert.Greater(t, s.MeasureText("a"), one)
}

func TestCircleFillAndStroke(t *testing.T) {
	s, err := New(40, 40)
	require.NoError(t, err)

	s.BeginPath()
	s.Arc(20, 20, 10, 0, 2*math.Pi)
	s.SetFillStyle("#00ff00")
	s.Fill()
	s.SetStrokeStyle("#ff0000")
	s.Stroke()

	assert.Equal(t, color.NRGBA{G: 255, A: 255}, rgbaAt(t, s, 20, 20))
	assert.Equal(t, Background, rgbaAt(t, s, 1, 1))
}

func TestEncodePNG(t *testing.T) {
	s, err := New(32, 16)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}
