package style

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#4dc3ff", color.NRGBA{R: 0x4d, G: 0xc3, B: 0xff, A: 255}},
		{"#4DC3FF", color.NRGBA{R: 0x4d, G: 0xc3, B: 0xff, A: 255}},
		{"#fff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#00aaff80", color.NRGBA{R: 0, G: 0xaa, B: 0xff, A: 0x80}},
		{"rgb(1, 2, 3)", color.NRGBA{R: 1, G: 2, B: 3, A: 255}},
		{"rgba(77, 195, 255, 0.2)", color.NRGBA{R: 77, G: 195, B: 255, A: 51}},
		{"red", color.NRGBA{R: 255, A: 255}},
		{" Lime ", color.NRGBA{G: 255, A: 255}},
		{"transparent", color.NRGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "#12", "rgba(1,2)", "notacolor", "rgb(a,b,c)"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestParseOrAndHex(t *testing.T) {
	fallback := color.NRGBA{R: 9, A: 255}
	assert.Equal(t, fallback, ParseOr("bogus", fallback))
	assert.Equal(t, "#4dc3ff", Hex(ParseOr("#4dc3ff", fallback)))
}

func TestBlend(t *testing.T) {
	black := color.NRGBA{A: 255}
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, Blend(black, color.NRGBA{R: 255, A: 255}))
	assert.Equal(t, black, Blend(black, color.NRGBA{R: 255, G: 255, B: 255}))

	half := Blend(black, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	assert.InDelta(t, 100, int(half.R), 1)
	assert.InDelta(t, 50, int(half.G), 1)
	assert.Equal(t, uint8(255), half.A)
}
