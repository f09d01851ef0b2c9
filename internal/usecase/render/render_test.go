package render

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai/internal/adapter/surface/record"
	"canvas-ai/internal/domain"
)

func newTestRenderer() *Renderer {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func objects(t *testing.T, raws ...string) []domain.CanvasObject {
	t.Helper()
	msgs := make([]json.RawMessage, len(raws))
	for i, r := range raws {
		require.True(t, json.Valid([]byte(r)), r)
		msgs[i] = json.RawMessage(r)
	}
	return domain.NormalizeObjects(msgs)
}

// drawOps drops the leading ClearRect so tests see only renderer output.
func drawOps(s *record.Surface) []string {
	ops := s.Ops()
	if len(ops) > 0 && ops[0] == "ClearRect" {
		return ops[1:]
	}
	return ops
}

func TestRender_ClearsAndReturnsOnEmpty(t *testing.T) {
	s := record.New(1920, 1080)
	require.NoError(t, newTestRenderer().Render(s, nil))
	assert.Equal(t, []string{"ClearRect"}, s.Ops())
	assert.Equal(t, []float64{0, 0, 1920, 1080}, s.Calls[0].Args)
}

func TestRender_DispatchesByTool(t *testing.T) {
	tests := []struct {
		name string
		obj  string
		want []string
	}{
		{"InfoBox", `{"tool":"InfoBox","x":0,"y":0,"width":400,"height":200,"data":"hi"}`,
			[]string{"StrokeRect", "FillText"}},
		{"LineGraph", `{"tool":"LineGraph","x":0,"y":0,"width":100,"height":100,"label":"L","data":[[0,0],[1,1]]}`,
			[]string{"StrokeRect", "FillText", "BeginPath", "MoveTo", "LineTo", "Stroke"}},
		{"DrawRectangle", `{"tool":"DrawRectangle","x":0,"y":0,"width":10,"height":10}`,
			[]string{"FillRect", "StrokeRect"}},
		{"DrawCircle", `{"tool":"DrawCircle","center_x":5,"center_y":5,"radius":5}`,
			[]string{"BeginPath", "Arc", "Fill", "Stroke"}},
		{"DrawLine", `{"tool":"DrawLine","start_x":0,"start_y":0,"end_x":10,"end_y":10}`,
			[]string{"BeginPath", "MoveTo", "LineTo", "Stroke"}},
		{"DrawAscii", `{"tool":"DrawAscii","x":0,"y":0,"text_content":"a\nb"}`,
			[]string{"FillText", "FillText"}},
		{"unknown", `{"tool":"Hologram","x":0,"y":0}`, []string{}},
		{"type alias", `{"type":"DrawRectangle","x":0,"y":0,"width":1,"height":1}`,
			[]string{"FillRect", "StrokeRect"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := record.New(1920, 1080)
			require.NoError(t, newTestRenderer().Render(s, objects(t, tt.obj)))
			assert.Equal(t, tt.want, drawOps(s))
		})
	}
}

func TestRender_ScalesPerAxis(t *testing.T) {
	s := record.New(960, 1080)
	objs := objects(t, `{"tool":"DrawRectangle","x":100,"y":200,"width":300,"height":400}`)
	require.NoError(t, newTestRenderer().Render(s, objs))

	fills := s.Find("FillRect")
	require.Len(t, fills, 1)
	assert.Equal(t, []float64{50, 200, 150, 400}, fills[0].Args)
}

func TestRender_CircleRadiusUsesHorizontalScale(t *testing.T) {
	for _, h := range []float64{540, 1080, 2160} {
		s := record.New(960, h)
		objs := objects(t, `{"tool":"DrawCircle","center_x":100,"center_y":100,"radius":40}`)
		require.NoError(t, newTestRenderer().Render(s, objs))

		arcs := s.Find("Arc")
		require.Len(t, arcs, 1)
		assert.Equal(t, 50.0, arcs[0].Args[0])
		assert.InDelta(t, 100*h/1080, arcs[0].Args[1], 1e-9)
		assert.Equal(t, 20.0, arcs[0].Args[2], "radius scales by W/1920 only (h=%v)", h)
		assert.InDelta(t, 2*math.Pi, arcs[0].Args[4], 1e-12)
	}
}

func TestRender_RectangleStyle(t *testing.T) {
	s := record.New(1920, 1080)
	objs := objects(t,
		`{"tool":"DrawRectangle","x":0,"y":0,"width":100,"height":100}`,
		`{"tool":"DrawRectangle","x":0,"y":0,"width":100,"height":100,"color":"#ff0000"}`,
	)
	require.NoError(t, newTestRenderer().Render(s, objs))

	fills := s.Find("FillRect")
	strokes := s.Find("StrokeRect")
	require.Len(t, fills, 2)
	require.Len(t, strokes, 2)
	assert.Equal(t, AccentFill, fills[0].Fill)
	assert.Equal(t, []float64{0, 0, 100, 100}, strokes[0].Args)
	assert.Equal(t, AccentColor, strokes[0].Stroke)
	assert.Equal(t, "#ff0000", strokes[1].Stroke)
}

func TestRender_LineWidthIsRestored(t *testing.T) {
	s := record.New(1920, 1080)
	objs := objects(t, `{"tool":"DrawLine","start_x":0,"start_y":0,"end_x":10,"end_y":0,"color":"lime"}`)
	require.NoError(t, newTestRenderer().Render(s, objs))

	strokes := s.Find("Stroke")
	require.Len(t, strokes, 1)
	assert.Equal(t, 2.0, strokes[0].LineWidth)
	assert.Equal(t, "lime", strokes[0].Stroke)
	assert.Equal(t, 1.0, s.LineWidth())
}

func TestRender_AsciiFontUsesSmallerScale(t *testing.T) {
	s := record.New(960, 1080) // sx = 0.5, sy = 1
	objs := objects(t, `{"tool":"DrawAscii","x":100,"y":100,"font_size":20,"text_content":"one\ntwo\nthree"}`)
	require.NoError(t, newTestRenderer().Render(s, objs))

	texts := s.Find("FillText")
	require.Len(t, texts, 3)
	for i, c := range texts {
		assert.Equal(t, 10.0, c.Font.Size)
		assert.Equal(t, 50.0, c.Args[0])
		assert.InDelta(t, 100+float64(i)*12, c.Args[1], 1e-9)
	}
	assert.Equal(t, []string{"one", "two", "three"}, s.Texts())
}

func TestRender_AsciiDefaultFontSize(t *testing.T) {
	s := record.New(1920, 1080)
	objs := objects(t, `{"tool":"DrawAscii","x":0,"y":0,"text_content":"x"}`)
	require.NoError(t, newTestRenderer().Render(s, objs))
	assert.Equal(t, 14.0, s.Find("FillText")[0].Font.Size)
}

func TestRender_AsciiMissingTextAbortsPass(t *testing.T) {
	s := record.New(1920, 1080)
	objs := objects(t,
		`{"tool":"DrawRectangle","x":0,"y":0,"width":10,"height":10}`,
		`{"tool":"DrawAscii","x":0,"y":0}`,
		`{"tool":"DrawLine","start_x":0,"start_y":0,"end_x":1,"end_y":1}`,
	)
	err := newTestRenderer().Render(s, objs)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, domain.CodeRenderMissingField, domain.ErrorCodeOf(err))

	// The rectangle drawn before the failure stays; the line after it never runs.
	assert.Equal(t, []string{"FillRect", "StrokeRect"}, drawOps(s))
}

func TestRender_RoundTripRectangle(t *testing.T) {
	s := record.New(1280, 720)
	objs := objects(t, `{"tool":"DrawRectangle","x":0,"y":0,"width":100,"height":100}`)
	require.NoError(t, newTestRenderer().Render(s, objs))

	require.Len(t, s.Find("FillRect"), 1)
	require.Len(t, s.Find("StrokeRect"), 1)
	got := s.Find("FillRect")[0].Args
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 0.0, got[1])
	assert.InDelta(t, 100*1280.0/1920, got[2], 1e-9)
	assert.InDelta(t, 100*720.0/1080, got[3], 1e-9)
}

func TestRender_NaNCoordinatesPassThrough(t *testing.T) {
	s := record.New(1920, 1080)
	objs := objects(t, `{"tool":"DrawRectangle","y":0,"width":10,"height":10}`)
	require.NoError(t, newTestRenderer().Render(s, objs))
	assert.True(t, math.IsNaN(s.Find("FillRect")[0].Args[0]))
}
