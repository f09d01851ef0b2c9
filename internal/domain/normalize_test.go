package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(t *testing.T, s string) CanvasObject {
	t.Helper()
	require.True(t, json.Valid([]byte(s)), "invalid test JSON: %s", s)
	return NormalizeObject(json.RawMessage(s))
}

func TestNormalizeObject_TagPrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Kind
	}{
		{"tool", `{"tool":"InfoBox","type":"LineGraph"}`, KindInfoBox},
		{"type fallback", `{"type":"DrawLine"}`, KindLine},
		{"tool_name fallback", `{"tool_name":"DrawAscii"}`, KindAscii},
		{"empty tool falls through", `{"tool":"","type":"DrawCircle"}`, KindCircle},
		{"null tool falls through", `{"tool":null,"tool_name":"DrawRectangle"}`, KindRectangle},
		{"unknown", `{"tool":"Sparkles"}`, KindUnknown},
		{"case sensitive", `{"tool":"infobox"}`, KindUnknown},
		{"no tag", `{"x":1}`, KindUnknown},
		{"not an object", `[1,2]`, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, norm(t, tt.in).Kind)
		})
	}
}

func TestNormalizeObject_InfoPayload(t *testing.T) {
	t.Run("data string", func(t *testing.T) {
		o := norm(t, `{"tool":"InfoBox","data":"hello world","text":"ignored"}`)
		assert.Equal(t, TextPayload("hello world"), o.Info)
	})

	t.Run("falls back to text then content", func(t *testing.T) {
		o := norm(t, `{"tool":"InfoBox","data":"","content":"from content"}`)
		assert.Equal(t, TextPayload("from content"), o.Info)

		o = norm(t, `{"tool":"InfoBox","text":"from text","content":"x"}`)
		assert.Equal(t, TextPayload("from text"), o.Info)
	})

	t.Run("mapping keeps document order", func(t *testing.T) {
		o := norm(t, `{"tool":"InfoBox","data":{"zeta":"1","alpha":2,"ok":true,"nil":null,"list":[1,"a",null]}}`)
		require.False(t, o.Info.IsText)
		assert.Equal(t, []KeyValue{
			{Key: "zeta", Value: "1"},
			{Key: "alpha", Value: "2"},
			{Key: "ok", Value: "true"},
			{Key: "nil", Value: "null"},
			{Key: "list", Value: "1,a,"},
		}, o.Info.Pairs)
	})

	t.Run("absent is empty mapping", func(t *testing.T) {
		o := norm(t, `{"tool":"InfoBox"}`)
		assert.False(t, o.Info.IsText)
		assert.Empty(t, o.Info.Pairs)
	})

	t.Run("array becomes index-keyed pairs", func(t *testing.T) {
		o := norm(t, `{"tool":"InfoBox","data":["cpu",42,{"a":1}]}`)
		require.False(t, o.Info.IsText)
		assert.Equal(t, []KeyValue{
			{Key: "0", Value: "cpu"},
			{Key: "1", Value: "42"},
			{Key: "2", Value: "[object Object]"},
		}, o.Info.Pairs)
	})

	t.Run("number and boolean draw nothing", func(t *testing.T) {
		for _, raw := range []string{
			`{"tool":"InfoBox","data":42}`,
			`{"tool":"InfoBox","data":true,"text":"shadowed"}`,
		} {
			o := norm(t, raw)
			assert.False(t, o.Info.IsText, raw)
			assert.Empty(t, o.Info.Pairs, raw)
		}
	})

	t.Run("falsy number falls through to text", func(t *testing.T) {
		o := norm(t, `{"tool":"InfoBox","data":0,"text":"fallback"}`)
		assert.Equal(t, TextPayload("fallback"), o.Info)
	})

	t.Run("unicode escapes are decoded", func(t *testing.T) {
		o := norm(t, `{"tool":"InfoBox","data":"caf\u00e9"}`)
		assert.Equal(t, "café", o.Info.Text)
	})
}

func TestNormalizeObject_Numbers(t *testing.T) {
	o := norm(t, `{"tool":"DrawRectangle","x":"12.5","y":null,"width":true,"color":"red"}`)
	assert.Equal(t, 12.5, o.X)
	assert.Equal(t, 0.0, o.Y)
	assert.Equal(t, 1.0, o.Width)
	assert.True(t, math.IsNaN(o.Height), "absent height should be NaN")
	assert.Equal(t, "red", o.Color)

	o = norm(t, `{"tool":"DrawRectangle","x":"abc","color":""}`)
	assert.True(t, math.IsNaN(o.X))
	assert.Empty(t, o.Color)
}

func TestNormalizeObject_Shapes(t *testing.T) {
	c := norm(t, `{"tool":"DrawCircle","center_x":100,"center_y":50,"radius":25}`)
	assert.Equal(t, 100.0, c.CenterX)
	assert.Equal(t, 50.0, c.CenterY)
	assert.Equal(t, 25.0, c.Radius)

	l := norm(t, `{"tool":"DrawLine","start_x":1,"start_y":2,"end_x":3,"end_y":4,"id":"abc"}`)
	assert.Equal(t, []float64{1, 2, 3, 4}, []float64{l.StartX, l.StartY, l.EndX, l.EndY})
	assert.Equal(t, "abc", l.ID)
}

func TestNormalizeObject_Series(t *testing.T) {
	t.Run("pairs", func(t *testing.T) {
		o := norm(t, `{"tool":"LineGraph","label":"Sales","data":[[0,0],[1,10],[2,5]]}`)
		assert.Equal(t, []Point{{0, 0}, {1, 10}, {2, 5}}, o.Series)
		assert.Equal(t, "Sales", o.Label)
		assert.True(t, o.HasLabel)
	})

	t.Run("records", func(t *testing.T) {
		o := norm(t, `{"tool":"LineGraph","data":[{"x":3,"y":4},{"y":1,"x":5}]}`)
		assert.Equal(t, []Point{{3, 4}, {5, 1}}, o.Series)
		assert.False(t, o.HasLabel)
	})

	t.Run("flat series_data", func(t *testing.T) {
		o := norm(t, `{"tool":"LineGraph","series_data":[7,8,9]}`)
		assert.Equal(t, []Point{{0, 7}, {1, 8}, {2, 9}}, o.Series)
	})

	t.Run("empty", func(t *testing.T) {
		o := norm(t, `{"tool":"LineGraph","data":[]}`)
		assert.Empty(t, o.Series)
	})
}

func TestNormalizeObject_Ascii(t *testing.T) {
	o := norm(t, `{"tool":"DrawAscii","x":1,"y":2,"text_content":"/\\_/\\\n( o.o )","font_size":"20"}`)
	require.NotNil(t, o.Text)
	assert.Equal(t, "/\\_/\\\n( o.o )", *o.Text)
	assert.Equal(t, 20.0, o.FontSize)

	missing := norm(t, `{"tool":"DrawAscii","font_size":0}`)
	assert.Nil(t, missing.Text)
	assert.Zero(t, missing.FontSize)
}

func TestNormalizeObjects_KeepsRaw(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"tool":"DrawLine","extra":{"keep":true}}`),
		json.RawMessage(`{"tool":"Nope"}`),
	}
	objs := NormalizeObjects(raws)
	require.Len(t, objs, 2)
	assert.JSONEq(t, string(raws[0]), string(objs[0].Raw))
	assert.Equal(t, KindUnknown, objs[1].Kind)
	assert.Equal(t, "Nope", objs[1].Tool)
}

func TestKindString(t *testing.T) {
	for _, k := range []Kind{KindInfoBox, KindLineGraph, KindRectangle, KindCircle, KindLine, KindAscii} {
		assert.Equal(t, k, KindOf(k.String()))
	}
	assert.Equal(t, "unknown", KindUnknown.String())
}
