package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// Field aliases, in precedence order.
var (
	tagFields     = []string{"tool", "type", "tool_name"}
	payloadFields = []string{"data", "text", "content"}
)

// NormalizeObjects maps every raw record onto a CanvasObject, keeping order.
func NormalizeObjects(raws []json.RawMessage) []CanvasObject {
	out := make([]CanvasObject, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeObject(raw))
	}
	return out
}

// NormalizeObject resolves a raw server record into the canonical CanvasObject.
// Aliased fields follow JavaScript truthiness: the first alias holding a
// non-empty, non-zero, non-null value wins. Records that are not JSON objects
// normalize to KindUnknown.
func NormalizeObject(raw json.RawMessage) CanvasObject {
	obj := CanvasObject{Raw: raw}
	if _, t := field(raw); t != jsonparser.Object {
		return obj
	}

	if v, t, ok := firstTruthy(raw, tagFields...); ok {
		obj.Tool = jsString(v, t)
	}
	obj.Kind = KindOf(obj.Tool)

	if v, t := field(raw, "id"); t == jsonparser.String {
		obj.ID = unescape(v)
	}
	if v, t := field(raw, "color"); truthy(v, t) {
		obj.Color = jsString(v, t)
	}

	obj.X = number(raw, "x")
	obj.Y = number(raw, "y")
	obj.Width = number(raw, "width")
	obj.Height = number(raw, "height")

	switch obj.Kind {
	case KindInfoBox:
		obj.Info = infoPayload(raw)
	case KindLineGraph:
		if v, t := field(raw, "label"); t != jsonparser.NotExist {
			obj.Label = jsString(v, t)
			obj.HasLabel = true
		}
		obj.Series = series(raw)
	case KindCircle:
		obj.CenterX = number(raw, "center_x")
		obj.CenterY = number(raw, "center_y")
		obj.Radius = number(raw, "radius")
	case KindLine:
		obj.StartX = number(raw, "start_x")
		obj.StartY = number(raw, "start_y")
		obj.EndX = number(raw, "end_x")
		obj.EndY = number(raw, "end_y")
	case KindAscii:
		if v, t := field(raw, "text_content"); t == jsonparser.String {
			s := unescape(v)
			obj.Text = &s
		}
		if v, t := field(raw, "font_size"); truthy(v, t) {
			obj.FontSize = toNumber(v, t)
		}
	}
	return obj
}

func infoPayload(raw []byte) InfoPayload {
	v, t, ok := firstTruthy(raw, payloadFields...)
	if !ok {
		return InfoPayload{}
	}
	switch t {
	case jsonparser.String:
		return TextPayload(unescape(v))
	case jsonparser.Object:
		var pairs []KeyValue
		_ = jsonparser.ObjectEach(v, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			pairs = append(pairs, KeyValue{Key: string(key), Value: jsString(value, vt)})
			return nil
		})
		return PairsPayload(pairs...)
	case jsonparser.Array:
		var pairs []KeyValue
		i := 0
		_, _ = jsonparser.ArrayEach(v, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			pairs = append(pairs, KeyValue{Key: strconv.Itoa(i), Value: jsString(value, vt)})
			i++
		})
		return PairsPayload(pairs...)
	}
	// Numbers and booleans carry no entries.
	return InfoPayload{}
}

// series reads data as [x,y] pairs or {x,y} records, falling back to a flat
// series_data list indexed by position.
func series(raw []byte) []Point {
	var pts []Point
	if v, t := field(raw, "data"); t == jsonparser.Array {
		_, _ = jsonparser.ArrayEach(v, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			switch vt {
			case jsonparser.Array:
				pts = append(pts, Point{X: number(value, "[0]"), Y: number(value, "[1]")})
			case jsonparser.Object:
				pts = append(pts, Point{X: number(value, "x"), Y: number(value, "y")})
			default:
				pts = append(pts, Point{X: math.NaN(), Y: math.NaN()})
			}
		})
		return pts
	}
	if v, t := field(raw, "series_data"); t == jsonparser.Array {
		i := 0
		_, _ = jsonparser.ArrayEach(v, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			pts = append(pts, Point{X: float64(i), Y: toNumber(value, vt)})
			i++
		})
	}
	return pts
}

func field(raw []byte, keys ...string) ([]byte, jsonparser.ValueType) {
	v, t, _, err := jsonparser.Get(raw, keys...)
	if err != nil {
		return nil, jsonparser.NotExist
	}
	return v, t
}

func firstTruthy(raw []byte, keys ...string) ([]byte, jsonparser.ValueType, bool) {
	for _, k := range keys {
		if v, t := field(raw, k); truthy(v, t) {
			return v, t, true
		}
	}
	return nil, jsonparser.NotExist, false
}

func number(raw []byte, key string) float64 {
	v, t := field(raw, key)
	return toNumber(v, t)
}

func truthy(v []byte, t jsonparser.ValueType) bool {
	switch t {
	case jsonparser.String:
		return len(v) > 0
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(v)
		return err == nil && f != 0
	case jsonparser.Boolean:
		return string(v) == "true"
	case jsonparser.Object, jsonparser.Array:
		return true
	}
	return false
}

// toNumber coerces a JSON value the way arithmetic on it would in a browser:
// absent is NaN, null is 0, numeric strings parse, booleans are 0 or 1.
func toNumber(v []byte, t jsonparser.ValueType) float64 {
	switch t {
	case jsonparser.Null:
		return 0
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(v)
		if err != nil {
			return math.NaN()
		}
		return f
	case jsonparser.Boolean:
		if string(v) == "true" {
			return 1
		}
		return 0
	case jsonparser.String:
		s := strings.TrimSpace(unescape(v))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// jsString renders a JSON value the way template-string interpolation would.
func jsString(v []byte, t jsonparser.ValueType) string {
	switch t {
	case jsonparser.String:
		return unescape(v)
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(v)
		if err != nil {
			return string(v)
		}
		return formatNumber(f)
	case jsonparser.Boolean:
		return string(v)
	case jsonparser.Null:
		return "null"
	case jsonparser.Object:
		return "[object Object]"
	case jsonparser.Array:
		var parts []string
		_, _ = jsonparser.ArrayEach(v, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			if vt == jsonparser.Null {
				parts = append(parts, "")
				return
			}
			parts = append(parts, jsString(value, vt))
		})
		return strings.Join(parts, ",")
	}
	return "undefined"
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if a := math.Abs(f); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func unescape(v []byte) string {
	s, err := jsonparser.ParseString(v)
	if err != nil {
		return string(v)
	}
	return s
}
