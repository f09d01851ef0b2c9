package domain

import "encoding/json"

// Logical canvas resolution. Every stored coordinate is expressed in this space.
const (
	LogicalWidth  = 1920
	LogicalHeight = 1080
)

// Tool names as emitted by the prompt service.
const (
	ToolInfoBox       = "InfoBox"
	ToolLineGraph     = "LineGraph"
	ToolDrawRectangle = "DrawRectangle"
	ToolDrawCircle    = "DrawCircle"
	ToolDrawLine      = "DrawLine"
	ToolDrawAscii     = "DrawAscii"
)

// Kind is the resolved variant of a CanvasObject.
type Kind int

const (
	KindUnknown Kind = iota
	KindInfoBox
	KindLineGraph
	KindRectangle
	KindCircle
	KindLine
	KindAscii
)

var kindNames = map[Kind]string{
	KindInfoBox:   ToolInfoBox,
	KindLineGraph: ToolLineGraph,
	KindRectangle: ToolDrawRectangle,
	KindCircle:    ToolDrawCircle,
	KindLine:      ToolDrawLine,
	KindAscii:     ToolDrawAscii,
}

// String returns the tool name of the kind, or "unknown".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindOf maps a tool tag to its Kind. Matching is exact, as the tags are case sensitive.
func KindOf(tool string) Kind {
	for k, name := range kindNames {
		if name == tool {
			return k
		}
	}
	return KindUnknown
}

// KeyValue is one entry of an InfoBox mapping payload.
type KeyValue struct {
	Key   string
	Value string
}

// InfoPayload is the content of an InfoBox: either free text or an ordered
// list of key/value pairs. The zero value is an empty mapping.
type InfoPayload struct {
	IsText bool
	Text   string
	Pairs  []KeyValue
}

// TextPayload returns a text InfoPayload.
func TextPayload(s string) InfoPayload { return InfoPayload{IsText: true, Text: s} }

// PairsPayload returns a mapping InfoPayload that keeps the given order.
func PairsPayload(pairs ...KeyValue) InfoPayload { return InfoPayload{Pairs: pairs} }

// Point is one sample of a LineGraph series.
type Point struct {
	X, Y float64
}

// CanvasObject is a normalized drawing instruction. Only the fields of the
// resolved Kind are meaningful; numeric fields that were absent hold NaN.
type CanvasObject struct {
	Kind Kind
	Tool string
	ID   string

	X, Y, Width, Height float64

	CenterX, CenterY, Radius float64

	StartX, StartY, EndX, EndY float64

	Color string
	Label string
	// HasLabel is false when the record carried no label.
	HasLabel bool

	Info   InfoPayload
	Series []Point

	// Text is DrawAscii's text_content; nil when absent.
	Text     *string
	FontSize float64

	// Raw is the record exactly as received.
	Raw json.RawMessage
}
