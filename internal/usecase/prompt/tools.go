package prompt

import (
	"fmt"
	"slices"
	"strings"

	"canvas-ai/internal/domain"
)

// Field describes one property of a canvas tool.
type Field struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// Tool describes a canvas object kind the model may emit.
type Tool struct {
	Name        string
	Description string
	Fields      []Field
}

var (
	boxFields = []Field{
		{Name: "x", Type: "number", Required: true, Description: "left edge"},
		{Name: "y", Type: "number", Required: true, Description: "top edge"},
		{Name: "width", Type: "number", Required: true},
		{Name: "height", Type: "number", Required: true},
	}
	colorField = Field{Name: "color", Type: "string", Description: "CSS color, defaults to #4dc3ff"}
)

func withBox(extra ...Field) []Field {
	return append(slices.Clone(boxFields), extra...)
}

// Tools is the registry of canvas tools, in the order they are presented to the model.
var Tools = []Tool{
	{
		Name:        domain.ToolInfoBox,
		Description: "Use for displaying key-value pairs or simple text statements.",
		Fields: withBox(
			Field{Name: "data", Type: "object|string", Required: true, Description: "a flat key/value mapping or a plain text string"},
		),
	},
	{
		Name:        domain.ToolLineGraph,
		Description: "Use to display time-series data or show the relationship between two variables.",
		Fields: withBox(
			Field{Name: "label", Type: "string", Required: true, Description: "graph title"},
			Field{Name: "data", Type: "array", Required: true, Description: "list of [x, y] pairs, e.g. [[1, 10], [2, 15]]"},
		),
	},
	{
		Name:        domain.ToolDrawRectangle,
		Description: "Draws a rectangle with a translucent fill.",
		Fields:      withBox(colorField),
	},
	{
		Name:        domain.ToolDrawCircle,
		Description: "Draws a circle with a translucent fill.",
		Fields: []Field{
			{Name: "center_x", Type: "number", Required: true},
			{Name: "center_y", Type: "number", Required: true},
			{Name: "radius", Type: "number", Required: true},
			colorField,
		},
	},
	{
		Name:        domain.ToolDrawLine,
		Description: "Draws a straight line between two points.",
		Fields: []Field{
			{Name: "start_x", Type: "number", Required: true},
			{Name: "start_y", Type: "number", Required: true},
			{Name: "end_x", Type: "number", Required: true},
			{Name: "end_y", Type: "number", Required: true},
			colorField,
		},
	},
	{
		Name:        domain.ToolDrawAscii,
		Description: "Draws multi-line ASCII art or free-form text in a monospace font. Preferred for general drawings.",
		Fields: []Field{
			{Name: "x", Type: "number", Required: true},
			{Name: "y", Type: "number", Required: true},
			{Name: "text_content", Type: "string", Required: true, Description: "lines separated by \\n"},
			{Name: "font_size", Type: "number", Description: "defaults to 14"},
			colorField,
		},
	},
}

// Describe renders one tool as a line of the system prompt.
func (t Tool) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- %s: %s", t.Name, t.Description)
	if len(t.Fields) == 0 {
		return sb.String()
	}
	sb.WriteString(" Fields: ")
	for i, f := range t.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(" (")
		sb.WriteString(f.Type)
		if !f.Required {
			sb.WriteString(", optional")
		}
		if f.Description != "" {
			sb.WriteString("; ")
			sb.WriteString(f.Description)
		}
		sb.WriteString(")")
	}
	sb.WriteString(".")
	return sb.String()
}

// ToolNames returns the registered tool names in registry order.
func ToolNames() []string {
	names := make([]string, len(Tools))
	for i, t := range Tools {
		names[i] = t.Name
	}
	return names
}
