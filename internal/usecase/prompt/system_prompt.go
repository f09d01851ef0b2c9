package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"canvas-ai/internal/domain"
)

const systemPromptHeader = `You are an expert UI/UX designer and system architect.
Your goal is to create a dynamic, non-linear visual display on a canvas.

PRIMARY DIRECTIVE: Provide a clear textual answer to the user's request, typically within an InfoBox. Generate visual representations or drawings only when they meaningfully complement the textual answer or are explicitly requested by the user.

CRITICAL RULES:
1. The canvas background is black. All elements MUST be high-contrast. All text MUST be futuristic blue (#4dc3ff).
2. You MUST use the exact field names defined in the tools, with the tool name in the "tool" field.
3. Do NOT invent new fields.
4. In DrawAscii text_content, escape every backslash as a double backslash.

WORKFLOW:
1. Analyze the request.
2. Choose the tools that best represent the information.
3. For general drawing requests (a cat, a house, a welcome message) prefer DrawAscii. Use DrawRectangle, DrawCircle or DrawLine only for explicit geometric shapes or graph decoration.
4. A LineGraph needs "data" as a list of [x, y] pairs and a "label".
5. You may add, remove or modify objects from the current canvas objects. Keep the "id" of objects you keep.
6. Lay out all objects, new and existing, on a %dx%d canvas. Use the whole space and keep whitespace balanced; do not simply stack new elements vertically.

AVAILABLE TOOLS:
`

// SystemPrompt builds the instructions sent with every prompt.
func SystemPrompt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, systemPromptHeader, domain.LogicalWidth, domain.LogicalHeight)
	for _, t := range Tools {
		sb.WriteString(t.Describe())
		sb.WriteString("\n")
	}
	sb.WriteString(`
Respond ONLY with a valid JSON object of the form {"canvas_objects": [...]}. The list must contain every object that should remain on the canvas.
`)
	return sb.String()
}

// UserPrompt embeds the user's request and the current canvas in one message.
func UserPrompt(prompt string, current []json.RawMessage) (string, error) {
	if current == nil {
		current = []json.RawMessage{}
	}
	objs, err := json.Marshal(current)
	if err != nil {
		return "", fmt.Errorf("marshal current objects: %w", err)
	}
	quoted, err := json.Marshal(prompt)
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}
	return fmt.Sprintf("User Prompt: %s\n\nCurrent Canvas Objects: %s\n", quoted, objs), nil
}
