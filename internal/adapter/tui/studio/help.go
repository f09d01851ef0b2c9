package studio

import (
	"fmt"
	"strings"

	"canvas-ai/internal/adapter/tui/components"
	"canvas-ai/internal/usecase/prompt"
)

// helpMarkdown lists the slash commands, keybindings and drawable objects.
func helpMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Canvas AI\n\nDescribe what you want drawn and press **Enter**. ")
	sb.WriteString("The current canvas is sent along, so follow-up prompts can refine it.\n\n")

	sb.WriteString("## Commands\n\n| Command | Description |\n|---|---|\n")
	for _, c := range components.CanvasCommands {
		fmt.Fprintf(&sb, "| `%s` | %s |\n", c.Name, c.Description)
	}

	sb.WriteString("\n## Keys\n\n| Key | Action |\n|---|---|\n")
	for _, k := range [][2]string{
		{"Enter", "Draw the prompt"},
		{"Tab", "Cycle command suggestions"},
		{"PgUp/PgDn", "Scroll the canvas"},
		{"F1", "Toggle this help"},
		{"Esc", "Close help"},
		{"Ctrl+L", "Clear the canvas"},
		{"Ctrl+C", "Cancel drawing, or quit"},
	} {
		fmt.Fprintf(&sb, "| %s | %s |\n", k[0], k[1])
	}

	sb.WriteString("\n## Objects the model can draw\n\n")
	for _, t := range prompt.Tools {
		fmt.Fprintf(&sb, "- **%s**: %s\n", t.Name, t.Description)
	}
	return sb.String()
}
