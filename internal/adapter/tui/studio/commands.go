package studio

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"canvas-ai/internal/usecase/canvas"
)

// submitCmd runs the prompt in a background goroutine with a cancellable
// context. gen identifies the request so stale completions can be discarded.
func submitCmd(ctx context.Context, session *canvas.Session, prompt string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		err := session.Submit(ctx, prompt)
		return PromptDoneMsg{Gen: gen, Err: err, Objects: len(session.Objects())}
	}
}
