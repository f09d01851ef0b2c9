package studio

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"canvas-ai/internal/adapter/client"
)

// Options configure Run.
type Options struct {
	Deps ModelDeps
	// Feed, when set, replaces the canvas whenever the server publishes one.
	Feed   *client.Feed
	Logger *slog.Logger
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	program := tea.NewProgram(
		NewModel(opts.Deps),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	if opts.Feed != nil {
		opts.Feed.SetOnState(func(connected bool) {
			program.Send(FeedStateMsg{Connected: connected})
		})
		go func() {
			err := opts.Feed.Run(feedCtx, func(objects []json.RawMessage) {
				program.Send(FeedCanvasMsg{Objects: objects})
			})
			if err != nil && opts.Logger != nil {
				opts.Logger.Error("canvas feed stopped", "error", err)
			}
		}()
	}

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
