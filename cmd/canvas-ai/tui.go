package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/adrg/xdg"

	"canvas-ai/internal/adapter/client"
	"canvas-ai/internal/adapter/surface/style"
	"canvas-ai/internal/adapter/tui/studio"
	"canvas-ai/internal/adapter/tui/theme"
	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
	"canvas-ai/internal/infra/logger"
	"canvas-ai/internal/usecase/canvas"
	"canvas-ai/internal/usecase/render"
)

type tuiCmd struct {
	Endpoint string `help:"Prompt endpoint, overrides client.endpoint."`
	Follow   bool   `help:"Follow canvases the server publishes on its /ws feed."`
	Token    string `env:"CANVASAI_WS_TOKEN" help:"Token for the /ws feed."`
	Load     string `type:"existingfile" help:"Seed the canvas from a JSON object list."`
}

func (c *tuiCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Endpoint != "" {
		cfg.Client.Endpoint = c.Endpoint
	}
	theme.InitSymbols()

	log, closeLog, err := tuiLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer closeLog()

	bg := style.ParseOr(cfg.Canvas.Background, color.NRGBA{A: 255})
	session := canvas.NewSession(
		client.New(cfg.Client, logger.Component(log, "client")),
		nil,
		render.New(logger.Component(log, "render")),
		logger.Component(log, "session"),
	)
	if c.Load != "" {
		data, err := os.ReadFile(c.Load)
		if err != nil {
			return err
		}
		objects, err := domain.DecodeObjectList(data)
		if err != nil {
			return fmt.Errorf("load %s: %w", c.Load, err)
		}
		if err := session.Replace(objects); err != nil {
			return err
		}
	}

	var feed *client.Feed
	if c.Follow {
		wsURL, err := client.FeedURL(cfg.Client.Endpoint, c.Token)
		if err != nil {
			return err
		}
		feed = client.NewFeed(wsURL, logger.Component(log, "feed"))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	return studio.Run(ctx, studio.Options{
		Deps: studio.ModelDeps{
			Session:      session,
			Endpoint:     cfg.Client.Endpoint,
			CanvasWidth:  cfg.Canvas.Width,
			CanvasHeight: cfg.Canvas.Height,
			Background:   bg,
			Logger:       log,
		},
		Feed:   feed,
		Logger: log,
	})
}

// tuiLogger keeps records off the alternate screen: terminal outputs are
// redirected to a file in the XDG state directory.
func tuiLogger(cfg config.LoggerConfig) (*slog.Logger, func() error, error) {
	switch strings.ToLower(cfg.Output) {
	case "", "stdout", "stderr":
		path, err := xdg.StateFile("canvas-ai/tui.log")
		if err != nil {
			return nil, nil, err
		}
		cfg.Output = path
	}
	return logger.New(cfg)
}
