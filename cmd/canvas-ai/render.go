package main

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"

	"canvas-ai/internal/adapter/surface/cells"
	"canvas-ai/internal/adapter/surface/raster"
	"canvas-ai/internal/adapter/surface/style"
	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/logger"
	"canvas-ai/internal/usecase/render"
)

type renderCmd struct {
	File   string `arg:"" type:"existingfile" help:"JSON object list, or a saved /prompt reply."`
	Output string `short:"o" default:"canvas.png" help:"PNG file to write."`
	Width  int    `help:"PNG width in pixels (default canvas.width)."`
	Height int    `help:"PNG height in pixels (default canvas.height)."`
	Text   bool   `help:"Print a character grid to stdout instead of writing a PNG."`
	Cols   int    `default:"120" help:"Grid columns for --text."`
	Rows   int    `default:"40" help:"Grid rows for --text."`
}

func (c *renderCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer closeLog()

	if c.Width == 0 {
		c.Width = cfg.Canvas.Width
	}
	if c.Height == 0 {
		c.Height = cfg.Canvas.Height
	}
	bg := style.ParseOr(cfg.Canvas.Background, color.NRGBA{A: 255})

	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	raws, err := domain.DecodeObjectList(data)
	if err != nil {
		return fmt.Errorf("%s: %w", c.File, err)
	}
	return c.render(domain.NormalizeObjects(raws), bg, os.Stdout, log)
}

// render draws objects as a grid on w (--text) or into the PNG at c.Output.
// A render error after partial drawing is logged; the output is still written.
func (c *renderCmd) render(objects []domain.CanvasObject, bg color.NRGBA, w io.Writer, log *slog.Logger) error {
	r := render.New(logger.Component(log, "render"))

	if c.Text {
		grid := cells.New(c.Cols, c.Rows, cells.WithBackground(bg))
		if err := r.Render(grid, objects); err != nil {
			log.Warn("render incomplete", "error", err)
		}
		_, err := fmt.Fprintln(w, grid.Plain())
		return err
	}

	surf, err := raster.New(c.Width, c.Height, raster.WithBackground(bg))
	if err != nil {
		return err
	}
	if err := r.Render(surf, objects); err != nil {
		log.Warn("render incomplete", "error", err)
	}
	if err := surf.SavePNG(c.Output); err != nil {
		return fmt.Errorf("write %s: %w", c.Output, err)
	}
	log.Info("canvas rendered", "objects", len(objects), "output", c.Output)
	return nil
}
