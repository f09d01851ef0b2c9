//go:build js && wasm

// Command canvas-wasm is the browser client: it draws the canvas on a
// <canvas> element and posts prompts from a form to the canvas service.
package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"syscall/js"
	"time"

	"canvas-ai/internal/adapter/client"
	"canvas-ai/internal/adapter/surface/jscanvas"
	"canvas-ai/internal/infra/config"
	"canvas-ai/internal/infra/logger"
	"canvas-ai/internal/usecase/canvas"
	"canvas-ai/internal/usecase/render"
)

const defaultEndpoint = "http://127.0.0.1:8000/prompt"

func main() {
	log := logger.NewWriter(os.Stdout, config.LoggerConfig{Level: "info", Format: "text"})

	doc := js.Global().Get("document")
	win := js.Global().Get("window")
	canvasEl := doc.Call("getElementById", "canvas")
	form := doc.Call("getElementById", "prompt-form")
	input := doc.Call("getElementById", "prompt-input")

	endpoint := attr(form, "data-endpoint", defaultEndpoint)
	surface := jscanvas.New(canvasEl)
	session := canvas.NewSession(
		client.New(config.ClientConfig{Endpoint: endpoint, Timeout: 2 * time.Minute}, logger.Component(log, "client")),
		surface,
		render.New(logger.Component(log, "render")),
		logger.Component(log, "session"),
		canvas.WithOnBusy(func(busy bool) {
			if busy {
				input.Set("value", "Processing...")
			}
			input.Set("disabled", busy)
		}),
		canvas.WithOnClearInput(func() {
			input.Set("value", "")
		}),
	)

	resize := func() {
		surface.SetSize(win.Get("innerWidth").Int(), win.Get("innerHeight").Int())
		if err := session.Resize(surface); err != nil {
			log.Error("redraw after resize failed", "error", err)
		}
	}
	win.Call("addEventListener", "resize", js.FuncOf(func(js.Value, []js.Value) any {
		resize()
		return nil
	}))

	form.Call("addEventListener", "submit", js.FuncOf(func(_ js.Value, args []js.Value) any {
		args[0].Call("preventDefault")
		prompt := strings.TrimSpace(input.Get("value").String())
		if prompt == "" {
			return nil
		}
		// Callbacks must not block the JS event loop.
		go func() {
			if err := session.Submit(context.Background(), prompt); err != nil {
				log.Error("prompt failed", "error", err)
			}
			input.Call("focus")
		}()
		return nil
	}))

	if attr(form, "data-follow", "") == "true" {
		wsURL, err := client.FeedURL(endpoint, attr(form, "data-token", ""))
		if err != nil {
			log.Error("live feed disabled", "error", err)
		} else {
			feed := client.NewFeed(wsURL, logger.Component(log, "feed"))
			go feed.Run(context.Background(), func(objects []json.RawMessage) {
				if _, err := session.ReplaceIfIdle(objects); err != nil {
					log.Error("live update render failed", "error", err)
				}
			})
		}
	}

	resize()
	log.Info("canvas client ready", "endpoint", endpoint)
	select {}
}

// attr returns an element attribute, or def when it is absent.
func attr(el js.Value, name, def string) string {
	v := el.Call("getAttribute", name)
	if v.IsNull() || v.IsUndefined() || v.String() == "" {
		return def
	}
	return v.String()
}
