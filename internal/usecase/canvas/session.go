// Package canvas owns the client-side canvas state: the current object list,
// the single in-flight prompt, and re-rendering on resize.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"canvas-ai/internal/domain"
	"canvas-ai/internal/usecase/render"
)

// Option configures a Session.
type Option func(*Session)

// WithOnBusy sets the callback toggled around an in-flight prompt. It is
// called with true before the request and with false once it has finished.
func WithOnBusy(fn func(busy bool)) Option {
	return func(s *Session) { s.onBusy = fn }
}

// WithOnClearInput sets the callback that empties the prompt input after every submit.
func WithOnClearInput(fn func()) Option {
	return func(s *Session) { s.onClear = fn }
}

// Session holds the objects last returned by the prompt service and draws
// them onto a surface.
type Session struct {
	client   domain.PromptClient
	renderer *render.Renderer
	logger   *slog.Logger

	onBusy  func(bool)
	onClear func()

	mu      sync.Mutex
	surface domain.Surface
	raws    []json.RawMessage
	objects []domain.CanvasObject
	busy    bool
}

// NewSession creates a Session drawing onto surface.
func NewSession(client domain.PromptClient, surface domain.Surface, renderer *render.Renderer, logger *slog.Logger, opts ...Option) *Session {
	s := &Session{
		client:   client,
		surface:  surface,
		renderer: renderer,
		logger:   logger,
		onBusy:   func(bool) {},
		onClear:  func() {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends prompt with the current objects. On success the object list is
// replaced wholesale and redrawn; on failure it is left untouched. Only one
// prompt may be in flight: a second call returns domain.ErrBusy.
func (s *Session) Submit(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.ErrPromptEmpty
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	s.busy = true
	current := s.raws
	s.mu.Unlock()

	s.onBusy(true)
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		s.onClear()
		s.onBusy(false)
	}()

	resp, err := s.client.SendPrompt(ctx, domain.PromptRequest{
		Prompt:         prompt,
		CurrentObjects: current,
	})
	if err != nil {
		s.logger.Error("prompt request failed", "error", err)
		return fmt.Errorf("submit prompt: %w", err)
	}

	raws := resp.CanvasObjects
	if raws == nil {
		raws = []json.RawMessage{}
	}

	s.mu.Lock()
	s.raws = raws
	s.objects = domain.NormalizeObjects(raws)
	err = s.renderLocked()
	s.mu.Unlock()

	s.logger.Info("canvas updated", "objects", len(raws))
	if err != nil {
		s.logger.Error("render failed", "error", err)
		return err
	}
	return nil
}

// Replace sets the object list directly and redraws. Used to seed a session
// from a file and by the live websocket feed.
func (s *Session) Replace(raws []json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raws = raws
	s.objects = domain.NormalizeObjects(raws)
	return s.renderLocked()
}

// ReplaceIfIdle is Replace for pushed canvases: it applies raws only when no
// prompt is in flight, checked under the same lock as the swap. applied is
// false when the push was skipped.
func (s *Session) ReplaceIfIdle(raws []json.RawMessage) (applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false, nil
	}
	s.raws = raws
	s.objects = domain.NormalizeObjects(raws)
	return true, s.renderLocked()
}

// Resize swaps in a surface of the new size and redraws the latest objects
// immediately.
func (s *Session) Resize(surface domain.Surface) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface = surface
	return s.renderLocked()
}

// Redraw renders the current objects again.
func (s *Session) Redraw() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

// RenderTo draws the current objects onto another surface, e.g. for /save.
func (s *Session) RenderTo(surface domain.Surface) error {
	s.mu.Lock()
	objects := s.objects
	s.mu.Unlock()
	return s.renderer.Render(surface, objects)
}

// Inspect calls fn with the current surface while no render can run.
func (s *Session) Inspect(fn func(domain.Surface)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.surface)
}

// Objects returns the raw records of the current canvas.
func (s *Session) Objects() []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]json.RawMessage, len(s.raws))
	copy(out, s.raws)
	return out
}

// Busy reports whether a prompt is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) renderLocked() error {
	if s.surface == nil {
		return nil
	}
	return s.renderer.Render(s.surface, s.objects)
}
