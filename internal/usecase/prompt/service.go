// Package prompt answers canvas prompts by asking an LLM for a new object list.
package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel/trace"

	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
	"canvas-ai/internal/infra/tracer"
	"canvas-ai/internal/usecase/eventbus"
)

// ServiceDeps holds injected dependencies for the prompt service.
type ServiceDeps struct {
	LLM     domain.LLMProvider
	Config  config.PromptConfig
	Logger  *slog.Logger
	Bus     domain.EventBus     // optional, nil = no events
	History domain.HistoryStore // optional, nil = no prompt log
	Now     func() time.Time    // optional, defaults to time.Now
}

// Service implements domain.PromptHandler. It is safe for concurrent use.
type Service struct {
	deps     ServiceDeps
	envelope *jsonschema.Schema
	system   string
}

var _ domain.PromptHandler = (*Service)(nil)

// NewService creates a prompt service.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.LLM == nil {
		return nil, errors.New("prompt service: llm provider is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	envelope, err := compileEnvelope()
	if err != nil {
		return nil, err
	}
	return &Service{deps: deps, envelope: envelope, system: SystemPrompt()}, nil
}

// HandlePrompt implements domain.PromptHandler.
func (s *Service) HandlePrompt(ctx context.Context, req domain.PromptRequest) (*domain.PromptResponse, error) {
	ctx, span := tracer.StartSpan(ctx, "prompt.handle",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", s.deps.LLM.Name()),
			tracer.IntAttr("canvas.current_objects", len(req.CurrentObjects)),
		),
	)
	defer span.End()

	start := s.deps.Now()
	prompt := strings.TrimSpace(req.Prompt)

	objects, err := s.handle(ctx, prompt, req)
	if err != nil {
		tracer.RecordError(span, err)
		s.logger().Error("prompt failed", "prompt", truncate(prompt, 80), "error", err)
		s.record(ctx, prompt, start, 0, err)
		s.publish(ctx, domain.EventPromptFailed, domain.PromptFailedPayload{
			Prompt: prompt,
			Code:   domain.ErrorCodeOf(err),
			Error:  err.Error(),
		})
		return nil, err
	}

	span.SetAttributes(tracer.IntAttr("canvas.objects", len(objects)))
	tracer.SetOK(span)
	s.logger().Info("prompt answered", "objects", len(objects), "duration", s.deps.Now().Sub(start))
	s.record(ctx, prompt, start, len(objects), nil)
	s.publish(ctx, domain.EventCanvasUpdated, domain.CanvasUpdatedPayload{
		Prompt:        prompt,
		CanvasObjects: objects,
	})

	return &domain.PromptResponse{CanvasObjects: objects}, nil
}

func (s *Service) handle(ctx context.Context, prompt string, req domain.PromptRequest) ([]json.RawMessage, error) {
	if prompt == "" {
		return nil, domain.NewSubSystemError("prompt", "prompt.HandlePrompt", domain.ErrPromptEmpty, "")
	}
	if limit := s.deps.Config.MaxPromptChars; limit > 0 && utf8.RuneCountInString(prompt) > limit {
		return nil, domain.NewSubSystemError("prompt", "prompt.HandlePrompt", domain.ErrInvalidInput,
			fmt.Sprintf("prompt exceeds %d characters", limit))
	}

	s.publish(ctx, domain.EventPromptReceived, domain.PromptReceivedPayload{
		Prompt:         prompt,
		CurrentObjects: len(req.CurrentObjects),
	})

	user, err := UserPrompt(prompt, req.CurrentObjects)
	if err != nil {
		return nil, domain.WrapOp("prompt.HandlePrompt", err)
	}

	chatReq := domain.ChatRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: s.system, Timestamp: s.deps.Now()},
			{Role: domain.RoleUser, Content: user, Timestamp: s.deps.Now()},
		},
		MaxTokens:   s.deps.Config.MaxTokens,
		Temperature: s.deps.Config.Temperature,
		JSONMode:    true,
	}

	provider := s.deps.LLM.Name()
	s.publish(ctx, domain.EventLLMCallStarted, domain.LLMCallPayload{Provider: provider})
	callStart := s.deps.Now()
	resp, err := s.deps.LLM.Chat(ctx, chatReq)
	if err != nil {
		return nil, domain.NewSubSystemError("llm", "prompt.HandlePrompt", err, "llm call")
	}
	s.publish(ctx, domain.EventLLMCallCompleted, domain.LLMCallPayload{
		Provider:         provider,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		DurationMs:       s.deps.Now().Sub(callStart).Milliseconds(),
	})
	s.logger().Debug("llm raw reply", "provider", provider, "chars", len(resp.Message.Content))

	objects, err := parseReply(s.envelope, resp.Message.Content)
	if err != nil {
		s.logger().Warn("model returned invalid JSON", "reply", truncate(resp.Message.Content, 200))
		return nil, domain.WrapOp("prompt.HandlePrompt", err)
	}

	objects, err = assignIDs(objects, newIDSource(s.deps.Now))
	if err != nil {
		return nil, domain.WrapOp("prompt.HandlePrompt", err)
	}
	return objects, nil
}

func (s *Service) record(ctx context.Context, prompt string, start time.Time, count int, failure error) {
	if s.deps.History == nil {
		return
	}
	entry := domain.HistoryEntry{
		Prompt:      prompt,
		Provider:    s.deps.LLM.Name(),
		ObjectCount: count,
		DurationMs:  s.deps.Now().Sub(start).Milliseconds(),
		Status:      domain.HistoryStatusOK,
		CreatedAt:   start.UTC(),
	}
	if failure != nil {
		entry.Status = domain.HistoryStatusError
		entry.Error = failure.Error()
	}
	if err := s.deps.History.Append(context.WithoutCancel(ctx), entry); err != nil {
		s.logger().Warn("history append failed", "error", err)
	}
}

func (s *Service) publish(ctx context.Context, t domain.EventType, payload any) {
	if s.deps.Bus == nil {
		return
	}
	ev, err := eventbus.NewEvent(t, payload)
	if err != nil {
		s.logger().Warn("event build failed", "type", t, "error", err)
		return
	}
	s.deps.Bus.Publish(ctx, ev)
}

func (s *Service) logger() *slog.Logger {
	if s.deps.Logger == nil {
		return slog.Default()
	}
	return s.deps.Logger
}

// truncate shortens s to at most n runes, appending "..." if cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
