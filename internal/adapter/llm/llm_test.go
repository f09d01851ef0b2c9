package llm

import (
	"context"
	"log/slog"

	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/logger"
)

func newTestLogger() *slog.Logger { return logger.Discard() }

type mockProvider struct {
	name     string
	chatFunc func(context.Context, domain.ChatRequest) (*domain.ChatResponse, error)
}

func (m *mockProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	return m.chatFunc(ctx, req)
}
func (m *mockProvider) Name() string { return m.name }

func okProvider(name, content string) *mockProvider {
	return &mockProvider{
		name: name,
		chatFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatResponse, error) {
			return &domain.ChatResponse{Message: domain.Message{Content: content}}, nil
		},
	}
}

func failingProvider(name string, err error) *mockProvider {
	return &mockProvider{
		name: name,
		chatFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatResponse, error) {
			return nil, err
		},
	}
}

func canvasRequest(jsonMode bool) domain.ChatRequest {
	return domain.ChatRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "You draw on a canvas."},
			{Role: domain.RoleUser, Content: "draw a red circle"},
		},
		MaxTokens: 1024,
		JSONMode:  jsonMode,
	}
}
