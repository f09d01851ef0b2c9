package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai/internal/domain"
)

func TestFailoverPrimarySucceeds(t *testing.T) {
	fb := failingProvider("backup", domain.ErrProviderUnavailable)
	f := NewFailoverProvider(okProvider("gemini", "primary"), []domain.LLMProvider{fb}, newTestLogger())

	resp, err := f.Chat(context.Background(), canvasRequest(true))
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Message.Content)
	assert.Equal(t, "gemini+failover", f.Name())
}

func TestFailoverUsesFallback(t *testing.T) {
	f := NewFailoverProvider(
		failingProvider("gemini", domain.ErrRateLimit),
		[]domain.LLMProvider{
			failingProvider("openai", domain.ErrProviderUnavailable),
			okProvider("claude", "from claude"),
		},
		newTestLogger(),
	)

	resp, err := f.Chat(context.Background(), canvasRequest(true))
	require.NoError(t, err)
	assert.Equal(t, "from claude", resp.Message.Content)
}

func TestFailoverAllFail(t *testing.T) {
	f := NewFailoverProvider(
		failingProvider("gemini", domain.ErrRateLimit),
		[]domain.LLMProvider{failingProvider("openai", domain.ErrAuthInvalid)},
		newTestLogger(),
	)

	_, err := f.Chat(context.Background(), canvasRequest(true))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimit)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Contains(t, err.Error(), "all providers failed")
	assert.Contains(t, err.Error(), "gemini:")
	assert.Contains(t, err.Error(), "openai:")
}

func TestFailoverStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := &mockProvider{
		name: "gemini",
		chatFunc: func(context.Context, domain.ChatRequest) (*domain.ChatResponse, error) {
			cancel()
			return nil, context.Canceled
		},
	}
	called := false
	fallback := &mockProvider{
		name: "openai",
		chatFunc: func(context.Context, domain.ChatRequest) (*domain.ChatResponse, error) {
			called = true
			return &domain.ChatResponse{}, nil
		},
	}

	f := NewFailoverProvider(primary, []domain.LLMProvider{fallback}, newTestLogger())
	_, err := f.Chat(ctx, canvasRequest(true))
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
