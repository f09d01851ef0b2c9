package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/buger/jsonparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
	"canvas-ai/internal/infra/logger"
)

type fakeLLM struct {
	mu    sync.Mutex
	reqs  []domain.ChatRequest
	reply string
	err   error
}

func (f *fakeLLM) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatResponse{
		Model:   "gemini-test",
		Message: domain.Message{Role: domain.RoleAssistant, Content: f.reply},
		Usage:   domain.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
	}, nil
}

func (f *fakeLLM) Name() string { return "fake" }

type recordingBus struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *recordingBus) Publish(_ context.Context, e domain.Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}
func (b *recordingBus) Subscribe(domain.EventType, domain.EventHandler) func() { return func() {} }
func (b *recordingBus) SubscribeAll(domain.EventHandler) func() { return func() {} }
func (b *recordingBus) Close() {}

func (b *recordingBus) types() []domain.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.EventType, len(b.events))
	for i, e := range b.events {
		out[i] = e.Type
	}
	return out
}

type memHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error
}

func (h *memHistory) Append(_ context.Context, e domain.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	return h.err
}
func (h *memHistory) Recent(context.Context, int) ([]domain.HistoryEntry, error) { return h.entries, nil }
func (h *memHistory) Get(context.Context, int64) (*domain.HistoryEntry, error) {
	return nil, domain.ErrNotFound
}
func (h *memHistory) Close() error { return nil }

func newTestService(t *testing.T, llm *fakeLLM) (*Service, *recordingBus, *memHistory) {
	t.Helper()
	bus := &recordingBus{}
	hist := &memHistory{}
	svc, err := NewService(ServiceDeps{
		LLM:     llm,
		Config:  config.PromptConfig{MaxTokens: 2048, Temperature: 0.4, MaxPromptChars: 50},
		Logger:  logger.Discard(),
		Bus:     bus,
		History: hist,
	})
	require.NoError(t, err)
	return svc, bus, hist
}

func TestHandlePrompt(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n{\"canvas_objects\":[{\"tool\":\"DrawRectangle\",\"x\":0,\"y\":0,\"width\":100,\"height\":100}]}\n```"}
	svc, bus, hist := newTestService(t, llm)

	resp, err := svc.HandlePrompt(context.Background(), domain.PromptRequest{
		Prompt:         " draw a box ",
		CurrentObjects: []json.RawMessage{json.RawMessage(`{"tool":"InfoBox","id":"old","data":"hi"}`)},
	})
	require.NoError(t, err)
	require.Len(t, resp.CanvasObjects, 1)

	tool, _ := jsonparser.GetString(resp.CanvasObjects[0], "tool")
	assert.Equal(t, "DrawRectangle", tool)
	id, err := jsonparser.GetString(resp.CanvasObjects[0], "id")
	require.NoError(t, err)
	assert.Len(t, id, 26)

	require.Len(t, llm.reqs, 1)
	req := llm.reqs[0]
	assert.True(t, req.JSONMode)
	assert.Equal(t, 2048, req.MaxTokens)
	assert.Equal(t, 0.4, req.Temperature)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, domain.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, SystemPrompt(), req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, `User Prompt: "draw a box"`)
	assert.Contains(t, req.Messages[1].Content, `"id":"old"`)

	assert.Equal(t, []domain.EventType{
		domain.EventPromptReceived,
		domain.EventLLMCallStarted,
		domain.EventLLMCallCompleted,
		domain.EventCanvasUpdated,
	}, bus.types())

	var updated domain.CanvasUpdatedPayload
	require.NoError(t, json.Unmarshal(bus.events[3].Payload, &updated))
	assert.Equal(t, "draw a box", updated.Prompt)
	assert.Len(t, updated.CanvasObjects, 1)

	require.Len(t, hist.entries, 1)
	entry := hist.entries[0]
	assert.Equal(t, domain.HistoryStatusOK, entry.Status)
	assert.Equal(t, "fake", entry.Provider)
	assert.Equal(t, 1, entry.ObjectCount)
	assert.Equal(t, "draw a box", entry.Prompt)
}

func TestHandlePromptInvalidJSON(t *testing.T) {
	llm := &fakeLLM{reply: "I drew a box for you!"}
	svc, bus, hist := newTestService(t, llm)

	_, err := svc.HandlePrompt(context.Background(), domain.PromptRequest{Prompt: "box"})
	require.ErrorIs(t, err, domain.ErrInvalidModelOutput)

	types := bus.types()
	assert.Equal(t, domain.EventPromptFailed, types[len(types)-1])
	var failed domain.PromptFailedPayload
	require.NoError(t, json.Unmarshal(bus.events[len(types)-1].Payload, &failed))
	assert.Equal(t, domain.CodeInvalidModelOutput, failed.Code)

	require.Len(t, hist.entries, 1)
	assert.Equal(t, domain.HistoryStatusError, hist.entries[0].Status)
	assert.NotEmpty(t, hist.entries[0].Error)
}

func TestHandlePromptLLMError(t *testing.T) {
	llm := &fakeLLM{err: errors.Join(domain.ErrProviderUnavailable, errors.New("503"))}
	svc, bus, _ := newTestService(t, llm)

	_, err := svc.HandlePrompt(context.Background(), domain.PromptRequest{Prompt: "box"})
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.NotContains(t, bus.types(), domain.EventLLMCallCompleted)
	assert.NotContains(t, bus.types(), domain.EventCanvasUpdated)
}

func TestHandlePromptLLMTimeoutCode(t *testing.T) {
	llm := &fakeLLM{err: domain.ErrTimeout}
	svc, _, _ := newTestService(t, llm)

	_, err := svc.HandlePrompt(context.Background(), domain.PromptRequest{Prompt: "box"})
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, domain.CodeLLMTimeout, domain.ErrorCodeOf(err))
}

func TestHandlePromptRejectsInput(t *testing.T) {
	llm := &fakeLLM{reply: `{"canvas_objects":[]}`}
	svc, _, _ := newTestService(t, llm)

	_, err := svc.HandlePrompt(context.Background(), domain.PromptRequest{Prompt: "   "})
	assert.ErrorIs(t, err, domain.ErrPromptEmpty)

	_, err = svc.HandlePrompt(context.Background(), domain.PromptRequest{Prompt: strings.Repeat("é", 51)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "exceeds 50 characters")

	assert.Empty(t, llm.reqs, "rejected prompts never reach the model")
}

func TestHandlePromptHistoryFailureIsNotFatal(t *testing.T) {
	llm := &fakeLLM{reply: `{"canvas_objects":[]}`}
	svc, _, hist := newTestService(t, llm)
	hist.err = errors.New("disk full")

	resp, err := svc.HandlePrompt(context.Background(), domain.PromptRequest{Prompt: "clear"})
	require.NoError(t, err)
	assert.Empty(t, resp.CanvasObjects)
}

func TestHandlePromptWithoutOptionalDeps(t *testing.T) {
	svc, err := NewService(ServiceDeps{LLM: &fakeLLM{reply: `{"canvas_objects":[{"tool":"InfoBox"}]}`}})
	require.NoError(t, err)
	resp, err := svc.HandlePrompt(context.Background(), domain.PromptRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Len(t, resp.CanvasObjects, 1)
}

func TestHandlePromptUsesClock(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	hist := &memHistory{}
	svc, err := NewService(ServiceDeps{
		LLM:     &fakeLLM{reply: `{"canvas_objects":[]}`},
		History: hist,
		Now:     func() time.Time { return now },
	})
	require.NoError(t, err)
	_, err = svc.HandlePrompt(context.Background(), domain.PromptRequest{Prompt: "x"})
	require.NoError(t, err)
	require.Len(t, hist.entries, 1)
	assert.Equal(t, now, hist.entries[0].CreatedAt)
	assert.Zero(t, hist.entries[0].DurationMs)
}

func TestNewServiceRequiresLLM(t *testing.T) {
	_, err := NewService(ServiceDeps{})
	assert.Error(t, err)
}
