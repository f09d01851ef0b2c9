package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies the kind of event being published.
type EventType string

const (
	EventPromptReceived   EventType = "prompt.received"
	EventPromptFailed     EventType = "prompt.failed"
	EventLLMCallStarted   EventType = "llm.call.started"
	EventLLMCallCompleted EventType = "llm.call.completed"

	// Canvas events.
	EventCanvasUpdated EventType = "canvas.updated"
)

// Event is the envelope published on the event bus.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// CanvasUpdatedPayload is the payload of an EventCanvasUpdated event.
type CanvasUpdatedPayload struct {
	Prompt        string            `json:"prompt"`
	CanvasObjects []json.RawMessage `json:"canvas_objects"`
}

// PromptReceivedPayload is the payload of an EventPromptReceived event.
type PromptReceivedPayload struct {
	Prompt         string `json:"prompt"`
	CurrentObjects int    `json:"current_objects"`
}

// LLMCallPayload is the payload of the llm.call.* events.
type LLMCallPayload struct {
	Provider         string `json:"provider"`
	Model            string `json:"model,omitempty"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
	DurationMs       int64  `json:"duration_ms,omitempty"`
}

// PromptFailedPayload is the payload of an EventPromptFailed event.
type PromptFailedPayload struct {
	Prompt string    `json:"prompt"`
	Code   ErrorCode `json:"code"`
	Error  string    `json:"error"`
}

// EventHandler is a callback invoked when an event is received.
type EventHandler func(ctx context.Context, event Event)

// EventBus provides a publish/subscribe mechanism for domain events.
type EventBus interface {
	// Publish sends an event to all matching subscribers.
	Publish(ctx context.Context, event Event)
	// Subscribe registers a handler for a specific event type.
	// Returns an unsubscribe function.
	Subscribe(eventType EventType, handler EventHandler) func()
	// SubscribeAll registers a handler that receives every event.
	// Returns an unsubscribe function.
	SubscribeAll(handler EventHandler) func()
	// Close drains in-flight handlers and prevents new publishes.
	Close()
}
