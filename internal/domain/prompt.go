package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/buger/jsonparser"
)

// PromptRequest is the body of POST /prompt.
type PromptRequest struct {
	Prompt         string            `json:"prompt"`
	CurrentObjects []json.RawMessage `json:"current_objects"`
}

// PromptResponse is the body of a successful POST /prompt reply.
type PromptResponse struct {
	CanvasObjects []json.RawMessage `json:"canvas_objects"`
}

// ErrorResponse is the body of a failed POST /prompt reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// PromptClient sends a prompt with the current objects and returns the new object list.
type PromptClient interface {
	SendPrompt(ctx context.Context, req PromptRequest) (*PromptResponse, error)
}

// PromptHandler produces a new object list for a prompt. Implemented by the prompt service.
type PromptHandler interface {
	HandlePrompt(ctx context.Context, req PromptRequest) (*PromptResponse, error)
}

// History entry statuses.
const (
	HistoryStatusOK    = "ok"
	HistoryStatusError = "error"
)

// HistoryEntry records one handled prompt.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	Prompt      string    `json:"prompt"`
	Provider    string    `json:"provider"`
	ObjectCount int       `json:"object_count"`
	DurationMs  int64     `json:"duration_ms"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryStore persists the prompt log.
type HistoryStore interface {
	Append(ctx context.Context, e HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
	Get(ctx context.Context, id int64) (*HistoryEntry, error)
	Close() error
}

// DecodeObjectList reads a saved canvas: either a bare JSON array of objects
// or a prompt reply of the form {"canvas_objects": [...]}.
func DecodeObjectList(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, NewDomainError("DecodeObjectList", ErrInvalidInput, "empty document")
	}
	var list []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, NewDomainError("DecodeObjectList", ErrInvalidInput, err.Error())
		}
	} else {
		var reply struct {
			CanvasObjects *[]json.RawMessage `json:"canvas_objects"`
		}
		if err := json.Unmarshal(data, &reply); err != nil {
			return nil, NewDomainError("DecodeObjectList", ErrInvalidInput, err.Error())
		}
		if reply.CanvasObjects == nil {
			return nil, NewDomainError("DecodeObjectList", ErrInvalidInput, "missing canvas_objects")
		}
		list = *reply.CanvasObjects
	}
	if list == nil {
		list = []json.RawMessage{}
	}
	return list, nil
}

// DecodePromptReply reads a POST /prompt reply body. A canvas_objects field
// that is absent or falsy (null, false, 0, "") yields an empty list; any other
// non-array value is an error.
func DecodePromptReply(body []byte) (*PromptResponse, error) {
	var reply struct {
		CanvasObjects json.RawMessage `json:"canvas_objects"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, NewDomainError("DecodePromptReply", ErrInvalidInput, err.Error())
	}
	out := &PromptResponse{CanvasObjects: []json.RawMessage{}}
	if len(reply.CanvasObjects) == 0 {
		return out, nil
	}
	v, t, _, err := jsonparser.Get(reply.CanvasObjects)
	if err != nil {
		return nil, NewDomainError("DecodePromptReply", ErrInvalidInput, err.Error())
	}
	if !truthy(v, t) {
		return out, nil
	}
	if t != jsonparser.Array {
		return nil, NewDomainError("DecodePromptReply", ErrInvalidInput, "canvas_objects is not a list")
	}
	if err := json.Unmarshal(reply.CanvasObjects, &out.CanvasObjects); err != nil {
		return nil, NewDomainError("DecodePromptReply", ErrInvalidInput, err.Error())
	}
	return out, nil
}
