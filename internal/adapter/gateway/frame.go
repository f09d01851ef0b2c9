package gateway

import (
	"encoding/json"

	"canvas-ai/internal/domain"
)

// FrameType identifies the kind of frame sent over the /ws feed.
type FrameType string

const (
	// FrameTypeSnapshot carries the latest canvas on connect.
	FrameTypeSnapshot FrameType = "snapshot"
	// FrameTypeEvent carries a forwarded bus event.
	FrameTypeEvent FrameType = "event"
)

// Frame is the envelope written to feed subscribers.
type Frame struct {
	Type    FrameType        `json:"type"`
	Event   domain.EventType `json:"event,omitempty"`
	Payload json.RawMessage  `json:"payload,omitempty"`
}
