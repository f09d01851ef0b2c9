// Package studio implements the Bubble Tea front end that draws the canvas
// in the terminal and sends prompts to the canvas service.
package studio

import "encoding/json"

// PromptDoneMsg signals that a submitted prompt settled.
// Gen identifies the request so completions of cancelled prompts are discarded.
type PromptDoneMsg struct {
	Gen     uint64
	Err     error
	Objects int
}

// FeedCanvasMsg carries a canvas pushed by the server's live feed.
type FeedCanvasMsg struct {
	Objects []json.RawMessage
}

// FeedStateMsg reports whether the live feed is connected.
type FeedStateMsg struct {
	Connected bool
}

// QuitMsg signals the program to exit.
type QuitMsg struct{}
