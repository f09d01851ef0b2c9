package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"canvas-ai/internal/domain"
)

// feedFrame is the subset of the server's /ws frame the feed reads.
type feedFrame struct {
	Type    string           `json:"type"`
	Event   domain.EventType `json:"event"`
	Payload json.RawMessage  `json:"payload"`
}

// FeedURL derives the /ws address that sits next to a /prompt endpoint.
func FeedURL(endpoint, token string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}
	u.Path = path.Join(path.Dir(u.Path), "ws")
	u.RawQuery = ""
	if token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}
	return u.String(), nil
}

// Feed follows the server's canvas over websocket.
type Feed struct {
	url        string
	logger     *slog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
	onState    func(bool)
}

// NewFeed creates a feed reader for wsURL.
func NewFeed(wsURL string, logger *slog.Logger) *Feed {
	return &Feed{url: wsURL, logger: logger, minBackoff: time.Second, maxBackoff: 30 * time.Second}
}

// SetOnState registers a callback told when a connection is established
// (true) and when an established connection drops (false).
func (f *Feed) SetOnState(fn func(connected bool)) {
	f.onState = fn
}

// Run calls onCanvas with every canvas the server publishes until ctx is done.
// Dropped connections are redialed with exponential backoff.
func (f *Feed) Run(ctx context.Context, onCanvas func([]json.RawMessage)) error {
	backoff := f.minBackoff
	for {
		connected := false
		err := f.runOnce(ctx, onCanvas, func() {
			backoff = f.minBackoff
			connected = true
			f.notify(true)
		})
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			f.notify(false)
		}
		f.logger.Warn("canvas feed disconnected", "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, f.maxBackoff)
	}
}

func (f *Feed) notify(connected bool) {
	if f.onState != nil {
		f.onState(connected)
	}
}

func (f *Feed) runOnce(ctx context.Context, onCanvas func([]json.RawMessage), connected func()) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	ws, _, err := websocket.Dial(dialCtx, f.url, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: dial feed: %v", domain.ErrTransport, err)
	}
	defer ws.Close(websocket.StatusNormalClosure, "")
	connected()
	f.logger.Info("canvas feed connected", "url", f.url)

	for {
		var frame feedFrame
		if err := wsjson.Read(ctx, ws, &frame); err != nil {
			return err
		}
		if frame.Event != domain.EventCanvasUpdated {
			continue
		}
		var p domain.CanvasUpdatedPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			f.logger.Warn("canvas feed: bad payload", "error", err)
			continue
		}
		if p.CanvasObjects == nil {
			p.CanvasObjects = []json.RawMessage{}
		}
		onCanvas(p.CanvasObjects)
	}
}
