package uxerror

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"canvas-ai/internal/domain"
)

func TestHumanize(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		title string
	}{
		{"busy", domain.ErrBusy, "Still Drawing"},
		{"timeout", fmt.Errorf("%w: %w: deadline", domain.ErrTransport, domain.ErrTimeout), "Request Timed Out"},
		{"render", domain.NewSubSystemError("render", "render.InfoBox", domain.ErrMissingField, "width"), "Drawing Failed"},
		{"invalid json", fmt.Errorf("%w: status 500: AI returned invalid JSON.", domain.ErrHTTPStatus), "Model Reply Unreadable"},
		{"unprocessable", fmt.Errorf("%w: status 422: Prompt must not be empty.", domain.ErrHTTPStatus), "Prompt Rejected"},
		{"rate limited", fmt.Errorf("%w: status 429: Rate limit exceeded.", domain.ErrHTTPStatus), "Rate Limited"},
		{"other status", fmt.Errorf("%w: status 500: An unexpected error occurred.", domain.ErrHTTPStatus), "Server Error"},
		{"refused", fmt.Errorf("%w: dial tcp 127.0.0.1:8000: connection refused", domain.ErrTransport), "Server Unreachable"},
		{"unknown", errors.New("boom"), "Unexpected Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := Humanize(tt.err)
			if fe.Title != tt.title {
				t.Errorf("Title = %q, want %q", fe.Title, tt.title)
			}
			if fe.Raw != tt.err.Error() {
				t.Errorf("Raw = %q", fe.Raw)
			}
		})
	}
}

func TestHumanizeNil(t *testing.T) {
	if fe := Humanize(nil); fe.Title != "Unknown Error" {
		t.Errorf("Title = %q", fe.Title)
	}
}

func TestRender(t *testing.T) {
	out := FriendlyError{Title: "T", Message: "m", Hints: []string{"h1", "h2"}}.Render()
	if !strings.HasPrefix(out, "T: m") {
		t.Errorf("Render = %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("Render should list two hints: %q", out)
	}
}
