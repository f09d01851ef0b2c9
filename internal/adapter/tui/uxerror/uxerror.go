// Package uxerror translates raw errors into user-friendly messages with
// recovery hints for the TUI.
package uxerror

import (
	"errors"
	"fmt"
	"strings"

	"canvas-ai/internal/adapter/tui/theme"
	"canvas-ai/internal/domain"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Server Unreachable"
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text (for debug)
}

// Render formats the FriendlyError for the activity log.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(fe.Message)
	}
	for _, h := range fe.Hints {
		sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
	}
	return sb.String()
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	// Domain sentinel errors first so errors.Is works through wrapping.
	{
		match:   is(domain.ErrBusy),
		produce: constantError("Still Drawing", "A prompt is already in flight.", []string{"Wait for the current drawing to finish"}),
	},
	{
		match:   is(domain.ErrTimeout),
		produce: constantError("Request Timed Out", "The canvas server took too long to answer.", []string{"Try a simpler prompt", "Increase client.timeout in config"}),
	},
	{
		match:   is(domain.ErrMissingField),
		produce: detailError("Drawing Failed", []string{"Ask the model to redraw the object", "Use /clear to start over"}),
	},
	{
		match: func(err error) bool {
			return errors.Is(err, domain.ErrHTTPStatus) && containsAny("invalid json")(err)
		},
		produce: constantError("Model Reply Unreadable", "The AI returned invalid JSON.", []string{"Try the prompt again", "Rephrase the prompt more concretely"}),
	},
	{
		match:   all(is(domain.ErrHTTPStatus), containsAny("status 422")),
		produce: detailError("Prompt Rejected", []string{"Check the prompt is not empty or too long"}),
	},
	{
		match:   all(is(domain.ErrHTTPStatus), containsAny("status 429")),
		produce: constantError("Rate Limited", "The canvas server is throttling requests.", []string{"Wait a moment before retrying"}),
	},
	{
		match:   is(domain.ErrHTTPStatus),
		produce: detailError("Server Error", []string{"Check the server logs", "Try again"}),
	},

	// Network patterns for transport errors.
	{
		match:   containsAny("connection refused", "dial tcp", "no such host"),
		produce: constantError("Server Unreachable", "Could not reach the canvas server.", []string{"Start it with 'canvas-ai serve'", "Check client.endpoint in config"}),
	},
	{
		match:   containsAny("deadline exceeded", "timeout"),
		produce: constantError("Request Timed Out", "The request took too long to complete.", []string{"Check your network connection", "Increase client.timeout in config"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}
	for _, p := range patterns {
		if p.match(err) {
			return p.produce(err)
		}
	}
	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Run with --log-level debug for more details"},
		Raw:     err.Error(),
	}
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func all(ms ...func(error) bool) func(error) bool {
	return func(err error) bool {
		for _, m := range ms {
			if !m(err) {
				return false
			}
		}
		return true
	}
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{Title: title, Message: message, Hints: hints, Raw: err.Error()}
	}
}

// detailError uses the error text as the message.
func detailError(title string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{Title: title, Message: err.Error(), Hints: hints, Raw: err.Error()}
	}
}
