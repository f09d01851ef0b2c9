package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
	"canvas-ai/internal/infra/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func stubClient(fn roundTripFunc) *HTTPClient {
	return NewWithHTTPClient("http://canvas.test/prompt", &http.Client{Transport: fn}, logger.Discard())
}

func reply(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestSendPrompt(t *testing.T) {
	var sent map[string]json.RawMessage
	c := stubClient(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/prompt", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		return reply(200, `{"canvas_objects":[{"tool":"DrawRectangle","x":0,"y":0,"width":100,"height":100}]}`), nil
	})

	resp, err := c.SendPrompt(context.Background(), domain.PromptRequest{
		Prompt:         "draw a box",
		CurrentObjects: []json.RawMessage{json.RawMessage(`{"tool":"DrawLine","custom":true}`)},
	})
	require.NoError(t, err)
	require.Len(t, resp.CanvasObjects, 1)
	assert.JSONEq(t, `{"tool":"DrawRectangle","x":0,"y":0,"width":100,"height":100}`, string(resp.CanvasObjects[0]))

	assert.JSONEq(t, `"draw a box"`, string(sent["prompt"]))
	assert.JSONEq(t, `[{"tool":"DrawLine","custom":true}]`, string(sent["current_objects"]))
}

func TestSendPromptNilObjectsSentAsEmptyList(t *testing.T) {
	c := stubClient(func(r *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"prompt":"hi","current_objects":[]}`, string(body))
		return reply(200, `{"canvas_objects":null}`), nil
	})
	resp, err := c.SendPrompt(context.Background(), domain.PromptRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.NotNil(t, resp.CanvasObjects)
	assert.Empty(t, resp.CanvasObjects)
}

func TestSendPromptFalsyObjectsAreEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing", `{}`},
		{"null", `{"canvas_objects":null}`},
		{"false", `{"canvas_objects":false}`},
		{"zero", `{"canvas_objects":0}`},
		{"empty string", `{"canvas_objects":""}`},
		{"empty list", `{"canvas_objects":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stubClient(func(*http.Request) (*http.Response, error) { return reply(200, tt.body), nil })
			resp, err := c.SendPrompt(context.Background(), domain.PromptRequest{Prompt: "hi"})
			require.NoError(t, err)
			assert.NotNil(t, resp.CanvasObjects)
			assert.Empty(t, resp.CanvasObjects)
		})
	}
}

func TestSendPromptTruthyNonListRejected(t *testing.T) {
	for _, body := range []string{`{"canvas_objects":"box"}`, `{"canvas_objects":1}`, `{"canvas_objects":{"tool":"DrawLine"}}`} {
		c := stubClient(func(*http.Request) (*http.Response, error) { return reply(200, body), nil })
		_, err := c.SendPrompt(context.Background(), domain.PromptRequest{Prompt: "hi"})
		require.ErrorIs(t, err, domain.ErrTransport, body)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, body)
	}
}

func TestSendPromptNon2xx(t *testing.T) {
	c := stubClient(func(*http.Request) (*http.Response, error) {
		return reply(500, `{"detail":"AI returned invalid JSON."}`), nil
	})
	_, err := c.SendPrompt(context.Background(), domain.PromptRequest{Prompt: "hi"})
	require.ErrorIs(t, err, domain.ErrHTTPStatus)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "AI returned invalid JSON.")
}

func TestSendPromptTransportError(t *testing.T) {
	c := stubClient(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	_, err := c.SendPrompt(context.Background(), domain.PromptRequest{Prompt: "hi"})
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSendPromptMalformedBody(t *testing.T) {
	c := stubClient(func(*http.Request) (*http.Response, error) { return reply(200, `<html>`), nil })
	_, err := c.SendPrompt(context.Background(), domain.PromptRequest{Prompt: "hi"})
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "decode response")
}

func TestSendPromptTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := New(config.ClientConfig{Endpoint: server.URL + "/prompt", Timeout: 20 * time.Millisecond}, logger.Discard())
	_, err := c.SendPrompt(context.Background(), domain.PromptRequest{Prompt: "hi"})
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestDetailOf(t *testing.T) {
	assert.Equal(t, "boom", detailOf([]byte(`{"detail":"boom"}`)))
	assert.Equal(t, "plain text", detailOf([]byte("plain text")))
	assert.Len(t, detailOf([]byte(strings.Repeat("x", 1000))), 256)
}
