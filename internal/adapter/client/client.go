// Package client sends prompts to the canvas service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
	"canvas-ai/internal/infra/tracer"
)

const maxResponseBody = 16 << 20

// HTTPClient implements domain.PromptClient against POST /prompt.
// Requests are sent once; there is no retry.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

var _ domain.PromptClient = (*HTTPClient)(nil)

// New creates a client for cfg.Endpoint with cfg.Timeout as the overall request timeout.
func New(cfg config.ClientConfig, logger *slog.Logger) *HTTPClient {
	return NewWithHTTPClient(cfg.Endpoint, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a client using hc for transport.
func NewWithHTTPClient(endpoint string, hc *http.Client, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{endpoint: endpoint, http: hc, logger: logger}
}

// SendPrompt implements domain.PromptClient. A missing or falsy canvas_objects
// field in the reply yields an empty list.
func (c *HTTPClient) SendPrompt(ctx context.Context, req domain.PromptRequest) (*domain.PromptResponse, error) {
	ctx, span := tracer.StartSpan(ctx, "client.send_prompt")
	defer span.End()
	span.SetAttributes(tracer.IntAttr("canvas.current_objects", len(req.CurrentObjects)))

	if req.CurrentObjects == nil {
		req.CurrentObjects = []json.RawMessage{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		tracer.RecordError(span, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: %w", domain.ErrTransport, domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		err := fmt.Errorf("%w: status %d: %s", domain.ErrHTTPStatus, httpResp.StatusCode, detailOf(respBody))
		tracer.RecordError(span, err)
		return nil, err
	}

	out, err := domain.DecodePromptReply(respBody)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrTransport, err)
	}

	c.logger.Debug("prompt answered",
		"status", httpResp.StatusCode,
		"objects", len(out.CanvasObjects),
		"duration", time.Since(start),
	)
	tracer.SetOK(span)
	return out, nil
}

// detailOf extracts the server's {"detail": ...} message, falling back to the
// raw body truncated to 256 bytes.
func detailOf(body []byte) string {
	var e domain.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	if len(body) > 256 {
		body = body[:256]
	}
	return string(body)
}
