package llm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
)

func TestCircuitBreakerPassesThrough(t *testing.T) {
	cb := NewCircuitBreakerProvider(okProvider("gemini", "{}"), config.CircuitBreakerConfig{}, newTestLogger())

	resp, err := cb.Chat(context.Background(), canvasRequest(true))
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Message.Content)
	assert.Equal(t, "gemini", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreakerOpensOnTransientFailures(t *testing.T) {
	var calls atomic.Int32
	inner := &mockProvider{
		name: "flaky",
		chatFunc: func(context.Context, domain.ChatRequest) (*domain.ChatResponse, error) {
			calls.Add(1)
			return nil, mapHTTPError(503, nil)
		},
	}
	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Minute}, newTestLogger())

	for range 2 {
		_, err := cb.Chat(context.Background(), canvasRequest(true))
		require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Chat(context.Background(), canvasRequest(true))
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, int32(2), calls.Load(), "open circuit must not reach the provider")
}

func TestCircuitBreakerIgnoresNonTransientErrors(t *testing.T) {
	cb := NewCircuitBreakerProvider(
		failingProvider("gemini", mapHTTPError(401, nil)),
		config.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute},
		newTestLogger(),
	)

	for range 3 {
		_, err := cb.Chat(context.Background(), canvasRequest(true))
		require.ErrorIs(t, err, domain.ErrAuthInvalid)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	cb := NewCircuitBreakerProvider(
		failingProvider("gemini", context.Canceled),
		config.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute},
		newTestLogger(),
	)
	_, err := cb.Chat(context.Background(), canvasRequest(true))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	inner := &mockProvider{
		name: "gemini",
		chatFunc: func(context.Context, domain.ChatRequest) (*domain.ChatResponse, error) {
			if failing.Load() {
				return nil, fmt.Errorf("%w: slow", domain.ErrTimeout)
			}
			return &domain.ChatResponse{Message: domain.Message{Content: "{}"}}, nil
		},
	}
	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{MaxFailures: 1, Timeout: 20 * time.Millisecond}, newTestLogger())

	_, err := cb.Chat(context.Background(), canvasRequest(true))
	require.ErrorIs(t, err, domain.ErrTimeout)
	require.Equal(t, gobreaker.StateOpen, cb.State())

	failing.Store(false)
	require.Eventually(t, func() bool {
		return cb.State() == gobreaker.StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	_, err = cb.Chat(context.Background(), canvasRequest(true))
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestTripsBreaker(t *testing.T) {
	assert.True(t, tripsBreaker(domain.ErrRateLimit))
	assert.True(t, tripsBreaker(domain.ErrProviderUnavailable))
	assert.True(t, tripsBreaker(domain.ErrTimeout))
	assert.False(t, tripsBreaker(domain.ErrAuthInvalid))
	assert.False(t, tripsBreaker(domain.ErrProviderError))
	assert.False(t, tripsBreaker(errors.Join(domain.ErrProviderUnavailable, context.Canceled)))
}

func TestNewPooledTransportDefaults(t *testing.T) {
	tr := NewPooledTransport(0, 0, config.PoolConfig{})
	assert.Equal(t, defaultMaxIdleConns, tr.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	assert.Equal(t, defaultMaxConnsPerHost, tr.MaxConnsPerHost)
	assert.Equal(t, defaultIdleConnTimeout, tr.IdleConnTimeout)
	assert.Equal(t, defaultRespTimeout, tr.ResponseHeaderTimeout)
	assert.NotNil(t, tr.Proxy)
}

func TestNewPooledTransportCustom(t *testing.T) {
	tr := NewPooledTransport(time.Second, 5*time.Second, config.PoolConfig{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 2,
		MaxConnsPerHost:     3,
		IdleConnTimeout:     time.Minute,
	})
	assert.Equal(t, 4, tr.MaxIdleConns)
	assert.Equal(t, 2, tr.MaxIdleConnsPerHost)
	assert.Equal(t, 3, tr.MaxConnsPerHost)
	assert.Equal(t, time.Minute, tr.IdleConnTimeout)
	assert.Equal(t, 5*time.Second, tr.ResponseHeaderTimeout)
}

func TestNewHTTPClientTimeout(t *testing.T) {
	c := NewHTTPClient(config.ProviderConfig{ConnTimeout: 2 * time.Second, RespTimeout: 8 * time.Second})
	assert.Equal(t, 10*time.Second, c.Timeout)

	c = NewHTTPClient(config.ProviderConfig{})
	assert.Equal(t, defaultConnTimeout+defaultRespTimeout, c.Timeout)
}
