package gateway

import (
	"net/http"
	"sync/atomic"
	"time"
)

// HealthResponse is the JSON body returned by GET /api/v1/health.
type HealthResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	History       bool           `json:"history"`
	Feed          FeedStatus     `json:"feed"`
	Prompts       PromptCounters `json:"prompts"`
}

// FeedStatus describes the /ws feed.
type FeedStatus struct {
	Enabled bool  `json:"enabled"`
	Clients int64 `json:"clients"`
}

// PromptCounters holds prompt totals since start.
type PromptCounters struct {
	Total    int64 `json:"total"`
	Errors   int64 `json:"errors"`
	LLMCalls int64 `json:"llm_calls"`
}

// Metrics tracks counters for the health API and Prometheus metrics.
type Metrics struct {
	PromptsTotal      atomic.Int64
	PromptErrorsTotal atomic.Int64
	LLMCallsTotal     atomic.Int64
	WSClients         atomic.Int64
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       s.deps.Version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		History:       s.deps.History != nil,
		Feed: FeedStatus{
			Enabled: s.unsubAll != nil,
			Clients: s.metrics.WSClients.Load(),
		},
		Prompts: PromptCounters{
			Total:    s.metrics.PromptsTotal.Load(),
			Errors:   s.metrics.PromptErrorsTotal.Load(),
			LLMCalls: s.metrics.LLMCallsTotal.Load(),
		},
	})
}
