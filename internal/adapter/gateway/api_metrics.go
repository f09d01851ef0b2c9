package gateway

import (
	"fmt"
	"net/http"
	"runtime"
	"time"
)

// handleMetrics serves GET /metrics in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v float64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %g\n", name, help, name, name, v)
	}

	counter("canvasai_prompts_total", "Total POST /prompt requests.", s.metrics.PromptsTotal.Load())
	counter("canvasai_prompt_errors_total", "Total failed POST /prompt requests.", s.metrics.PromptErrorsTotal.Load())
	counter("canvasai_llm_calls_total", "Total completed LLM calls.", s.metrics.LLMCallsTotal.Load())
	gauge("canvasai_ws_clients", "Connected feed clients.", float64(s.metrics.WSClients.Load()))
	gauge("canvasai_uptime_seconds", "Seconds since the server started.", float64(int64(time.Since(s.startTime).Seconds())))

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	gauge("go_goroutines", "Number of goroutines.", float64(runtime.NumGoroutine()))
	gauge("go_memstats_alloc_bytes", "Bytes allocated and still in use.", float64(mem.Alloc))
}
