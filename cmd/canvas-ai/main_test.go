package main

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai/internal/adapter/llm"
	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
	"canvas-ai/internal/infra/logger"
)

func TestInitLLMRequiresKeyForDefault(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.Providers[0].APIKey = ""

	_, err := initLLM(cfg, logger.Discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestInitLLMWrapsDefaultInBreaker(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.Providers[0].APIKey = "key"

	comp, err := initLLM(cfg, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, "gemini", comp.DefaultLLM.Name())
	assert.IsType(t, &llm.CircuitBreakerProvider{}, comp.DefaultLLM)
	assert.Equal(t, []string{"gemini"}, comp.Registry.List())
}

func TestInitLLMSkipsKeylessFallbacks(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.CircuitBreaker.Enabled = false
	cfg.LLM.Providers[0].APIKey = "key"
	cfg.LLM.Providers = append(cfg.LLM.Providers,
		config.ProviderConfig{Name: "claude", Type: "anthropic", Model: "m"},
		config.ProviderConfig{Name: "gpt", Type: "openai", Model: "m", APIKey: "key"},
	)

	cfg.LLM.Failover = config.FailoverConfig{Enabled: true, Fallbacks: []string{"claude"}}
	comp, err := initLLM(cfg, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini", "gpt"}, comp.Registry.List())
	assert.IsType(t, &llm.GeminiProvider{}, comp.DefaultLLM, "no usable fallback, no failover wrapper")

	cfg.LLM.Failover.Fallbacks = []string{"claude", "gpt"}
	comp, err = initLLM(cfg, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &llm.FailoverProvider{}, comp.DefaultLLM)
}

const sampleObjects = `{"canvas_objects":[
	{"id":"a","tool":"DrawRectangle","x":100,"y":100,"width":800,"height":400,"color":"#ff0000"},
	{"id":"b","tool":"InfoBox","x":1000,"y":100,"width":600,"height":300,"data":{"cpu":"42%"}}
]}`

func decodeSample(t *testing.T) []domain.CanvasObject {
	t.Helper()
	raws, err := domain.DecodeObjectList([]byte(sampleObjects))
	require.NoError(t, err)
	return domain.NormalizeObjects(raws)
}

func TestRenderText(t *testing.T) {
	c := &renderCmd{Text: true, Cols: 100, Rows: 30}
	var out bytes.Buffer
	require.NoError(t, c.render(decodeSample(t), color.NRGBA{A: 255}, &out, logger.Discard()))

	assert.Equal(t, 30, strings.Count(out.String(), "\n"))
	assert.Contains(t, out.String(), "cpu")
}

func TestRenderPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	c := &renderCmd{Output: path, Width: 320, Height: 180}
	require.NoError(t, c.render(decodeSample(t), color.NRGBA{A: 255}, &bytes.Buffer{}, logger.Discard()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestPrintHistory(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printHistory(&out, nil))
	assert.Equal(t, "No prompts recorded yet.\n", out.String())

	out.Reset()
	entries := []domain.HistoryEntry{
		{ID: 2, Prompt: "add a graph", Provider: "gemini", ObjectCount: 3, DurationMs: 1200, Status: domain.HistoryStatusOK, CreatedAt: time.Now()},
		{ID: 1, Prompt: "draw", Provider: "gemini", Status: domain.HistoryStatusError, Error: "model returned invalid JSON", CreatedAt: time.Now()},
	}
	require.NoError(t, printHistory(&out, entries))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "add a graph")
	assert.Contains(t, lines[2], "error: model returned invalid JSON")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc…", truncate("abcdefgh", 4))
}
