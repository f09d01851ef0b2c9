//go:build bedrock

package main

import (
	"log/slog"

	"canvas-ai/internal/adapter/llm"
	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
)

func createBedrockProvider(pc config.ProviderConfig, log *slog.Logger) (domain.LLMProvider, error) {
	return llm.NewBedrockProvider(pc, log)
}
