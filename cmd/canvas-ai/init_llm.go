package main

import (
	"fmt"
	"log/slog"

	"canvas-ai/internal/adapter/llm"
	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
)

// LLMComponents holds the provider registry and the provider prompts go to.
type LLMComponents struct {
	Registry   *llm.Registry
	DefaultLLM domain.LLMProvider
}

// initLLM builds every usable provider, wraps each in a circuit breaker when
// enabled and the default in failover when fallbacks are configured.
// Providers without an API key are skipped; bedrock authenticates through
// the AWS credential chain instead.
func initLLM(cfg *config.Config, log *slog.Logger) (*LLMComponents, error) {
	registry := llm.NewRegistry()

	cbCfg := cfg.LLM.CircuitBreaker
	for _, pc := range cfg.LLM.Providers {
		if pc.APIKey == "" && pc.Type != "bedrock" {
			log.Warn("llm provider skipped: no api key", "provider", pc.Name)
			continue
		}
		provider, err := createLLMProvider(pc, log)
		if err != nil {
			return nil, fmt.Errorf("llm provider %s: %w", pc.Name, err)
		}
		if cbCfg.Enabled {
			provider = llm.NewCircuitBreakerProvider(provider, cbCfg, log)
		}
		if err := registry.Register(provider); err != nil {
			return nil, fmt.Errorf("llm provider %s: %w", pc.Name, err)
		}
	}

	if cbCfg.Enabled {
		log.Info("llm circuit breaker enabled",
			"max_failures", cbCfg.MaxFailures,
			"timeout", cbCfg.Timeout,
		)
	}

	defaultLLM, err := registry.Get(cfg.LLM.DefaultProvider)
	if err != nil {
		return nil, fmt.Errorf("default llm provider %q: %w (set its api_key or CANVASAI_LLM_PROVIDER_<NAME>_API_KEY)",
			cfg.LLM.DefaultProvider, err)
	}

	if cfg.LLM.Failover.Enabled && len(cfg.LLM.Failover.Fallbacks) > 0 {
		var fallbacks []domain.LLMProvider
		for _, name := range cfg.LLM.Failover.Fallbacks {
			fb, err := registry.Get(name)
			if err != nil {
				log.Warn("failover provider unavailable", "provider", name, "error", err)
				continue
			}
			fallbacks = append(fallbacks, fb)
		}
		if len(fallbacks) > 0 {
			defaultLLM = llm.NewFailoverProvider(defaultLLM, fallbacks, log)
			log.Info("model failover enabled", "fallbacks", len(fallbacks))
		}
	}

	return &LLMComponents{Registry: registry, DefaultLLM: defaultLLM}, nil
}

func createLLMProvider(pc config.ProviderConfig, log *slog.Logger) (domain.LLMProvider, error) {
	if pc.Type == "bedrock" {
		return createBedrockProvider(pc, log)
	}
	return llm.NewProvider(pc, log)
}
