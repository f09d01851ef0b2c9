package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
// Missing API keys are not structural; they are reported when providers are built.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateServer(cfg, ve)
	validateClient(cfg, ve)
	validateLLM(cfg, ve)
	validatePrompt(cfg, ve)
	validateCanvas(cfg, ve)
	validateHistory(cfg, ve)
	validateLogger(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateServer(cfg *Config, ve *ValidationError) {
	s := cfg.Server
	if _, _, err := net.SplitHostPort(s.Addr); err != nil {
		ve.Add("server.addr %q is invalid: %v", s.Addr, err)
	}
	if s.RateLimitPerMin < 0 {
		ve.Add("server.rate_limit_per_min must be >= 0")
	}
	if s.RateLimitPerMin > 0 && s.RateLimitBurst <= 0 {
		ve.Add("server.rate_limit_burst must be > 0 when rate limiting is enabled")
	}
	if s.MaxBodyBytes <= 0 {
		ve.Add("server.max_body_bytes must be > 0")
	}
	for i, o := range s.CORSOrigins {
		if o == "*" {
			continue
		}
		if u, err := url.Parse(o); err != nil || u.Scheme == "" || u.Host == "" {
			ve.Add("server.cors_origins[%d] %q must be an origin like http://host:port", i, o)
		}
	}
}

func validateClient(cfg *Config, ve *ValidationError) {
	u, err := url.Parse(cfg.Client.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ve.Add("client.endpoint %q must be an http(s) URL", cfg.Client.Endpoint)
	}
	if cfg.Client.Timeout < 0 {
		ve.Add("client.timeout must be >= 0")
	}
}

var validProviderTypes = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"gemini":    true,
	"bedrock":   true,
}

func validateLLM(cfg *Config, ve *ValidationError) {
	if cfg.LLM.DefaultProvider == "" {
		ve.Add("llm.default_provider must not be empty")
	}

	seen := make(map[string]bool)
	for i, p := range cfg.LLM.Providers {
		if p.Name == "" {
			ve.Add("llm.providers[%d].name must not be empty", i)
			continue
		}
		if seen[p.Name] {
			ve.Add("llm.providers[%d]: duplicate provider name %q", i, p.Name)
		}
		seen[p.Name] = true

		if !validProviderTypes[p.Type] {
			ve.Add("llm.providers[%d].type %q is invalid (want: openai, anthropic, gemini, bedrock)", i, p.Type)
		}
		if p.Model == "" {
			ve.Add("llm.providers[%d] (%s): model must not be empty", i, p.Name)
		}
		if p.Type == "bedrock" && p.Region == "" {
			ve.Add("llm.providers[%d] (%s): region is required for bedrock provider", i, p.Name)
		}
	}

	if len(cfg.LLM.Providers) > 0 && cfg.LLM.DefaultProvider != "" && !seen[cfg.LLM.DefaultProvider] {
		ve.Add("llm.default_provider %q does not match any configured provider", cfg.LLM.DefaultProvider)
	}

	if cfg.LLM.Failover.Enabled {
		for i, name := range cfg.LLM.Failover.Fallbacks {
			if !seen[name] {
				ve.Add("llm.failover.fallbacks[%d] %q does not match any configured provider", i, name)
			}
		}
	}

	cb := cfg.LLM.CircuitBreaker
	if cb.Enabled {
		if cb.MaxFailures == 0 {
			ve.Add("llm.circuit_breaker.max_failures must be > 0 when enabled")
		}
		if cb.Timeout <= 0 {
			ve.Add("llm.circuit_breaker.timeout must be > 0 when enabled")
		}
	}
}

func validatePrompt(cfg *Config, ve *ValidationError) {
	if cfg.Prompt.MaxTokens < 0 {
		ve.Add("prompt.max_tokens must be >= 0")
	}
	if cfg.Prompt.Temperature < 0 || cfg.Prompt.Temperature > 2 {
		ve.Add("prompt.temperature must be within [0, 2]")
	}
	if cfg.Prompt.MaxPromptChars < 0 {
		ve.Add("prompt.max_prompt_chars must be >= 0")
	}
}

func validateCanvas(cfg *Config, ve *ValidationError) {
	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		ve.Add("canvas.width and canvas.height must be > 0")
	}
}

func validateHistory(cfg *Config, ve *ValidationError) {
	if cfg.History.Enabled && cfg.History.Path == "" {
		ve.Add("history.path must not be empty when history is enabled")
	}
}

var validLogFormats = map[string]bool{"": true, "text": true, "json": true}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogFormats[strings.ToLower(cfg.Logger.Format)] {
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}
