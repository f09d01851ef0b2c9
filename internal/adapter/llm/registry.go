package llm

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"canvas-ai/internal/domain"
	"canvas-ai/internal/infra/config"
)

// Registry holds named LLM providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]domain.LLMProvider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]domain.LLMProvider),
	}
}

// Register adds a provider. Returns error if name already registered.
func (r *Registry) Register(provider domain.LLMProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.providers[name] = provider
	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (domain.LLMProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, domain.NewDomainError("Registry.Get", domain.ErrProviderNotFound, name)
	}
	return p, nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewProvider builds the HTTP provider for pc.Type. Bedrock is built by the
// caller because it needs the AWS SDK and its own build tag.
func NewProvider(pc config.ProviderConfig, logger *slog.Logger) (domain.LLMProvider, error) {
	switch pc.Type {
	case "gemini":
		return NewGeminiProvider(pc, logger), nil
	case "openai":
		return NewOpenAIProvider(pc, logger), nil
	case "anthropic":
		return NewAnthropicProvider(pc, logger), nil
	default:
		return nil, domain.NewDomainError("llm.NewProvider", domain.ErrInvalidInput, "unsupported provider type "+pc.Type)
	}
}
