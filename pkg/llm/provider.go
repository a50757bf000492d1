// Package llm holds the model providers the extraction engine can delegate
// to. Each provider turns a single prompt into a single text completion;
// everything else (prompt building, response shaping) lives in pkg/extract.
package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/pagesift/pagesift/pkg/types"
)

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds a provider from its job configuration. API keys fall
// back to the provider type's conventional environment variable when the
// config leaves them empty.
func NewProvider(cfg types.ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg), nil
	case "local":
		return nil, fmt.Errorf("provider type \"local\" is not supported; run a model through ollama instead")
	default:
		return nil, fmt.Errorf("unsupported provider type: %q", cfg.Type)
	}
}

// FallbackAPIKey returns the conventional environment variable value for a
// provider type. Ollama needs no key.
func FallbackAPIKey(providerType string) string {
	switch providerType {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
