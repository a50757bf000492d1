package llm

import (
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pagesift/pagesift/pkg/types"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434/v1"
	defaultOllamaModel   = "llama3.1"
)

// NewOllamaProvider points the OpenAI client at an Ollama server's
// OpenAI-compatible endpoint. No API key is involved.
func NewOllamaProvider(cfg types.ProviderConfig) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	// Ollama serves the OpenAI surface under /v1.
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL = strings.TrimRight(baseURL, "/") + "/v1"
	}

	clientCfg := openai.DefaultConfig("ollama")
	clientCfg.BaseURL = baseURL

	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		name:   "ollama",
	}
}
