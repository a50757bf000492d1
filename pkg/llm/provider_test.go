package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pagesift/pagesift/pkg/llm"
	"github.com/pagesift/pagesift/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")

	tests := []struct {
		name     string
		cfg      types.ProviderConfig
		wantName string
		wantErr  string
	}{
		{
			name:     "openai",
			cfg:      types.ProviderConfig{Name: "main", Type: "openai", APIKey: "sk-test"},
			wantName: "openai",
		},
		{
			name:     "anthropic",
			cfg:      types.ProviderConfig{Name: "main", Type: "anthropic", APIKey: "sk-ant"},
			wantName: "anthropic",
		},
		{
			name:     "ollama",
			cfg:      types.ProviderConfig{Name: "main", Type: "ollama"},
			wantName: "ollama",
		},
		{
			name:    "local is rejected with a pointer to ollama",
			cfg:     types.ProviderConfig{Name: "main", Type: "local"},
			wantErr: "run a model through ollama instead",
		},
		{
			name:    "unknown type",
			cfg:     types.ProviderConfig{Name: "main", Type: "bedrock"},
			wantErr: "unsupported provider type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := llm.NewProvider(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, provider.Name())
		})
	}
}

func TestFallbackAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-anthropic")

	assert.Equal(t, "sk-openai", llm.FallbackAPIKey("openai"))
	assert.Equal(t, "sk-anthropic", llm.FallbackAPIKey("anthropic"))
	assert.Equal(t, "", llm.FallbackAPIKey("ollama"))
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := llm.NewAnthropicProvider(types.ProviderConfig{Name: "main", Type: "anthropic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an API key")
}

func TestAnthropicProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-5-haiku-latest", req["model"])
		assert.Equal(t, 0.0, req["temperature"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [{"type": "text", "text": "[{\"title\": \"Widget\"}]"}]}`))
	}))
	defer server.Close()

	provider, err := llm.NewAnthropicProvider(types.ProviderConfig{
		Name:    "main",
		Type:    "anthropic",
		APIKey:  "sk-ant-test",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	reply, err := provider.Complete(context.Background(), "extract things")
	require.NoError(t, err)
	assert.Equal(t, `[{"title": "Widget"}]`, reply)
}

func TestAnthropicProvider_CompleteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	provider, err := llm.NewAnthropicProvider(types.ProviderConfig{
		Name:    "main",
		Type:    "anthropic",
		APIKey:  "sk-ant-test",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), "extract things")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "rate_limit_error")
}

func TestAnthropicProvider_NoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"content": []}`))
	}))
	defer server.Close()

	provider, err := llm.NewAnthropicProvider(types.ProviderConfig{
		Name:    "main",
		Type:    "anthropic",
		APIKey:  "sk-ant-test",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), "extract things")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		temperature, ok := req["temperature"].(float64)
		require.True(t, ok, "temperature not sent")
		assert.Less(t, temperature, 1e-6)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "[{\"title\": \"Widget\"}]"}}]}`))
	}))
	defer server.Close()

	provider := llm.NewOpenAIProvider(types.ProviderConfig{
		Name:    "main",
		Type:    "openai",
		APIKey:  "sk-test",
		BaseURL: server.URL,
	})

	reply, err := provider.Complete(context.Background(), "extract things")
	require.NoError(t, err)
	assert.Equal(t, `[{"title": "Widget"}]`, reply)
}

func TestOllamaProvider_AppendsV1(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer server.Close()

	provider := llm.NewOllamaProvider(types.ProviderConfig{
		Name:    "local-models",
		Type:    "ollama",
		BaseURL: server.URL,
	})
	assert.Equal(t, "ollama", provider.Name())

	reply, err := provider.Complete(context.Background(), "extract things")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestBuildProviders(t *testing.T) {
	providers, err := llm.BuildProviders(map[string]types.ProviderConfig{
		"main":  {Name: "main", Type: "openai", APIKey: "sk-test"},
		"local": {Name: "local", Type: "ollama"},
	})
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, "openai", providers["main"].Name())
	assert.Equal(t, "ollama", providers["local"].Name())

	_, err = llm.BuildProviders(map[string]types.ProviderConfig{
		"bad": {Name: "bad", Type: "bedrock"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `building provider "bad"`)
}
