// Package actor implements the hosting platform's local storage contract:
// actor input from the default key-value store, extracted records to the
// default dataset, and run summaries back to the key-value store.
package actor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagesift/pagesift/pkg/core"
	"github.com/pagesift/pagesift/pkg/types"
)

const (
	defaultStorageDir = "storage"
	defaultInputKey   = "INPUT"

	// Summary keys written back to the key-value store.
	OutputKey = "OUTPUT"
	ErrorKey  = "ERROR"
)

// Input is the actor's input object, one extraction per run.
type Input struct {
	URL                string             `json:"url"`
	Elements           map[string]string  `json:"elements"`
	LLMProvider        string             `json:"llmProvider,omitempty"`
	ModelName          string             `json:"modelName,omitempty"`
	APIKey             string             `json:"apiKey,omitempty"`
	BaseURL            string             `json:"baseUrl,omitempty"`
	CustomPrompt       string             `json:"customPrompt,omitempty"`
	Scrolls            int                `json:"scrolls,omitempty"`
	Timeout            string             `json:"timeout,omitempty"`
	Engine             string             `json:"engine,omitempty"`
	Cookies            []types.Cookie     `json:"cookies,omitempty"`
	ProxyConfiguration *types.ProxyConfig `json:"proxyConfiguration,omitempty"`
}

// OutputSummary is the OUTPUT record written on success.
type OutputSummary struct {
	URL            string `json:"url"`
	ExtractedItems int    `json:"extractedItems"`
	Status         string `json:"status"`
}

// ErrorSummary is the ERROR record written on failure.
type ErrorSummary struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// StorageDir returns the platform storage root, overridable through
// ACTOR_STORAGE_DIR.
func StorageDir() string {
	if dir := os.Getenv("ACTOR_STORAGE_DIR"); dir != "" {
		return dir
	}
	return defaultStorageDir
}

// ReadInput loads and validates the actor input from the default key-value
// store. The key defaults to INPUT and can be overridden with ACTOR_INPUT_KEY.
func ReadInput(storageDir string) (*Input, error) {
	key := os.Getenv("ACTOR_INPUT_KEY")
	if key == "" {
		key = defaultInputKey
	}

	path := filepath.Join(storageDir, "key_value_stores", "default", key+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading actor input %q: %w", path, err)
	}

	var input Input
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parsing actor input JSON from %q: %w", path, err)
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	return &input, nil
}

func (in *Input) Validate() error {
	if in.URL == "" {
		return fmt.Errorf("actor input: 'url' is required")
	}
	if len(in.Elements) == 0 && in.CustomPrompt == "" {
		return fmt.Errorf("actor input: 'elements' to extract are required")
	}
	if in.Scrolls < 0 {
		return fmt.Errorf("actor input: 'scrolls' must not be negative")
	}
	return nil
}

// ToJob converts the flat actor input into a single-provider, single-target
// job the engine can execute.
func (in *Input) ToJob() *core.Job {
	providerType := in.LLMProvider
	if providerType == "" {
		providerType = "openai"
	}

	return &core.Job{
		Name: "actor-extraction",
		Providers: []core.ProviderConfig{
			{
				Name:    "default",
				Type:    providerType,
				Model:   in.ModelName,
				APIKey:  in.APIKey,
				BaseURL: in.BaseURL,
			},
		},
		Targets: []types.Target{
			{
				ID:       "page",
				URL:      in.URL,
				Engine:   in.Engine,
				Provider: "default",
				Elements: in.Elements,
				Prompt:   in.CustomPrompt,
				Scrolls:  in.Scrolls,
				Timeout:  in.Timeout,
				Cookies:  in.Cookies,
				Proxy:    in.ProxyConfiguration,
			},
		},
	}
}
