package llm

import (
	"fmt"

	"github.com/pagesift/pagesift/pkg/types"
)

// BuildProviders constructs every declared provider up front so a job fails
// before the first page fetch when a provider is misconfigured.
func BuildProviders(cfgs map[string]types.ProviderConfig) (map[string]Provider, error) {
	providers := make(map[string]Provider, len(cfgs))
	for name, cfg := range cfgs {
		provider, err := NewProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("building provider %q: %w", name, err)
		}
		providers[name] = provider
	}
	return providers, nil
}
