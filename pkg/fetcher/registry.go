package fetcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pagesift/pagesift/pkg/types"
)

// DefaultEngine is used when a target does not name one.
const DefaultEngine = "browser"

type FetcherFactory func(ctx types.ExecutionContext) (PageFetcher, error)

// registry stores each fetch engine's factory function. GetFetcher calls the
// appropriate factory to yield a new instance of that PageFetcher
var registry = map[string]FetcherFactory{}

// This is called in each fetcher's init() function to register its factory
// function with the registry.
func RegisterFetcherFactory(engine string, factory FetcherFactory) {
	registry[engine] = factory
}

// GetFetcher returns an instance of the appropriate PageFetcher based on the
// target's 'engine' field, calling the corresponding factory from the registry.
func GetFetcher(ctx types.ExecutionContext) (PageFetcher, error) {
	engine := ctx.Target.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	factory, ok := registry[engine]
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for engine: %s (have: %s)", engine, strings.Join(Engines(), ", "))
	}

	return factory(ctx)
}

// Engines lists the registered engine names, for validation messages.
func Engines() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
