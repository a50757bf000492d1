package fetcher

import (
	"context"

	"github.com/pagesift/pagesift/pkg/types"
)

// PageFetcher renders one target's page and returns its content. It never
// touches the LLM.
type PageFetcher interface {
	Validate() error
	Fetch(ctx context.Context) (*types.PageContent, error)
}
