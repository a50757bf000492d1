package core_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/pagesift/pagesift/pkg/core"
	"github.com/pagesift/pagesift/pkg/fetcher"
	"github.com/pagesift/pagesift/pkg/llm"
	"github.com/pagesift/pagesift/pkg/log"
	"github.com/pagesift/pagesift/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticFetcher serves canned HTML so engine tests never touch a browser.
type staticFetcher struct {
	ctx types.ExecutionContext
}

func (f *staticFetcher) Validate() error {
	return nil
}

func (f *staticFetcher) Fetch(context.Context) (*types.PageContent, error) {
	return &types.PageContent{
		URL:       f.ctx.Target.URL,
		HTML:      "<html><body><h1>Widget</h1></body></html>",
		FetchedAt: time.Now(),
	}, nil
}

func init() {
	fetcher.RegisterFetcherFactory("static", func(ctx types.ExecutionContext) (fetcher.PageFetcher, error) {
		return &staticFetcher{ctx: ctx}, nil
	})
}

// scriptedProvider replays canned completions and records every prompt.
type scriptedProvider struct {
	replies []string
	prompts []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.replies) == 0 {
		return "", fmt.Errorf("no completion scripted")
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func discardLogger() types.Logger {
	return log.NewZerologAdapter(zerolog.New(io.Discard))
}

func TestExecuteJob_ChainsTargets(t *testing.T) {
	provider := &scriptedProvider{
		replies: []string{
			"```json\n[{\"title\": \"Widget\", \"slug\": \"widget-1\"}]\n```",
			`{"price": "$5"}`,
		},
	}

	job := &core.Job{
		Name: "chain",
		Providers: []core.ProviderConfig{
			{Name: "main", Type: "openai"},
		},
		Targets: []types.Target{
			{
				ID:       "listing",
				URL:      "https://shop.example.com/deals",
				Engine:   "static",
				Provider: "main",
				Elements: map[string]string{"title": "Product name", "slug": "URL slug"},
			},
			{
				ID:       "detail",
				URL:      "https://shop.example.com/items/{{ targets.listing.items.0.slug }}",
				Engine:   "static",
				Provider: "main",
				Elements: map[string]string{"price": "Current price"},
			},
		},
	}

	engine := core.NewExtractionEngine(discardLogger())
	results, err := engine.ExecuteJob(context.Background(), job, core.VarContext{}, nil, t.TempDir(), map[string]llm.Provider{"main": provider})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Widget", results["listing"].Items[0]["title"])
	assert.Equal(t, "$5", results["detail"].Items[0]["price"])

	// The second target's URL picked up the first target's record.
	assert.Equal(t, "https://shop.example.com/items/widget-1", results["detail"].URL)

	require.Len(t, provider.prompts, 2)
	assert.Contains(t, provider.prompts[0], "- slug: URL slug")
	assert.Contains(t, provider.prompts[1], "- price: Current price")
}

func TestExecuteJob_MalformedCompletionAborts(t *testing.T) {
	provider := &scriptedProvider{
		replies: []string{
			`[{"title": "Widget"}]`,
			"Sorry, I could not find anything.",
		},
	}

	job := &core.Job{
		Name: "abort",
		Providers: []core.ProviderConfig{
			{Name: "main", Type: "openai"},
		},
		Targets: []types.Target{
			{ID: "first", URL: "https://example.com/1", Engine: "static", Provider: "main", Elements: map[string]string{"title": "t"}},
			{ID: "second", URL: "https://example.com/2", Engine: "static", Provider: "main", Elements: map[string]string{"title": "t"}},
			{ID: "third", URL: "https://example.com/3", Engine: "static", Provider: "main", Elements: map[string]string{"title": "t"}},
		},
	}

	engine := core.NewExtractionEngine(discardLogger())
	results, err := engine.ExecuteJob(context.Background(), job, core.VarContext{}, nil, t.TempDir(), map[string]llm.Provider{"main": provider})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shaping model response")
	assert.Contains(t, err.Error(), `target "second"`)

	// Records extracted before the failure survive.
	require.Len(t, results, 1)
	assert.Equal(t, "Widget", results["first"].Items[0]["title"])
}

func TestExecuteJob_UnknownProvider(t *testing.T) {
	job := &core.Job{
		Name: "missing-provider",
		Targets: []types.Target{
			{ID: "page", URL: "https://example.com", Engine: "static", Provider: "ghost", Elements: map[string]string{"title": "t"}},
		},
	}

	engine := core.NewExtractionEngine(discardLogger())
	_, err := engine.ExecuteJob(context.Background(), job, core.VarContext{}, nil, t.TempDir(), map[string]llm.Provider{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `provider "ghost"`)
}

func TestExecuteJob_SeededResults(t *testing.T) {
	provider := &scriptedProvider{replies: []string{`[{"ok": true}]`}}

	seeded := core.TargetResultsContext{
		"earlier": {Items: []map[string]any{{"slug": "seeded-slug"}}},
	}

	job := &core.Job{
		Name: "seeded",
		Targets: []types.Target{
			{
				ID:       "page",
				URL:      "https://example.com/{{ targets.earlier.items.0.slug }}",
				Engine:   "static",
				Provider: "main",
				Elements: map[string]string{"ok": "whether it worked"},
			},
		},
	}

	engine := core.NewExtractionEngine(discardLogger())
	results, err := engine.ExecuteJob(context.Background(), job, core.VarContext{}, seeded, t.TempDir(), map[string]llm.Provider{"main": provider})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/seeded-slug", results["page"].URL)
}
