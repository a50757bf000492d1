package core

import (
	"context"
	"fmt"

	"github.com/pagesift/pagesift/pkg/extract"
	"github.com/pagesift/pagesift/pkg/fetcher"
	"github.com/pagesift/pagesift/pkg/llm"
	"github.com/pagesift/pagesift/pkg/types"
)

type ExtractionEngine struct {
	Logger Logger
}

func NewExtractionEngine(logger Logger) *ExtractionEngine {
	return &ExtractionEngine{
		Logger: logger,
	}
}

// ExecuteJob runs every target in order: fetch the page, reduce it, prompt
// the target's provider, and shape the reply into records. The first failing
// target aborts the run. Providers are built once and shared across targets.
func (e *ExtractionEngine) ExecuteJob(
	ctx context.Context,
	job *Job,
	varCtx VarContext,
	initialResults TargetResultsContext,
	jobDir string,
	providers map[string]llm.Provider,
) (TargetResultsContext, error) {
	targetResults := initialResults
	if targetResults == nil {
		targetResults = make(TargetResultsContext)
	}

	for _, target := range job.Targets {
		e.Logger.Info().Msgf("Running target %q (url=%s)", target.ID, target.URL)

		resolvedTarget, err := ResolveTargetVariables(&target, varCtx, targetResults)
		if err != nil {
			return targetResults, fmt.Errorf("could not resolve variables for target %q: %w", target.ID, err)
		}

		engineName := resolvedTarget.Engine
		if engineName == "" {
			engineName = fetcher.DefaultEngine
		}
		scopedLogger := e.Logger.With().Str("target_id", resolvedTarget.ID).Str("engine", engineName).Logger()

		provider, found := providers[resolvedTarget.Provider]
		if !found {
			return targetResults, fmt.Errorf("target %q references provider %q, which is not defined in providers", resolvedTarget.ID, resolvedTarget.Provider)
		}

		execCtx := types.ExecutionContext{
			Target: *resolvedTarget,
			Logger: scopedLogger,
			JobDir: jobDir,
		}

		pageFetcher, err := fetcher.GetFetcher(execCtx)
		if err != nil {
			return targetResults, fmt.Errorf("error getting fetcher for target %q: %w", resolvedTarget.ID, err)
		}
		if err := pageFetcher.Validate(); err != nil {
			return targetResults, fmt.Errorf("validating target %q: %w", resolvedTarget.ID, err)
		}

		result, err := e.runTarget(ctx, execCtx, pageFetcher, provider)
		if err != nil {
			return targetResults, fmt.Errorf("error running target %q: %w", resolvedTarget.ID, err)
		}

		e.Logger.Debug().Msgf("Storing %d records for target %q", len(result.Items), resolvedTarget.ID)
		targetResults[resolvedTarget.ID] = *result
	}

	return targetResults, nil
}

func (e *ExtractionEngine) runTarget(
	ctx context.Context,
	execCtx types.ExecutionContext,
	pageFetcher fetcher.PageFetcher,
	provider llm.Provider,
) (*types.TargetResult, error) {
	target := execCtx.Target
	logger := execCtx.Logger

	page, err := pageFetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", target.URL, err)
	}
	logger.Info().Int("html_bytes", len(page.HTML)).Msg("Fetched page content")

	content, err := extract.CleanHTML(page.HTML, target.MaxContentChars)
	if err != nil {
		return nil, fmt.Errorf("cleaning page content: %w", err)
	}

	prompt := extract.BuildPrompt(content, target.Elements, target.Prompt)
	logger.Debug().Int("prompt_chars", len(prompt)).Str("provider", provider.Name()).Msg("Sending extraction prompt")

	response, err := provider.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("completing extraction prompt: %w", err)
	}

	items, err := extract.ParseItems(response)
	if err != nil {
		return nil, fmt.Errorf("shaping model response: %w", err)
	}

	logger.Info().Int("items", len(items)).Msg("Extraction completed")

	return &types.TargetResult{
		URL:       page.URL,
		Items:     items,
		FetchedAt: page.FetchedAt,
	}, nil
}
