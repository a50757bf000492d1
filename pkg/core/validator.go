package core

import (
	"fmt"

	"github.com/pagesift/pagesift/pkg/fetcher"
	"github.com/pagesift/pagesift/pkg/types"
)

var validProviderTypes = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
}

// ValidateJobStructure checks fields at the job level: job name, input
// types/uniqueness, provider declarations, and target uniqueness.
func ValidateJobStructure(job *Job) error {
	if job.Name == "" {
		return fmt.Errorf("job is missing 'name'")
	}

	validInputTypes := map[string]bool{
		"string":  true,
		"file":    true,
		"number":  true,
		"boolean": true,
	}

	inputNames := make(map[string]bool)
	for i, input := range job.Inputs {
		if input.Name == "" {
			return fmt.Errorf("input %d is missing 'name'", i)
		}
		if inputNames[input.Name] {
			return fmt.Errorf("duplicate input name: %q", input.Name)
		}
		inputNames[input.Name] = true

		if !validInputTypes[input.Type] {
			return fmt.Errorf("input %q has invalid type %q", input.Name, input.Type)
		}
	}

	providerNames := make(map[string]bool)
	for i, provider := range job.Providers {
		if provider.Name == "" {
			return fmt.Errorf("provider %d is missing 'name'", i)
		}
		if providerNames[provider.Name] {
			return fmt.Errorf("duplicate provider name: %q", provider.Name)
		}
		providerNames[provider.Name] = true

		if provider.Type == "" {
			return fmt.Errorf("provider %q is missing 'type'", provider.Name)
		}
		if !validProviderTypes[provider.Type] {
			return fmt.Errorf("provider %q has unsupported type %q", provider.Name, provider.Type)
		}
	}

	targetIDs := make(map[string]bool)
	for i, target := range job.Targets {
		if target.ID == "" {
			return fmt.Errorf("target %d is missing 'id'", i)
		}
		if targetIDs[target.ID] {
			return fmt.Errorf("duplicate target id: %q", target.ID)
		}
		targetIDs[target.ID] = true

		if target.URL == "" {
			return fmt.Errorf("target %q is missing 'url'", target.ID)
		}
		if target.Provider == "" {
			return fmt.Errorf("target %q is missing 'provider'", target.ID)
		}
		if !providerNames[target.Provider] {
			return fmt.Errorf("target %q references provider %q, which is not defined in providers", target.ID, target.Provider)
		}
		if len(target.Elements) == 0 && target.Prompt == "" {
			return fmt.Errorf("target %q must define 'elements' or a custom 'prompt'", target.ID)
		}
	}

	return nil
}

func ValidateRequiredInputs(job *Job, varCtx VarContext) error {
	for _, input := range job.Inputs {
		if input.Required {
			if _, exists := varCtx[input.Name]; !exists && input.Default == "" {
				return fmt.Errorf("required input %q is missing from the varfile and no default value is provided", input.Name)
			}
		}
	}
	return nil
}

// ValidateJobFetchers runs each target's fetcher validation without fetching.
func ValidateJobFetchers(job *Job, jobDir string) error {
	for _, target := range job.Targets {
		ctx := types.ExecutionContext{
			Target: target,
			JobDir: jobDir,
		}

		pageFetcher, err := fetcher.GetFetcher(ctx)
		if err != nil {
			return fmt.Errorf("getting fetcher for target %q: %w", target.ID, err)
		}

		if err = pageFetcher.Validate(); err != nil {
			return fmt.Errorf("validating target %q: %w", target.ID, err)
		}
	}

	return nil
}
