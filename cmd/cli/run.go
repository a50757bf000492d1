package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pagesift/pagesift/pkg/core"
	"github.com/pagesift/pagesift/pkg/llm"
	"github.com/pagesift/pagesift/pkg/log"
	"github.com/pagesift/pagesift/pkg/log/sinks"
	"github.com/pagesift/pagesift/pkg/security"
	"github.com/pagesift/pagesift/pkg/types"

	// Ensure all fetch engine implementations are initialized
	_ "github.com/pagesift/pagesift/pkg/fetcher/fetchers"
)

type RunCmd struct {
	Varfile string `help:"The YAML varfile for input variables." default:"psvars.yml"`
	Job     string `help:"The extraction job file." default:"pagesift.yml"`
	Results string `help:"Directory for run result files." default:".pagesift/results"`
}

func (r *RunCmd) Run() error {
	jobRunID := uuid.New().String()

	consoleSink := sinks.NewConsoleSink()

	logsDir := ".pagesift/logs"
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs directory %q: %w", logsDir, err)
	}
	logFilePath := filepath.Join(logsDir, fmt.Sprintf("%s.json", jobRunID))
	fileSink, err := sinks.NewFileSink(logFilePath)
	if err != nil {
		return fmt.Errorf("creating file log sink: %w", err)
	}

	logRouter := log.NewRouter()
	logRouter.AddSink(consoleSink)
	logRouter.AddSink(fileSink)

	baseZerologInstance := zerolog.New(logRouter).With().Timestamp().Logger()
	cmdLogger := log.NewZerologAdapter(baseZerologInstance)

	// Log the run ID early
	cmdLogger.Info().Msgf("Starting extraction run with ID: %s", jobRunID)
	cmdLogger.Info().Msgf("Logs will be saved to %q", logFilePath)

	// Graceful shutdown of logging sinks
	defer func() {
		cmdLogger.Info().Msg("Shutting down logger...")
		if err := logRouter.Close(); err != nil {
			fmt.Printf("Error during log shutdown: %v", err)
		}
	}()

	if err := godotenv.Load(); err != nil {
		cmdLogger.Warn().Err(err).Msgf("No .env file found or error thrown while loading it. Relying on existing ENV if vars use {{ env.* }}")
	}

	job, err := core.LoadJobFromFile(r.Job)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to load job file %s", r.Job)
		return fmt.Errorf("loading job file %q: %w", r.Job, err)
	}
	cmdLogger.Info().Msgf("Successfully loaded job: %q", job.Name)

	jobAbsPath, err := filepath.Abs(r.Job)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Could not determine absolute path for job file %s", r.Job)
		return fmt.Errorf("determining absolute path for job file %q: %w", r.Job, err)
	}
	jobDir := filepath.Dir(jobAbsPath)

	varCtx, err := loadVarfile(r.Varfile, cmdLogger)
	if err != nil {
		return err
	}

	// Apply default values for inputs that are not provided in the varfile
	for _, input := range job.Inputs {
		if _, exists := varCtx[input.Name]; !exists && input.Default != "" {
			cmdLogger.Debug().Msgf("Using default value for input %q", input.Name)
			varCtx[input.Name] = input.Default
		}
	}

	// Validate required input variables
	if err := core.ValidateRequiredInputs(job, varCtx); err != nil {
		cmdLogger.Error().Err(err).Msgf("Required input validation failed")
		return err
	}
	cmdLogger.Info().Msgf("Required input validation passed")

	// Resolve job providers
	resolvedProviders := make(map[string]core.ProviderConfig)
	for _, p := range job.Providers {
		resolvedP, err := core.ResolveProviderVariables(&p, varCtx)
		if err != nil {
			cmdLogger.Error().Err(err).Msgf("Failed to resolve variables for provider %q", p.Name)
			return fmt.Errorf("resolving variables for provider %q: %w", p.Name, err)
		}
		resolvedProviders[p.Name] = *resolvedP
	}

	// Apply fallback API keys for providers with empty API keys
	for name, provider := range resolvedProviders {
		if provider.APIKey == "" && provider.Type != "ollama" {
			cmdLogger.Info().Msgf("API key for provider %q is not defined in the job. Falling back to environment variable.", provider.Name)
			fallbackKey := llm.FallbackAPIKey(provider.Type)
			if fallbackKey != "" {
				provider.APIKey = fallbackKey
				resolvedProviders[name] = provider
			} else {
				cmdLogger.Error().Msgf("API key for provider %q is not defined in the job or the expected environment variable", provider.Name)
				return fmt.Errorf("API key for provider %q is not defined in the job or the expected environment variable", provider.Name)
			}
		}
	}

	// Initialize and attach secrets redactor
	logRouter.Redactor = buildRedactor(job, varCtx, resolvedProviders)

	validationJob, err := core.InjectVarsIntoJob(job, varCtx)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to resolve global variables for job validation")
		return fmt.Errorf("resolving global variables for job validation: %w", err)
	}
	if err := core.ValidateJobFetchers(validationJob, jobDir); err != nil {
		cmdLogger.Error().Err(err).Msg("Job fetcher validation failed")
		return fmt.Errorf("validating job fetchers: %w", err)
	}

	cmdLogger.Info().Msg("Job validation passed")

	providers, err := llm.BuildProviders(resolvedProviders)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Provider construction failed")
		return err
	}

	cmdLogger.Info().Msgf("Executing job: %q", job.Name)

	engine := core.NewExtractionEngine(cmdLogger)
	results, err := engine.ExecuteJob(context.Background(), job, varCtx, nil, jobDir, providers)
	if err != nil {
		return err
	}

	resultsPath, err := writeResults(r.Results, jobRunID, results)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to write results file")
		return err
	}

	cmdLogger.Info().Msgf("Job completed successfully. Results written to %q, logs at %q", resultsPath, logFilePath)
	return nil
}

// loadVarfile resolves the varfile, tolerating its absence: a missing or
// partially resolvable varfile degrades to whatever could be read, and
// required input validation decides whether that is fatal.
func loadVarfile(path string, cmdLogger types.Logger) (core.VarContext, error) {
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cmdLogger.Warn().Msgf("Varfile %s not found. Proceeding without global variables. Required inputs might fail validation if not in ENV.", path)
		return make(core.VarContext), nil
	}

	varCtx, err := core.ResolveVarfile(path)
	if err != nil {
		cmdLogger.Warn().Err(err).Msgf("Could not fully resolve varfile %q. Some variable validations might be affected.", path)
		if varCtx == nil {
			varCtx = make(core.VarContext)
		}
		return varCtx, nil
	}

	cmdLogger.Info().Msgf("Successfully loaded and resolved varfile: %s", path)
	return varCtx, nil
}

func writeResults(dir, runID string, results core.TargetResultsContext) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating results directory %q: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.json", runID))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing results file %q: %w", path, err)
	}
	return path, nil
}

func buildRedactor(job *core.Job, varCtx core.VarContext, providers map[string]core.ProviderConfig) *security.Redactor {
	secretInputs := make([]security.SecretInput, 0, len(job.Inputs))
	for _, input := range job.Inputs {
		secretInputs = append(secretInputs, security.SecretInput{Name: input.Name, Secret: input.Secret})
	}
	apiKeys := make([]string, 0, len(providers))
	for _, p := range providers {
		apiKeys = append(apiKeys, p.APIKey)
	}
	return security.NewRedactor(secretInputs, varCtx, apiKeys)
}
