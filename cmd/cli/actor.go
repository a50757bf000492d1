package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pagesift/pagesift/pkg/actor"
	"github.com/pagesift/pagesift/pkg/core"
	"github.com/pagesift/pagesift/pkg/llm"
	"github.com/pagesift/pagesift/pkg/log"
	"github.com/pagesift/pagesift/pkg/log/sinks"

	// Ensure all fetch engine implementations are initialized
	_ "github.com/pagesift/pagesift/pkg/fetcher/fetchers"
)

// ActorCmd runs one extraction the way the hosting platform invokes it:
// input from local storage, records to the default dataset, and a summary
// record back to the key-value store.
type ActorCmd struct{}

func (a *ActorCmd) Run() error {
	runID := uuid.New().String()

	consoleSink := sinks.NewConsoleSink()

	logsDir := ".pagesift/logs"
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs directory %q: %w", logsDir, err)
	}
	fileSink, err := sinks.NewFileSink(filepath.Join(logsDir, fmt.Sprintf("%s.json", runID)))
	if err != nil {
		return fmt.Errorf("creating file log sink: %w", err)
	}

	logRouter := log.NewRouter()
	logRouter.AddSink(consoleSink)
	logRouter.AddSink(fileSink)

	baseZerologInstance := zerolog.New(logRouter).With().Timestamp().Logger()
	cmdLogger := log.NewZerologAdapter(baseZerologInstance)

	defer func() {
		if err := logRouter.Close(); err != nil {
			fmt.Printf("Error during log shutdown: %v", err)
		}
	}()

	if err := godotenv.Load(); err != nil {
		cmdLogger.Warn().Err(err).Msg("No .env file found or error thrown while loading it. Relying on existing ENV.")
	}

	storageDir := actor.StorageDir()

	input, err := actor.ReadInput(storageDir)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to read actor input")
		return err
	}
	cmdLogger.Info().Msgf("Starting extraction for URL: %s", input.URL)

	job := input.ToJob()

	// Resolve provider keys before the redactor so the effective key is
	// masked even when it came from the environment.
	resolvedProviders := make(map[string]core.ProviderConfig, len(job.Providers))
	for _, p := range job.Providers {
		if p.APIKey == "" && p.Type != "ollama" {
			p.APIKey = llm.FallbackAPIKey(p.Type)
		}
		resolvedProviders[p.Name] = p
	}
	logRouter.Redactor = buildRedactor(job, core.VarContext{}, resolvedProviders)

	if err := core.ValidateJobFetchers(job, storageDir); err != nil {
		cmdLogger.Error().Err(err).Msg("Actor input validation failed")
		return err
	}

	providers, err := llm.BuildProviders(resolvedProviders)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Provider construction failed")
		return err
	}

	kvStore, err := actor.OpenKeyValueStore(storageDir)
	if err != nil {
		return err
	}

	cmdLogger.Info().Msg("Running extraction...")

	engine := core.NewExtractionEngine(cmdLogger)
	results, err := engine.ExecuteJob(context.Background(), job, core.VarContext{}, nil, storageDir, providers)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Extraction failed")
		if kvErr := kvStore.SetValue(actor.ErrorKey, actor.ErrorSummary{
			URL:   input.URL,
			Error: err.Error(),
		}); kvErr != nil {
			cmdLogger.Error().Err(kvErr).Msg("Failed to record error summary")
		}
		return err
	}

	result := results["page"]

	dataset, err := actor.OpenDataset(storageDir)
	if err != nil {
		return err
	}

	cmdLogger.Info().Msgf("Extraction completed, saving %d items", len(result.Items))
	if err := dataset.Push(result.Items); err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to push records to dataset")
		return err
	}

	if err := kvStore.SetValue(actor.OutputKey, actor.OutputSummary{
		URL:            input.URL,
		ExtractedItems: len(result.Items),
		Status:         "success",
	}); err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to record output summary")
		return err
	}

	cmdLogger.Info().Msg("Actor run finished")
	return nil
}
