package cli

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pagesift/pagesift/pkg/core"
	"github.com/pagesift/pagesift/pkg/fetcher"
	"github.com/pagesift/pagesift/pkg/log"
	"github.com/pagesift/pagesift/pkg/log/sinks"
	"github.com/pagesift/pagesift/pkg/types"

	// Ensure all fetch engine implementations are initialized
	_ "github.com/pagesift/pagesift/pkg/fetcher/fetchers"
)

type LintCmd struct {
	Varfile string `help:"The YAML varfile for input variables." default:"psvars.yml"`
	Job     string `help:"The extraction job file." default:"pagesift.yml"`
}

func (l *LintCmd) Run() error {
	consoleSink := sinks.NewConsoleSink()

	logRouter := log.NewRouter()
	logRouter.AddSink(consoleSink)

	baseZerologInstance := zerolog.New(logRouter).With().Timestamp().Logger()
	cmdLogger := log.NewZerologAdapter(baseZerologInstance)

	cmdLogger.Info().Msgf("Validating %s using %s", l.Job, l.Varfile)

	if err := godotenv.Load(); err != nil {
		cmdLogger.Warn().Err(err).Msgf("No .env file found or error thrown while loading it. Relying on existing ENV if vars use {{ env.* }}")
	}

	job, err := core.LoadJobFromFile(l.Job)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to load job file %s", l.Job)
		return fmt.Errorf("loading job file %q: %w", l.Job, err)
	}
	cmdLogger.Info().Msgf("Successfully loaded job: %s", job.Name)

	jobAbsPath, err := filepath.Abs(l.Job)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Could not determine absolute path for job file %s", l.Job)
		return fmt.Errorf("determining absolute path for job file %q: %w", l.Job, err)
	}
	jobDir := filepath.Dir(jobAbsPath)

	varCtx, err := loadVarfile(l.Varfile, cmdLogger)
	if err != nil {
		return err
	}

	if err := core.ValidateRequiredInputs(job, varCtx); err != nil {
		cmdLogger.Error().Err(err).Msgf("Required input validation failed")
		return fmt.Errorf("validating required inputs: %w", err)
	}
	cmdLogger.Info().Msgf("Required input validation passed")

	cmdLogger.Info().Msgf("Validating providers...")
	for _, p := range job.Providers {
		if _, err := core.ResolveProviderVariables(&p, varCtx); err != nil {
			cmdLogger.Error().Err(err).Msgf("Provider %q has a configuration issue", p.Name)
			return fmt.Errorf("resolving variables for provider %q: %w", p.Name, err)
		}
	}
	cmdLogger.Info().Msgf("Provider validation passed")

	validationJob, err := core.InjectVarsIntoJob(job, varCtx)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Could not resolve global variables for job validation")
		return fmt.Errorf("resolving global variables for job: %w", err)
	}

	cmdLogger.Info().Msgf("Validating individual targets...")
	for _, targetConfig := range validationJob.Targets {
		targetLogger := cmdLogger.With().
			Str("target_id", targetConfig.ID).
			Str("target_url", targetConfig.URL).
			Logger()

		targetLogger.Info().Msg("Validating target configuration...")

		execCtx := types.ExecutionContext{
			Target: targetConfig,
			Logger: targetLogger,
			JobDir: jobDir,
		}

		pageFetcher, err := fetcher.GetFetcher(execCtx)
		if err != nil {
			targetLogger.Error().Err(err).Msg("Error getting fetcher for target")
			return fmt.Errorf("getting fetcher for target %q: %w", targetConfig.ID, err)
		}

		if err := pageFetcher.Validate(); err != nil {
			targetLogger.Error().Err(err).Msg("Target configuration validation failed")
			return fmt.Errorf("validating target %q (engine: %s): %w", targetConfig.ID, targetConfig.Engine, err)
		}

		targetLogger.Info().Msg("Target configuration validation passed")
	}

	cmdLogger.Info().Msg("Successfully validated job configuration ✅")
	return nil
}
