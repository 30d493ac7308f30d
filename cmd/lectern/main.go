// Command lectern indexes study material and answers questions about it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/custodia-labs/lectern/internal/adapters/driven/ai"
	"github.com/custodia-labs/lectern/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lectern/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/custodia-labs/lectern/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/lectern/internal/adapters/driving/cli"
	"github.com/custodia-labs/lectern/internal/config"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/services"
	"github.com/custodia-labs/lectern/internal/logger"
	"github.com/custodia-labs/lectern/internal/normalisers/pdf"
	"github.com/custodia-labs/lectern/internal/normalisers/transcript"
	"github.com/custodia-labs/lectern/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Flags are parsed by cobra after wiring; pick up -v early so wiring is logged too.
	if slices.Contains(os.Args[1:], "-v") || slices.Contains(os.Args[1:], "--verbose") {
		logger.SetVerbose(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, cleanup, err := wire(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		return 1
	}
	defer cleanup()

	root := cli.NewRootCommand(s)
	root.SetOut(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		fmt.Fprintln(os.Stderr, "Error:", cli.Describe(err))
		return 1
	}
	return 0
}

// wire builds every service from stored settings and LECTERN_ overrides.
// An index that cannot be opened is recorded on Services rather than
// returned, so settings and index reset remain usable.
func wire(ctx context.Context) (*cli.Services, func(), error) {
	logger.Section("Startup")

	configDir, err := file.DefaultDir()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	// Validation only pings the provider, so the device is irrelevant here.
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(domain.DeviceAuto))

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}
	if err := config.Load(settings, ".env"); err != nil {
		return nil, nil, err
	}

	aiServices := ai.Initialise(settings)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	storage, err := sqlite.NewIndexStorage(settings.IndexDir)
	if err != nil {
		aiServices.Close()
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	index := services.NewIndexStore(storage, vectormem.NewEngine(), aiServices.EmbeddingService, settings.Timeouts.Embedding)

	var indexErr error
	if err := index.Open(ctx); err != nil {
		logger.Warn("index unusable: %v", err)
		indexErr = err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(settings.Chunk.PipelineConfig())
	if err != nil {
		aiServices.Close()
		return nil, nil, err
	}

	var prompts driven.PromptStore
	if store, err := file.NewPromptStore(""); err != nil {
		logger.Warn("custom prompts disabled: %v", err)
	} else {
		prompts = store
	}

	s := &cli.Services{
		Answer: services.NewAnswerService(index, aiServices.LLMService, prompts,
			services.AnswerOptionsFromSettings(settings)),
		Ingest:   services.NewIngestService(pdf.New(), transcript.New(), pipeline, index),
		Index:    index,
		Settings: settingsService,
		IndexErr: indexErr,
		TopK:     settings.TopK,
		Version:  version,
	}
	return s, aiServices.Close, nil
}
