package app

import (
	"context"
	"log/slog"
	"time"

	"CafeteriaScanner/internal/config"
	"CafeteriaScanner/internal/extraction"
	"CafeteriaScanner/internal/infrastructure/llm"
	"CafeteriaScanner/internal/infrastructure/mail"
	"CafeteriaScanner/internal/logging"
	"CafeteriaScanner/internal/ports"
	"CafeteriaScanner/internal/store"
	"CafeteriaScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	syncer *usecase.Syncer
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	feed := mail.NewSimulatedFeed(cfg.Mailbox)

	var extractor ports.Extractor
	if cfg.Extraction.APIKey != "" {
		extractor = llm.NewClient(cfg.Extraction)
	}
	adapter := extraction.NewAdapter(extractor, baseLogger.With("component", "extraction"))

	syncer := usecase.NewSyncer(usecase.SyncerDeps{
		Feed:            feed,
		Adapter:         adapter,
		Store:           store.New(),
		Logger:          baseLogger.With("component", "syncer"),
		PollInterval:    time.Duration(cfg.Sync.PollIntervalSeconds) * time.Second,
		ManualSyncDelay: time.Duration(cfg.Sync.ManualSyncDelayMillis) * time.Millisecond,
		ChartWindow:     cfg.Sync.ChartWindowDays,
	})

	return &Application{cfg: cfg, syncer: syncer}
}

// Syncer exposes the scheduler and its read-only views to callers that
// present or inspect pipeline state.
func (a *Application) Syncer() *usecase.Syncer {
	return a.syncer
}

// Run performs the initial load, starts the polling loop, and blocks until
// ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.syncer == nil {
		return nil
	}

	if err := a.syncer.InitialLoad(ctx); err != nil {
		return err
	}
	if err := a.syncer.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return a.syncer.Stop(context.Background())
}
