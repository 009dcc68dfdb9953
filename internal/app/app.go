package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devtomirror/internal/audit"
	"devtomirror/internal/config"
	"devtomirror/internal/devto"
	"devtomirror/internal/fetch"
	"devtomirror/internal/logging"
	"devtomirror/internal/notify"
	"devtomirror/internal/ports"
	"devtomirror/internal/render"
	"devtomirror/internal/scheduler"
	"devtomirror/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	driver   ports.Scheduler
	recorder *audit.PostgresRecorder
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if cfg.Mirror.Username == "" && !cfg.Fetch.ValidationMode && !cfg.Fetch.ForceEmptyFeed {
		return nil, fmt.Errorf("mirror username is required")
	}

	client := devto.NewClient(devto.Config{
		BaseURL:    cfg.API.BaseURL,
		APIKey:     cfg.API.APIKey,
		Timeout:    cfg.API.Timeout(),
		PerPage:    cfg.API.PerPage,
		MaxPages:   cfg.API.MaxPages,
		MaxRetries: cfg.API.MaxRetries,
		RetryDelay: cfg.API.RetryDelay(),
	}, baseLogger.With("component", "devto"))

	fetcher := fetch.NewFetcher(client, fetch.Toggles{
		ForceEmptyFeed:    cfg.Fetch.ForceEmptyFeed,
		ValidationNoPosts: cfg.Fetch.ValidationNoPosts,
		ValidationMode:    cfg.Fetch.ValidationMode,
	}, baseLogger.With("component", "fetch"))

	var recorder *audit.PostgresRecorder
	var runRecorder ports.RunRecorder
	if cfg.Database.DSN != "" {
		var err error
		recorder, err = audit.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("audit store: %w", err)
		}
		runRecorder = recorder
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = notify.NewTelegram(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:       fetcher,
		Renderer:      render.NewSnapshot(cfg.Mirror.PostsDataPath, baseLogger.With("component", "render")),
		Recorder:      runRecorder,
		Notifier:      notifier,
		Logger:        baseLogger.With("component", "pipeline"),
		Username:      cfg.Mirror.Username,
		PostsDataPath: cfg.Mirror.PostsDataPath,
		LastRunPath:   cfg.Mirror.LastRunPath,
	})

	var driver ports.Scheduler
	if cfg.Scheduler.CronExpression != "" {
		driver = scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	}

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		driver:   driver,
		recorder: recorder,
	}, nil
}

// Run performs one immediate mirror pass and, when a cron expression is
// configured, keeps running on schedule until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.recorder != nil {
		if err := a.recorder.EnsureSchema(ctx); err != nil {
			a.logger.Warn("audit schema check failed", "error", err)
		}
		defer a.recorder.Close()
	}

	if err := a.pipeline.Run(ctx, time.Now().In(a.cfg.Scheduler.Location())); err != nil {
		if a.driver == nil {
			return err
		}
		a.logger.Error("initial mirror run failed", "error", err)
	}

	if a.driver == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := a.pipeline.Run(ctx, trigger); err != nil {
			a.logger.Error("scheduled mirror run failed", "error", err)
		}
	}
	if err := a.driver.Start(ctx, job); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.driver.Stop(stopCtx)
}
