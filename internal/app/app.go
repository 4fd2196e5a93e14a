package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/handlers"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
	"github.com/coursecraft/coursecraft/internal/pipeline"
	"github.com/coursecraft/coursecraft/internal/providers/llm"
	"github.com/coursecraft/coursecraft/internal/providers/video"
	"github.com/coursecraft/coursecraft/internal/services/courses"
	badgerstorage "github.com/coursecraft/coursecraft/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Providers
	ContentProvider interfaces.ContentProvider
	MockContent     interfaces.ContentProvider
	VideoProvider   interfaces.VideoSearchProvider

	// Pipeline
	Orchestrator *pipeline.Orchestrator
	Dispatcher   *pipeline.Dispatcher

	// Services
	CourseService *courses.Service

	// HTTP handlers
	CourseHandler *handlers.CourseHandler
	JobHandler    *handlers.JobHandler
	StatusHandler *handlers.StatusHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badgerstorage.NewManager(&cfg.Storage.Badger, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	contentProvider, err := llm.NewContentProvider(cfg, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize content provider: %w", err)
	}
	app.ContentProvider = contentProvider
	app.MockContent = llm.NewMockProvider(logger)

	videoProvider, err := video.NewVideoSearchProvider(cfg, logger)
	if err != nil {
		contentProvider.Close()
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize video provider: %w", err)
	}
	app.VideoProvider = videoProvider

	app.Orchestrator = pipeline.NewOrchestrator(
		storageManager,
		contentProvider,
		app.MockContent,
		videoProvider,
		&cfg.Pipeline,
		logger,
	)
	app.Dispatcher = pipeline.NewDispatcher(
		storageManager.JobStorage(),
		app.Orchestrator,
		cfg.Pipeline.PollIntervalDuration(),
		logger,
	)

	app.CourseService = courses.NewService(storageManager, &cfg.Pipeline, logger)

	app.CourseHandler = handlers.NewCourseHandler(app.CourseService, logger)
	app.JobHandler = handlers.NewJobHandler(app.CourseService, logger)
	app.StatusHandler = handlers.NewStatusHandler(storageManager.JobStorage(), app.Dispatcher, logger)

	if err := app.recoverOrphanedJobs(); err != nil {
		logger.Warn().Err(err).Msg("Startup job recovery encountered errors")
	}

	logger.Info().Msg("Application initialized")
	return app, nil
}

// Start launches background activity. The dispatcher is the only long-lived
// background loop.
func (a *App) Start() {
	a.Dispatcher.Start()
}

// Close shuts down background activity and releases resources.
func (a *App) Close() error {
	a.Dispatcher.Stop()

	if a.ContentProvider != nil {
		if err := a.ContentProvider.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close content provider")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}

// recoverOrphanedJobs marks jobs left in running by a previous process crash
// as failed. Stages are not idempotent against a half-built course, so a
// requeue could duplicate modules; failing is the safe recovery.
func (a *App) recoverOrphanedJobs() error {
	ctx := context.Background()
	jobStorage := a.StorageManager.JobStorage()

	orphaned, err := jobStorage.ListJobsByStatus(ctx, models.JobStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to list running jobs: %w", err)
	}

	for _, job := range orphaned {
		a.Logger.Warn().
			Str("job_id", job.ID).
			Str("stage", string(job.Stage)).
			Msg("Marking orphaned running job as failed")
		if err := jobStorage.MarkFailed(ctx, job.ID, models.ErrorKindOrchestratorInternal,
			"job was interrupted by a process restart"); err != nil {
			a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark orphaned job failed")
		}
	}

	if len(orphaned) > 0 {
		a.Logger.Info().Int("count", len(orphaned)).Msg("Orphaned running jobs marked failed")
	}
	return nil
}
