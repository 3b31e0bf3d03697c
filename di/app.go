package di

import (
	"context"
	"time"

	"stagehand/config"
	"stagehand/helper"
	"stagehand/infras/otel"
	"stagehand/internal/jobs/reminder"
	"stagehand/transport/http"

	"github.com/rs/zerolog/log"
)

const jobStopTimeout = 30 * time.Second

// App runs the HTTP server next to the background jobs.
type App struct {
	Config   *config.Config
	HTTP     *http.HTTP
	Reminder *reminder.Job
}

func NewApp(cfg *config.Config, server *http.HTTP, reminderJob *reminder.Job) *App {
	return &App{
		Config:   cfg,
		HTTP:     server,
		Reminder: reminderJob,
	}
}

// Run blocks until the HTTP server has shut down, then stops the scheduler and flushes traces.
func (a *App) Run() {
	if a.Config.DB.Postgres.AutoMigrate {
		if err := helper.Runner(a.Config, helper.ActionUp); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	if err := a.Reminder.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start reminder job")
	}

	a.HTTP.Serve()

	ctx, cancel := context.WithTimeout(context.Background(), jobStopTimeout)
	defer cancel()

	a.Reminder.Stop(ctx)

	if err := otel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}
}
