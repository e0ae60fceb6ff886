package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
	"github.com/taskpulse/taskpulse-api/internal/config"
	"github.com/taskpulse/taskpulse-api/internal/events"
	"github.com/taskpulse/taskpulse-api/internal/platform/postgres"
	"github.com/taskpulse/taskpulse-api/internal/presence"
	"github.com/taskpulse/taskpulse-api/internal/reminder"
	"github.com/taskpulse/taskpulse-api/internal/service"
)

// application holds the wired dependency graph.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	bus      *events.Bus
	router   *events.Router
	presence *presence.Tracker

	activityService     *service.ActivityService
	notificationService *service.NotificationService
	scheduler           *reminder.Scheduler
}

// newApplication connects the database, applies migrations, and constructs
// every component in dependency order.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := openDatabase(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	bus := events.NewBus(logger)
	router := events.NewRouter(bus, logger)
	tracker := presence.NewTracker(router, logger)

	activityStore := postgres.NewActivityStore(db)
	notificationStore := postgres.NewNotificationStore(db)
	taskStore := postgres.NewTaskStore(db)

	activityService := service.NewActivityService(activityStore, logger)
	notificationService := service.NewNotificationService(notificationStore, router, logger)

	scheduler := reminder.NewScheduler(taskStore, notificationService, reminder.SchedulerConfig{
		Interval: cfg.Reminder.Interval,
		Window:   cfg.Reminder.Window,
	}, logger)

	return &application{
		config:              cfg,
		logger:              logger,
		db:                  db,
		bus:                 bus,
		router:              router,
		presence:            tracker,
		activityService:     activityService,
		notificationService: notificationService,
		scheduler:           scheduler,
	}, nil
}

func openDatabase(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// cleanup stops the background scheduler and closes the database.
func (app *application) cleanup() {
	app.scheduler.Stop()
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
	app.logger.Info("delivery drop counter at shutdown", "dropped", app.bus.Dropped())
}
