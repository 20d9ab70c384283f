// Package main implements the entry point for the retention engine
// server, which schedules spaced-repetition reviews and adapts each
// learner's forgetting-curve parameters from their review history.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/retentlabs/retent/internal/config"
	"github.com/retentlabs/retent/internal/domain/fsrs"
	"github.com/retentlabs/retent/internal/optimizer"
	"github.com/retentlabs/retent/internal/platform/logger"
	"github.com/retentlabs/retent/internal/platform/postgres"
	"github.com/retentlabs/retent/internal/service/optimization"
	"github.com/retentlabs/retent/internal/service/review"
	"github.com/retentlabs/retent/internal/store"
	"github.com/retentlabs/retent/internal/task"
	"github.com/retentlabs/retent/migrations"
)

const (
	taskQueueSize   = 64
	shutdownTimeout = 10 * time.Second
)

// application holds the assembled dependency graph.
type application struct {
	config           *config.Config
	logger           *slog.Logger
	db               *sql.DB
	reviewService    review.ReviewService
	orchestrator     *optimization.Orchestrator
	optimizationRuns store.OptimizationRunStore
	taskQueue        *task.Queue
	workerPool       *task.WorkerPool
	sweeper          *task.Sweeper
}

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() { _ = app.db.Close() }()

	if err := app.run(); err != nil {
		app.logger.Error("server exited with error", "error", err.Error())
		os.Exit(1)
	}
}

// initializeApp loads configuration and assembles the application's
// dependency graph.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := openDatabase(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Stores
	memoryStates := postgres.NewMemoryStateStore(db, appLogger)
	reviewLog := postgres.NewReviewLogStore(db, appLogger)
	params := postgres.NewParameterStore(db, appLogger)
	optimizationRuns := postgres.NewOptimizationRunStore(db, appLogger)

	// Scheduling model
	srs := fsrs.NewService(fsrs.SchedulerConfig{
		DesiredRetention: cfg.Scheduler.DesiredRetention,
		LearningSteps:    cfg.Scheduler.LearningSteps,
		RelearningSteps:  cfg.Scheduler.RelearningSteps,
		MaximumInterval:  cfg.Scheduler.MaximumInterval,
	})

	reviewService := review.NewReviewService(db, memoryStates, reviewLog, params, srs, appLogger)

	opt := optimizer.New(optimizer.Config{
		Conservative:       cfg.Optimizer.Conservative,
		ConservativeFactor: cfg.Optimizer.ConservativeFactor,
		MaxParamChange:     cfg.Optimizer.MaxParamChange,
	})
	orchestrator := optimization.NewOrchestrator(
		reviewLog, params, optimizationRuns, opt, nil, appLogger)

	// Background work
	taskQueue := task.NewQueue(taskQueueSize, appLogger)
	workerPool := task.NewWorkerPool(taskQueue, task.DefaultWorkerPoolConfig(), appLogger)
	sweeper := task.NewSweeper(
		reviewLog, orchestrator, taskQueue, cfg.Optimizer.SweepInterval, appLogger)

	return &application{
		config:           cfg,
		logger:           appLogger,
		db:               db,
		reviewService:    reviewService,
		orchestrator:     orchestrator,
		optimizationRuns: optimizationRuns,
		taskQueue:        taskQueue,
		workerPool:       workerPool,
		sweeper:          sweeper,
	}, nil
}

// run starts the background workers and the HTTP server, then blocks
// until a shutdown signal arrives and everything drains.
func (app *application) run() error {
	app.workerPool.Start()
	app.sweeper.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:      app.setupRouter(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		app.logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful shutdown failed", "error", err.Error())
	}

	// Stop accepting background work, let workers drain what is queued.
	app.sweeper.Stop()
	app.taskQueue.Close()
	app.workerPool.Stop()

	app.logger.Info("server stopped")
	return nil
}

// openDatabase opens and verifies the PostgreSQL connection pool.
func openDatabase(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// runMigrations applies the embedded schema migrations.
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
