package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/climateapi/internal/controllers/restserver"
	"github.com/chrissnell/climateapi/internal/database"
	"github.com/chrissnell/climateapi/internal/log"
	"github.com/chrissnell/climateapi/internal/query"
	"github.com/chrissnell/climateapi/internal/store"
	"github.com/chrissnell/climateapi/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Run loads the dataset, starts the REST server and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The dataset is loaded and frozen before the server accepts requests
	engine, err := a.LoadEngine(ctx)
	if err != nil {
		return err
	}

	ctrl, err := restserver.NewController(ctx, &wg, a.config.Server, engine, a.logger)
	if err != nil {
		return fmt.Errorf("error creating REST server: %w", err)
	}
	if err := ctrl.StartController(); err != nil {
		return fmt.Errorf("error starting REST server: %w", err)
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal or a server that could not keep running
	var serveErr error
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	case err := <-ctrl.Err():
		serveErr = fmt.Errorf("REST server failed: %w", err)
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return serveErr
}

// LoadEngine reads the configured dataset into memory and builds the query
// engine over it
func (a *App) LoadEngine(ctx context.Context) (*query.Engine, error) {
	loader, closeFn, err := a.openLoader()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	s, err := store.Load(ctx, loader)
	if err != nil {
		return nil, err
	}

	engine, err := query.NewEngine(s, query.Options{MostActiveStation: a.config.Query.MostActiveStation})
	if err != nil {
		return nil, fmt.Errorf("error building query engine: %w", err)
	}

	return engine, nil
}

// openLoader connects to the configured backend. The returned function
// releases the connection once the dataset has been read.
func (a *App) openLoader() (store.Loader, func(), error) {
	ds := a.config.Dataset

	switch ds.Backend {
	case config.BackendSQLite:
		db, err := database.OpenSQLite(ds.SQLitePath, true)
		if err != nil {
			return nil, nil, err
		}
		return store.NewSQLiteLoader(db), func() { db.Close() }, nil

	case config.BackendTimescaleDB:
		db, err := database.CreateConnection(ds.ConnectionString)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to TimescaleDB: %w", err)
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return store.NewPostgresLoader(db), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unsupported dataset backend: %s", ds.Backend)
	}
}
