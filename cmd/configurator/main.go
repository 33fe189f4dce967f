// cmd/configurator/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"device-configurator/cmd/configurator/interactive"
	"device-configurator/internal/catalog"
	"device-configurator/internal/config"
	"device-configurator/internal/database"
	"device-configurator/internal/discovery"
	serialscan "device-configurator/internal/discovery/serial"
	"device-configurator/internal/handler"
	"device-configurator/internal/model"
	"device-configurator/internal/repository"
	"device-configurator/internal/routes"
	"device-configurator/internal/service"
	"device-configurator/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	specs    *model.SpecSet
	history  repository.SnapshotRepository
	scanner  *discovery.ScannerManager
	sessions *service.SessionManager
	eventBus *handler.EventBus

	// status receives session reports; set once the front end exists
	status service.StatusFunc
}

// @title Device Configurator API
// @version 1.0.0
// @description Reads and writes the configuration of serial sensor devices
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	port := flag.String("port", "", "serial port of the device (overrides serial.port)")
	serve := flag.Bool("server", false, "run the HTTP server instead of the console")
	flag.Parse()

	app, err := NewApplication(*configPath, *port, *serve)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Error("Application failed", zap.Error(err))
		os.Exit(1)
	}
}

// NewApplication creates a new application instance
func NewApplication(configPath, port string, serve bool) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if port != "" {
		cfg.Serial.Port = port
	}
	if serve {
		cfg.Server.Enabled = true
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	mode := "console"
	if cfg.Server.Enabled {
		mode = "server"
	}
	utils.NewServiceLogger(logger, cfg.App.Name).LogServiceStart(cfg.App.Version, mode)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeCatalog(); err != nil {
		return nil, fmt.Errorf("failed to load device specifications: %w", err)
	}

	if err := app.initializeHistory(); err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}

	app.initializeServices()

	if cfg.Server.Enabled {
		app.initializeServer()
	}

	return app, nil
}

// initializeCatalog loads the device specifications
func (app *Application) initializeCatalog() error {
	specs, err := catalog.LoadFile(app.config.Spec.File)
	if err != nil {
		return err
	}
	app.specs = specs

	signatures := make([]string, 0, specs.Len())
	for _, sig := range specs.Signatures() {
		signatures = append(signatures, sig.String())
	}
	app.logger.Info("Device specifications loaded",
		zap.String("file", app.config.Spec.File),
		zap.Strings("signatures", signatures),
	)
	return nil
}

// initializeHistory selects the snapshot store: postgres when enabled,
// memory otherwise
func (app *Application) initializeHistory() error {
	if !app.config.Database.Enabled {
		app.history = repository.NewMemorySnapshotRepository(repository.DefaultSnapshotLimit)
		return nil
	}

	db, err := database.NewConnection(&app.config.Database, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	app.database = db

	if err := database.NewMigrator(db, app.logger).Up(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app.history = repository.NewSnapshotRepository(db, app.logger)
	return nil
}

// initializeServices wires the session manager and the port scanner
func (app *Application) initializeServices() {
	app.scanner = discovery.NewScannerManager(app.logger)
	app.scanner.RegisterScanner(serialscan.NewScanner(app.logger))

	app.sessions = service.NewSessionManager(
		app.specs,
		service.SerialDialer(app.config, app.logger),
		app.config.ProtocolTiming(),
		app.history,
		func(st service.Status) {
			if app.status != nil {
				app.status(st)
			}
		},
		app.logger,
	)
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() {
	app.eventBus = handler.NewEventBus(app.logger)
	app.status = handler.StatusPublisher(app.eventBus)

	var db handler.DatabaseChecker
	if app.database != nil {
		db = app.database
	}

	router := routes.NewRouter(
		app.config,
		app.logger,
		db,
		app.sessions,
		app.scanner,
		app.history,
		app.eventBus,
	).SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}
}

// Start runs the server or the console until shutdown
func (app *Application) Start() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer app.shutdown()

	if app.server != nil {
		return app.serve(ctx)
	}
	return app.console(ctx, cancel)
}

func (app *Application) serve(ctx context.Context) error {
	go app.eventBus.Start()

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("Starting HTTP server", zap.String("address", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if app.config.Serial.Port != "" {
		if _, err := app.sessions.Connect(ctx, ""); err != nil {
			app.logger.Warn("Initial device connection failed", zap.Error(err))
		}
	}

	select {
	case <-ctx.Done():
		app.logger.Info("Received shutdown signal")
		return nil
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (app *Application) console(ctx context.Context, cancel context.CancelFunc) error {
	con, err := interactive.New(app.sessions, app.scanner)
	if err != nil {
		return err
	}
	app.status = con.Status

	if app.config.Serial.Port != "" {
		con.Execute(ctx, "connect "+app.config.Serial.Port)
	}

	con.Run(ctx, cancel)
	return nil
}

// shutdown releases the device, the server and the database
func (app *Application) shutdown() {
	utils.NewServiceLogger(app.logger, app.config.App.Name).LogServiceStop("shutdown")

	if err := app.sessions.Close(); err != nil {
		app.logger.Error("Failed to close serial port", zap.Error(err))
	}

	if app.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.server.Shutdown(ctx); err != nil {
			app.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
		app.eventBus.Stop()
	}

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		}
	}

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Fprintf(os.Stderr, "Logger close error: %v\n", err)
	}
}
