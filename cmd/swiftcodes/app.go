package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	handler "github.com/zdziszkee/swift-registry/internal/api/handlers"
	"github.com/zdziszkee/swift-registry/internal/api/router"
	config "github.com/zdziszkee/swift-registry/internal/configurations"
	"github.com/zdziszkee/swift-registry/internal/database"
	"github.com/zdziszkee/swift-registry/internal/loader"
	"github.com/zdziszkee/swift-registry/internal/logging"
	"github.com/zdziszkee/swift-registry/internal/metrics"
	parser "github.com/zdziszkee/swift-registry/internal/parsers"
	"github.com/zdziszkee/swift-registry/internal/query"
	"github.com/zdziszkee/swift-registry/internal/readers/csv"
	"github.com/zdziszkee/swift-registry/internal/registry"
	repository "github.com/zdziszkee/swift-registry/internal/repositories"
	service "github.com/zdziszkee/swift-registry/internal/services"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

// app holds the wired components shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *database.Database
	prom     *prometheus.Registry
	metrics  *metrics.Metrics
	registry *registry.BankRegistry
	loader   *loader.Loader
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	nameMatch, err := validation.ParseNameMatch(cfg.Registry.CountryNameMatch)
	if err != nil {
		return nil, err
	}

	db, err := database.New(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	prom := prometheus.NewRegistry()
	prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(prom)

	reg := registry.NewBankRegistry(
		repository.NewSQLSwiftRepository(db),
		validation.NewEngine(nameMatch),
		logger,
		m,
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		prom:     prom,
		metrics:  m,
		registry: reg,
		loader: loader.New(
			&csv.CSVSwiftBanksReader{},
			parser.DefaultSwiftBanksParser{Logger: logger},
			reg,
			logger,
			m,
		),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", slog.Any("error", err))
	}
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A failed auto-load leaves the server usable with whatever was imported.
	if a.cfg.Data.AutoLoad && a.cfg.Data.SwiftCodesFile != "" {
		a.logger.Info("loading SWIFT codes", slog.String("file", a.cfg.Data.SwiftCodesFile))
		if _, err := a.loader.LoadFile(ctx, a.cfg.Data.SwiftCodesFile); err != nil {
			a.logger.Warn("failed to load SWIFT codes", slog.Any("error", err))
		}
	}

	svc := service.NewSwiftService(a.registry, query.NewEngine(a.registry, a.logger), a.logger)
	fiberApp := router.SetupRoutes(handler.NewSwiftHandler(svc, a.logger), router.Options{
		AppName:  a.cfg.AppName,
		Logger:   a.logger,
		Metrics:  a.metrics,
		Gatherer: a.prom,
	})

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", slog.String("addr", a.cfg.Server.Addr))
		errCh <- fiberApp.Listen(a.cfg.Server.Addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.logger.Info("server exiting", slog.Duration("timeout", a.cfg.Server.ShutdownTimeout))
	return nil
}
