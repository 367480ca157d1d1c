package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"docketdesk/internal/platform/config"
	"docketdesk/internal/platform/httpserver"
	"docketdesk/internal/platform/logger"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const shutdownTimeout = 30 * time.Second

type APIApp struct {
	server  *httpserver.Server
	runner  *exportRunner
	infra   *infrastructure
	modules httpserver.Modules
	logger  *slog.Logger
}

type WorkerApp struct {
	runner exportRunner
	infra  *infrastructure
	logger *slog.Logger
}

// LoadConfig reads configuration and installs the process logger.
func LoadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	base := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, base, nil
}

func BuildAPI(ctx context.Context, cfg config.Config, base *slog.Logger) (*APIApp, error) {
	if base == nil {
		base = slog.Default()
	}
	log := base.With("service", cfg.ServiceName, "process", "api")

	infra, err := newInfrastructure(ctx, cfg, log, "api")
	if err != nil {
		return nil, err
	}
	modules, err := buildModules(infra)
	if err != nil {
		_ = infra.close(ctx)
		return nil, err
	}
	if err := provisionOwner(ctx, infra, modules.Access); err != nil {
		_ = infra.close(ctx)
		return nil, err
	}

	app := &APIApp{
		server: httpserver.New(modules, httpserver.Options{
			Addr:                normalizeAddr(cfg.HTTPPort),
			Signer:              infra.signer,
			Artifacts:           infra.objects,
			Metrics:             infra.metrics,
			ExportRatePerMinute: cfg.ExportRatePerMinute,
			Ready:               infra.ready,
			Logger:              log,
		}),
		infra:   infra,
		modules: modules,
		logger:  log,
	}
	if cfg.EmbeddedWorker {
		app.runner = &exportRunner{
			exports:       modules.Exports,
			bus:           infra.bus,
			pollInterval:  cfg.ExportPollInterval,
			sweepInterval: cfg.ExportSweepInterval,
			logger:        log,
		}
	}
	return app, nil
}

func BuildWorker(ctx context.Context, cfg config.Config, base *slog.Logger) (*WorkerApp, error) {
	if cfg.StorageDriver == config.StorageMemory {
		return nil, errors.New("the standalone worker needs STORAGE_DRIVER=postgres or sqlite")
	}
	if base == nil {
		base = slog.Default()
	}
	log := base.With("service", cfg.ServiceName, "process", "worker")

	infra, err := newInfrastructure(ctx, cfg, log, "worker")
	if err != nil {
		return nil, err
	}
	modules, err := buildModules(infra)
	if err != nil {
		_ = infra.close(ctx)
		return nil, err
	}
	return &WorkerApp{
		runner: exportRunner{
			exports:       modules.Exports,
			bus:           infra.bus,
			pollInterval:  cfg.ExportPollInterval,
			sweepInterval: cfg.ExportSweepInterval,
			logger:        log,
		},
		infra:  infra,
		logger: log,
	}, nil
}

// Run serves HTTP until ctx is cancelled, running the export worker alongside
// when it is embedded.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"embedded_worker", a.runner != nil,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.runner != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.runner.Run(runCtx); err != nil {
				a.logger.Error("embedded export runner stopped",
					"event", "bootstrap_export_runner_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.server.Start() }()

	var err error
	select {
	case err = <-serveErr:
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		err = a.server.Shutdown(shutdownCtx)
		stop()
	}
	cancel()
	wg.Wait()
	return err
}

// Modules exposes the wired contexts for in-process callers and tests.
func (a *APIApp) Modules() httpserver.Modules {
	return a.modules
}

func (a *APIApp) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.infra.close(ctx)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	if err := w.runner.Run(ctx); err != nil {
		return fmt.Errorf("export runner: %w", err)
	}
	return nil
}

func (w *WorkerApp) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return w.infra.close(ctx)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
