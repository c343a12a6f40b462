package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PredTrack/internal/domain/repository"
	"PredTrack/pkg/config"
	xhttp "PredTrack/pkg/http"
	"PredTrack/pkg/logger"
	"PredTrack/pkg/postgres"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	handler    xhttp.Handler
	httpServer *xhttp.Server
	publisher  repository.ScoredPublisher
	pg         *postgres.Client
}

// New creates a new App instance with all dependencies. publisher may be nil
// when event publishing is disabled.
func New(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	publisher repository.ScoredPublisher,
	pg *postgres.Client,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		publisher: publisher,
		pg:        pg,
	}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}

	a.httpServer = xhttp.NewServer(a.handler, a.log,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", logger.Error(err))
		return err
	}
	a.log.Info("application started",
		logger.String("environment", a.cfg.Environment),
		logger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", logger.Error(err))
		}
	}

	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.log.Warn("postgres close error", logger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
