// Package app assembles the application: configuration, logging,
// metrics, the websocket hub, the report service and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"adlens/internal/config"
	"adlens/internal/dataprocessing"
	apperrors "adlens/internal/errors"
	"adlens/internal/infrastructure"
	"adlens/internal/middleware"
	"adlens/internal/services"
	httptransport "adlens/internal/transport/http"
	"adlens/internal/validation"
	"adlens/internal/websocket"
)

// Application holds all initialized components.
type Application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *infrastructure.MetricsProviders
	hub     *websocket.Hub
	service *services.ReportService
	server  *http.Server
}

// New creates and wires the application.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	metrics, err := infrastructure.InitializeMetrics(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	reportMetrics, err := infrastructure.NewReportMetrics(metrics.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create report metrics: %w", err)
	}

	hub := websocket.NewHub(logger)

	parser := dataprocessing.NewParser(logger)
	service := services.NewReportService(parser, hub, reportMetrics, logger)

	uploadValidator := validation.NewUploadValidator(cfg.Upload, logger)

	app := &Application{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		hub:     hub,
		service: service,
	}

	router := app.buildRouter(uploadValidator)
	app.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

func (app *Application) buildRouter(uploadValidator *validation.UploadValidator) chi.Router {
	cfg := app.config
	logger := app.logger

	errorHandler := apperrors.NewErrorHandler(logger, false)

	reportHandler := httptransport.NewReportHandler(app.service, uploadValidator, logger)
	healthHandler := httptransport.NewHealthHandler()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compress(5))

	if cfg.Security.EnableCORS {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins:   cfg.Security.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Prometheus scrape endpoint and websocket stay outside the API
	// middleware group; neither benefits from request timeouts.
	r.Handle("/metrics", app.metrics.PrometheusHTTP)
	r.Get("/ws", websocket.ServeWS(app.hub, logger))

	r.Route("/api", func(api chi.Router) {
		if cfg.Security.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(
				cfg.Security.RateLimit.RPS,
				cfg.Security.RateLimit.Burst,
				logger,
			)
			api.Use(limiter.Handler)
		}
		api.Use(middleware.Timeout(cfg.Server.WriteTimeout, logger))
		api.Use(chimiddleware.NoCache)

		api.Mount("/report", reportHandler.Routes())
		api.Mount("/health", healthHandler.Routes())
		api.Get("/version", healthHandler.Version)
	})

	return r
}

// Run starts the hub and HTTP server and blocks until shutdown.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.hub.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("server starting",
			slog.String("addr", app.server.Addr),
			slog.String("service", infrastructure.ServiceName),
			slog.String("version", infrastructure.ServiceVersion))
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()

		if err := app.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		app.hub.Stop()
		return nil
	})

	err := g.Wait()

	if closeErr := infrastructure.CloseLogFile(); closeErr != nil {
		app.logger.Warn("failed to close log file", slog.String("error", closeErr.Error()))
	}

	if err != nil {
		return err
	}
	app.logger.Info("server stopped")
	return nil
}

// Shutdown gracefully stops the application outside of signal
// handling. Used by tests.
func (app *Application) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := app.server.Shutdown(ctx)
	app.hub.Stop()
	return err
}
