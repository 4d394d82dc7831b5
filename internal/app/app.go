// Package app wires configuration, services and the HTTP server into one
// runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"msydash/internal/config"
	"msydash/internal/dataprocessing"
	apierrors "msydash/internal/errors"
	"msydash/internal/infrastructure"
	"msydash/internal/metrics"
	"msydash/internal/middleware"
	"msydash/internal/services"
	transporthttp "msydash/internal/transport/http"
	"msydash/internal/websocket"
)

// App is the assembled application.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	dashboard *services.DashboardService
	scheduler *services.RefreshScheduler
	hub       *websocket.Hub
}

// New builds the application from configuration.
func New(cfg *config.Config) (*App, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	hub := websocket.NewHub(logger)

	loader := dataprocessing.NewLoader(cfg.DataDir(), nil, logger)
	aggregator := metrics.NewAggregator(forecaster(cfg.Dashboard), metrics.Config{
		TopN:                cfg.Dashboard.TopDrivers,
		CriticalIngredients: cfg.Dashboard.CriticalIngredients,
	}, logger)

	dashboard := services.NewDashboardService(loader, aggregator, hub, logger)
	insights := services.NewInsightsService(cfg.Insights.GeminiAPIKey, cfg.Insights.Model, logger)
	health := services.NewHealthService(dashboard)
	scheduler := services.NewRefreshScheduler(cfg.Dashboard.RefreshCron, dashboard, logger)

	errorHandler := apierrors.NewErrorHandler(logger)
	router := buildRouter(cfg, logger, errorHandler, dashboard, insights, health, hub)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		server:    server,
		dashboard: dashboard,
		scheduler: scheduler,
		hub:       hub,
	}, nil
}

// forecaster picks the configured forecast strategy.
func forecaster(cfg config.DashboardConfig) metrics.Forecaster {
	if cfg.ForecastMethod == "moving_average" {
		return metrics.MovingAverage{Window: cfg.MovingAverageWindow}
	}
	return metrics.LinearTrend{}
}

func buildRouter(
	cfg *config.Config,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
	dashboard *services.DashboardService,
	insights *services.InsightsService,
	health *services.HealthService,
	hub *websocket.Hub,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics)
	if cfg.Security.EnableCORS {
		r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.Security.AllowedOrigins}))
	}
	r.Use(middleware.SecurityHeaders)
	if cfg.Security.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger).Handler)
	}
	r.Use(middleware.Compress(5))

	dashboardHandler := transporthttp.NewDashboardHandler(dashboard, insights, logger, errorHandler)
	healthHandler := transporthttp.NewHealthHandler(health)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", dashboardHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", hub.ServeHTTP)

	// Static dashboard assets, when a web directory is present.
	if info, err := os.Stat(cfg.WebDir()); err == nil && info.IsDir() {
		fileServer := http.FileServer(http.Dir(cfg.WebDir()))
		r.Handle("/*", fileServer)
	}

	return r
}

// Run loads the initial snapshot, starts the scheduler, and serves until the
// context is cancelled. A failed initial load is not fatal: the service
// starts degraded and answers 503 until a reload succeeds.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.dashboard.Reload(ctx); err != nil {
		a.logger.Error("initial load failed, serving degraded until reload",
			slog.String("error", err.Error()))
	}

	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("start refresh scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return a.shutdown()
	}
}

func (a *App) shutdown() error {
	a.logger.Info("shutting down")
	a.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.hub.Shutdown(ctx)
	err := a.server.Shutdown(ctx)
	infrastructure.CloseLogFile()
	return err
}
