package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/rajasatyajit/DisasterFeed/config"
	"github.com/rajasatyajit/DisasterFeed/internal/api"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/metrics"
	middlewares "github.com/rajasatyajit/DisasterFeed/internal/middleware"
	"github.com/rajasatyajit/DisasterFeed/internal/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("Starting DisasterFeed",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApp(a)

	// Background refresher for the default official-updates envelope
	go func() {
		if err := a.pipeline.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Refresher stopped", "error", err)
		}
	}()

	limiter := newRateLimiter(cfg)
	if closer, ok := limiter.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	handler := api.NewHandler(a.pipeline, api.Defaults{
		UpdatesLimit: cfg.Updates.DefaultLimit,
		SearchLimit:  cfg.Updates.SearchLimit,
		SocialLimit:  cfg.Social.DefaultLimit,
	}, Version, BuildTime, GitCommit)

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newRouter(cfg, handler, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
	return nil
}

// newRouter applies the middleware stack and mounts the API
func newRouter(cfg *config.Config, handler *api.Handler, limiter ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middlewares.Recover)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)
	r.Use(middlewares.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middlewares.RateLimit(limiter, cfg.RateLimit.RequestsPerMinute))

	handler.RegisterRoutes(r)
	return r
}

// newRateLimiter shares limits through Redis when configured
func newRateLimiter(cfg *config.Config) ratelimit.Limiter {
	if cfg.Redis.URL != "" {
		m, err := ratelimit.NewManager(cfg.Redis.URL, cfg.Cache.Prefix)
		if err == nil {
			return m
		}
		logger.Warn("Redis rate limiter unavailable, limiting per process", "error", err)
	}
	return ratelimit.NewLocal()
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
