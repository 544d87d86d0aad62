package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paulettemal/dashboardFin/internal/config"
	"github.com/paulettemal/dashboardFin/internal/dashboard"
	"github.com/paulettemal/dashboardFin/internal/handler"
	"github.com/paulettemal/dashboardFin/internal/middleware"
	"github.com/paulettemal/dashboardFin/internal/observability"
	"github.com/paulettemal/dashboardFin/internal/redis"
	"github.com/paulettemal/dashboardFin/internal/repository"
	"github.com/paulettemal/dashboardFin/internal/service"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx)
		},
	}
}

func runServer(ctx context.Context) error {
	logger := config.GetLogger()
	metrics := observability.NewMetrics()

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redis.Ping(pingCtx, redis.GetClient()); err != nil {
		logger.Warnw("Redis unavailable, forecasts will be fetched live", "addr", config.GetRedisAddr(), "error", err)
	}
	cancel()

	repo := repository.NewForecastRepository(
		repository.WithMetrics(metrics),
		repository.WithLogger(logger),
	)
	svc := service.NewForecastService(repo, metrics)
	d := dashboard.New(svc, config.GetDefaultLocation(),
		dashboard.WithLogger(logger),
		dashboard.WithMetrics(metrics),
	)
	go d.Run(ctx, config.GetRefreshInterval())

	limiter := middleware.NewRateLimiter(middleware.LimitsFromConfig(), middleware.DefaultParamKey)
	limiter.StartCleanup(ctx, config.GetRateLimiterCleanupTimeout())

	srv := newHTTPServer(handler.NewRouter(handler.NewForecastHandler(d, svc), d, limiter.Middleware))

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("Dashboard server running", "addr", srv.Addr, "location", d.Location())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infow("Shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(),
		config.GetServerTimeoutDuration("shutdown_timeout", 10*time.Second))
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Infow("Server stopped")
	return nil
}

func newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + config.GetServerPort(),
		Handler:           h,
		ReadHeaderTimeout: config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeoutDuration("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeoutDuration("write_timeout", 10*time.Second),
		IdleTimeout:       config.GetServerTimeoutDuration("idle_timeout", 30*time.Second),
	}
}
