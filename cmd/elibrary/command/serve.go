package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elibrary/database"
	"elibrary/internal/events"
	"elibrary/internal/metrics"
	"elibrary/internal/microservices/http-api/handler"
	"elibrary/internal/microservices/http-api/middleware"
	"elibrary/internal/microservices/http-api/repository"
	"elibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		if err := cfg.ValidateIdentity(); err != nil {
			return err
		}
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx := cmd.Context()

		// 1. pooled connection resource, shared by every request
		db, err := database.Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		// 2. metrics
		var recorder metrics.Recorder = metrics.Nop{}
		var metricsHandler http.Handler
		if cfg.PrometheusEnabled {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			recorder = metrics.NewCollector(reg)
			metricsHandler = metrics.Handler(reg)
		}

		// 3. lifecycle events
		var publisher events.Publisher = events.NopPublisher{}
		if cfg.EventsEnabled {
			redisPub, err := events.NewRedisPublisher(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.EventsChannel)
			if err != nil {
				return err
			}
			publisher = redisPub
			logger.Info("event_publisher_ready", "channel", cfg.EventsChannel)
		}
		defer publisher.Close()

		// 4. repositories -> services -> handlers
		bookRepo := repository.NewBookRepository(db.Gorm)
		userRepo := repository.NewUserRepository(db.Gorm)

		catalog := service.NewCatalogService(bookRepo, publisher, recorder, logger)
		identity := service.NewIdentityService(userRepo, recorder, logger)

		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimitRPS),
			Burst: cfg.RateLimitBurst,
		})
		defer limiter.Stop()

		router := handler.NewRouter(handler.RouterConfig{
			Logger:         logger,
			Books:          handler.NewBookHandler(catalog, cfg.RequestTimeout),
			Users:          handler.NewUserHandler(identity, cfg.RequestTimeout),
			Health:         handler.NewHealthHandler(db, cfg.RequestTimeout),
			Verifier:       middleware.NewTokenVerifier(cfg.IdPJWTSecret),
			RateLimiter:    limiter,
			Metrics:        recorder,
			MetricsHandler: metricsHandler,
			CORSOrigins:    cfg.CORSOrigins,
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Handle graceful shutdown
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		errChan := make(chan error, 1)
		go func() {
			logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		select {
		case <-sigChan:
			logger.Info("received_shutdown_signal")
		case err := <-errChan:
			logger.Error("server_error", "error", err.Error())
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server_stopped_gracefully")
		return nil
	},
}
