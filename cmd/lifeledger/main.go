package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"lifeledger/internal/backend"
	"lifeledger/internal/cache"
	"lifeledger/internal/cli"
	apphttp "lifeledger/internal/http"
	"lifeledger/internal/log"
	"lifeledger/internal/services"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)
	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	provider, cached, err := backend.NewCalendarProvider(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create calendar provider", log.FieldError, err, "provider", cfg.CalendarProvider)
		_ = be.Cleanup()
		os.Exit(1)
	}

	cacheManager := cache.NewManager(logger)
	if cached != nil {
		cacheManager.Register(cached.Cache())
		cacheManager.StartCleanup(cfg.CalendarCacheTTL)
	}

	calendarSvc := services.NewCalendarService(be.Store, provider, logger)
	writer := services.NewUnifiedWriter(be.Store, be.Notifier(), logger)

	opts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		DefaultUserID:      cfg.DefaultUserID,
		Location:           cfg.Location(),
		WindowMonths:       cfg.ExternalWindowMonths,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	}
	if p, ok := be.Store.(pinger); ok {
		opts.Ready = p.Ping
	}
	srv := apphttp.NewServer(opts, calendarSvc, writer, be.Store)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting lifeledger server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"calendar_provider", cfg.CalendarProvider,
		"amqp", be.AMQP != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
