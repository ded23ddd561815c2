package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"lifeledger/internal/backend"
	"lifeledger/internal/cli"
	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err)
		os.Exit(1)
	}

	_, cached, err := backend.NewCalendarProvider(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create calendar provider", log.FieldError, err)
		_ = be.Cleanup()
		os.Exit(1)
	}
	if be.AMQP == nil && cached == nil {
		logger.Error("Nothing to do: set AMQP_URL for change classification or CALENDAR_PROVIDER for refreshes")
		_ = be.Cleanup()
		os.Exit(1)
	}

	classifier := worker.NewClassifyWorker(be.Store, logger)

	runCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {})
	var wg sync.WaitGroup

	if cfg.DefaultUserID != "" {
		today := time.Now().In(cfg.Location())
		win := core.DefaultWindow(core.NewDate(today.Year(), int(today.Month()), today.Day()), cfg.ExternalWindowMonths)
		if _, err := classifier.Sweep(runCtx, cfg.DefaultUserID, win); err != nil {
			logger.Warn("Startup classification sweep failed", log.FieldError, err)
		}
	}

	if be.AMQP != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("Starting change consumer", "queue", cfg.AMQPQueue)
			if err := be.AMQP.ConsumeChanges(runCtx, classifier.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change consumer stopped", log.FieldError, err)
			}
		}()
	}

	if cached != nil {
		refresher := worker.NewCalendarRefresher(cached, cfg.CalendarRefreshCron, cfg.ExternalWindowMonths, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := refresher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Calendar refresher stopped", log.FieldError, err)
			}
		}()
	}

	logger.Info("Worker started",
		"backend", cfg.DataBackend,
		"amqp", be.AMQP != nil,
		"calendar_provider", cfg.CalendarProvider,
		log.FieldOperation, log.OpStartup)

	cli.WaitForShutdown(runCtx, done)
	wg.Wait()
	if err := be.Cleanup(); err != nil {
		logger.Error("Backend cleanup error", log.FieldError, err)
	}
	logger.Info("Worker stopped gracefully")
}
