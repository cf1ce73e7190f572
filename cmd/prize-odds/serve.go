package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/prize-odds/internal/api"
	"github.com/yourusername/prize-odds/internal/config"
	"github.com/yourusername/prize-odds/internal/datasource"
	"github.com/yourusername/prize-odds/internal/estimation"
	"github.com/yourusername/prize-odds/internal/health"
	"github.com/yourusername/prize-odds/internal/logger"
	"github.com/yourusername/prize-odds/internal/metrics"
	"github.com/yourusername/prize-odds/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the odds API with scheduled snapshot refreshes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"pools":       cfg.PoolIDs(),
		"version":     Version,
	}).Info("prize-odds starting")

	metrics.InitRegistry()

	factory := datasource.NewFactory(cfg, appLog)
	client := factory.NewHTTPClient()
	defer client.Close()

	fetcher, err := factory.NewFetcher(client)
	if err != nil {
		return err
	}
	store := factory.NewStore(fetcher)

	orchestrator := estimation.NewOrchestrator(store, appLog,
		estimation.WithCache(estimation.NewResultCache(cfg.CacheTTL(), cfg.Cache.MaxSize)))

	sched := scheduler.NewScheduler(store, appLog)
	if err := sched.ScheduleRefresh(cfg.Refresh.Schedule, cfg.RefreshTimeout()); err != nil {
		return err
	}

	subscriber, err := factory.NewStreamSubscriber(store)
	if err != nil {
		return err
	}

	checks := map[string]health.Checker{"snapshots": store}
	if subscriber != nil {
		checks["stream"] = subscriber
	}

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Health.Port),
		Logger:      appLog,
		Checks:      checks,
	}
	if cfg.Metrics.Enabled {
		healthCfg.MetricsHandler = metrics.Handler()
		healthCfg.MetricsPath = cfg.Metrics.Path
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		return err
	}

	if cfg.Refresh.RefreshOnStart {
		refreshCtx, cancel := context.WithTimeout(ctx, cfg.RefreshTimeout())
		if err := sched.RunNow(refreshCtx); err != nil {
			appLog.WithError(err).Warn("Initial snapshot refresh incomplete; pools stay awaiting until the next refresh")
		}
		cancel()
	}

	if subscriber != nil {
		go func() {
			if err := subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				appLog.WithError(err).Error("Snapshot stream stopped; scheduled refreshes continue but readiness reports the stream down")
			}
		}()
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	apiServer := api.NewServer(api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		Locale:         cfg.Display.Locale,
		EmptyString:    cfg.Display.EmptyString,
	}, store, orchestrator, appLog)
	if err := apiServer.Start(ctx); err != nil {
		return err
	}

	healthServer.SetReady(true)
	appLog.WithField("port", cfg.API.Port).Info("prize-odds ready")

	<-ctx.Done()
	appLog.Info("Shutdown signal received")
	healthServer.SetReady(false)

	if err := apiServer.Shutdown(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.WithError(err).Error("API server shutdown failed")
	}
	return nil
}
