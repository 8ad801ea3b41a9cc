// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/animeservice/anime-service/internal/api"
	"github.com/animeservice/anime-service/internal/buildinfo"
	"github.com/animeservice/anime-service/internal/catalog"
	"github.com/animeservice/anime-service/internal/config"
	"github.com/animeservice/anime-service/internal/database"
	"github.com/animeservice/anime-service/internal/domain"
	"github.com/animeservice/anime-service/internal/feed"
	"github.com/animeservice/anime-service/internal/hub"
	"github.com/animeservice/anime-service/internal/logging"
	"github.com/animeservice/anime-service/internal/metrics"
	"github.com/animeservice/anime-service/internal/poller"
	"github.com/animeservice/anime-service/internal/repository"
	"github.com/animeservice/anime-service/internal/rpc"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:     "anime-service",
		Short:   "Aggregates anime release feeds into a queryable, subscribable catalog",
		Version: buildinfo.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("anime-service exited with an error")
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Configure(cfg)
	log.Info().Str("version", buildinfo.Version).Msg("starting anime-service")

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := database.OpenFromConfig(cfg, filepath.Join(cfg.DataDir, "anime-service.db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	broadcastHub := hub.New()

	feedClient := feed.NewClient(feed.WithBaseURL(cfg.FeedURL))
	catalogClient := catalog.NewClient(catalog.WithBaseURL(cfg.CatalogURL))

	router, downloadsHandler := api.NewRouter(&api.Dependencies{
		Config:  cfg,
		Store:   store,
		Hub:     broadcastHub,
		Catalog: catalogClient,
	})

	period := time.Duration(cfg.PollIntervalSeconds) * time.Second
	handler := poller.NewPersistentHandler(store, broadcastHub, downloadsHandler.Cache())
	svcPoller, err := poller.NewPersistent(ctx, feedClient, handler, store, period)
	if err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	metricsManager := metrics.NewManager(broadcastHub, svcPoller)
	svcPoller = svcPoller.WithMetrics(metricsManager)

	go svcPoller.Run(ctx)

	grpcServer := rpc.NewGRPCServer(broadcastHub)
	mux := rpc.Multiplex(grpcServer, router)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", addr).Msg("REST/gRPC listener starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		metricsServer = startMetricsServer(cfg, metricsManager, errCh)
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	_ = httpServer.Shutdown(shutdownCtx)
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	return nil
}

func startMetricsServer(cfg *domain.Config, m *metrics.Manager, errCh chan<- error) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.GetRegistry(), promhttp.HandlerOpts{}))

	addr := net.JoinHostPort(cfg.MetricsHost, fmt.Sprintf("%d", cfg.MetricsPort))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("metrics listener starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	return srv
}
