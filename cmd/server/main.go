// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

// Package main is the entry point for the Gradus server.
//
// Gradus is a self-hosted widget that sums an XP property across a Notion
// database and serves an embeddable level progress gauge.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: settings from environment variables and config files (Koanf v2)
//  2. Notion client: circuit-breaker-protected database query client
//  3. Snapshot cache: TTL cache over the full record set
//  4. Widget renderer: HTML/SVG ring gauge templates
//  5. HTTP server: widget, health, and metrics endpoints under supervision
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Required environment variables:
//   - NOTION_TOKEN: Notion integration token
//   - DATABASE_ID: identifier of the database to query
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gradusapp/gradus/internal/api"
	"github.com/gradusapp/gradus/internal/cache"
	"github.com/gradusapp/gradus/internal/config"
	"github.com/gradusapp/gradus/internal/logging"
	"github.com/gradusapp/gradus/internal/notion"
	"github.com/gradusapp/gradus/internal/supervisor"
	"github.com/gradusapp/gradus/internal/supervisor/services"
	"github.com/gradusapp/gradus/internal/widget"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("database_id", cfg.MaskedDatabaseID()).
		Str("xp_property", cfg.XP.Property).
		Int("points_per_level", cfg.XP.PointsPerLevel).
		Int("cache_ttl_seconds", cfg.Cache.TTLSeconds).
		Msg("Starting Gradus")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Upstream client behind a circuit breaker
	client := notion.NewBreakerClient(&cfg.Notion)

	// A failed ping is logged but not fatal: the token may gain access to
	// the database after startup, and the widget degrades to its error page
	// until then.
	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.Notion.Timeout)
	if err := client.Ping(pingCtx); err != nil {
		logging.Warn().Err(err).Msg("Notion API not reachable at startup")
	} else {
		logging.Info().Msg("Notion API connection verified")
	}
	pingCancel()

	snapshots := cache.NewSnapshotCache(client, cfg.Cache.TTL())

	renderer, err := widget.NewRenderer(cfg.Widget.Title, cfg.Widget.ReloadInterval())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build widget renderer")
	}

	handler := api.NewHandler(snapshots, renderer, cfg)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("HTTP server starting")

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree failed")
		}
	}

	// Drain the supervisor channel so shutdown completes before exit
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Error during shutdown")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Msg("Gradus stopped")
}
