package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/byway-labs/byway-gateway/internal/api"
	"github.com/byway-labs/byway-gateway/internal/authoring"
	"github.com/byway-labs/byway-gateway/internal/cart"
	"github.com/byway-labs/byway-gateway/internal/catalog"
	"github.com/byway-labs/byway-gateway/internal/config"
	"github.com/byway-labs/byway-gateway/internal/normalize"
	"github.com/byway-labs/byway-gateway/internal/notify"
	"github.com/byway-labs/byway-gateway/internal/session"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting byway-gateway",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"upstream", cfg.Upstream.BaseURL,
	)

	// Session and draft store
	sessions, err := session.NewStore(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Session.TTL,
		cfg.Session.DraftTTL,
	)
	if err != nil {
		slog.Error("failed to connect to session store", "error", err)
		os.Exit(1)
	}
	slog.Info("session store connected")

	// Upstream marketplace client
	client := upstream.NewClient(cfg.Upstream.BaseURL,
		upstream.WithTimeout(cfg.Upstream.Timeout),
	)

	// Normalization, notifications and the catalog pipeline
	mapper := normalize.NewMapper()
	hub := notify.NewHub()

	controller := catalog.NewController(client, mapper, hub, catalog.Config{
		PageSize: cfg.Upstream.PageSize,
	})
	orchestrator := cart.NewOrchestrator(client, mapper, hub)
	wizard := authoring.NewWizard(sessions, client)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the periodic catalog refresh worker; the first run loads
	// the catalog on startup.
	refresher := catalog.NewRefresher(controller, cfg.Upstream.RefreshInterval)
	refresher.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, controller, orchestrator, wizard, sessions, client, mapper, hub)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := sessions.Close(); err != nil {
		slog.Error("session store close error", "error", err)
	}

	slog.Info("byway-gateway stopped")
}
