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

	"codeberg.org/storefront/server/internal/config"
	"codeberg.org/storefront/server/internal/logger"
)

// @title Storefront Viewers API
// @version 1.0
// @description Live viewer presence for storefront product pages
// @description
// @description Features:
// @description - Join, heartbeat and leave viewer sessions per product
// @description - Live viewer count over a sliding active window
// @description - Batched, paced cleanup of stale and expired sessions

// @contact.name API Support
// @contact.url https://codeberg.org/storefront/server

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Cron secret or admin JWT. Format: Bearer {token}

const (
	// a cleanup sweep runs on the request; a full fetch cap of paced batches needs room
	writeTimeout = 60 * time.Second

	shutdownTimeout = 10 * time.Second
)

func main() {
	logger.Info("starting storefront viewers server")

	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	// create server with all dependencies
	srv, err := NewServer(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port, "store", cfg.StoreBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// in-process janitor, only when no external scheduler drives the sweeps
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	if cfg.Presence.JanitorInterval > 0 {
		go srv.janitor.Start(janitorCtx, cfg.Presence.JanitorInterval)
	}

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// stop janitor
	janitorCancel()

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.Close()

	logger.Info("server stopped")
}
