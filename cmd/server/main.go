package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/Dividend-Income-Projector/internal/api"
	"github.com/ndewijer/Dividend-Income-Projector/internal/app"
	"github.com/ndewijer/Dividend-Income-Projector/internal/config"
	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
	"github.com/ndewijer/Dividend-Income-Projector/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg.LogLevel)
	logger := logging.L

	a, err := app.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.StartScheduler(); err != nil {
		logger.Error("failed to start refresh scheduler", "error", err)
		a.Close()
		os.Exit(1)
	}

	// Create router
	router := api.NewRouter(a.SystemService, a.DividendService, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // refresh walks every holding upstream
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr, "version", version.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
