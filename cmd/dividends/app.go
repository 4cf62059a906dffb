package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ndewijer/Dividend-Income-Projector/internal/app"
	"github.com/ndewijer/Dividend-Income-Projector/internal/config"
	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
	"github.com/ndewijer/Dividend-Income-Projector/internal/validation"
)

var logLevel = flag.String("log-level", "warn", "Log level written to stderr (debug, info, warn, error)")

// Command output and diagnostics. Replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	openApp = loadApp
)

// loadApp loads the environment configuration and initializes the application
// with logs going to stderr, leaving stdout to command output.
func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	return app.NewApp(ctx, cfg, logging.New(os.Stderr, *logLevel))
}

// parseAsOf returns the zero time for an empty flag, meaning the default reference date.
func parseAsOf(s string) (time.Time, error) {
	t, err := validation.ParseReferenceDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -asof %q: %w", s, err)
	}
	return t, nil
}
