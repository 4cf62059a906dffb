// Package app wires configuration, storage, the upstream client and the services
// into one App shared by cmd/server and cmd/dividends.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ndewijer/Dividend-Income-Projector/internal/config"
	"github.com/ndewijer/Dividend-Income-Projector/internal/database"
	"github.com/ndewijer/Dividend-Income-Projector/internal/history"
	"github.com/ndewijer/Dividend-Income-Projector/internal/repository"
	"github.com/ndewijer/Dividend-Income-Projector/internal/scheduler"
	"github.com/ndewijer/Dividend-Income-Projector/internal/service"
	"github.com/ndewijer/Dividend-Income-Projector/internal/validation"
	"github.com/ndewijer/Dividend-Income-Projector/internal/wantgoo"
)

// App holds the initialized services and their dependencies.
type App struct {
	Config          *config.Config
	Logger          *slog.Logger
	DB              *sql.DB
	Portfolio       *config.Portfolio
	Upstream        *wantgoo.Client
	History         *history.FallbackSource
	Declarations    *repository.DeclarationRepository
	Metadata        *repository.MetadataRepository
	DividendService *service.DividendService
	SystemService   *service.SystemService
	StartupTime     time.Time

	scheduler *scheduler.Scheduler
}

// NewApp loads the portfolio, opens and migrates the database, imports the seed
// history if one is configured and builds the services.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	startupTime := time.Now()

	portfolio, err := config.LoadPortfolio(cfg.Portfolio.Path)
	if err != nil {
		return nil, err
	}

	referenceDate, err := validation.ParseReferenceDate(cfg.Portfolio.ReferenceDate)
	if err != nil {
		return nil, fmt.Errorf("invalid REFERENCE_DATE: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("connected to database", "path", cfg.Database.Path)

	a := &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Portfolio:    portfolio,
		Declarations: repository.NewDeclarationRepository(db),
		Metadata:     repository.NewMetadataRepository(db),
		StartupTime:  startupTime,
	}

	if cfg.History.SeedPath != "" {
		if err := a.importSeed(ctx, cfg.History.SeedPath); err != nil {
			db.Close()
			return nil, err
		}
	}

	a.Upstream = wantgoo.NewClient(
		wantgoo.WithBaseURL(cfg.Upstream.BaseURL),
		wantgoo.WithTimeout(cfg.Upstream.Timeout),
		wantgoo.WithRateLimit(cfg.Upstream.RateLimit),
		wantgoo.WithLogger(logger),
	)

	a.History = history.NewFallbackSource(
		a.Upstream,
		a.Declarations,
		history.WithCacheTTL(cfg.History.CacheTTL),
		history.WithLogger(logger),
	)

	a.DividendService = service.NewDividendService(
		portfolio,
		a.History,
		service.WithRefresher(a.History),
		service.WithFetcher(a.Upstream),
		service.WithMetadataStore(a.Metadata),
		service.WithConcurrency(cfg.History.FetchConcurrency),
		service.WithReferenceDate(referenceDate),
		service.WithLogger(logger),
	)

	a.SystemService = service.NewSystemService(db, map[string]bool{
		"settlement_overrides": len(portfolio.Overrides) > 0,
		"snapshot_export":      true,
		"scheduled_refresh":    cfg.History.RefreshSchedule != "",
	})

	logger.Info("portfolio loaded",
		"path", cfg.Portfolio.Path,
		"holdings", len(portfolio.Holdings),
		"overrides", len(portfolio.Overrides))

	return a, nil
}

func (a *App) importSeed(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		a.Logger.Warn("seed file not found, skipping import", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	n, err := history.LoadSeed(ctx, a.Declarations, f, time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		a.Logger.Info("imported seed dividend history", "path", path, "tickers", n)
	}
	return nil
}

// StartScheduler starts the periodic refresh if a schedule is configured.
func (a *App) StartScheduler() error {
	spec := a.Config.History.RefreshSchedule
	if spec == "" {
		return nil
	}

	s := scheduler.New(a.Logger)
	if _, err := s.AddRefresh(spec, a.DividendService, scheduler.DefaultRefreshTimeout); err != nil {
		return err
	}
	s.Start()
	a.scheduler = s
	return nil
}

// Close stops the scheduler, waiting for a running refresh, and closes the database.
func (a *App) Close() {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
		a.scheduler = nil
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
