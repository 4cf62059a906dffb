package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/config"
	"github.com/ndewijer/Dividend-Income-Projector/internal/history"
	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
	"github.com/ndewijer/Dividend-Income-Projector/internal/projection"
	"github.com/ndewijer/Dividend-Income-Projector/internal/validation"
)

// DefaultFetchConcurrency bounds parallel history lookups.
const DefaultFetchConcurrency = 4

// Refresher re-fetches one ticker's history from upstream, bypassing caches.
type Refresher interface {
	Refresh(ctx context.Context, ticker string) error
}

// MetadataStore persists when the history was last refreshed.
type MetadataStore interface {
	Get(ctx context.Context) (model.RefreshMetadata, error)
	Set(ctx context.Context, meta model.RefreshMetadata) error
}

// DividendService handles dividend projection business logic. It loads the
// history of every held ticker, runs the projection engine and derives the
// dashboard aggregates.
type DividendService struct {
	portfolio     *config.Portfolio
	engine        *projection.Engine
	source        history.Source
	refresher     Refresher
	fetcher       history.Fetcher
	metadata      MetadataStore
	concurrency   int
	now           func() time.Time
	referenceDate time.Time
	logger        *slog.Logger
}

// DividendOption configures a DividendService.
type DividendOption func(*DividendService)

// WithRefresher enables Refresh.
func WithRefresher(r Refresher) DividendOption {
	return func(s *DividendService) { s.refresher = r }
}

// WithFetcher enables raw upstream lookups for FetchRaw.
func WithFetcher(f history.Fetcher) DividendOption {
	return func(s *DividendService) { s.fetcher = f }
}

// WithMetadataStore records refresh times and reports them in exports.
func WithMetadataStore(m MetadataStore) DividendOption {
	return func(s *DividendService) { s.metadata = m }
}

// WithConcurrency sets how many tickers are fetched in parallel.
func WithConcurrency(n int) DividendOption {
	return func(s *DividendService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock sets the clock used for export and refresh timestamps, and for
// the default reference date.
func WithClock(now func() time.Time) DividendOption {
	return func(s *DividendService) { s.now = now }
}

// WithReferenceDate pins the default reference date instead of using the clock.
func WithReferenceDate(t time.Time) DividendOption {
	return func(s *DividendService) { s.referenceDate = t }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) DividendOption {
	return func(s *DividendService) { s.logger = logger }
}

// NewDividendService creates a new DividendService for a validated portfolio.
func NewDividendService(portfolio *config.Portfolio, source history.Source, opts ...DividendOption) *DividendService {
	s := &DividendService{
		portfolio:   portfolio,
		source:      source,
		concurrency: DefaultFetchConcurrency,
		now:         time.Now,
		logger:      logging.L,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = projection.NewEngine(portfolio.Fee, s.logger)
	return s
}

// Holdings returns a copy of the configured holdings in portfolio order.
func (s *DividendService) Holdings() []model.Holding {
	return slices.Clone(s.portfolio.Holdings)
}

// Today returns the default reference date: the pinned date when configured,
// otherwise the current UTC time.
func (s *DividendService) Today() time.Time {
	if !s.referenceDate.IsZero() {
		return s.referenceDate
	}
	return s.now().UTC()
}

// LoadHistories fetches the history of every holding with a positive quantity,
// at most concurrency tickers at a time. The map is keyed by upper-cased ticker.
// It only fails when ctx is cancelled.
func (s *DividendService) LoadHistories(ctx context.Context) (map[string][]model.DividendDeclaration, error) {
	var mu sync.Mutex
	histories := make(map[string][]model.DividendDeclaration, len(s.portfolio.Holdings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, h := range s.portfolio.Holdings {
		if !h.Quantity.IsPositive() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decls := s.source.Fetch(gctx, h.Ticker)

			mu.Lock()
			histories[h.Key()] = decls
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToFetchDividends, err)
	}
	return histories, nil
}

// Project builds the dashboard for the reference date today. When show is
// false, projected events are excluded from both the event list and every
// aggregate.
func (s *DividendService) Project(ctx context.Context, today time.Time, show bool) (model.Dashboard, error) {
	if today.IsZero() {
		today = s.Today()
	}

	histories, err := s.LoadHistories(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}

	result, err := s.engine.Project(s.portfolio.Holdings, histories, today)
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToProject, err)
	}

	events := projection.ApplyOverrides(result.Events, s.portfolio.Overrides)
	events = projection.FilterProjections(events, show)

	if len(result.Rejected) > 0 {
		s.logger.Warn("projection excluded malformed declarations", "count", len(result.Rejected))
	}

	return model.Dashboard{
		Events:   events,
		Summary:  projection.Summarize(s.portfolio.Holdings, events, today, show),
		Rejected: result.Rejected,
	}, nil
}

// Export bundles the dashboard with the holdings and refresh metadata into a
// snapshot for offline use.
func (s *DividendService) Export(ctx context.Context, today time.Time, show bool) (model.Snapshot, error) {
	if today.IsZero() {
		today = s.Today()
	}

	dashboard, err := s.Project(ctx, today, show)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToExport, err)
	}

	var meta model.RefreshMetadata
	if s.metadata != nil {
		meta, err = s.metadata.Get(ctx)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("%w: %w: %w", apperrors.ErrFailedToExport, apperrors.ErrFailedToReadMetadata, err)
		}
	}
	if meta.Source == "" {
		meta.Source = s.portfolio.Source
	}

	return model.Snapshot{
		ID:            uuid.New().String(),
		ExportedAt:    s.now().UTC(),
		ReferenceDate: today.UTC(),
		LastUpdated:   meta.LastUpdated,
		Source:        meta.Source,
		Holdings:      s.Holdings(),
		Events:        dashboard.Events,
		Summary:       dashboard.Summary,
	}, nil
}

// Refresh re-fetches the history of every holding with a positive quantity.
// Per-ticker failures are reported in the result; the refresh metadata is
// updated when at least one ticker succeeded.
func (s *DividendService) Refresh(ctx context.Context) (model.RefreshResult, error) {
	if s.refresher == nil {
		return model.RefreshResult{}, fmt.Errorf("%w: no refresher configured", apperrors.ErrFailedToRefresh)
	}

	var mu sync.Mutex
	result := model.RefreshResult{Refreshed: []string{}, Failed: []model.RefreshFailure{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, h := range s.portfolio.Holdings {
		if !h.Quantity.IsPositive() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := s.refresher.Refresh(gctx, h.Ticker)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("dividend history refresh failed", "ticker", h.Key(), "error", err)
				result.Failed = append(result.Failed, model.RefreshFailure{Ticker: h.Key(), Error: err.Error()})
				return nil
			}
			result.Refreshed = append(result.Refreshed, h.Key())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefresh, err)
	}

	slices.Sort(result.Refreshed)
	slices.SortFunc(result.Failed, func(a, b model.RefreshFailure) int {
		return cmp.Compare(a.Ticker, b.Ticker)
	})

	if len(result.Refreshed) == 0 {
		return result, nil
	}

	result.LastUpdated = s.now().UTC()
	if s.metadata != nil {
		meta := model.RefreshMetadata{LastUpdated: result.LastUpdated, Source: s.portfolio.Source}
		if err := s.metadata.Set(ctx, meta); err != nil {
			return result, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefresh, err)
		}
	}

	s.logger.Info("dividend history refreshed",
		"refreshed", len(result.Refreshed),
		"failed", len(result.Failed))
	return result, nil
}

// FetchRaw returns the upstream dividend payload of ticker unchanged.
func (s *DividendService) FetchRaw(ctx context.Context, ticker string) ([]byte, error) {
	if err := validation.ValidateTicker(ticker); err != nil {
		return nil, err
	}
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: no upstream configured", apperrors.ErrDividendHistoryNotFound)
	}

	data, err := s.fetcher.FetchDividends(ctx, model.TickerKey(ticker))
	if err != nil {
		if errors.Is(err, apperrors.ErrDividendHistoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDividendHistoryNotFound, err)
	}
	return data, nil
}
