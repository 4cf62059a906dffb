package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// DefaultCacheTTL is how long a fetched history is served from memory.
const DefaultCacheTTL = 30 * time.Minute

// FallbackSource is a Source backed by an upstream Fetcher and a snapshot Store.
//
// Lookups go memo -> upstream -> last-known-good snapshot -> empty list. A
// successful upstream fetch replaces the snapshot of that ticker.
type FallbackSource struct {
	fetcher Fetcher
	store   Store
	memo    *cache.Cache
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a FallbackSource.
type Option func(*FallbackSource)

// WithCacheTTL sets how long fetched histories are memoized. Zero disables the memo.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *FallbackSource) {
		if ttl <= 0 {
			s.memo = nil
			return
		}
		s.memo = cache.New(ttl, 2*ttl)
	}
}

// WithClock sets the clock used to timestamp stored snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *FallbackSource) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *FallbackSource) {
		s.logger = logger
	}
}

// NewFallbackSource creates a FallbackSource. A nil store disables the
// last-known-good fallback.
func NewFallbackSource(fetcher Fetcher, store Store, opts ...Option) *FallbackSource {
	s := &FallbackSource{
		fetcher: fetcher,
		store:   store,
		memo:    cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		now:     time.Now,
		logger:  logging.L,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the declarations of ticker. It never fails; when neither
// upstream nor the snapshot store can answer it returns an empty list.
func (s *FallbackSource) Fetch(ctx context.Context, ticker string) []model.DividendDeclaration {
	key := model.TickerKey(ticker)
	if key == "" {
		return []model.DividendDeclaration{}
	}

	if s.memo != nil {
		if v, ok := s.memo.Get(key); ok {
			if decls, ok := v.([]model.DividendDeclaration); ok {
				return decls
			}
		}
	}

	decls, err := s.fetchAndStore(ctx, key)
	if err == nil {
		s.remember(key, decls)
		return decls
	}
	s.logger.Warn("upstream dividend fetch failed, using last known good",
		"ticker", key,
		"error", err)

	decls, err = s.lastKnownGood(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			s.logger.Error("failed to read dividend snapshot", "ticker", key, "error", err)
		}
		return []model.DividendDeclaration{}
	}
	return decls
}

// Refresh fetches ticker from upstream bypassing the memo and replaces its
// snapshot. On failure the existing snapshot is left untouched.
func (s *FallbackSource) Refresh(ctx context.Context, ticker string) error {
	key := model.TickerKey(ticker)
	if key == "" {
		return apperrors.ErrInvalidTicker
	}

	decls, err := s.fetchAndStore(ctx, key)
	if err != nil {
		return fmt.Errorf("%w for %s: %w", apperrors.ErrFailedToRefresh, key, err)
	}
	s.remember(key, decls)
	return nil
}

// Invalidate drops every memoized history.
func (s *FallbackSource) Invalidate() {
	if s.memo != nil {
		s.memo.Flush()
	}
}

func (s *FallbackSource) fetchAndStore(ctx context.Context, key string) ([]model.DividendDeclaration, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: no upstream configured", apperrors.ErrFailedToFetchDividends)
	}

	data, err := s.fetcher.FetchDividends(ctx, key)
	if err != nil {
		return nil, err
	}

	decls, errs := Decode(data)
	// A payload in which nothing decoded must not replace a good snapshot.
	if decls == nil || (len(decls) == 0 && len(errs) > 0) {
		return nil, errors.Join(errs...)
	}
	for _, e := range errs {
		s.logger.Warn("skipped malformed dividend declaration", "ticker", key, "error", e)
	}

	if s.store != nil {
		if err := s.store.Replace(ctx, key, decls, s.now()); err != nil {
			// The fetched data is still good to serve.
			s.logger.Error("failed to store dividend snapshot", "ticker", key, "error", err)
		}
	}
	return decls, nil
}

func (s *FallbackSource) lastKnownGood(ctx context.Context, key string) ([]model.DividendDeclaration, error) {
	if s.store == nil {
		return nil, apperrors.ErrSnapshotNotFound
	}
	return s.store.Get(ctx, key)
}

func (s *FallbackSource) remember(key string, decls []model.DividendDeclaration) {
	if s.memo != nil {
		s.memo.SetDefault(key, decls)
	}
}

// SnapshotLister lists the tickers a store already holds a snapshot for.
type SnapshotLister interface {
	Tickers(ctx context.Context) ([]string, error)
}

// SeedStore is a Store that can also list its tickers.
type SeedStore interface {
	Store
	SnapshotLister
}

// LoadSeed imports a bundled JSON seed of the form {"TICKER": [declarations]}
// into store. Tickers that already have a snapshot are left alone. It returns
// the number of tickers imported.
func LoadSeed(ctx context.Context, store SeedStore, r io.Reader, fetchedAt time.Time) (int, error) {
	var seed map[string][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return 0, fmt.Errorf("failed to decode seed file: %w", err)
	}

	existing, err := store.Tickers(ctx)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[model.TickerKey(t)] = true
	}

	imported := 0
	for _, ticker := range slices.Sorted(maps.Keys(seed)) {
		elems := seed[ticker]
		key := model.TickerKey(ticker)
		if key == "" || have[key] {
			continue
		}

		decls := make([]model.DividendDeclaration, 0, len(elems))
		for i, elem := range elems {
			var d model.DividendDeclaration
			if err := json.Unmarshal(elem, &d); err != nil {
				logging.FromContext(ctx).Warn("skipped malformed seed declaration",
					"ticker", key, "index", i, "error", err)
				continue
			}
			decls = append(decls, d)
		}

		if err := store.Replace(ctx, key, decls, fetchedAt); err != nil {
			return imported, fmt.Errorf("%w: %w", apperrors.ErrFailedToStoreDividends, err)
		}
		have[key] = true
		imported++
	}
	return imported, nil
}
