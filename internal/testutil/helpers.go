package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Dividend-Income-Projector/internal/config"
	"github.com/ndewijer/Dividend-Income-Projector/internal/history"
	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
	"github.com/ndewijer/Dividend-Income-Projector/internal/repository"
	"github.com/ndewijer/Dividend-Income-Projector/internal/service"
)

// ReferenceDate is the default "today" of service and handler tests.
var ReferenceDate = time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

// FixedClock returns a clock that always reads t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// NewTestHistorySource creates a FallbackSource over fetcher that persists
// snapshots into db. The memo is disabled so every lookup reaches fetcher.
func NewTestHistorySource(t *testing.T, db *sql.DB, fetcher history.Fetcher) *history.FallbackSource {
	t.Helper()

	return history.NewFallbackSource(
		fetcher,
		repository.NewDeclarationRepository(db),
		history.WithCacheTTL(0),
		history.WithClock(FixedClock(ReferenceDate)),
		history.WithLogger(logging.Discard()),
	)
}

// NewTestDividendService wires a DividendService the way the server does,
// with a fixed clock and ReferenceDate as the default reference date.
//
// Example usage:
//
//	fetcher := testutil.NewFakeFetcher().
//	    WithHistory("0050", testutil.Declaration("2025-07-21", "2025-08-13", "1.0"))
//	svc := testutil.NewTestDividendService(t, db, testutil.NewPortfolio(testutil.NewHolding("0050", "24")), fetcher)
func NewTestDividendService(t *testing.T, db *sql.DB, portfolio *config.Portfolio, fetcher history.Fetcher) *service.DividendService {
	t.Helper()

	source := NewTestHistorySource(t, db, fetcher)

	return service.NewDividendService(
		portfolio,
		source,
		service.WithRefresher(source),
		service.WithFetcher(fetcher),
		service.WithMetadataStore(repository.NewMetadataRepository(db)),
		service.WithClock(FixedClock(ReferenceDate.Add(9*time.Hour))),
		service.WithReferenceDate(ReferenceDate),
		service.WithLogger(logging.Discard()),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{
		"settlement_overrides": true,
		"snapshot_export":      true,
	})
}
