package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// FakeFetcher is a history.Fetcher serving canned upstream payloads.
// Tickers without a payload fail with apperrors.ErrDividendHistoryNotFound.
type FakeFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	errs   map[string]error
	calls  map[string]int
}

// NewFakeFetcher creates a FakeFetcher with no payloads.
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		bodies: map[string][]byte{},
		errs:   map[string]error{},
		calls:  map[string]int{},
	}
}

// WithHistory serves decls as the JSON payload of ticker.
func (f *FakeFetcher) WithHistory(ticker string, decls ...model.DividendDeclaration) *FakeFetcher {
	if decls == nil {
		decls = []model.DividendDeclaration{}
	}
	body, err := json.Marshal(decls)
	if err != nil {
		panic(err)
	}
	return f.WithBody(ticker, string(body))
}

// WithBody serves body verbatim for ticker.
func (f *FakeFetcher) WithBody(ticker, body string) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := model.TickerKey(ticker)
	f.bodies[key] = []byte(body)
	delete(f.errs, key)
	return f
}

// WithError makes every request for ticker fail with err.
func (f *FakeFetcher) WithError(ticker string, err error) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[model.TickerKey(ticker)] = err
	return f
}

// FetchDividends implements history.Fetcher.
func (f *FakeFetcher) FetchDividends(ctx context.Context, ticker string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := model.TickerKey(ticker)
	f.calls[key]++

	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	body, ok := f.bodies[key]
	if !ok {
		return nil, apperrors.ErrDividendHistoryNotFound
	}
	return body, nil
}

// Calls returns how often ticker was requested.
func (f *FakeFetcher) Calls(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[model.TickerKey(ticker)]
}
