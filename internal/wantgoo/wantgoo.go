// Package wantgoo fetches raw ex-dividend history from the WantGoo market data site.
package wantgoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
)

const (
	DefaultBaseURL   = "https://www.wantgoo.com"
	DefaultTimeout   = 5 * time.Second
	DefaultRateLimit = 4 // requests per second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client probes the upstream host for a ticker's dividend history, trying
// several path variants in order and returning the first JSON array it gets.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the upstream host.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the outbound request rate. A non-positive rate disables limiting.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), max(1, int(math.Ceil(requestsPerSecond))))
	}
}

// WithHTTPClient uses a copy of httpClient for requests. The configured timeout
// is kept unless the given client sets its own; httpClient itself is not modified.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		hc := *httpClient
		if hc.Timeout == 0 {
			hc.Timeout = c.httpClient.Timeout
		}
		c.httpClient = &hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client with default settings.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  logging.L,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// IsFund reports whether a ticker looks like an ETF or bond fund code:
// fund codes start with "00", bond ETFs end with "B".
func IsFund(ticker string) bool {
	t := strings.ToUpper(ticker)
	return strings.HasPrefix(t, "00") || strings.HasSuffix(t, "B")
}

// Paths returns the path variants tried for a ticker, in order: equity and fund
// pages with the upper-case symbol, then both with the lower-case symbol. Fund
// pages come first for tickers that look like funds.
func Paths(ticker string) []string {
	upper := strings.ToUpper(strings.TrimSpace(ticker))
	lower := strings.ToLower(upper)

	stock := func(s string) string { return fmt.Sprintf("/stock/%s/dividend-policy/ex-dividend-data", s) }
	etf := func(s string) string { return fmt.Sprintf("/stock/etf/%s/dividend-policy/ex-dividend-data", s) }

	if IsFund(upper) {
		return []string{etf(upper), stock(upper), etf(lower), stock(lower)}
	}
	return []string{stock(upper), etf(upper), stock(lower), etf(lower)}
}

// FetchDividends returns the raw JSON array of ex-dividend records for ticker.
// Each path variant is tried in turn; the first 200 response whose body is a
// JSON array wins. When every variant fails the error wraps
// apperrors.ErrDividendHistoryNotFound.
func (c *Client) FetchDividends(ctx context.Context, ticker string) ([]byte, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, apperrors.ErrInvalidTicker
	}

	for _, path := range Paths(symbol) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := c.query(ctx, symbol, path)
		if err != nil {
			c.logger.Debug("upstream path failed", "ticker", symbol, "path", path, "error", err)
			continue
		}

		c.logger.Info("fetched dividend history", "ticker", symbol, "path", path)
		return data, nil
	}

	return nil, fmt.Errorf("%w: %s", apperrors.ErrDividendHistoryNotFound, symbol)
}

// query performs one GET against path and returns the body if it is a JSON array.
func (c *Client) query(ctx context.Context, symbol, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", fmt.Sprintf("%s/stock/%s/dividend-policy/ex-dividend", c.baseURL, symbol))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if !isJSONArray(data) {
		return nil, fmt.Errorf("response is not a JSON array")
	}

	return data, nil
}

func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return false
	}
	return json.Valid(trimmed)
}
